package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pv_potential/internal/model"
)

var timestampColumns = []string{"timestamp", "time", "date", "datetime"}
var productionColumns = []string{"production", "prod", "value"}

// timestampLayouts are tried in order for every row.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CurveParser parses a reference production curve exported as CSV.
//
// Expected format:
//
//	timestamp,production
//	2023-01-01T00:00:00Z,0
//	2023-01-01T01:00:00Z,0
//
// Extra columns are ignored. Unlike sensor exports, a reference curve must be
// complete, so any unparseable row is an error.
type CurveParser struct {
	// Unit for the production values (e.g. "kWh").
	Unit string
	// Location is used for timestamps without a zone. Defaults to UTC.
	Location *time.Location
}

func NewCurveParser(unit string) *CurveParser {
	return &CurveParser{Unit: unit, Location: time.UTC}
}

func (p *CurveParser) Parse(r io.Reader) ([]model.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	tsCol, prodCol, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var readings []model.Reading
	lineNum := 1 // header was line 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		reading, err := p.parseRecord(record, tsCol, prodCol, lineNum)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

func locateColumns(header []string) (int, int, error) {
	tsCol, prodCol := -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if tsCol < 0 && contains(timestampColumns, name) {
			tsCol = i
		}
		if prodCol < 0 && contains(productionColumns, name) {
			prodCol = i
		}
	}
	if tsCol < 0 {
		return 0, 0, fmt.Errorf("no timestamp column in header %v (want one of %v)", header, timestampColumns)
	}
	if prodCol < 0 {
		return 0, 0, fmt.Errorf("no production column in header %v (want one of %v)", header, productionColumns)
	}
	return tsCol, prodCol, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *CurveParser) parseRecord(record []string, tsCol, prodCol, lineNum int) (model.Reading, error) {
	if len(record) <= tsCol || len(record) <= prodCol {
		return model.Reading{}, fmt.Errorf("line %d: expected at least %d fields, got %d",
			lineNum, max(tsCol, prodCol)+1, len(record))
	}

	raw := strings.TrimSpace(record[prodCol])
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Reading{}, fmt.Errorf("line %d: parsing production %q: %w", lineNum, raw, err)
	}

	ts, err := p.parseTimestamp(strings.TrimSpace(record[tsCol]))
	if err != nil {
		return model.Reading{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	return model.Reading{
		Timestamp: ts,
		Value:     value,
		Unit:      p.Unit,
	}, nil
}

func (p *CurveParser) parseTimestamp(s string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: no matching layout", s)
}
