package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveParser_Parse(t *testing.T) {
	input := `timestamp,production
2023-06-01T11:00:00Z,412.5
2023-06-01T12:00:00Z,455.0
2023-06-01T13:00:00Z,430.25`

	readings, err := NewCurveParser("kWh").Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, time.Date(2023, 6, 1, 11, 0, 0, 0, time.UTC), readings[0].Timestamp)
	assert.InDelta(t, 412.5, readings[0].Value, 0.001)
	assert.Equal(t, "kWh", readings[0].Unit)
	assert.InDelta(t, 430.25, readings[2].Value, 0.001)
}

func TestCurveParser_ColumnAliasesAndOrder(t *testing.T) {
	input := `Prod,station,Date
1.5,a,2023-01-01 00:00
2.5,a,2023-01-01 01:00:00`

	readings, err := NewCurveParser("kWh").Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.InDelta(t, 1.5, readings[0].Value, 0.001)
	assert.Equal(t, time.Date(2023, 1, 1, 1, 0, 0, 0, time.UTC), readings[1].Timestamp)
}

func TestCurveParser_LocalTime(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	p := &CurveParser{Unit: "kWh", Location: paris}
	readings, err := p.Parse(strings.NewReader("time,value\n2023-01-01T12:00:00,3"))

	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 11, readings[0].Timestamp.UTC().Hour())
}

func TestCurveParser_InvalidHeader(t *testing.T) {
	_, err := NewCurveParser("kWh").Parse(strings.NewReader("when,production\nx,1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")

	_, err = NewCurveParser("kWh").Parse(strings.NewReader("timestamp,energy\n2023-01-01T00:00:00Z,1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "production")
}

func TestCurveParser_RejectsBadRows(t *testing.T) {
	input := `timestamp,production
2023-01-01T00:00:00Z,1
2023-01-01T01:00:00Z,unavailable`

	_, err := NewCurveParser("kWh").Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	_, err = NewCurveParser("kWh").Parse(strings.NewReader("timestamp,production\nyesterday,1"))
	assert.Error(t, err)
}

func TestCurveParser_EmptyInput(t *testing.T) {
	_, err := NewCurveParser("kWh").Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCurveParser_ImplementsParser(t *testing.T) {
	var _ Parser = NewCurveParser("kWh")
}
