package solar

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"pv_potential/internal/model"
)

// Curve is a normalised reference production curve: one fraction of the
// annual yield per hour, summing to 1. A Curve is read-only once built and
// may be shared by every unit of a run.
type Curve struct {
	times     []time.Time
	fractions []float64
}

// NewCurve normalises hourly readings of a reference year. Readings are
// ordered by timestamp; negative values (inverter night draw) count as zero.
// A leap-year curve has its 29 February hours dropped.
func NewCurve(readings []model.Reading) (*Curve, error) {
	sorted := make([]model.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			return nil, fmt.Errorf("reference curve has two readings at %s", sorted[i].Timestamp.Format(time.RFC3339))
		}
	}

	if len(sorted) == model.HoursPerYear+24 {
		kept := sorted[:0]
		for _, r := range sorted {
			if r.Timestamp.Month() == time.February && r.Timestamp.Day() == 29 {
				continue
			}
			kept = append(kept, r)
		}
		sorted = kept
	}
	if len(sorted) != model.HoursPerYear {
		return nil, fmt.Errorf("%w: reference curve has %d hours, want %d",
			ErrShapeMismatch, len(sorted), model.HoursPerYear)
	}

	times := make([]time.Time, len(sorted))
	values := make([]float64, len(sorted))
	for i, r := range sorted {
		times[i] = r.Timestamp
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("reference curve value at %s is not finite", r.Timestamp.Format(time.RFC3339))
		}
		if r.Value > 0 {
			values[i] = r.Value
		}
	}
	return newCurve(times, values)
}

// CurveFromValues normalises an hourly series starting at start.
func CurveFromValues(start time.Time, values []float64) (*Curve, error) {
	if len(values) != model.HoursPerYear {
		return nil, fmt.Errorf("%w: reference curve has %d hours, want %d",
			ErrShapeMismatch, len(values), model.HoursPerYear)
	}
	times := make([]time.Time, len(values))
	for h := range times {
		times[h] = start.Add(time.Duration(h) * time.Hour)
	}
	return newCurve(times, values)
}

func newCurve(times []time.Time, values []float64) (*Curve, error) {
	total := floats.Sum(values)
	if !(total > 0) {
		return nil, fmt.Errorf("reference curve has no production")
	}
	fractions := make([]float64, len(values))
	floats.ScaleTo(fractions, 1/total, values)
	return &Curve{times: times, fractions: fractions}, nil
}

// DefaultCurve returns a synthetic curve for year: a bell around solar noon
// whose width and height follow the season. Used when no measured reference
// year is available.
func DefaultCurve(year int) *Curve {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, model.HoursPerYear)
	for h := range values {
		day := h / 24
		hour := float64(h % 24)
		// 0 at the winter solstice, 1 at the summer solstice
		season := (1 - math.Cos(2*math.Pi*float64(day-172+183)/365)) / 2
		width := 2.5 + 1.5*season
		dist := hour - 12.5
		v := (0.35 + 0.65*season) * math.Exp(-dist*dist/(2*width*width))
		if v < 0.01 {
			v = 0
		}
		values[h] = v
	}
	c, _ := CurveFromValues(start, values)
	return c
}

// Len returns the number of hours of the curve.
func (c *Curve) Len() int {
	return len(c.fractions)
}

// TimeRange returns the first and last hour covered by the curve.
func (c *Curve) TimeRange() model.TimeRange {
	return model.TimeRange{Start: c.times[0], End: c.times[len(c.times)-1]}
}

// Timestamp returns the timestamp of hour h.
func (c *Curve) Timestamp(h int) time.Time {
	return c.times[h]
}

// Fraction returns the share of annual yield produced during hour h.
func (c *Curve) Fraction(h int) float64 {
	return c.fractions[h]
}

// Specific returns the per-kWc hourly production for an annual specific
// yield (kWh/kWc/year).
func (c *Curve) Specific(yield float64) Profile {
	out := make(Profile, len(c.fractions))
	floats.ScaleTo(out, yield, c.fractions)
	return out
}

// Monthly sums a profile aligned with this curve by calendar month.
func (c *Curve) Monthly(p Profile) ([12]float64, error) {
	var months [12]float64
	if len(p) != len(c.fractions) {
		return months, fmt.Errorf("%w: profile has %d hours, curve %d", ErrShapeMismatch, len(p), len(c.fractions))
	}
	for h, v := range p {
		months[c.times[h].Month()-1] += v
	}
	return months, nil
}
