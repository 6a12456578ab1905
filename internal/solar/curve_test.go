package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_potential/internal/model"
)

func makeYear(year int, value func(h int) float64) []model.Reading {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	var readings []model.Reading
	for ts, h := start, 0; ts.Before(end); ts, h = ts.Add(time.Hour), h+1 {
		readings = append(readings, model.Reading{Timestamp: ts, Value: value(h), Unit: "kWh"})
	}
	return readings
}

func TestNewCurve_Normalises(t *testing.T) {
	readings := makeYear(2023, func(h int) float64 {
		if h%24 == 12 {
			return 4
		}
		return 0
	})

	c, err := NewCurve(readings)
	require.NoError(t, err)

	assert.Equal(t, model.HoursPerYear, c.Len())
	total := 0.0
	for h := 0; h < c.Len(); h++ {
		total += c.Fraction(h)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.InDelta(t, 1.0/365, c.Fraction(12), 1e-12)
	assert.Zero(t, c.Fraction(0))
}

func TestNewCurve_SortsAndClampsNegatives(t *testing.T) {
	readings := makeYear(2023, func(h int) float64 {
		if h == 0 {
			return -5
		}
		return 1
	})
	// reverse order
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}

	c, err := NewCurve(readings)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), c.Timestamp(0))
	assert.Zero(t, c.Fraction(0))
	assert.InDelta(t, 1.0/float64(model.HoursPerYear-1), c.Fraction(1), 1e-15)
}

func TestNewCurve_LeapYearDropsFebruary29(t *testing.T) {
	readings := makeYear(2024, func(int) float64 { return 1 })
	require.Len(t, readings, model.HoursPerYear+24)

	c, err := NewCurve(readings)
	require.NoError(t, err)
	assert.Equal(t, model.HoursPerYear, c.Len())
	assert.Equal(t, time.March, c.Timestamp(59*24).Month())

	months, err := c.Monthly(c.Specific(model.HoursPerYear))
	require.NoError(t, err)
	assert.InDelta(t, 28*24, months[1], 1e-9)
}

func TestNewCurve_WrongLength(t *testing.T) {
	readings := makeYear(2023, func(int) float64 { return 1 })
	_, err := NewCurve(readings[:100])
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewCurve_RejectsDuplicateTimestamps(t *testing.T) {
	readings := makeYear(2023, func(int) float64 { return 1 })
	// a local clock repeats one hour when leaving summer time
	readings[7200].Timestamp = readings[7199].Timestamp
	require.Len(t, readings, model.HoursPerYear)

	_, err := NewCurve(readings)
	assert.ErrorContains(t, err, "two readings")
}

func TestNewCurve_NoProduction(t *testing.T) {
	_, err := NewCurve(makeYear(2023, func(int) float64 { return 0 }))
	assert.Error(t, err)
}

func TestCurve_Specific(t *testing.T) {
	c := DefaultCurve(2023)
	p := c.Specific(950)
	assert.Len(t, p, model.HoursPerYear)
	assert.InDelta(t, 950, p.Sum(), 1e-6)
}

func TestDefaultCurve_Shape(t *testing.T) {
	c := DefaultCurve(2023)
	require.Equal(t, model.HoursPerYear, c.Len())

	// midnight is dark, noon is not
	assert.Zero(t, c.Fraction(0))
	assert.Greater(t, c.Fraction(12), 0.0)

	// summer produces more than winter
	months, err := c.Monthly(c.Specific(1000))
	require.NoError(t, err)
	assert.Greater(t, months[5], months[11])

	tr := c.TimeRange()
	assert.Equal(t, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), tr.End)
}

func TestCurve_MonthlyShapeMismatch(t *testing.T) {
	_, err := DefaultCurve(2023).Monthly(Profile{1, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
