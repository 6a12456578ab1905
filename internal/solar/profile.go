// Package solar holds the reference production curve and the fixed-length
// hourly profiles aggregated at every level of a portfolio.
package solar

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"pv_potential/internal/model"
)

// ErrShapeMismatch is returned when hourly series of different lengths meet.
var ErrShapeMismatch = errors.New("hourly profile shape mismatch")

// Profile is an ordered series of hourly energy values (kWh) over one year.
type Profile []float64

// NewProfile returns a zero profile covering one year.
func NewProfile() Profile {
	return make(Profile, model.HoursPerYear)
}

// Sum returns the total energy of the profile.
func (p Profile) Sum() float64 {
	return floats.Sum(p)
}

// Scaled returns a copy of p multiplied by w.
func (p Profile) Scaled(w float64) Profile {
	out := make(Profile, len(p))
	floats.ScaleTo(out, w, p)
	return out
}

// Peak returns the hour index and value of the highest bucket.
func (p Profile) Peak() (int, float64) {
	if len(p) == 0 {
		return -1, 0
	}
	i := floats.MaxIdx(p)
	return i, p[i]
}

// Aggregate returns Σ weights[i] × parts[i], elementwise. Parts are reduced in
// slice order so the result does not depend on how they were produced. With
// no parts it returns a zero profile.
func Aggregate(parts []Profile, weights []float64) (Profile, error) {
	if len(parts) != len(weights) {
		return nil, fmt.Errorf("%d profiles for %d weights", len(parts), len(weights))
	}
	if len(parts) == 0 {
		return NewProfile(), nil
	}

	n := len(parts[0])
	for i, part := range parts {
		if len(part) != n {
			return nil, fmt.Errorf("%w: profile %d has %d hours, want %d", ErrShapeMismatch, i, len(part), n)
		}
	}

	out := make(Profile, n)
	for i, part := range parts {
		floats.AddScaled(out, weights[i], part)
	}
	return out, nil
}

// Sum adds profiles with unit weights.
func Sum(parts ...Profile) (Profile, error) {
	weights := make([]float64, len(parts))
	for i := range weights {
		weights[i] = 1
	}
	return Aggregate(parts, weights)
}
