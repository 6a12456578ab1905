package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_potential/internal/model"
)

func TestNewProfile(t *testing.T) {
	p := NewProfile()
	assert.Len(t, p, model.HoursPerYear)
	assert.Zero(t, p.Sum())
}

func TestAggregate_WeightedSum(t *testing.T) {
	a := Profile{1, 2, 3}
	b := Profile{0, 1, 0}

	out, err := Aggregate([]Profile{a, b}, []float64{2, 10})
	require.NoError(t, err)

	assert.Equal(t, Profile{2, 14, 6}, out)
	assert.Equal(t, Profile{1, 2, 3}, a, "inputs are not modified")
}

func TestAggregate_ShapeMismatch(t *testing.T) {
	_, err := Aggregate([]Profile{{1, 2, 3}, {1, 2}}, []float64{1, 1})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Sum(NewProfile(), make(Profile, model.HoursPerYear-1))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAggregate_WeightCount(t *testing.T) {
	_, err := Aggregate([]Profile{{1}}, nil)
	assert.Error(t, err)
}

func TestAggregate_Empty(t *testing.T) {
	out, err := Aggregate(nil, nil)
	require.NoError(t, err)
	assert.Len(t, out, model.HoursPerYear)
}

func TestProfile_ScaledAndPeak(t *testing.T) {
	p := Profile{1, 4, 2}
	s := p.Scaled(0.5)
	assert.Equal(t, Profile{0.5, 2, 1}, s)
	assert.Equal(t, Profile{1, 4, 2}, p)

	h, v := p.Peak()
	assert.Equal(t, 1, h)
	assert.Equal(t, 4.0, v)

	h, _ = Profile{}.Peak()
	assert.Equal(t, -1, h)
}
