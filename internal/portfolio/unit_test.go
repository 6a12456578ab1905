package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_potential/internal/config"
	"pv_potential/internal/model"
)

func TestUnit_CanopyScenario(t *testing.T) {
	u, err := NewUnit(UnitAttributes{
		ID:             "peigne-1",
		SurfaceM2:      3000,
		Orientation:    "south",
		Tilt:           10,
		RawYield:       1000,
		LossCorrection: true,
	}, model.InstallationCanopy, testParams(), testCurve)
	require.NoError(t, err)

	assert.InDelta(t, 3000*0.12, u.MaxPower(), 1e-9)
	assert.InDelta(t, 950, u.CorrectedYield(), 1e-9)

	r, err := u.ComputeProduction(100)
	require.NoError(t, err)
	assert.InDelta(t, 100, r.AllocatedPower, 1e-9)
	assert.InDelta(t, 100*950, r.AnnualProduction, 1e-6)
	assert.InDelta(t, 100/360.0, r.Utilization, 1e-9)

	r, err = u.ComputeProduction(1e6)
	require.NoError(t, err)
	assert.InDelta(t, 360, r.AllocatedPower, 1e-9, "clipped to max power")
	assert.InDelta(t, 360*950, r.AnnualProduction, 1e-6)
	assert.InDelta(t, 1, r.Utilization, 1e-12)
}

func TestUnit_WithoutLossCorrection(t *testing.T) {
	// no loss factor exists for this orientation, and none is needed
	u, err := NewUnit(UnitAttributes{ID: "u", SurfaceM2: 10, Orientation: "north", Tilt: 45, RawYield: 1000},
		model.InstallationCanopy, testParams(), testCurve)
	require.NoError(t, err)
	assert.InDelta(t, 1000, u.CorrectedYield(), 1e-12)
}

func TestUnit_MissingParameters(t *testing.T) {
	attrs := UnitAttributes{ID: "u", SurfaceM2: 10, Orientation: "north", Tilt: 45, RawYield: 1000, LossCorrection: true}
	_, err := NewUnit(attrs, model.InstallationCanopy, testParams(), testCurve)
	assert.ErrorIs(t, err, config.ErrConfig)

	attrs.LossCorrection = false
	_, err = NewUnit(attrs, model.InstallationPitchedRoof, testParams(), testCurve)
	assert.ErrorIs(t, err, config.ErrConfig)

	_, err = NewUnit(attrs, model.InstallationCanopy, testParams(), nil)
	assert.Error(t, err)
}

func TestUnit_InvalidAttributes(t *testing.T) {
	for _, attrs := range []UnitAttributes{
		{ID: "neg-surface", SurfaceM2: -1, RawYield: 1000},
		{ID: "nan-yield", SurfaceM2: 1, RawYield: math.NaN()},
		{ID: "inf-surface", SurfaceM2: math.Inf(1), RawYield: 1000},
	} {
		_, err := NewUnit(attrs, model.InstallationCanopy, testParams(), testCurve)
		assert.ErrorIs(t, err, ErrInvalidInput, attrs.ID)
	}
}

func TestUnit_RejectsInvalidPower(t *testing.T) {
	u := rawUnit(t, "u", model.InstallationCanopy, 100, 1000)
	for _, p := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := u.ComputeProduction(p)
		assert.ErrorIs(t, err, ErrInvalidInput, "power %v", p)
	}
}

func TestUnit_AllocationBounds(t *testing.T) {
	u := rawUnit(t, "u", model.InstallationCanopy, 100, 1000)
	for _, p := range []float64{0, 0.5, 6, 12, 12.0001, 1e9} {
		r, err := u.ComputeProduction(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.AllocatedPower, 0.0)
		assert.LessOrEqual(t, r.AllocatedPower, u.MaxPower())
	}
}

func TestUnit_ProfileSumsToProduction(t *testing.T) {
	u := rawUnit(t, "u", model.InstallationCanopy, 100, 1000)
	r, err := u.ComputeProduction(7)
	require.NoError(t, err)

	p := r.Profile()
	assert.Len(t, p, model.HoursPerYear)
	assert.InEpsilon(t, r.AnnualProduction, p.Sum(), 1e-9)
	for _, v := range p {
		require.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 1000, r.SpecificProfile.Sum(), 1e-6, "specific profile is per kWc")
}

func TestUnit_Idempotent(t *testing.T) {
	u := rawUnit(t, "u", model.InstallationCanopy, 100, 1000)
	a, err := u.ComputeProduction(5)
	require.NoError(t, err)
	b, err := u.ComputeProduction(5)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.Equal(t, u.ComputeMax().AllocatedPower, u.MaxPower())
}

func TestUnit_ZeroSurface(t *testing.T) {
	u := rawUnit(t, "u", model.InstallationCanopy, 0, 1000)
	r := u.ComputeMax()
	assert.Zero(t, r.AllocatedPower)
	assert.Zero(t, r.Utilization, "no NaN utilization on empty units")
}
