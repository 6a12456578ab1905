package portfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pv_potential/internal/config"
	"pv_potential/internal/economics"
	"pv_potential/internal/model"
	"pv_potential/internal/solar"
)

var (
	testCurve  = solar.DefaultCurve(2023)
	zerologNop = zerolog.Nop()
)

func threeBands(s1, i1, s2, i2, s3, i3 float64) []config.OpexBand {
	return []config.OpexBand{{Slope: s1, Intercept: i1}, {Slope: s2, Intercept: i2}, {Slope: s3, Intercept: i3}}
}

func testParams() *config.Params {
	return &config.Params{
		LossFactors: map[model.Tilt]map[model.Orientation]float64{
			10: {"south": 0.95, "east": 0.88},
			30: {"south": 1.0},
		},
		PowerDensity: map[model.InstallationType]float64{
			model.InstallationCanopy:   0.12,
			model.InstallationFlatRoof: 1.0,
			model.InstallationGround:   0.08,
		},
		Capex: map[model.InstallationType]config.CapexParams{
			model.InstallationCanopy: {ThresholdKWc: 700, Coefficients: map[string]config.CapexCoefficients{
				"single_post/standard": {A: 1600, B: -700, C: 150, D: 1.2, K: 950},
			}},
			model.InstallationFlatRoof: {ThresholdKWc: 700, Coefficients: map[string]config.CapexCoefficients{
				"ballasted": {A: 1300, B: -550, C: 120, D: 1.3, K: 760},
			}},
			model.InstallationGround: {ThresholdKWc: 700, AboveThresholdOffset: -20, Coefficients: map[string]config.CapexCoefficients{
				"fixed/standard": {A: 1100, B: -450, C: 300, D: 1.0, K: 640},
			}},
		},
		Opex: map[model.InstallationType]config.OpexParams{
			model.InstallationCanopy:   {BreakpointsKWc: []float64{200, 500}, Bands: threeBands(15, 500, 12, 1100, 10, 2100)},
			model.InstallationFlatRoof: {BreakpointsKWc: []float64{100, 500}, Bands: threeBands(14, 400, 11, 700, 9, 1700)},
			model.InstallationGround:   {BreakpointsKWc: []float64{500, 2000}, Bands: threeBands(12, 1500, 10, 2500, 8, 6500)},
		},
		LCOE: config.LCOEParams{DepreciationFactor: 20, ProductionFactor: 19},
	}
}

var (
	canopyConfig   = economics.CanopyConfig{Structure: economics.SinglePost, Ground: economics.GroundStandard}
	flatRoofConfig = economics.FlatRoofConfig{Mounting: economics.Ballasted}
	groundConfig   = economics.GroundConfig{Tracking: economics.FixedTilt, Ground: economics.GroundStandard}
)

// rawUnit builds a unit without loss correction, so its corrected yield is
// the raw yield.
func rawUnit(t *testing.T, id string, it model.InstallationType, surface, yield float64) *Unit {
	t.Helper()
	u, err := NewUnit(UnitAttributes{ID: id, SurfaceM2: surface, RawYield: yield}, it, testParams(), testCurve)
	require.NoError(t, err)
	return u
}

// orderingPlant has flat-roof units (1 kWc/m²) with yields 900, 1000, 1200
// and max powers 27, 1, 12.
func orderingPlant(t *testing.T) *Plant {
	t.Helper()
	units := []*Unit{
		rawUnit(t, "low", model.InstallationFlatRoof, 27, 900),
		rawUnit(t, "mid", model.InstallationFlatRoof, 1, 1000),
		rawUnit(t, "high", model.InstallationFlatRoof, 12, 1200),
	}
	p, err := NewPlant("roof", flatRoofConfig, units, testParams())
	require.NoError(t, err)
	return p
}

func testSite(t *testing.T, policy Policy) *Site {
	t.Helper()
	params := testParams()

	canopy, err := NewPlant("canopy", canopyConfig, []*Unit{
		rawUnit(t, "c1", model.InstallationCanopy, 3000, 1000),
		rawUnit(t, "c2", model.InstallationCanopy, 1000, 950),
	}, params)
	require.NoError(t, err)

	roof := orderingPlant(t)

	ground, err := NewPlant("field", groundConfig, []*Unit{
		rawUnit(t, "f1", model.InstallationGround, 10000, 1200),
	}, params)
	require.NoError(t, err)

	s, err := NewSite("site", []*Plant{canopy, roof, ground}, policy, zerologNop)
	require.NoError(t, err)
	return s
}
