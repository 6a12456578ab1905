package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_potential/internal/model"
)

const minimalParams = `
loss_factors:
  10: {south: 0.95, east: 0.88}
power_density:
  canopy: 0.12
capex:
  canopy:
    coefficients:
      single_post/standard: {a: 1600, b: -700, c: 150, d: 1.2, k: 950}
opex:
  canopy:
    breakpoints_kwc: [200, 500]
    bands:
      - {slope: 15, intercept: 500}
      - {slope: 12, intercept: 1100}
      - {slope: 10, intercept: 2100}
lcoe:
  depreciation_factor: 20
  production_factor: 19
`

func TestParseParams(t *testing.T) {
	p, err := ParseParams(strings.NewReader(minimalParams))
	require.NoError(t, err)

	f, err := p.LossFactor(10, "south")
	require.NoError(t, err)
	assert.InDelta(t, 0.95, f, 1e-12)

	ratio, err := p.PowerDensityFor(model.InstallationCanopy)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, ratio, 1e-12)

	c, err := p.CapexFor(model.InstallationCanopy)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapexThresholdKWc, c.ThresholdKWc, "threshold defaults to 700 kWc")
	coef, err := c.Lookup("single_post/standard")
	require.NoError(t, err)
	assert.Equal(t, 950.0, coef.K)
}

func TestParams_MissingEntries(t *testing.T) {
	p, err := ParseParams(strings.NewReader(minimalParams))
	require.NoError(t, err)

	_, err = p.LossFactor(30, "south")
	assert.ErrorIs(t, err, ErrConfig)
	_, err = p.LossFactor(10, "north")
	assert.ErrorIs(t, err, ErrConfig)
	_, err = p.PowerDensityFor(model.InstallationGround)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = p.CapexFor(model.InstallationGround)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = p.OpexFor(model.InstallationFlatRoof)
	assert.ErrorIs(t, err, ErrConfig)

	c, _ := p.CapexFor(model.InstallationCanopy)
	_, err = c.Lookup("double_post/complex")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseParams_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
	}{
		{"loss factor above one", [2]string{"south: 0.95", "south: 1.2"}},
		{"zero density", [2]string{"canopy: 0.12", "canopy: 0"}},
		{"band count", [2]string{"      - {slope: 10, intercept: 2100}\n", ""}},
		{"unsorted breakpoints", [2]string{"[200, 500]", "[500, 200]"}},
		{"zero production factor", [2]string{"production_factor: 19", "production_factor: 0"}},
		{"unknown field", [2]string{"lcoe:", "lcoe:\n  discount: 0.05"}},
		{"NaN capex coefficient", [2]string{"a: 1600", "a: .nan"}},
		{"infinite capex tail", [2]string{"k: 950", "k: .inf"}},
		{"infinite capex offset", [2]string{"    coefficients:", "    above_threshold_offset: -.inf\n    coefficients:"}},
		{"negative capex threshold", [2]string{"    coefficients:", "    threshold_kwc: -5\n    coefficients:"}},
		{"NaN opex slope", [2]string{"slope: 12", "slope: .nan"}},
		{"infinite opex intercept", [2]string{"intercept: 500", "intercept: .inf"}},
		{"infinite breakpoint", [2]string{"[200, 500]", "[200, .inf]"}},
		{"infinite production factor", [2]string{"production_factor: 19", "production_factor: .inf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(minimalParams, tt.replace[0], tt.replace[1], 1)
			_, err := ParseParams(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestParams_ValidateRejectsNaN(t *testing.T) {
	p, err := ParseParams(strings.NewReader(minimalParams))
	require.NoError(t, err)

	c := p.Capex[model.InstallationCanopy]
	coef := c.Coefficients["single_post/standard"]
	coef.A = math.NaN()
	c.Coefficients["single_post/standard"] = coef
	assert.ErrorIs(t, p.Validate(), ErrConfig)
}

func TestLoadParams_RepositoryDefaults(t *testing.T) {
	p, err := LoadParams(filepath.Join("..", "..", "configs", "params.yaml"))
	require.NoError(t, err)
	for it := range model.InstallationCatalog {
		_, err := p.PowerDensityFor(it)
		assert.NoError(t, err, string(it))
		_, err = p.CapexFor(it)
		assert.NoError(t, err, string(it))
		_, err = p.OpexFor(it)
		assert.NoError(t, err, string(it))
	}
	ground, _ := p.CapexFor(model.InstallationGround)
	assert.Equal(t, DefaultCapexThresholdKWc, ground.ThresholdKWc)
}

func TestLoadParams_MissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
