package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortfolio(t *testing.T) {
	doc := `
site: s1
plants:
  - id: p1
    type: canopy
    config: {structure: single_post, ground: standard}
    units:
      - {id: u1, surface_m2: 3000, orientation: south, tilt: 10, yield_kwh_kwc: 1000}
      - {id: u2, surface_m2: 100, orientation: east, tilt: 10, yield_kwh_kwc: 900, correct_losses: false}
`
	p, err := ParsePortfolio(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "s1", p.Site)
	require.Len(t, p.Plants, 1)
	plant := p.Plants[0]
	assert.Equal(t, "single_post", plant.Config["structure"])
	require.Len(t, plant.Units, 2)
	assert.True(t, plant.Units[0].LossCorrection(), "correction defaults to enabled")
	assert.False(t, plant.Units[1].LossCorrection())
	assert.Equal(t, 10, plant.Units[0].Tilt)
}

func TestParsePortfolio_Invalid(t *testing.T) {
	tests := map[string]string{
		"no site":         "plants: [{id: p, type: canopy, units: [{id: u}]}]",
		"no plants":       "site: s",
		"no units":        "site: s\nplants: [{id: p, type: canopy}]",
		"duplicate plant": "site: s\nplants: [{id: p, units: [{id: u}]}, {id: p, units: [{id: u}]}]",
		"duplicate unit":  "site: s\nplants: [{id: p, units: [{id: u}, {id: u}]}]",
		"negative area":   "site: s\nplants: [{id: p, units: [{id: u, surface_m2: -1}]}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePortfolio(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestLoadPortfolio_RepositoryExample(t *testing.T) {
	p, err := LoadPortfolio(filepath.Join("..", "..", "configs", "portfolio.yaml"))
	require.NoError(t, err)
	assert.Len(t, p.Plants, 4)
}
