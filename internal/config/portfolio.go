package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// UnitSpec describes one installation unit as written in a portfolio file.
type UnitSpec struct {
	ID            string  `yaml:"id"`
	SurfaceM2     float64 `yaml:"surface_m2"`
	Orientation   string  `yaml:"orientation"`
	Tilt          int     `yaml:"tilt"`
	YieldKWhKWc   float64 `yaml:"yield_kwh_kwc"`
	CorrectLosses *bool   `yaml:"correct_losses"`
}

// LossCorrection reports whether the loss matrix applies. Defaults to true.
func (u UnitSpec) LossCorrection() bool {
	return u.CorrectLosses == nil || *u.CorrectLosses
}

// PlantSpec describes one plant. Config holds the installation-type-specific
// keys (structure, ground, mounting, tracking); they are turned into a typed
// record when the plant is built.
type PlantSpec struct {
	ID     string            `yaml:"id"`
	Type   string            `yaml:"type"`
	Config map[string]string `yaml:"config"`
	Units  []UnitSpec        `yaml:"units"`
}

// Portfolio is the site hierarchy of a run.
type Portfolio struct {
	Site   string      `yaml:"site"`
	Plants []PlantSpec `yaml:"plants"`
}

// LoadPortfolio reads and validates a YAML portfolio file.
func LoadPortfolio(path string) (*Portfolio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening portfolio %s: %w", path, err)
	}
	defer f.Close()

	p, err := ParsePortfolio(f)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", path, err)
	}
	return p, nil
}

// ParsePortfolio decodes and validates a YAML portfolio document.
func ParsePortfolio(r io.Reader) (*Portfolio, error) {
	var p Portfolio
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding YAML: %v", ErrConfig, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks identities and static unit attributes.
func (p *Portfolio) Validate() error {
	if p.Site == "" {
		return fmt.Errorf("%w: portfolio has no site id", ErrConfig)
	}
	if len(p.Plants) == 0 {
		return fmt.Errorf("%w: site %s has no plants", ErrConfig, p.Site)
	}
	plantIDs := make(map[string]bool, len(p.Plants))
	for _, plant := range p.Plants {
		if plant.ID == "" {
			return fmt.Errorf("%w: plant without id in site %s", ErrConfig, p.Site)
		}
		if plantIDs[plant.ID] {
			return fmt.Errorf("%w: duplicate plant id %q", ErrConfig, plant.ID)
		}
		plantIDs[plant.ID] = true

		if len(plant.Units) == 0 {
			return fmt.Errorf("%w: plant %s has no units", ErrConfig, plant.ID)
		}
		unitIDs := make(map[string]bool, len(plant.Units))
		for _, u := range plant.Units {
			if unitIDs[u.ID] {
				return fmt.Errorf("%w: duplicate unit id %q in plant %s", ErrConfig, u.ID, plant.ID)
			}
			unitIDs[u.ID] = true
			if u.SurfaceM2 < 0 {
				return fmt.Errorf("%w: unit %s/%s has negative surface", ErrConfig, plant.ID, u.ID)
			}
			if u.YieldKWhKWc < 0 {
				return fmt.Errorf("%w: unit %s/%s has negative yield", ErrConfig, plant.ID, u.ID)
			}
		}
	}
	return nil
}
