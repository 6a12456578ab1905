package economics

import (
	"fmt"
	"slices"
	"strings"

	"pv_potential/internal/config"
	"pv_potential/internal/model"
)

// PlantConfig is the installation-type-specific record that selects a CAPEX
// coefficient set. Exactly one implementation exists per installation type.
type PlantConfig interface {
	InstallationType() model.InstallationType
	// CapexKey is the key of the coefficient set in the parameter file.
	CapexKey() string
	Validate() error
}

type CanopyStructure string

const (
	SinglePost CanopyStructure = "single_post"
	DoublePost CanopyStructure = "double_post"
)

type GroundComplexity string

const (
	GroundStandard GroundComplexity = "standard"
	GroundComplex  GroundComplexity = "complex"
)

type FlatRoofMounting string

const (
	Ballasted FlatRoofMounting = "ballasted"
	Anchored  FlatRoofMounting = "anchored"
)

type PitchedRoofMounting string

const (
	Superimposed PitchedRoofMounting = "superimposed"
	Integrated   PitchedRoofMounting = "integrated"
)

type Tracking string

const (
	FixedTilt  Tracking = "fixed"
	SingleAxis Tracking = "single_axis"
)

// CanopyConfig configures a parking canopy plant.
type CanopyConfig struct {
	Structure CanopyStructure
	Ground    GroundComplexity
}

func (CanopyConfig) InstallationType() model.InstallationType { return model.InstallationCanopy }
func (c CanopyConfig) CapexKey() string                        { return string(c.Structure) + "/" + string(c.Ground) }

func (c CanopyConfig) Validate() error {
	switch c.Structure {
	case SinglePost, DoublePost:
	default:
		return fmt.Errorf("%w: canopy structure %q", config.ErrConfig, c.Structure)
	}
	return validateGround(c.Ground)
}

// FlatRoofConfig configures a flat roof plant.
type FlatRoofConfig struct {
	Mounting FlatRoofMounting
}

func (FlatRoofConfig) InstallationType() model.InstallationType { return model.InstallationFlatRoof }
func (c FlatRoofConfig) CapexKey() string                        { return string(c.Mounting) }

func (c FlatRoofConfig) Validate() error {
	switch c.Mounting {
	case Ballasted, Anchored:
		return nil
	}
	return fmt.Errorf("%w: flat roof mounting %q", config.ErrConfig, c.Mounting)
}

// PitchedRoofConfig configures a pitched roof plant.
type PitchedRoofConfig struct {
	Mounting PitchedRoofMounting
}

func (PitchedRoofConfig) InstallationType() model.InstallationType {
	return model.InstallationPitchedRoof
}
func (c PitchedRoofConfig) CapexKey() string { return string(c.Mounting) }

func (c PitchedRoofConfig) Validate() error {
	switch c.Mounting {
	case Superimposed, Integrated:
		return nil
	}
	return fmt.Errorf("%w: pitched roof mounting %q", config.ErrConfig, c.Mounting)
}

// GroundConfig configures a ground-mounted plant.
type GroundConfig struct {
	Tracking Tracking
	Ground   GroundComplexity
}

func (GroundConfig) InstallationType() model.InstallationType { return model.InstallationGround }
func (c GroundConfig) CapexKey() string                        { return string(c.Tracking) + "/" + string(c.Ground) }

func (c GroundConfig) Validate() error {
	switch c.Tracking {
	case FixedTilt, SingleAxis:
	default:
		return fmt.Errorf("%w: ground tracking %q", config.ErrConfig, c.Tracking)
	}
	return validateGround(c.Ground)
}

func validateGround(g GroundComplexity) error {
	switch g {
	case GroundStandard, GroundComplex:
		return nil
	}
	return fmt.Errorf("%w: ground complexity %q", config.ErrConfig, g)
}

var plantConfigKeys = map[model.InstallationType][]string{
	model.InstallationCanopy:      {"structure", "ground"},
	model.InstallationFlatRoof:    {"mounting"},
	model.InstallationPitchedRoof: {"mounting"},
	model.InstallationGround:      {"tracking", "ground"},
}

// ParsePlantConfig builds the typed record of an installation type from the
// free-form keys of a portfolio file. Missing keys take the first listed
// value of their enumeration; unknown keys are rejected.
func ParsePlantConfig(it model.InstallationType, keys map[string]string) (PlantConfig, error) {
	allowed, ok := plantConfigKeys[it]
	if !ok {
		return nil, fmt.Errorf("%w: no plant configuration for installation type %q", config.ErrConfig, it)
	}
	for key := range keys {
		if !slices.Contains(allowed, key) {
			return nil, fmt.Errorf("%w: unknown %s config key %q (allowed: %s)",
				config.ErrConfig, it, key, strings.Join(allowed, ", "))
		}
	}

	get := func(key, def string) string {
		if v, ok := keys[key]; ok && v != "" {
			return v
		}
		return def
	}

	var cfg PlantConfig
	switch it {
	case model.InstallationCanopy:
		cfg = CanopyConfig{
			Structure: CanopyStructure(get("structure", string(SinglePost))),
			Ground:    GroundComplexity(get("ground", string(GroundStandard))),
		}
	case model.InstallationFlatRoof:
		cfg = FlatRoofConfig{Mounting: FlatRoofMounting(get("mounting", string(Ballasted)))}
	case model.InstallationPitchedRoof:
		cfg = PitchedRoofConfig{Mounting: PitchedRoofMounting(get("mounting", string(Superimposed)))}
	case model.InstallationGround:
		cfg = GroundConfig{
			Tracking: Tracking(get("tracking", string(FixedTilt))),
			Ground:   GroundComplexity(get("ground", string(GroundStandard))),
		}
	default:
		return nil, fmt.Errorf("%w: no plant configuration for installation type %q", config.ErrConfig, it)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
