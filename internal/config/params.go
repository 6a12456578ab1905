// Package config loads the parameter and portfolio files consumed by the
// estimator. Everything it returns is read-only once loaded.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"pv_potential/internal/model"
)

// ErrConfig is returned when a required parameter is absent or malformed.
var ErrConfig = errors.New("configuration error")

// DefaultCapexThresholdKWc is the power above which the logistic CAPEX curve
// is replaced by its flat tail.
const DefaultCapexThresholdKWc = 700.0

// CapexCoefficients is one logistic CAPEX coefficient set.
type CapexCoefficients struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
	K float64 `yaml:"k"`
}

// CapexParams holds the CAPEX curve parameters of one installation type.
type CapexParams struct {
	ThresholdKWc         float64                      `yaml:"threshold_kwc"`
	AboveThresholdOffset float64                      `yaml:"above_threshold_offset"`
	Coefficients         map[string]CapexCoefficients `yaml:"coefficients"`
}

// Lookup returns the coefficient set for a configuration key.
func (c CapexParams) Lookup(key string) (CapexCoefficients, error) {
	coef, ok := c.Coefficients[key]
	if !ok {
		return CapexCoefficients{}, fmt.Errorf("%w: no CAPEX coefficients for %q", ErrConfig, key)
	}
	return coef, nil
}

// OpexBand is one linear segment of the OPEX curve.
type OpexBand struct {
	Slope     float64 `yaml:"slope"`
	Intercept float64 `yaml:"intercept"`
}

// OpexParams describes a piecewise-linear OPEX curve. Bands[i] applies up to
// and including BreakpointsKWc[i]; the last band applies above the last
// breakpoint.
type OpexParams struct {
	BreakpointsKWc []float64  `yaml:"breakpoints_kwc"`
	Bands          []OpexBand `yaml:"bands"`
}

// LCOEParams holds the normalisation constants of the LCOE formula.
type LCOEParams struct {
	DepreciationFactor float64 `yaml:"depreciation_factor"`
	ProductionFactor   float64 `yaml:"production_factor"`
}

// Params is the full parameter set of a run.
type Params struct {
	// LossFactors is indexed by tilt then orientation.
	LossFactors  map[model.Tilt]map[model.Orientation]float64 `yaml:"loss_factors"`
	PowerDensity map[model.InstallationType]float64           `yaml:"power_density"`
	Capex        map[model.InstallationType]CapexParams       `yaml:"capex"`
	Opex         map[model.InstallationType]OpexParams        `yaml:"opex"`
	LCOE         LCOEParams                                   `yaml:"lcoe"`
}

// LoadParams reads and validates a YAML parameter file.
func LoadParams(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening params %s: %w", path, err)
	}
	defer f.Close()

	p, err := ParseParams(f)
	if err != nil {
		return nil, fmt.Errorf("params %s: %w", path, err)
	}
	return p, nil
}

// ParseParams decodes and validates a YAML parameter document.
func ParseParams(r io.Reader) (*Params, error) {
	var p Params
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding YAML: %v", ErrConfig, err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Params) applyDefaults() {
	for it, c := range p.Capex {
		if c.ThresholdKWc == 0 {
			c.ThresholdKWc = DefaultCapexThresholdKWc
			p.Capex[it] = c
		}
	}
}

// Validate checks ranges and shapes. Missing per-type entries are not checked
// here; they surface when a plant of that type is built.
func (p *Params) Validate() error {
	for tilt, row := range p.LossFactors {
		for orientation, f := range row {
			if !(f > 0 && f <= 1) {
				return fmt.Errorf("%w: loss factor [%d][%s] = %v outside (0,1]", ErrConfig, tilt, orientation, f)
			}
		}
	}
	for it, ratio := range p.PowerDensity {
		if !(ratio > 0) || math.IsInf(ratio, 0) {
			return fmt.Errorf("%w: power density for %s must be positive, got %v", ErrConfig, it, ratio)
		}
	}
	for it, c := range p.Capex {
		if len(c.Coefficients) == 0 {
			return fmt.Errorf("%w: capex for %s has no coefficient sets", ErrConfig, it)
		}
		if !(c.ThresholdKWc > 0) || !finite(c.ThresholdKWc, c.AboveThresholdOffset) {
			return fmt.Errorf("%w: capex for %s: threshold and offset must be finite, threshold positive", ErrConfig, it)
		}
		for key, coef := range c.Coefficients {
			if !finite(coef.A, coef.B, coef.C, coef.D, coef.K) {
				return fmt.Errorf("%w: capex %s/%s: coefficients must be finite", ErrConfig, it, key)
			}
			if coef.C <= 0 {
				return fmt.Errorf("%w: capex %s/%s: c must be positive", ErrConfig, it, key)
			}
		}
	}
	for it, o := range p.Opex {
		if len(o.Bands) != len(o.BreakpointsKWc)+1 {
			return fmt.Errorf("%w: opex for %s needs %d bands for %d breakpoints, got %d",
				ErrConfig, it, len(o.BreakpointsKWc)+1, len(o.BreakpointsKWc), len(o.Bands))
		}
		if !finite(o.BreakpointsKWc...) {
			return fmt.Errorf("%w: opex breakpoints for %s must be finite", ErrConfig, it)
		}
		for i, b := range o.Bands {
			if !finite(b.Slope, b.Intercept) {
				return fmt.Errorf("%w: opex band %d for %s must be finite", ErrConfig, i, it)
			}
		}
		if !sort.Float64sAreSorted(o.BreakpointsKWc) {
			return fmt.Errorf("%w: opex breakpoints for %s must be ascending", ErrConfig, it)
		}
	}
	if !(p.LCOE.DepreciationFactor > 0) || !(p.LCOE.ProductionFactor > 0) ||
		!finite(p.LCOE.DepreciationFactor, p.LCOE.ProductionFactor) {
		return fmt.Errorf("%w: lcoe depreciation and production factors must be positive", ErrConfig)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LossFactor returns the loss-correction factor for a tilt/orientation pair.
func (p *Params) LossFactor(tilt model.Tilt, orientation model.Orientation) (float64, error) {
	row, ok := p.LossFactors[tilt]
	if !ok {
		return 0, fmt.Errorf("%w: no loss factors for tilt %d", ErrConfig, tilt)
	}
	f, ok := row[orientation]
	if !ok {
		return 0, fmt.Errorf("%w: no loss factor for tilt %d, orientation %q", ErrConfig, tilt, orientation)
	}
	return f, nil
}

// PowerDensityFor returns the kWc per m² ratio of an installation type.
func (p *Params) PowerDensityFor(it model.InstallationType) (float64, error) {
	ratio, ok := p.PowerDensity[it]
	if !ok {
		return 0, fmt.Errorf("%w: no power density for %s", ErrConfig, it)
	}
	return ratio, nil
}

// CapexFor returns the CAPEX curve parameters of an installation type.
func (p *Params) CapexFor(it model.InstallationType) (CapexParams, error) {
	c, ok := p.Capex[it]
	if !ok {
		return CapexParams{}, fmt.Errorf("%w: no capex parameters for %s", ErrConfig, it)
	}
	return c, nil
}

// OpexFor returns the OPEX curve parameters of an installation type.
func (p *Params) OpexFor(it model.InstallationType) (OpexParams, error) {
	o, ok := p.Opex[it]
	if !ok {
		return OpexParams{}, fmt.Errorf("%w: no opex parameters for %s", ErrConfig, it)
	}
	return o, nil
}
