// Package economics estimates construction cost, operating cost and the
// levelized cost of energy of a plant.
package economics

import (
	"errors"
	"fmt"
	"math"

	"pv_potential/internal/config"
	"pv_potential/internal/model"
)

// ErrZeroProduction is returned when an LCOE would divide by zero production.
var ErrZeroProduction = errors.New("zero production")

// EconomicModel is the cost model of one installation type.
type EconomicModel interface {
	// Capex returns the construction cost per kWc at the given plant power.
	Capex(powerKWc float64) float64
	// Opex returns the yearly operating cost at the given plant power.
	Opex(powerKWc float64) float64
}

// Estimate holds the three economic figures of one allocation.
type Estimate struct {
	Capex float64
	Opex  float64
	LCOE  float64
}

// Evaluate computes CAPEX, OPEX then LCOE for a plant allocation.
func Evaluate(m EconomicModel, lp config.LCOEParams, powerKWc, productionKWh float64) (Estimate, error) {
	est := Estimate{
		Capex: m.Capex(powerKWc),
		Opex:  m.Opex(powerKWc),
	}
	lcoe, err := LCOE(lp, est.Capex, est.Opex, productionKWh)
	if err != nil {
		return est, err
	}
	est.LCOE = lcoe
	return est, nil
}

// LCOE = (capex × 1000 + depreciation × opex) / (productionFactor × production / 1000)
func LCOE(lp config.LCOEParams, capex, opex, productionKWh float64) (float64, error) {
	if !(productionKWh > 0) || math.IsInf(productionKWh, 0) {
		return 0, fmt.Errorf("%w: cannot levelize cost over %v kWh", ErrZeroProduction, productionKWh)
	}
	lcoe := (capex*1000 + lp.DepreciationFactor*opex) / (lp.ProductionFactor * productionKWh / 1000)
	if math.IsNaN(lcoe) || math.IsInf(lcoe, 0) {
		return 0, fmt.Errorf("%w: cost of %v kWh is not finite", ErrZeroProduction, productionKWh)
	}
	return lcoe, nil
}

// NewModel returns the economic model for a plant configuration. The
// configuration is validated and its coefficient set resolved here, so a
// missing entry fails before any allocation runs.
func NewModel(params *config.Params, cfg PlantConfig) (EconomicModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	curves, err := newCurves(params, cfg.InstallationType(), cfg.CapexKey())
	if err != nil {
		return nil, err
	}

	switch c := cfg.(type) {
	case CanopyConfig:
		return &CanopyModel{curves: curves, Config: c}, nil
	case FlatRoofConfig:
		return &FlatRoofModel{curves: curves, Config: c}, nil
	case PitchedRoofConfig:
		return &PitchedRoofModel{curves: curves, Config: c}, nil
	case GroundConfig:
		return &GroundModel{curves: curves, Config: c}, nil
	}
	return nil, fmt.Errorf("%w: no economic model for %T", config.ErrConfig, cfg)
}

// curves holds the resolved CAPEX and OPEX curves shared by the logistic
// installation types.
type curves struct {
	capex logisticCapex
	opex  bandedOpex
}

func newCurves(params *config.Params, it model.InstallationType, key string) (curves, error) {
	cp, err := params.CapexFor(it)
	if err != nil {
		return curves{}, err
	}
	coef, err := cp.Lookup(key)
	if err != nil {
		return curves{}, fmt.Errorf("%s: %w", it, err)
	}
	op, err := params.OpexFor(it)
	if err != nil {
		return curves{}, err
	}
	return curves{
		capex: logisticCapex{coef: coef, threshold: cp.ThresholdKWc, offset: cp.AboveThresholdOffset},
		opex:  bandedOpex{breakpoints: op.BreakpointsKWc, bands: op.Bands},
	}, nil
}

func (c curves) Capex(powerKWc float64) float64 { return c.capex.at(powerKWc) }
func (c curves) Opex(powerKWc float64) float64  { return c.opex.at(powerKWc) }

// logisticCapex is a + b / (1 + (p/c)^(-d)) up to the threshold, k + offset above.
type logisticCapex struct {
	coef      config.CapexCoefficients
	threshold float64
	offset    float64
}

func (l logisticCapex) at(p float64) float64 {
	if p > l.threshold {
		return l.coef.K + l.offset
	}
	return l.coef.A + l.coef.B/(1+math.Pow(p/l.coef.C, -l.coef.D))
}

// bandedOpex is piecewise linear; a power equal to a breakpoint belongs to
// the lower band.
type bandedOpex struct {
	breakpoints []float64
	bands       []config.OpexBand
}

func (b bandedOpex) at(p float64) float64 {
	i := 0
	for i < len(b.breakpoints) && p > b.breakpoints[i] {
		i++
	}
	band := b.bands[i]
	return band.Slope*p + band.Intercept
}

// CanopyModel prices parking canopies; coefficients depend on the structure
// and the ground complexity.
type CanopyModel struct {
	curves
	Config CanopyConfig
}

// FlatRoofModel prices flat roof plants by mounting system.
type FlatRoofModel struct {
	curves
	Config FlatRoofConfig
}

// PitchedRoofModel prices pitched roof plants by mounting system.
type PitchedRoofModel struct {
	curves
	Config PitchedRoofConfig
}

// GroundModel prices ground-mounted plants by tracking and ground complexity.
type GroundModel struct {
	curves
	Config GroundConfig
}
