// Package portfolio allocates a power budget over a Site → Plant → Unit
// hierarchy and aggregates production and costs at every level.
package portfolio

import (
	"fmt"
	"math"

	"pv_potential/internal/config"
	"pv_potential/internal/model"
	"pv_potential/internal/solar"
)

// UnitAttributes are the static attributes of an installation unit.
type UnitAttributes struct {
	ID          string
	SurfaceM2   float64
	Orientation model.Orientation
	Tilt        model.Tilt
	// RawYield is the uncorrected specific yield in kWh/kWc/year.
	RawYield float64
	// LossCorrection applies the tilt/orientation loss matrix to RawYield.
	LossCorrection bool
}

// Unit is one physically homogeneous PV area. It is immutable; every power
// request returns a new UnitResult.
type Unit struct {
	attrs          UnitAttributes
	itype          model.InstallationType
	maxPower       float64
	correctedYield float64
	// specific is the per-kWc hourly production, shared read-only by results.
	specific solar.Profile
}

// UnitResult is the state of a unit for one allocation.
type UnitResult struct {
	ID               string
	MaxPower         float64
	AllocatedPower   float64
	Utilization      float64
	CorrectedYield   float64
	AnnualProduction float64
	// SpecificProfile is the per-kWc hourly production. Read-only.
	SpecificProfile solar.Profile
}

// Profile returns the unit's hourly production for its allocated power.
func (r UnitResult) Profile() solar.Profile {
	return r.SpecificProfile.Scaled(r.AllocatedPower)
}

// NewUnit derives max power and corrected yield from the parameter set.
func NewUnit(attrs UnitAttributes, it model.InstallationType, params *config.Params, curve *solar.Curve) (*Unit, error) {
	if curve == nil {
		return nil, fmt.Errorf("unit %s: no reference curve", attrs.ID)
	}
	if !finiteNonNegative(attrs.SurfaceM2) {
		return nil, fmt.Errorf("unit %s: %w: surface %v m²", attrs.ID, ErrInvalidInput, attrs.SurfaceM2)
	}
	if !finiteNonNegative(attrs.RawYield) {
		return nil, fmt.Errorf("unit %s: %w: yield %v kWh/kWc", attrs.ID, ErrInvalidInput, attrs.RawYield)
	}

	density, err := params.PowerDensityFor(it)
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", attrs.ID, err)
	}

	corrected := attrs.RawYield
	if attrs.LossCorrection {
		factor, err := params.LossFactor(attrs.Tilt, attrs.Orientation)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", attrs.ID, err)
		}
		corrected *= factor
	}

	return &Unit{
		attrs:          attrs,
		itype:          it,
		maxPower:       attrs.SurfaceM2 * density,
		correctedYield: corrected,
		specific:       curve.Specific(corrected),
	}, nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (u *Unit) ID() string                               { return u.attrs.ID }
func (u *Unit) Attributes() UnitAttributes               { return u.attrs }
func (u *Unit) InstallationType() model.InstallationType { return u.itype }

// MaxPower is surface × power density, in kWc.
func (u *Unit) MaxPower() float64 { return u.maxPower }

// CorrectedYield is the loss-corrected specific yield in kWh/kWc/year.
func (u *Unit) CorrectedYield() float64 { return u.correctedYield }

// ComputeProduction allocates power to the unit, clipped to [0, MaxPower].
func (u *Unit) ComputeProduction(power float64) (UnitResult, error) {
	if err := validatePower(power); err != nil {
		return UnitResult{}, fmt.Errorf("unit %s: %w", u.attrs.ID, err)
	}
	return u.result(math.Min(power, u.maxPower)), nil
}

// ComputeMax allocates the unit's full capacity.
func (u *Unit) ComputeMax() UnitResult {
	return u.result(u.maxPower)
}

func (u *Unit) result(power float64) UnitResult {
	utilization := 0.0
	if u.maxPower > 0 {
		utilization = power / u.maxPower
	}
	return UnitResult{
		ID:               u.attrs.ID,
		MaxPower:         u.maxPower,
		AllocatedPower:   power,
		Utilization:      utilization,
		CorrectedYield:   u.correctedYield,
		AnnualProduction: power * u.correctedYield,
		SpecificProfile:  u.specific,
	}
}
