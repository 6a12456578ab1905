package portfolio

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"pv_potential/internal/config"
	"pv_potential/internal/economics"
	"pv_potential/internal/model"
	"pv_potential/internal/solar"
)

// PlantResult is the state of a plant for one allocation.
type PlantResult struct {
	ID              string
	Type            model.InstallationType
	MaxPower        float64
	WeightedYield   float64
	AllocatedPower  float64
	TotalProduction float64
	Capex           float64
	Opex            float64
	LCOE            float64
	// Idle marks a plant that received no power from its site; its cost
	// figures are left at zero.
	Idle bool
	// Units are in allocation order (descending corrected yield).
	Units   []UnitResult
	Profile solar.Profile
}

// ProductionProfile rebuilds the hourly profile from the unit results and
// returns it with its total.
func (r PlantResult) ProductionProfile() (solar.Profile, float64, error) {
	parts := make([]solar.Profile, len(r.Units))
	weights := make([]float64, len(r.Units))
	for i, u := range r.Units {
		parts[i] = u.SpecificProfile
		weights[i] = u.AllocatedPower
	}
	p, err := solar.Aggregate(parts, weights)
	if err != nil {
		return nil, 0, fmt.Errorf("plant %s: %w", r.ID, err)
	}
	return p, p.Sum(), nil
}

// Plant aggregates units of one installation type and owns their economic
// model. Allocate is pure; Update records an allocation as the plant's
// current state, which is what a Site ranks plants by.
type Plant struct {
	id            string
	cfg           economics.PlantConfig
	units         []*Unit
	econ          economics.EconomicModel
	lcoeParams    config.LCOEParams
	maxPower      float64
	weightedYield float64

	mu      sync.RWMutex
	current *PlantResult
}

// NewPlant builds a plant and performs its default allocation at full
// capacity. A plant whose units can produce nothing fails with
// economics.ErrZeroProduction.
func NewPlant(id string, cfg economics.PlantConfig, units []*Unit, params *config.Params) (*Plant, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("plant %s: %w: no units", id, config.ErrConfig)
	}
	econ, err := economics.NewModel(params, cfg)
	if err != nil {
		return nil, fmt.Errorf("plant %s: %w", id, err)
	}

	p := &Plant{
		id:         id,
		cfg:        cfg,
		units:      append([]*Unit(nil), units...),
		econ:       econ,
		lcoeParams: params.LCOE,
	}

	var yieldPower float64
	for _, u := range p.units {
		if u.InstallationType() != cfg.InstallationType() {
			return nil, fmt.Errorf("plant %s: %w: unit %s is %s, plant is %s",
				id, config.ErrConfig, u.ID(), u.InstallationType(), cfg.InstallationType())
		}
		p.maxPower += u.MaxPower()
		yieldPower += u.CorrectedYield() * u.MaxPower()
	}
	if p.maxPower > 0 {
		p.weightedYield = yieldPower / p.maxPower
	}

	if err := p.UpdateMax(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plant) ID() string                               { return p.id }
func (p *Plant) Config() economics.PlantConfig            { return p.cfg }
func (p *Plant) InstallationType() model.InstallationType { return p.cfg.InstallationType() }
func (p *Plant) MaxPower() float64                        { return p.maxPower }
func (p *Plant) WeightedYield() float64                   { return p.weightedYield }

// Units returns the plant's units in insertion order.
func (p *Plant) Units() []*Unit {
	return append([]*Unit(nil), p.units...)
}

// Current returns the last recorded allocation.
func (p *Plant) Current() (PlantResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return PlantResult{}, false
	}
	return *p.current, true
}

// LCOE returns the LCOE of the last recorded allocation.
func (p *Plant) LCOE() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return 0, false
	}
	return p.current.LCOE, true
}

// Allocate fills units in descending corrected yield, ties in insertion
// order, then estimates CAPEX, OPEX and LCOE. Power above MaxPower is clipped.
func (p *Plant) Allocate(power float64) (PlantResult, error) {
	if err := validatePower(power); err != nil {
		return PlantResult{}, fmt.Errorf("plant %s: %w", p.id, err)
	}
	return p.allocate(math.Min(power, p.maxPower))
}

// AllocateMax allocates the plant's full capacity.
func (p *Plant) AllocateMax() (PlantResult, error) {
	return p.allocate(p.maxPower)
}

// Update allocates power and records the result as the current state.
func (p *Plant) Update(power float64) error {
	res, err := p.Allocate(power)
	if err != nil {
		return err
	}
	p.record(res)
	return nil
}

// UpdateMax records a full-capacity allocation as the current state.
func (p *Plant) UpdateMax() error {
	res, err := p.AllocateMax()
	if err != nil {
		return err
	}
	p.record(res)
	return nil
}

func (p *Plant) record(res PlantResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &res
}

func (p *Plant) allocate(power float64) (PlantResult, error) {
	ordered := append([]*Unit(nil), p.units...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CorrectedYield() > ordered[j].CorrectedYield()
	})

	res := PlantResult{
		ID:             p.id,
		Type:           p.cfg.InstallationType(),
		MaxPower:       p.maxPower,
		WeightedYield:  p.weightedYield,
		AllocatedPower: power,
		Units:          make([]UnitResult, len(ordered)),
	}

	remaining := power
	for i, u := range ordered {
		share := math.Min(u.MaxPower(), remaining)
		ur, err := u.ComputeProduction(share)
		if err != nil {
			return PlantResult{}, fmt.Errorf("plant %s: %w", p.id, err)
		}
		res.Units[i] = ur
		res.TotalProduction += ur.AnnualProduction
		remaining -= share
	}

	profile, _, err := res.ProductionProfile()
	if err != nil {
		return PlantResult{}, err
	}
	res.Profile = profile

	est, err := economics.Evaluate(p.econ, p.lcoeParams, power, res.TotalProduction)
	if err != nil {
		return PlantResult{}, fmt.Errorf("plant %s at %.3f kWc: %w", p.id, power, err)
	}
	res.Capex, res.Opex, res.LCOE = est.Capex, est.Opex, est.LCOE
	return res, nil
}

// idle is the result reported for a plant left out of a site allocation.
func (p *Plant) idle() PlantResult {
	res := PlantResult{
		ID:            p.id,
		Type:          p.cfg.InstallationType(),
		MaxPower:      p.maxPower,
		WeightedYield: p.weightedYield,
		Idle:          true,
		Units:         make([]UnitResult, len(p.units)),
		Profile:       solar.NewProfile(),
	}
	for i, u := range p.units {
		res.Units[i] = u.result(0)
	}
	return res
}
