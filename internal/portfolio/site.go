package portfolio

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pv_potential/internal/solar"
)

// AllocationRow is one line of a site allocation table. LCOE is the value
// the plant was ranked by.
type AllocationRow struct {
	ID             string  `json:"id"`
	AllocatedPower float64 `json:"allocated_power_kwc"`
	LCOE           float64 `json:"lcoe"`
	WeightedYield  float64 `json:"weighted_yield"`
	Capex          float64 `json:"capex"`
}

// SiteResult is the state of a site for one allocation.
type SiteResult struct {
	ID              string
	Policy          string
	RequestedPower  float64
	MaxPower        float64
	WeightedYield   float64
	AllocatedPower  float64
	TotalProduction float64
	// Plants and Table are in allocation order.
	Plants  []PlantResult
	Table   []AllocationRow
	Profile solar.Profile
}

// Site is the top-level aggregation of plants.
type Site struct {
	id            string
	plants        []*Plant
	policy        Policy
	log           zerolog.Logger
	maxPower      float64
	weightedYield float64

	mu      sync.RWMutex
	current *SiteResult
}

// NewSite builds a site. A nil policy selects StaleLCOE.
func NewSite(id string, plants []*Plant, policy Policy, log zerolog.Logger) (*Site, error) {
	if len(plants) == 0 {
		return nil, fmt.Errorf("site %s: no plants", id)
	}
	if policy == nil {
		policy = StaleLCOE{}
	}
	s := &Site{
		id:     id,
		plants: append([]*Plant(nil), plants...),
		policy: policy,
		log:    log.With().Str("component", "site").Str("site", id).Logger(),
	}
	var yieldPower float64
	for _, p := range s.plants {
		s.maxPower += p.MaxPower()
		yieldPower += p.WeightedYield() * p.MaxPower()
	}
	if s.maxPower > 0 {
		s.weightedYield = yieldPower / s.maxPower
	}
	return s, nil
}

func (s *Site) ID() string             { return s.id }
func (s *Site) MaxPower() float64      { return s.maxPower }
func (s *Site) WeightedYield() float64 { return s.weightedYield }
func (s *Site) Policy() Policy         { return s.policy }

// Plants returns the site's plants in insertion order.
func (s *Site) Plants() []*Plant {
	return append([]*Plant(nil), s.plants...)
}

// Plant looks a plant up by id.
func (s *Site) Plant(id string) (*Plant, bool) {
	for _, p := range s.plants {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Current returns the last recorded allocation.
func (s *Site) Current() (SiteResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return SiteResult{}, false
	}
	return *s.current, true
}

// Allocate splits power across plants with the site's policy, then allocates
// every plant that received a share. Plants are never modified, so repeated
// calls rank plants identically and leave no residual state.
func (s *Site) Allocate(power float64) (SiteResult, error) {
	if err := validatePower(power); err != nil {
		return SiteResult{}, fmt.Errorf("site %s: %w", s.id, err)
	}
	return s.allocate(power, math.Min(power, s.maxPower))
}

// AllocateMax allocates the site's full capacity.
func (s *Site) AllocateMax() (SiteResult, error) {
	return s.allocate(s.maxPower, s.maxPower)
}

// Update allocates power and records the result as the current state.
func (s *Site) Update(power float64) error {
	res, err := s.Allocate(power)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = &res
	s.mu.Unlock()
	return nil
}

func (s *Site) allocate(requested, power float64) (SiteResult, error) {
	shares, err := s.policy.Plan(s.plants, power)
	if err != nil {
		return SiteResult{}, fmt.Errorf("site %s: %w", s.id, err)
	}

	// Shares are fixed, so plants are independent from here on.
	results := make([]PlantResult, len(shares))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, share := range shares {
		if share.Power <= 0 {
			results[i] = share.Plant.idle()
			continue
		}
		i, share := i, share
		g.Go(func() error {
			res, err := share.Plant.Allocate(share.Power)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SiteResult{}, fmt.Errorf("site %s: %w", s.id, err)
	}

	res := SiteResult{
		ID:             s.id,
		Policy:         s.policy.Name(),
		RequestedPower: requested,
		MaxPower:       s.maxPower,
		WeightedYield:  s.weightedYield,
		Plants:         results,
		Table:          make([]AllocationRow, len(results)),
	}
	profiles := make([]solar.Profile, len(results))
	for i, pr := range results {
		res.AllocatedPower += pr.AllocatedPower
		res.TotalProduction += pr.TotalProduction
		profiles[i] = pr.Profile
		res.Table[i] = AllocationRow{
			ID:             pr.ID,
			AllocatedPower: pr.AllocatedPower,
			LCOE:           shares[i].RankLCOE,
			WeightedYield:  pr.WeightedYield,
			Capex:          pr.Capex,
		}
	}
	res.Profile, err = solar.Sum(profiles...)
	if err != nil {
		return SiteResult{}, fmt.Errorf("site %s: %w", s.id, err)
	}

	s.log.Debug().
		Str("policy", res.Policy).
		Float64("requested_kwc", requested).
		Float64("allocated_kwc", res.AllocatedPower).
		Float64("production_kwh", res.TotalProduction).
		Msg("site allocated")
	return res, nil
}
