package portfolio

import (
	"fmt"
	"math"
	"sort"
)

// Share is one plant's place in a site allocation.
type Share struct {
	Plant *Plant
	Power float64
	// RankLCOE is the LCOE the plant was ranked by.
	RankLCOE float64
}

// Policy decides in which order plants are filled and how much each gets.
// Plan returns one share per plant, in allocation order, with shares summing
// to power.
type Policy interface {
	Name() string
	Plan(plants []*Plant, power float64) ([]Share, error)
}

// powerTolerance absorbs float residue left by subtracting shares from a
// budget, in kWc.
const powerTolerance = 1e-9

const (
	PolicyStaleLCOE    = "stale-lcoe"
	PolicyMarginalLCOE = "marginal-lcoe"
)

// PolicyByName resolves a policy from its name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PolicyStaleLCOE:
		return StaleLCOE{}, nil
	case PolicyMarginalLCOE:
		return MarginalLCOE{}, nil
	}
	return nil, fmt.Errorf("%w: unknown allocation policy %q", ErrInvalidInput, name)
}

// StaleLCOE ranks plants once by their current LCOE and fills them in a
// single pass. The ranking is not refreshed after a plant receives a share
// smaller than the one its current LCOE was estimated at.
type StaleLCOE struct{}

func (StaleLCOE) Name() string { return PolicyStaleLCOE }

func (StaleLCOE) Plan(plants []*Plant, power float64) ([]Share, error) {
	ranked, err := rankByCurrentLCOE(plants)
	if err != nil {
		return nil, err
	}
	remaining := power
	for i := range ranked {
		if remaining <= powerTolerance {
			break
		}
		ranked[i].Power = math.Min(ranked[i].Plant.MaxPower(), remaining)
		remaining -= ranked[i].Power
	}
	return ranked, nil
}

// MarginalLCOE re-estimates every remaining plant at the share it would
// receive and fills the cheapest first, repeating until the budget is spent.
// Plants left without power follow, ranked by their current LCOE.
type MarginalLCOE struct{}

func (MarginalLCOE) Name() string { return PolicyMarginalLCOE }

func (MarginalLCOE) Plan(plants []*Plant, power float64) ([]Share, error) {
	ranked, err := rankByCurrentLCOE(plants)
	if err != nil {
		return nil, err
	}

	candidates := make([]*Plant, len(plants))
	copy(candidates, plants)

	var shares []Share
	remaining := power
	for remaining > powerTolerance && len(candidates) > 0 {
		best, bestLCOE, bestPower := -1, math.Inf(1), 0.0
		for i, p := range candidates {
			share := math.Min(p.MaxPower(), remaining)
			res, err := p.Allocate(share)
			if err != nil {
				return nil, err
			}
			if res.LCOE < bestLCOE {
				best, bestLCOE, bestPower = i, res.LCOE, share
			}
		}
		shares = append(shares, Share{Plant: candidates[best], Power: bestPower, RankLCOE: bestLCOE})
		candidates = append(candidates[:best], candidates[best+1:]...)
		remaining -= bestPower
	}

	for _, s := range ranked {
		if !containsPlant(candidates, s.Plant) {
			continue
		}
		shares = append(shares, s)
	}
	return shares, nil
}

func rankByCurrentLCOE(plants []*Plant) ([]Share, error) {
	ranked := make([]Share, len(plants))
	for i, p := range plants {
		lcoe, ok := p.LCOE()
		if !ok {
			return nil, fmt.Errorf("plant %s: %w", p.ID(), ErrMissingLCOE)
		}
		ranked[i] = Share{Plant: p, RankLCOE: lcoe}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankLCOE < ranked[j].RankLCOE
	})
	return ranked, nil
}

func containsPlant(plants []*Plant, p *Plant) bool {
	for _, c := range plants {
		if c == p {
			return true
		}
	}
	return false
}
