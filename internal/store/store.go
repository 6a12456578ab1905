package store

import (
	"sort"
	"sync"

	"pv_potential/internal/portfolio"
	"pv_potential/internal/study"
)

// SiteInfo describes a site whose scenarios are stored.
type SiteInfo struct {
	ID            string   `json:"id"`
	Policy        string   `json:"policy"`
	MaxPower      float64  `json:"max_power_kwc"`
	WeightedYield float64  `json:"weighted_yield"`
	Plants        []string `json:"plants"`
}

// Scenario is one evaluated power budget.
type Scenario struct {
	Power  float64
	Result portfolio.SiteResult
	// Study is nil when no sale price was given.
	Study *study.Result
}

// PowerRange is the span of requested powers stored for a site.
type PowerRange struct {
	Min float64
	Max float64
}

// Store holds evaluated scenarios in memory, indexed by site ID.
type Store struct {
	mu        sync.RWMutex
	scenarios map[string][]Scenario // keyed by site ID, sorted by power
}

func New() *Store {
	return &Store{scenarios: make(map[string][]Scenario)}
}

// Put stores a scenario for a site, replacing any scenario at the same power.
func (s *Store) Put(siteID string, sc Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.scenarios[siteID]
	idx := sort.Search(len(all), func(i int) bool { return all[i].Power >= sc.Power })
	if idx < len(all) && all[idx].Power == sc.Power {
		all[idx] = sc
		return
	}
	all = append(all, Scenario{})
	copy(all[idx+1:], all[idx:])
	all[idx] = sc
	s.scenarios[siteID] = all
}

// Get returns the scenario evaluated at exactly power.
func (s *Store) Get(siteID string, power float64) (Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.scenarios[siteID]
	idx := sort.Search(len(all), func(i int) bool { return all[i].Power >= power })
	if idx < len(all) && all[idx].Power == power {
		return all[idx], true
	}
	return Scenario{}, false
}

// ScenarioCount returns the number of scenarios stored for a site.
func (s *Store) ScenarioCount(siteID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenarios[siteID])
}

// PowerRange returns the lowest and highest power stored for a site.
func (s *Store) PowerRange(siteID string) (PowerRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.scenarios[siteID]
	if len(all) == 0 {
		return PowerRange{}, false
	}
	return PowerRange{Min: all[0].Power, Max: all[len(all)-1].Power}, true
}

// ScenariosInRange returns scenarios with power between lo (inclusive) and
// hi (exclusive), in ascending power.
func (s *Store) ScenariosInRange(siteID string, lo, hi float64) []Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.scenarios[siteID]
	if len(all) == 0 {
		return nil
	}

	startIdx := sort.Search(len(all), func(i int) bool { return all[i].Power >= lo })
	endIdx := sort.Search(len(all), func(i int) bool { return all[i].Power >= hi })
	if startIdx >= endIdx {
		return nil
	}

	result := make([]Scenario, endIdx-startIdx)
	copy(result, all[startIdx:endIdx])
	return result
}

// All returns every scenario of a site in ascending power.
func (s *Store) All(siteID string) []Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Scenario(nil), s.scenarios[siteID]...)
}

// Reset drops every scenario of a site.
func (s *Store) Reset(siteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scenarios, siteID)
}
