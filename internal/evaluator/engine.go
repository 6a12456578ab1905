// Package evaluator runs site allocations on demand, caches them in the
// scenario store and reports every outcome to a callback.
package evaluator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pv_potential/internal/portfolio"
	"pv_potential/internal/solar"
	"pv_potential/internal/store"
	"pv_potential/internal/study"
)

// Evaluation is the outcome of one power request.
type Evaluation struct {
	Power  float64
	Result portfolio.SiteResult
	// Study is nil when no sale price is set.
	Study  *study.Result
	Cached bool
}

// PlantUpdate reports a change of a plant's recorded allocation.
type PlantUpdate struct {
	Plant string
	Power float64
	LCOE  float64
}

// Callback receives evaluation events.
type Callback interface {
	OnEvaluation(ev Evaluation)
	OnPlantUpdate(u PlantUpdate)
	OnError(power float64, err error)
}

// Engine evaluates power budgets for one site.
type Engine struct {
	// mu guards the cache against plant and price changes; evaluations
	// share the read lock.
	mu        sync.RWMutex
	site      *portfolio.Site
	curve     *solar.Curve
	store     *store.Store
	callback  Callback
	salePrice float64
	log       zerolog.Logger
}

// New creates an engine caching its scenarios in s. cb may be nil.
func New(site *portfolio.Site, curve *solar.Curve, s *store.Store, cb Callback, log zerolog.Logger) *Engine {
	if cb == nil {
		cb = nopCallback{}
	}
	return &Engine{
		site:     site,
		curve:    curve,
		store:    s,
		callback: cb,
		log:      log.With().Str("component", "evaluator").Logger(),
	}
}

func (e *Engine) Site() *portfolio.Site { return e.site }
func (e *Engine) Curve() *solar.Curve   { return e.curve }
func (e *Engine) Store() *store.Store   { return e.store }

// Info describes the site for clients.
func (e *Engine) Info() store.SiteInfo {
	plants := e.site.Plants()
	ids := make([]string, len(plants))
	for i, p := range plants {
		ids[i] = p.ID()
	}
	return store.SiteInfo{
		ID:            e.site.ID(),
		Policy:        e.site.Policy().Name(),
		MaxPower:      e.site.MaxPower(),
		WeightedYield: e.site.WeightedYield(),
		Plants:        ids,
	}
}

// SetSalePrice sets the export price of the total-sale study. Zero disables
// the study. Cached scenarios are dropped.
func (e *Engine) SetSalePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w: sale price %v", portfolio.ErrInvalidInput, price)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.salePrice = price
	e.store.Reset(e.site.ID())
	return nil
}

func (e *Engine) SalePrice() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.salePrice
}

// Evaluate allocates power over the site, or returns the cached scenario.
func (e *Engine) Evaluate(power float64) (Evaluation, error) {
	e.mu.RLock()
	ev, err := e.evaluate(power)
	e.mu.RUnlock()

	if err != nil {
		e.log.Warn().Err(err).Float64("power_kwc", power).Msg("evaluation failed")
		e.callback.OnError(power, err)
		return Evaluation{}, err
	}
	e.callback.OnEvaluation(ev)
	return ev, nil
}

// Sweep evaluates every power concurrently and returns the evaluations in
// input order.
func (e *Engine) Sweep(ctx context.Context, powers []float64) ([]Evaluation, error) {
	out := make([]Evaluation, len(powers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range powers {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, err := e.Evaluate(p)
			if err != nil {
				return err
			}
			out[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.log.Info().Int("scenarios", len(powers)).Msg("sweep done")
	return out, nil
}

// evaluate must be called with mu held.
func (e *Engine) evaluate(power float64) (Evaluation, error) {
	id := e.site.ID()
	if sc, ok := e.store.Get(id, power); ok {
		return Evaluation{Power: power, Result: sc.Result, Study: sc.Study, Cached: true}, nil
	}

	res, err := e.site.Allocate(power)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Power: power, Result: res}
	if e.salePrice > 0 {
		st, err := study.TotalSale(res, e.curve, e.salePrice)
		if err != nil {
			return Evaluation{}, err
		}
		ev.Study = &st
	}
	e.store.Put(id, store.Scenario{Power: power, Result: res, Study: ev.Study})
	return ev, nil
}

// UpdatePlant records an allocation on one plant, which changes how the
// site ranks it.
func (e *Engine) UpdatePlant(id string, power float64) error {
	return e.updatePlant(id, power, func(p *portfolio.Plant) error { return p.Update(power) })
}

// ResetPlant restores a plant's full-capacity allocation.
func (e *Engine) ResetPlant(id string) error {
	return e.updatePlant(id, 0, (*portfolio.Plant).UpdateMax)
}

func (e *Engine) updatePlant(id string, power float64, update func(*portfolio.Plant) error) error {
	p, ok := e.site.Plant(id)
	if !ok {
		err := fmt.Errorf("%w: unknown plant %q", portfolio.ErrInvalidInput, id)
		e.callback.OnError(power, err)
		return err
	}

	e.mu.Lock()
	err := update(p)
	if err == nil {
		e.store.Reset(e.site.ID())
	}
	e.mu.Unlock()

	if err != nil {
		e.callback.OnError(power, err)
		return err
	}

	cur, _ := p.Current()
	e.log.Info().Str("plant", id).Float64("power_kwc", cur.AllocatedPower).Float64("lcoe", cur.LCOE).Msg("plant updated")
	e.callback.OnPlantUpdate(PlantUpdate{Plant: id, Power: cur.AllocatedPower, LCOE: cur.LCOE})
	return nil
}

type nopCallback struct{}

func (nopCallback) OnEvaluation(Evaluation)  {}
func (nopCallback) OnPlantUpdate(PlantUpdate) {}
func (nopCallback) OnError(float64, error)   {}
