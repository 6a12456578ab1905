package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"pv_potential/internal/evaluator"
	"pv_potential/internal/ingest"
	"pv_potential/internal/logging"
	"pv_potential/internal/portfolio"
	"pv_potential/internal/report"
	"pv_potential/internal/store"
)

func main() {
	paramsPath := flag.String("params", "configs/params.yaml", "parameter file (loss matrix, densities, cost curves)")
	portfolioPath := flag.String("portfolio", "configs/portfolio.yaml", "site/plant/unit description")
	curvePath := flag.String("curve", "", "reference production curve CSV (default: synthetic curve)")
	year := flag.Int("year", 2023, "calendar year of the synthetic curve")
	policyName := flag.String("policy", portfolio.PolicyStaleLCOE, "plant ordering policy: stale-lcoe or marginal-lcoe")
	powersFlag := flag.String("powers", "", "comma-separated power budgets in kWc (default: 10 steps up to site capacity)")
	steps := flag.Int("steps", 10, "number of evenly spaced budgets when -powers is empty")
	salePrice := flag.Float64("sale-price", 0, "export price per kWh for the total-sale study (0: no study)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: true})
	logging.SetGlobalLogger(logger)

	policy, err := portfolio.PolicyByName(*policyName)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid policy")
	}

	curve, err := ingest.LoadCurve(*curvePath, *year)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load reference curve")
	}

	site, err := portfolio.LoadSite(*paramsPath, *portfolioPath, curve, policy, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build site")
	}

	var powers []float64
	if *powersFlag != "" {
		powers, err = parsePowers(*powersFlag)
		if err != nil {
			log.Fatal().Err(err).Str("powers", *powersFlag).Msg("Invalid powers")
		}
	} else {
		powers, err = evenSteps(site.MaxPower(), *steps)
		if err != nil {
			log.Fatal().Err(err).Int("steps", *steps).Msg("Invalid steps")
		}
	}
	sort.Float64s(powers)

	scenarios := store.New()
	engine := evaluator.New(site, curve, scenarios, nil, logger)
	if err := engine.SetSalePrice(*salePrice); err != nil {
		log.Fatal().Err(err).Msg("Invalid sale price")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := engine.Sweep(ctx, powers); err != nil {
		log.Fatal().Err(err).Msg("Sweep failed")
	}

	report.WriteSweep(os.Stdout, site.ID(), scenarios.All(site.ID()))
}

func parsePowers(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	powers := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("power must not be negative, got %v", v)
		}
		powers = append(powers, v)
	}
	if len(powers) == 0 {
		return nil, fmt.Errorf("no powers specified")
	}
	return powers, nil
}

// evenSteps returns n budgets evenly spaced up to and including max.
func evenSteps(max float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("steps must be positive, got %d", n)
	}
	powers := make([]float64, n)
	for i := range powers {
		powers[i] = max * float64(i+1) / float64(n)
	}
	return powers, nil
}
