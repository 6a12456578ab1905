package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"pv_potential/internal/ingest"
	"pv_potential/internal/logging"
	"pv_potential/internal/portfolio"
	"pv_potential/internal/report"
	"pv_potential/internal/solar"
	"pv_potential/internal/study"
)

func main() {
	paramsPath := flag.String("params", "configs/params.yaml", "parameter file (loss matrix, densities, cost curves)")
	portfolioPath := flag.String("portfolio", "configs/portfolio.yaml", "site/plant/unit description")
	curvePath := flag.String("curve", "", "reference production curve CSV (default: synthetic curve)")
	year := flag.Int("year", 2023, "calendar year of the synthetic curve")
	power := flag.Float64("power", -1, "power budget in kWc (negative: full site capacity)")
	policyName := flag.String("policy", portfolio.PolicyStaleLCOE, "plant ordering policy: stale-lcoe or marginal-lcoe")
	salePrice := flag.Float64("sale-price", 0, "export price per kWh for the total-sale study (0: no study)")
	format := flag.String("format", "table", "output format: table or json")
	hourlyCSV := flag.String("hourly-csv", "", "write the hourly site and plant profiles to this CSV file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logPretty := flag.Bool("log-pretty", true, "human-readable log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *logPretty})
	logging.SetGlobalLogger(logger)

	if *format != "table" && *format != "json" {
		log.Fatal().Str("format", *format).Msg("Unknown output format")
	}

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
	log.Info().
		Str("site", site.ID()).
		Int("plants", len(site.Plants())).
		Float64("max_power_kwc", site.MaxPower()).
		Msg("Site loaded")

	var res portfolio.SiteResult
	if *power < 0 {
		res, err = site.AllocateMax()
	} else {
		res, err = site.Allocate(*power)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Allocation failed")
	}

	var st *study.Result
	if *salePrice > 0 {
		r, err := study.TotalSale(res, curve, *salePrice)
		if err != nil {
			log.Fatal().Err(err).Msg("Study failed")
		}
		st = &r
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.Summarize(res, st)); err != nil {
			log.Fatal().Err(err).Msg("Encoding result")
		}
	default:
		report.WriteAllocation(os.Stdout, res, curve)
		if st != nil {
			report.WriteStudy(os.Stdout, *st)
		}
	}

	if *hourlyCSV != "" {
		if err := writeHourly(*hourlyCSV, curve, res); err != nil {
			log.Fatal().Err(err).Msg("Writing hourly CSV")
		}
		log.Info().Str("path", *hourlyCSV).Msg("Hourly profiles written")
	}
}

func writeHourly(path string, curve *solar.Curve, res portfolio.SiteResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteHourlyCSV(f, curve, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
