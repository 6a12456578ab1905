package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"pv_potential/internal/evaluator"
	"pv_potential/internal/ingest"
	"pv_potential/internal/logging"
	"pv_potential/internal/portfolio"
	"pv_potential/internal/store"
	"pv_potential/internal/ws"
)

func main() {
	paramsPath := flag.String("params", "configs/params.yaml", "parameter file (loss matrix, densities, cost curves)")
	portfolioPath := flag.String("portfolio", "configs/portfolio.yaml", "site/plant/unit description")
	curvePath := flag.String("curve", "", "reference production curve CSV (default: synthetic curve)")
	year := flag.Int("year", 2023, "calendar year of the synthetic curve")
	policyName := flag.String("policy", portfolio.PolicyStaleLCOE, "plant ordering policy: stale-lcoe or marginal-lcoe")
	salePrice := flag.Float64("sale-price", 0, "initial export price per kWh (0: no study)")
	frontendDir := flag.String("frontend-dir", "", "directory containing a frontend build to serve at /")
	addr := flag.String("addr", ":8080", "listen address")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logPretty := flag.Bool("log-pretty", false, "human-readable log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *logPretty})
	logging.SetGlobalLogger(logger)

	policy, err := portfolio.PolicyByName(*policyName)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid policy")
	}

	curve, err := ingest.LoadCurve(*curvePath, *year)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load reference curve")
	}
	tr := curve.TimeRange()
	log.Info().
		Str("start", tr.Start.Format("2006-01-02")).
		Str("end", tr.End.Format("2006-01-02")).
		Msg("Reference curve loaded")

	site, err := portfolio.LoadSite(*paramsPath, *portfolioPath, curve, policy, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build site")
	}

	// Set up WebSocket hub and evaluator
	hub := ws.NewHub(logger)
	bridge := ws.NewBridge(hub, logger)
	engine := evaluator.New(site, curve, store.New(), bridge, logger)
	if err := engine.SetSalePrice(*salePrice); err != nil {
		log.Fatal().Err(err).Msg("Invalid sale price")
	}

	handler := ws.NewHandler(hub, engine, logger)

	router := newRouter(handler, *frontendDir)
	accessLog := logger.With().Str("component", "http").Logger()

	log.Info().
		Str("addr", *addr).
		Str("site", site.ID()).
		Float64("max_power_kwc", site.MaxPower()).
		Msg("Starting server")
	if err := http.ListenAndServe(*addr, handlers.LoggingHandler(accessLog, router)); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func newRouter(wsHandler http.Handler, frontendDir string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")
	r.Handle("/ws", wsHandler)

	// Serve frontend static files
	if _, err := os.Stat(frontendDir); frontendDir != "" && err == nil {
		log.Info().Str("dir", frontendDir).Msg("Serving frontend")
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(frontendDir)))
	}
	return r
}
