package ingest

import (
	"fmt"
	"os"

	"pv_potential/internal/solar"
)

// LoadCurve reads a reference curve CSV. An empty path returns the synthetic
// curve for year.
func LoadCurve(path string, year int) (*solar.Curve, error) {
	if path == "" {
		return solar.DefaultCurve(year), nil
	}
	return loadCurve(path, NewCurveParser("kWh"))
}

func loadCurve(path string, p Parser) (*solar.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	readings, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	c, err := solar.NewCurve(readings)
	if err != nil {
		return nil, fmt.Errorf("reference curve %s: %w", path, err)
	}
	return c, nil
}
