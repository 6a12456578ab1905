package portfolio

import (
	"fmt"

	"github.com/rs/zerolog"

	"pv_potential/internal/config"
	"pv_potential/internal/economics"
	"pv_potential/internal/model"
	"pv_potential/internal/solar"
)

// Build turns a portfolio description into a site, resolving every unit and
// plant against the parameter set. Any missing parameter fails the whole
// build.
func Build(params *config.Params, curve *solar.Curve, desc *config.Portfolio, policy Policy, log zerolog.Logger) (*Site, error) {
	plants := make([]*Plant, 0, len(desc.Plants))
	for _, ps := range desc.Plants {
		p, err := BuildPlant(params, curve, ps)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", desc.Site, err)
		}
		plants = append(plants, p)
	}
	return NewSite(desc.Site, plants, policy, log)
}

// BuildPlant builds one plant and its units from a portfolio entry.
func BuildPlant(params *config.Params, curve *solar.Curve, ps config.PlantSpec) (*Plant, error) {
	it, err := model.ParseInstallationType(ps.Type)
	if err != nil {
		return nil, fmt.Errorf("plant %s: %w: %v", ps.ID, config.ErrConfig, err)
	}
	cfg, err := economics.ParsePlantConfig(it, ps.Config)
	if err != nil {
		return nil, fmt.Errorf("plant %s: %w", ps.ID, err)
	}

	units := make([]*Unit, 0, len(ps.Units))
	for _, us := range ps.Units {
		u, err := NewUnit(UnitAttributes{
			ID:             us.ID,
			SurfaceM2:      us.SurfaceM2,
			Orientation:    model.Orientation(us.Orientation),
			Tilt:           model.Tilt(us.Tilt),
			RawYield:       us.YieldKWhKWc,
			LossCorrection: us.LossCorrection(),
		}, it, params, curve)
		if err != nil {
			return nil, fmt.Errorf("plant %s: %w", ps.ID, err)
		}
		units = append(units, u)
	}
	return NewPlant(ps.ID, cfg, units, params)
}

// LoadSite reads a parameter file and a portfolio file and builds the site.
func LoadSite(paramsPath, portfolioPath string, curve *solar.Curve, policy Policy, log zerolog.Logger) (*Site, error) {
	params, err := config.LoadParams(paramsPath)
	if err != nil {
		return nil, err
	}
	desc, err := config.LoadPortfolio(portfolioPath)
	if err != nil {
		return nil, err
	}
	return Build(params, curve, desc, policy, log)
}
