// Package report renders allocation results as tables, CSV and JSON
// summaries.
package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pv_potential/internal/model"
	"pv_potential/internal/portfolio"
	"pv_potential/internal/solar"
)

// ProfileStats describes the shape of an hourly production profile.
type ProfileStats struct {
	Total          float64 `json:"total_kwh"`
	Mean           float64 `json:"mean_kw"`
	StdDev         float64 `json:"stddev_kw"`
	Peak           float64 `json:"peak_kw"`
	PeakHour       int     `json:"peak_hour"`
	ProducingHours int     `json:"producing_hours"`
	// FullLoadHours is Total / installed power.
	FullLoadHours  float64 `json:"full_load_hours"`
	CapacityFactor float64 `json:"capacity_factor"`
}

// Stats computes profile statistics for a profile produced by powerKWc.
func Stats(p solar.Profile, powerKWc float64) ProfileStats {
	if len(p) == 0 {
		return ProfileStats{PeakHour: -1}
	}
	s := ProfileStats{Total: floats.Sum(p)}
	s.Mean, s.StdDev = stat.MeanStdDev(p, nil)
	s.PeakHour, s.Peak = p.Peak()
	for _, v := range p {
		if v > 0 {
			s.ProducingHours++
		}
	}
	if powerKWc > 0 {
		s.FullLoadHours = s.Total / powerKWc
		s.CapacityFactor = s.FullLoadHours / model.HoursPerYear
	}
	return s
}

// WeightedLCOE is the production-weighted LCOE of the plants that received
// power. It is 0 when nothing is produced.
func WeightedLCOE(res portfolio.SiteResult) float64 {
	var lcoes, weights []float64
	for _, pr := range res.Plants {
		if pr.Idle || pr.TotalProduction <= 0 {
			continue
		}
		lcoes = append(lcoes, pr.LCOE)
		weights = append(weights, pr.TotalProduction)
	}
	if len(lcoes) == 0 {
		return 0
	}
	return stat.Mean(lcoes, weights)
}
