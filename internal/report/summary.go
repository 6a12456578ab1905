package report

import (
	"math"

	"pv_potential/internal/model"
	"pv_potential/internal/portfolio"
	"pv_potential/internal/study"
)

type UnitSummary struct {
	ID             string  `json:"id"`
	MaxPower       float64 `json:"max_power_kwc"`
	AllocatedPower float64 `json:"allocated_power_kwc"`
	Utilization    float64 `json:"utilization"`
	CorrectedYield float64 `json:"corrected_yield"`
	Production     float64 `json:"production_kwh"`
}

type PlantSummary struct {
	ID             string                 `json:"id"`
	Type           model.InstallationType `json:"type"`
	MaxPower       float64                `json:"max_power_kwc"`
	AllocatedPower float64                `json:"allocated_power_kwc"`
	WeightedYield  float64                `json:"weighted_yield"`
	Production     float64                `json:"production_kwh"`
	Capex          float64                `json:"capex"`
	Opex           float64                `json:"opex"`
	LCOE           float64                `json:"lcoe"`
	Idle           bool                   `json:"idle,omitempty"`
	Units          []UnitSummary          `json:"units"`
}

// Summary is a site result without its hourly series, for JSON output and
// the WebSocket service.
type Summary struct {
	Site           string                    `json:"site"`
	Policy         string                    `json:"policy"`
	RequestedPower float64                   `json:"requested_power_kwc"`
	MaxPower       float64                   `json:"max_power_kwc"`
	AllocatedPower float64                   `json:"allocated_power_kwc"`
	WeightedYield  float64                   `json:"weighted_yield"`
	Production     float64                   `json:"production_kwh"`
	WeightedLCOE   float64                   `json:"weighted_lcoe"`
	Profile        ProfileStats              `json:"profile"`
	Table          []portfolio.AllocationRow `json:"table"`
	Plants         []PlantSummary            `json:"plants"`
	Study          *study.Result             `json:"study,omitempty"`
	// PaybackYears is omitted when the study never pays back.
	PaybackYears *float64 `json:"payback_years,omitempty"`
}

// Summarize flattens a site result. st may be nil.
func Summarize(res portfolio.SiteResult, st *study.Result) Summary {
	s := Summary{
		Site:           res.ID,
		Policy:         res.Policy,
		RequestedPower: res.RequestedPower,
		MaxPower:       res.MaxPower,
		AllocatedPower: res.AllocatedPower,
		WeightedYield:  res.WeightedYield,
		Production:     res.TotalProduction,
		WeightedLCOE:   WeightedLCOE(res),
		Profile:        Stats(res.Profile, res.AllocatedPower),
		Table:          res.Table,
		Plants:         make([]PlantSummary, len(res.Plants)),
		Study:          st,
	}
	for i, pr := range res.Plants {
		ps := PlantSummary{
			ID:             pr.ID,
			Type:           pr.Type,
			MaxPower:       pr.MaxPower,
			AllocatedPower: pr.AllocatedPower,
			WeightedYield:  pr.WeightedYield,
			Production:     pr.TotalProduction,
			Capex:          pr.Capex,
			Opex:           pr.Opex,
			LCOE:           pr.LCOE,
			Idle:           pr.Idle,
			Units:          make([]UnitSummary, len(pr.Units)),
		}
		for j, u := range pr.Units {
			ps.Units[j] = UnitSummary{
				ID:             u.ID,
				MaxPower:       u.MaxPower,
				AllocatedPower: u.AllocatedPower,
				Utilization:    u.Utilization,
				CorrectedYield: u.CorrectedYield,
				Production:     u.AnnualProduction,
			}
		}
		s.Plants[i] = ps
	}
	if st != nil && st.PaysBack && !math.IsInf(st.PaybackYears, 0) {
		years := st.PaybackYears
		s.PaybackYears = &years
	}
	return s
}
