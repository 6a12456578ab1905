// Package study balances the revenue of a site allocation against its costs.
package study

import (
	"fmt"
	"math"

	"pv_potential/internal/portfolio"
	"pv_potential/internal/solar"
)

// DefaultSalePrice is the export price used when none is given, in €/kWh.
const DefaultSalePrice = 1.0

// PlantBalance is one plant's contribution to a study.
type PlantBalance struct {
	ID         string  `json:"id"`
	Production float64 `json:"production_kwh"`
	Revenue    float64 `json:"revenue"`
	Investment float64 `json:"investment"`
	Opex       float64 `json:"opex"`
}

// Result is the balance of a total-sale study.
type Result struct {
	SiteID     string  `json:"site"`
	SalePrice  float64 `json:"sale_price"`
	Production float64 `json:"production_kwh"`
	Revenue    float64 `json:"revenue"`
	Investment float64 `json:"investment"`
	Opex       float64 `json:"opex"`
	// Margin is the yearly revenue left after operating costs.
	Margin float64 `json:"margin"`
	// PaybackYears is +Inf when the margin is not positive.
	PaybackYears float64        `json:"-"`
	PaysBack     bool           `json:"pays_back"`
	Plants       []PlantBalance `json:"plants"`
	Monthly      [12]float64    `json:"monthly_kwh"`
}

// TotalSale assumes every produced kWh is exported at salePrice. Idle plants
// carry no investment and no operating cost.
func TotalSale(res portfolio.SiteResult, curve *solar.Curve, salePrice float64) (Result, error) {
	if math.IsNaN(salePrice) || math.IsInf(salePrice, 0) || salePrice < 0 {
		return Result{}, fmt.Errorf("%w: sale price %v", portfolio.ErrInvalidInput, salePrice)
	}

	out := Result{
		SiteID:     res.ID,
		SalePrice:  salePrice,
		Production: res.Profile.Sum(),
		Plants:     make([]PlantBalance, 0, len(res.Plants)),
	}
	out.Revenue = salePrice * out.Production

	for _, pr := range res.Plants {
		if pr.Idle {
			continue
		}
		b := PlantBalance{
			ID:         pr.ID,
			Production: pr.TotalProduction,
			Revenue:    salePrice * pr.TotalProduction,
			Investment: pr.Capex * pr.AllocatedPower,
			Opex:       pr.Opex,
		}
		out.Investment += b.Investment
		out.Opex += b.Opex
		out.Plants = append(out.Plants, b)
	}

	out.Margin = out.Revenue - out.Opex
	out.PaybackYears = math.Inf(1)
	if out.Margin > 0 {
		out.PaybackYears = out.Investment / out.Margin
		out.PaysBack = true
	}

	if curve != nil {
		months, err := curve.Monthly(res.Profile)
		if err != nil {
			return Result{}, fmt.Errorf("site %s: %w", res.ID, err)
		}
		out.Monthly = months
	}
	return out, nil
}
