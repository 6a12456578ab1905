package report

import (
	"fmt"
	"io"

	"pv_potential/internal/portfolio"
	"pv_potential/internal/solar"
	"pv_potential/internal/store"
	"pv_potential/internal/study"
)

// WriteAllocation prints the site allocation table in allocation order.
func WriteAllocation(w io.Writer, res portfolio.SiteResult, curve *solar.Curve) {
	stats := Stats(res.Profile, res.AllocatedPower)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Site Allocation: %s (policy %s)\n", res.ID, res.Policy)
	fmt.Fprintf(w, "  Requested: %.1f kWc, allocated: %.1f kWc of %.1f kWc\n",
		res.RequestedPower, res.AllocatedPower, res.MaxPower)
	fmt.Fprintf(w, "  Production: %.0f kWh/yr (%.0f full-load hours)\n", res.TotalProduction, stats.FullLoadHours)
	if curve != nil && stats.PeakHour >= 0 && stats.PeakHour < curve.Len() {
		fmt.Fprintf(w, "  Peak: %.1f kW at %s\n", stats.Peak, curve.Timestamp(stats.PeakHour).Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, " %-16s │ %-12s │ %11s │ %11s │ %8s │ %9s │ %13s\n",
		"Plant", "Type", "Allocated", "Max Power", "LCOE", "Yield", "Production")
	fmt.Fprintf(w, "──────────────────┼──────────────┼─────────────┼─────────────┼──────────┼───────────┼───────────────\n")

	for i, row := range res.Table {
		pr := res.Plants[i]
		lcoe := fmt.Sprintf("%.2f", row.LCOE)
		if pr.Idle {
			lcoe += "*"
		}
		fmt.Fprintf(w, " %-16s │ %-12s │ %7.1f kWc │ %7.1f kWc │ %8s │ %9.0f │ %9.0f kWh\n",
			row.ID,
			pr.Type,
			row.AllocatedPower,
			pr.MaxPower,
			lcoe,
			row.WeightedYield,
			pr.TotalProduction,
		)
	}
	fmt.Fprintln(w, "  * idle plant, LCOE is the ranking value")
	fmt.Fprintln(w)
}

// WriteStudy prints a total-sale balance.
func WriteStudy(w io.Writer, st study.Result) {
	fmt.Fprintln(w, "Total Sale Study")
	fmt.Fprintf(w, "  Sale price: %.4f /kWh\n", st.SalePrice)
	fmt.Fprintf(w, "  Revenue: %.0f /yr, operating cost: %.0f /yr, margin: %.0f /yr\n", st.Revenue, st.Opex, st.Margin)
	fmt.Fprintf(w, "  Investment: %.0f\n", st.Investment)
	if st.PaysBack {
		fmt.Fprintf(w, "  Payback: %.1f years\n", st.PaybackYears)
	} else {
		fmt.Fprintln(w, "  Payback: never")
	}
	fmt.Fprintln(w)
}

// WriteSweep prints one line per scenario with the marginal production of
// each additional kWc.
func WriteSweep(w io.Writer, siteID string, scenarios []store.Scenario) {
	if len(scenarios) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Power Sweep: %s (policy %s)\n", siteID, scenarios[0].Result.Policy)
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %11s │ %13s │ %9s │ %8s │ %8s │ %12s │ %8s\n",
		"Power", "Production", "kWh/kWc", "Marginal", "LCOE", "Investment", "Payback")
	fmt.Fprintf(w, "─────────────┼───────────────┼───────────┼──────────┼──────────┼──────────────┼──────────\n")

	for i, sc := range scenarios {
		res := sc.Result
		specific := 0.0
		if res.AllocatedPower > 0 {
			specific = res.TotalProduction / res.AllocatedPower
		}

		marginal := "-"
		if i > 0 {
			prev := scenarios[i-1].Result
			if dp := res.AllocatedPower - prev.AllocatedPower; dp > 0 {
				marginal = fmt.Sprintf("%.0f", (res.TotalProduction-prev.TotalProduction)/dp)
			}
		}

		investment, payback := "-", "-"
		if sc.Study != nil {
			investment = fmt.Sprintf("%.0f", sc.Study.Investment)
			payback = "never"
			if sc.Study.PaysBack {
				payback = fmt.Sprintf("%.1f y", sc.Study.PaybackYears)
			}
		}

		fmt.Fprintf(w, " %7.1f kWc │ %9.0f kWh │ %9.0f │ %8s │ %8.2f │ %12s │ %8s\n",
			res.AllocatedPower,
			res.TotalProduction,
			specific,
			marginal,
			WeightedLCOE(res),
			investment,
			payback,
		)
	}
	fmt.Fprintln(w)
}
