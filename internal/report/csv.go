package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"pv_potential/internal/portfolio"
	"pv_potential/internal/solar"
)

// WriteHourlyCSV writes one row per hour: timestamp, site total, then one
// column per plant in allocation order.
func WriteHourlyCSV(w io.Writer, curve *solar.Curve, res portfolio.SiteResult) error {
	if curve.Len() != len(res.Profile) {
		return fmt.Errorf("%w: site profile has %d hours, curve %d", solar.ErrShapeMismatch, len(res.Profile), curve.Len())
	}
	for _, pr := range res.Plants {
		if len(pr.Profile) != curve.Len() {
			return fmt.Errorf("%w: plant %s profile has %d hours, curve %d", solar.ErrShapeMismatch, pr.ID, len(pr.Profile), curve.Len())
		}
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(res.Plants)+2)
	header = append(header, "timestamp", res.ID)
	for _, pr := range res.Plants {
		header = append(header, pr.ID)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for h := 0; h < curve.Len(); h++ {
		row[0] = curve.Timestamp(h).Format(time.RFC3339)
		row[1] = strconv.FormatFloat(res.Profile[h], 'f', 4, 64)
		for i, pr := range res.Plants {
			row[i+2] = strconv.FormatFloat(pr.Profile[h], 'f', 4, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
