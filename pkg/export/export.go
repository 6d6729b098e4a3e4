// Package export writes run outputs: the per-row estimation series
// with corrected power columns, the back-calculation series, and JSON
// summaries.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ovrim/windcurb/core/curtail"
	"github.com/ovrim/windcurb/core/power"
)

const timeLayout = "2006-01-02 15:04"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func thresholdLabel(thr float64) string {
	return strconv.FormatFloat(thr, 'f', 1, 64)
}

// WriteForwardCSV writes the forward-modeled series with one blanket
// and one smart corrected-power column per threshold. corrections must
// be index-aligned with estimates.
func WriteForwardCSV(w io.Writer, estimates []power.Estimate, thresholds []float64, corrections []map[float64]curtail.Correction) error {
	if len(estimates) != len(corrections) {
		return fmt.Errorf("series length mismatch: %d estimates, %d correction rows", len(estimates), len(corrections))
	}
	thrs := append([]float64(nil), thresholds...)
	sort.Float64s(thrs)

	header := []string{"time", "temp", "precip", "WindSp", "W_hub", "adj_factor", "power_out"}
	for _, thr := range thrs {
		header = append(header, "blanket_"+thresholdLabel(thr), "smart_"+thresholdLabel(thr))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, e := range estimates {
		rec := []string{
			e.Timestamp.Format(timeLayout),
			formatFloat(e.TemperatureC),
			formatFloat(e.PrecipitationMm),
			formatFloat(e.RefWindSpeed),
			formatFloat(e.HubWindSpeed),
			formatFloat(e.AdjustmentFactor),
			formatFloat(e.PowerKW),
		}
		for _, thr := range thrs {
			c, ok := corrections[i][thr]
			if !ok {
				return fmt.Errorf("row %d: no correction for threshold %s", i, thresholdLabel(thr))
			}
			rec = append(rec, formatFloat(c.BlanketKW), formatFloat(c.SmartKW))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBackCalcCSV writes the back-calculated series derived from
// observed production.
func WriteBackCalcCSV(w io.Writer, rows []power.BackCalc) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "temp", "precip", "per_unit_power", "implied_W_hub"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp.Format(timeLayout),
			formatFloat(r.TemperatureC),
			formatFloat(r.PrecipitationMm),
			formatFloat(r.PerUnitPowerKW),
			formatFloat(r.ImpliedHubWindSpeed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
