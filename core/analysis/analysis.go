// Package analysis summarizes an estimation run: agreement between the
// forward-modeled and back-calculated wind speeds, and the production
// lost to each candidate curtailment policy.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ovrim/windcurb/core/curtail"
	"github.com/ovrim/windcurb/core/power"
)

// WindSpeedComparison quantifies how well the forward model reproduces
// the wind speed implied by observed production. Rows where either
// side is missing are excluded.
type WindSpeedComparison struct {
	N           int     `json:"n"`
	RMSE        float64 `json:"rmse_ms"`
	Bias        float64 `json:"bias_ms"` // modeled minus implied
	Correlation float64 `json:"correlation"`
	MeanModeled float64 `json:"mean_modeled_ms"`
	MeanImplied float64 `json:"mean_implied_ms"`
}

// CompareWindSpeeds computes comparison statistics over index-aligned
// series. NaN pairs are dropped; with no valid pairs all statistics
// are NaN except N.
func CompareWindSpeeds(modeled, implied []float64) WindSpeedComparison {
	n := len(modeled)
	if len(implied) < n {
		n = len(implied)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(modeled[i]) || math.IsNaN(implied[i]) {
			continue
		}
		xs = append(xs, modeled[i])
		ys = append(ys, implied[i])
	}
	cmp := WindSpeedComparison{
		N:           len(xs),
		RMSE:        math.NaN(),
		Bias:        math.NaN(),
		Correlation: math.NaN(),
		MeanModeled: math.NaN(),
		MeanImplied: math.NaN(),
	}
	if len(xs) == 0 {
		return cmp
	}
	var sq float64
	for i := range xs {
		d := xs[i] - ys[i]
		sq += d * d
	}
	cmp.RMSE = math.Sqrt(sq / float64(len(xs)))
	cmp.MeanModeled = stat.Mean(xs, nil)
	cmp.MeanImplied = stat.Mean(ys, nil)
	cmp.Bias = cmp.MeanModeled - cmp.MeanImplied
	if len(xs) > 1 {
		cmp.Correlation = stat.Correlation(xs, ys, nil)
	}
	return cmp
}

// ThresholdLoss aggregates, for one cut-in threshold, the energy kept
// under each rule and the production lost relative to the uncorrected
// estimate.
type ThresholdLoss struct {
	Threshold      float64 `json:"threshold_ms"`
	BaselineKWh    float64 `json:"baseline_kwh"`
	BlanketKWh     float64 `json:"blanket_kwh"`
	SmartKWh       float64 `json:"smart_kwh"`
	BlanketLossKWh float64 `json:"blanket_loss_kwh"`
	SmartLossKWh   float64 `json:"smart_loss_kwh"`
	BlanketRows    int     `json:"blanket_rows"`
	SmartRows      int     `json:"smart_rows"`
}

// CurtailmentLosses totals production per threshold over the corrected
// series. corrections must be index-aligned with estimates, one map
// per row; step is the sampling interval of the series.
func CurtailmentLosses(estimates []power.Estimate, corrections []map[float64]curtail.Correction, step time.Duration) ([]ThresholdLoss, error) {
	if len(estimates) != len(corrections) {
		return nil, fmt.Errorf("series length mismatch: %d estimates, %d correction rows", len(estimates), len(corrections))
	}
	if step <= 0 {
		return nil, fmt.Errorf("sampling step must be positive, got %v", step)
	}
	hours := step.Hours()

	totals := make(map[float64]*ThresholdLoss)
	for i, est := range estimates {
		for thr, c := range corrections[i] {
			agg, ok := totals[thr]
			if !ok {
				agg = &ThresholdLoss{Threshold: thr}
				totals[thr] = agg
			}
			agg.BaselineKWh += est.PowerKW * hours
			agg.BlanketKWh += c.BlanketKW * hours
			agg.SmartKWh += c.SmartKW * hours
			if c.BlanketKW == 0 && est.PowerKW > 0 {
				agg.BlanketRows++
			}
			if c.SmartKW == 0 && est.PowerKW > 0 {
				agg.SmartRows++
			}
		}
	}

	out := make([]ThresholdLoss, 0, len(totals))
	for _, agg := range totals {
		agg.BlanketLossKWh = agg.BaselineKWh - agg.BlanketKWh
		agg.SmartLossKWh = agg.BaselineKWh - agg.SmartKWh
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out, nil
}
