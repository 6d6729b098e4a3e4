package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records estimation runs in Prometheus metrics.
type PromSink struct {
	rows      *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	curtailed *prometheus.CounterVec
	lossKWh   *prometheus.CounterVec
}

// NewPromSink registers the run metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "windcurb_rows_processed_total",
		Help: "Total number of weather rows processed",
	}, []string{"turbine"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "windcurb_row_fallbacks_total",
		Help: "Rows substituted with a zero estimate after a computation failure",
	}, []string{"turbine"})
	curtailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "windcurb_curtailed_rows_total",
		Help: "Rows zeroed by a curtailment rule",
	}, []string{"turbine", "rule", "threshold"})
	lossKWh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "windcurb_curtailment_loss_kwh_total",
		Help: "Estimated production lost to a curtailment rule",
	}, []string{"turbine", "rule", "threshold"})

	for i, c := range []*prometheus.CounterVec{rows, fallbacks, curtailed, lossKWh} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				existing := are.ExistingCollector.(*prometheus.CounterVec)
				switch i {
				case 0:
					rows = existing
				case 1:
					fallbacks = existing
				case 2:
					curtailed = existing
				case 3:
					lossKWh = existing
				}
			} else {
				return nil, err
			}
		}
	}

	return &PromSink{rows: rows, fallbacks: fallbacks, curtailed: curtailed, lossKWh: lossKWh}, nil
}

// RecordRun increments the row counters for the run.
func (s *PromSink) RecordRun(rec RunRecord) error {
	s.rows.WithLabelValues(rec.Turbine).Add(float64(rec.Rows))
	s.fallbacks.WithLabelValues(rec.Turbine).Add(float64(rec.FallbackRows))
	return nil
}

// RecordCurtailment increments the curtailment counters.
func (s *PromSink) RecordCurtailment(recs []CurtailmentRecord) error {
	for _, r := range recs {
		thr := strconv.FormatFloat(r.Threshold, 'f', 1, 64)
		s.curtailed.WithLabelValues(r.Turbine, r.Rule, thr).Add(float64(r.RowsZeroed))
		s.lossKWh.WithLabelValues(r.Turbine, r.Rule, thr).Add(r.EnergyLossKWh)
	}
	return nil
}
