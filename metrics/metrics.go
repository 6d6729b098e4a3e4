package metrics

import "time"

// Config defines the observability sinks for estimation runs.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// RunRecord summarizes one per-turbine estimation run.
type RunRecord struct {
	RunID        string
	Turbine      string
	Year         int
	Rows         int
	FallbackRows int // rows substituted with a zero estimate
	MeanPowerKW  float64
	CompletedAt  time.Time
}

// CurtailmentRecord aggregates the effect of one rule at one threshold.
type CurtailmentRecord struct {
	RunID         string
	Turbine       string
	Rule          string // "blanket" or "smart"
	Threshold     float64
	RowsZeroed    int
	EnergyLossKWh float64
	Time          time.Time
}

// Sink records estimation results for observability purposes.
type Sink interface {
	RecordRun(rec RunRecord) error
	RecordCurtailment(recs []CurtailmentRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error                   { return nil }
func (NopSink) RecordCurtailment([]CurtailmentRecord) error { return nil }
