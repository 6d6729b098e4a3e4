package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ovrim/windcurb/core/analysis"
	"github.com/ovrim/windcurb/core/atmosphere"
	"github.com/ovrim/windcurb/core/curtail"
	"github.com/ovrim/windcurb/core/curve"
	"github.com/ovrim/windcurb/core/model"
	"github.com/ovrim/windcurb/core/power"
	"github.com/ovrim/windcurb/infra/csvio"
	"github.com/ovrim/windcurb/infra/logger"
	"github.com/ovrim/windcurb/metrics"
	"github.com/ovrim/windcurb/pkg/export"
)

// RunSummary is the JSON document written and published at the end of a
// turbine run.
type RunSummary struct {
	RunID        string                        `json:"run_id"`
	Turbine      string                        `json:"turbine"`
	Station      string                        `json:"station"`
	Year         int                           `json:"year"`
	Rows         int                           `json:"rows"`
	FallbackRows int                           `json:"fallback_rows"`
	MeanPowerKW  float64                       `json:"mean_power_kw"`
	Losses       []analysis.ThresholdLoss      `json:"curtailment_losses,omitempty"`
	WindSpeeds   *analysis.WindSpeedComparison `json:"wind_speed_comparison,omitempty"`
	Outputs      []string                      `json:"outputs"`
	CompletedAt  time.Time                     `json:"completed_at"`
}

// turbineRun carries the state of one per-turbine pipeline execution.
type turbineRun struct {
	svc     *Service
	profile model.TurbineProfile
	runID   string
	log     logger.Logger
}

func newTurbineRun(svc *Service, profile model.TurbineProfile) *turbineRun {
	// Reference height and loss fraction are site-independent settings,
	// filled from configuration rather than the base table.
	profile.ReferenceHeight = svc.cfg.Physics.ReferenceHeight
	profile.LossFraction = svc.cfg.Physics.LossFraction
	return &turbineRun{
		svc:     svc,
		profile: profile,
		runID:   uuid.NewString(),
		log:     logger.New("run-" + profile.Name),
	}
}

// loadInputs reads the power curve and the weather series and attaches
// the seasonal roughness to every sample.
func (r *turbineRun) loadInputs() (*curve.Curve, []model.WeatherSample, error) {
	cfg := r.svc.cfg
	curvePath := filepath.Join(cfg.Paths.CurveDir, r.profile.CurveModel+".txt")
	c, err := csvio.ReadPowerCurve(curvePath)
	if err != nil {
		return nil, nil, err
	}
	weatherPath, err := csvio.FindInputFile(cfg.Paths.WeatherDir, r.profile.Station, cfg.Run.Year)
	if err != nil {
		return nil, nil, err
	}
	samples, err := csvio.ReadWeather(weatherPath, cfg.Physics.WindSpeedFactor)
	if err != nil {
		return nil, nil, err
	}
	for i := range samples {
		samples[i].Roughness = r.profile.Roughness.ForMonth(samples[i].Timestamp.Month())
	}
	r.log.Infof("run %s: loaded %d weather rows from %s", r.runID, len(samples), weatherPath)
	return c, samples, nil
}

func (r *turbineRun) newEngine(sun []model.SunTimes) (*curtail.Engine, error) {
	return curtail.NewEngine(r.svc.cfg.Curtailment, sun, r.svc.cfg.Run.Year, r.log)
}

// runTurbine executes the forward pipeline: estimate power for every
// weather row, apply the curtailment rules, total the losses and write
// the outputs.
func (s *Service) runTurbine(ctx context.Context, r *turbineRun) error {
	cfg := s.cfg
	c, samples, err := r.loadInputs()
	if err != nil {
		return err
	}

	atmos := atmosphere.New(cfg.Physics.GasConstant, cfg.Physics.StdDensity, r.log)
	estimator, err := power.NewForwardEstimator(c, r.profile, atmos, cfg.Physics.UseSiteDensity, r.log)
	if err != nil {
		return err
	}
	estimates := estimator.EstimateSeries(samples)

	sun, err := csvio.ReadSunTimes(cfg.Paths.SunTimes, r.profile.Name, cfg.Run.Year)
	if err != nil {
		return err
	}
	engine, err := r.newEngine(sun)
	if err != nil {
		return err
	}

	corrections := make([]map[float64]curtail.Correction, len(estimates))
	for i, est := range estimates {
		corr := engine.NewCorrections(est.PowerKW)
		engine.Evaluate(est.Timestamp, est.HubWindSpeed, est.TemperatureC, est.PrecipitationMm, corr)
		corrections[i] = corr
	}

	step := time.Duration(cfg.Run.StepMinutes) * time.Minute
	losses, err := analysis.CurtailmentLosses(estimates, corrections, step)
	if err != nil {
		return err
	}

	outPath := r.outputPath("estimated.csv")
	if err := r.writeFile(outPath, func(f *os.File) error {
		return export.WriteForwardCSV(f, estimates, engine.Thresholds(), corrections)
	}); err != nil {
		return err
	}

	summary := r.newSummary(samples, estimates)
	summary.Losses = losses
	summary.Outputs = append(summary.Outputs, outPath)
	return r.finish(summary, losses)
}

// runBackCalc executes the inverse pipeline: reconstruct the hub wind
// speed implied by observed production and compare it with the forward
// model.
func (s *Service) runBackCalc(ctx context.Context, r *turbineRun) error {
	cfg := s.cfg
	c, samples, err := r.loadInputs()
	if err != nil {
		return err
	}

	observedPath, err := csvio.FindObservedFile(cfg.Paths.ObservedDir, r.profile.Name, cfg.Run.Year)
	if err != nil {
		return err
	}
	observed, err := csvio.ReadObservedPower(observedPath)
	if err != nil {
		return err
	}

	atmos := atmosphere.New(cfg.Physics.GasConstant, cfg.Physics.StdDensity, r.log)
	inverse, err := power.NewInverseEstimator(c, r.profile, atmos, cfg.Physics.UseSiteDensity, r.log)
	if err != nil {
		return err
	}
	backcalc := inverse.BackCalcSeries(observed, samples)

	forward, err := power.NewForwardEstimator(c, r.profile, atmos, cfg.Physics.UseSiteDensity, r.log)
	if err != nil {
		return err
	}
	estimates := forward.EstimateSeries(samples)

	n := len(backcalc)
	if len(estimates) < n {
		n = len(estimates)
	}
	modeled := make([]float64, n)
	implied := make([]float64, n)
	for i := 0; i < n; i++ {
		modeled[i] = estimates[i].HubWindSpeed
		implied[i] = backcalc[i].ImpliedHubWindSpeed
	}
	cmp := analysis.CompareWindSpeeds(modeled, implied)
	r.log.Infof("run %s: wind-speed agreement over %d rows: rmse=%.3f bias=%.3f r=%.3f",
		r.runID, cmp.N, cmp.RMSE, cmp.Bias, cmp.Correlation)

	outPath := r.outputPath("backcalc.csv")
	if err := r.writeFile(outPath, func(f *os.File) error {
		return export.WriteBackCalcCSV(f, backcalc)
	}); err != nil {
		return err
	}

	summary := r.newSummary(samples, estimates)
	summary.WindSpeeds = &cmp
	summary.Outputs = append(summary.Outputs, outPath)
	return r.finish(summary, nil)
}

func (r *turbineRun) newSummary(samples []model.WeatherSample, estimates []power.Estimate) *RunSummary {
	fallbacks := 0
	for _, s := range samples {
		if !s.HasWindSpeed() {
			fallbacks++
		}
	}
	var total float64
	for _, est := range estimates {
		total += est.PowerKW
	}
	mean := 0.0
	if len(estimates) > 0 {
		mean = total / float64(len(estimates))
	}
	return &RunSummary{
		RunID:        r.runID,
		Turbine:      r.profile.Name,
		Station:      r.profile.Station,
		Year:         r.svc.cfg.Run.Year,
		Rows:         len(estimates),
		FallbackRows: fallbacks,
		MeanPowerKW:  mean,
	}
}

// finish writes the summary JSON, records the run in the metric sinks
// and publishes the summary when a broker is configured.
func (r *turbineRun) finish(summary *RunSummary, losses []analysis.ThresholdLoss) error {
	summary.CompletedAt = time.Now().UTC()

	summaryPath := r.outputPath("summary.json")
	if err := r.writeFile(summaryPath, func(f *os.File) error {
		return export.WriteJSON(f, summary)
	}); err != nil {
		return err
	}
	summary.Outputs = append(summary.Outputs, summaryPath)

	if err := r.svc.sink.RecordRun(metrics.RunRecord{
		RunID:        summary.RunID,
		Turbine:      summary.Turbine,
		Year:         summary.Year,
		Rows:         summary.Rows,
		FallbackRows: summary.FallbackRows,
		MeanPowerKW:  summary.MeanPowerKW,
		CompletedAt:  summary.CompletedAt,
	}); err != nil {
		r.log.Errorf("record run: %v", err)
	}
	if len(losses) > 0 {
		recs := make([]metrics.CurtailmentRecord, 0, 2*len(losses))
		for _, l := range losses {
			recs = append(recs,
				metrics.CurtailmentRecord{
					RunID: summary.RunID, Turbine: summary.Turbine, Rule: "blanket",
					Threshold: l.Threshold, RowsZeroed: l.BlanketRows,
					EnergyLossKWh: l.BlanketLossKWh, Time: summary.CompletedAt,
				},
				metrics.CurtailmentRecord{
					RunID: summary.RunID, Turbine: summary.Turbine, Rule: "smart",
					Threshold: l.Threshold, RowsZeroed: l.SmartRows,
					EnergyLossKWh: l.SmartLossKWh, Time: summary.CompletedAt,
				})
		}
		if err := r.svc.sink.RecordCurtailment(recs); err != nil {
			r.log.Errorf("record curtailment: %v", err)
		}
	}

	if err := r.svc.pub.Publish(summary); err != nil {
		r.log.Errorf("publish summary: %v", err)
	}
	r.log.Infof("run %s: completed, %d rows, mean power %.1f kW", summary.RunID, summary.Rows, summary.MeanPowerKW)
	return nil
}

func (r *turbineRun) outputPath(suffix string) string {
	name := fmt.Sprintf("%s_%d_%s", r.profile.Name, r.svc.cfg.Run.Year, suffix)
	return filepath.Join(r.svc.cfg.Paths.OutputDir, name)
}

func (r *turbineRun) writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
