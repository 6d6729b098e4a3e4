package power

import (
	"fmt"
	"time"

	"github.com/ovrim/windcurb/core/atmosphere"
	"github.com/ovrim/windcurb/core/curve"
	"github.com/ovrim/windcurb/core/logger"
	"github.com/ovrim/windcurb/core/model"
)

// Estimate is the forward-modeled output for one weather sample.
type Estimate struct {
	Timestamp        time.Time
	TemperatureC     float64
	PrecipitationMm  float64
	RefWindSpeed     float64 // m/s as measured
	HubWindSpeed     float64 // m/s extrapolated to hub height
	PowerKW          float64
	AdjustmentFactor float64
}

// ForwardEstimator computes expected power from weather samples.
type ForwardEstimator struct {
	curve          *curve.Curve
	profile        model.TurbineProfile
	atmos          atmosphere.Model
	useSiteDensity bool
	log            logger.Logger
}

// NewForwardEstimator validates the profile and curve and returns a
// ready estimator. Curve anomalies are logged, not fatal.
func NewForwardEstimator(c *curve.Curve, profile model.TurbineProfile, atmos atmosphere.Model, useSiteDensity bool, log logger.Logger) (*ForwardEstimator, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("forward estimator: %w", err)
	}
	for _, w := range c.Validate() {
		log.Warnf("power curve %s: %s", profile.CurveModel, w)
	}
	return &ForwardEstimator{
		curve:          c,
		profile:        profile,
		atmos:          atmos,
		useSiteDensity: useSiteDensity,
		log:            log,
	}, nil
}

// EstimateSeries maps the weather series to power estimates. A row
// that cannot be computed is emitted with zero hub wind speed and zero
// power instead of aborting the series, so the output always has
// exactly one row per input row.
func (e *ForwardEstimator) EstimateSeries(samples []model.WeatherSample) []Estimate {
	out := make([]Estimate, len(samples))
	for i, s := range samples {
		est, err := e.estimateRow(s)
		if err != nil {
			e.log.Warnf("row %d (%s): %v, emitting zero row", i, s.Timestamp.Format(time.RFC3339), err)
			est = Estimate{
				Timestamp:        s.Timestamp,
				TemperatureC:     s.TemperatureC,
				PrecipitationMm:  s.PrecipitationMm,
				RefWindSpeed:     s.WindSpeedRef,
				AdjustmentFactor: 1,
			}
		}
		out[i] = est
	}
	return out
}

func (e *ForwardEstimator) estimateRow(s model.WeatherSample) (Estimate, error) {
	if !s.HasWindSpeed() {
		return Estimate{}, fmt.Errorf("missing wind speed reading")
	}
	hub := e.atmos.HubWindSpeed(s.WindSpeedRef, e.profile.HubHeight, s.Roughness, e.profile.ReferenceHeight)

	// The density correction defaults to the standard constant, which
	// keeps the factor at 1. Site density is opt-in; see Physics
	// configuration.
	rho := e.atmos.StdDensity()
	if e.useSiteDensity {
		rho = e.atmos.Density(s.PressureKPa, s.TemperatureC)
	}
	adj := e.atmos.AdjustmentFactor(rho)

	p := e.curve.LookupPower(hub*adj) * (1 - e.profile.LossFraction)
	return Estimate{
		Timestamp:        s.Timestamp,
		TemperatureC:     s.TemperatureC,
		PrecipitationMm:  s.PrecipitationMm,
		RefWindSpeed:     s.WindSpeedRef,
		HubWindSpeed:     hub,
		PowerKW:          p,
		AdjustmentFactor: adj,
	}, nil
}
