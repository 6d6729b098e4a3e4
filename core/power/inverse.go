package power

import (
	"fmt"
	"math"
	"time"

	"github.com/ovrim/windcurb/core/atmosphere"
	"github.com/ovrim/windcurb/core/curve"
	"github.com/ovrim/windcurb/core/logger"
	"github.com/ovrim/windcurb/core/model"
)

// BackCalc is the inverse-modeled row for one observed power reading.
// ImpliedHubWindSpeed is NaN when the corrected power lies outside the
// curve's achievable range.
type BackCalc struct {
	Timestamp           time.Time
	TemperatureC        float64
	PrecipitationMm     float64
	PerUnitPowerKW      float64
	ImpliedHubWindSpeed float64
}

// InverseEstimator reconstructs hub-height wind speed from observed
// farm-level power.
type InverseEstimator struct {
	curve          *curve.Curve
	profile        model.TurbineProfile
	atmos          atmosphere.Model
	useSiteDensity bool
	log            logger.Logger
}

// NewInverseEstimator validates the profile and returns a ready
// estimator.
func NewInverseEstimator(c *curve.Curve, profile model.TurbineProfile, atmos atmosphere.Model, useSiteDensity bool, log logger.Logger) (*InverseEstimator, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("inverse estimator: %w", err)
	}
	return &InverseEstimator{
		curve:          c,
		profile:        profile,
		atmos:          atmos,
		useSiteDensity: useSiteDensity,
		log:            log,
	}, nil
}

// BackCalcSeries inverts the power curve for every observed reading.
// The output is index-aligned with the input; no reordering occurs.
// The weather series provides temperature, precipitation and, when
// site density is enabled, the ambient conditions for the correction;
// it is matched by index and may be nil.
func (e *InverseEstimator) BackCalcSeries(observed []model.ObservedPower, weather []model.WeatherSample) []BackCalc {
	out := make([]BackCalc, len(observed))
	units := float64(e.profile.Units)
	for i, obs := range observed {
		row := BackCalc{
			Timestamp:           obs.Timestamp,
			TemperatureC:        math.NaN(),
			PrecipitationMm:     math.NaN(),
			PerUnitPowerKW:      obs.PowerKW / units,
			ImpliedHubWindSpeed: math.NaN(),
		}
		var sample *model.WeatherSample
		if i < len(weather) {
			sample = &weather[i]
			row.TemperatureC = sample.TemperatureC
			row.PrecipitationMm = sample.PrecipitationMm
		}

		rho := e.atmos.StdDensity()
		if e.useSiteDensity && sample != nil {
			rho = e.atmos.Density(sample.PressureKPa, sample.TemperatureC)
		}
		corrected := row.PerUnitPowerKW / (1 - e.profile.LossFraction) * e.atmos.AdjustmentFactor(rho)
		row.ImpliedHubWindSpeed = e.curve.LookupWindSpeed(corrected)
		out[i] = row
	}
	return out
}
