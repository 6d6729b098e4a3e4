// Package atmosphere converts measured meteorological quantities into
// the hub-height wind speed and air density a power-curve query needs.
package atmosphere

import (
	"math"

	"github.com/ovrim/windcurb/core/logger"
)

// Physical defaults. GasConstant is the specific gas constant of dry
// air, StdDensity the ISO standard air density.
const (
	GasConstant      = 287.05 // J/(kg*K)
	StdDensity       = 1.225  // kg/m3
	AbsoluteZeroC    = -273.15
	defaultRoughness = 0.1 // m, substituted for invalid roughness input
)

// Model bundles the physical constants used by the profile and density
// calculations. The zero value is not usable; use New.
type Model struct {
	r      float64
	rhoStd float64
	log    logger.Logger
}

// New creates a Model. Non-positive constants fall back to the package
// defaults so a partially filled configuration still yields physical
// results.
func New(gasConstant, stdDensity float64, log logger.Logger) Model {
	if gasConstant <= 0 {
		gasConstant = GasConstant
	}
	if stdDensity <= 0 {
		stdDensity = StdDensity
	}
	return Model{r: gasConstant, rhoStd: stdDensity, log: log}
}

// StdDensity returns the configured standard air density.
func (m Model) StdDensity() float64 { return m.rhoStd }

// HubWindSpeed extrapolates a wind speed measured at refHeight to
// hubHeight using the logarithmic wind profile law. Degenerate
// geometry never raises: an invalid roughness is substituted with
// 0.1 m, and when the hub sits at or below the roughness length the
// measured speed is returned unchanged.
func (m Model) HubWindSpeed(windSpeed, hubHeight, surfaceRoughness, refHeight float64) float64 {
	if surfaceRoughness <= 0 || math.IsNaN(surfaceRoughness) {
		m.log.Warnf("invalid surface roughness %.3f, using default %.1f", surfaceRoughness, defaultRoughness)
		surfaceRoughness = defaultRoughness
	}
	if hubHeight <= surfaceRoughness {
		m.log.Warnf("hub height %.2f must be greater than surface roughness %.3f", hubHeight, surfaceRoughness)
		return windSpeed
	}
	v := windSpeed * math.Log(hubHeight/surfaceRoughness) / math.Log(refHeight/surfaceRoughness)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		m.log.Warnf("degenerate wind profile (ref height %.2f, roughness %.3f), keeping measured speed", refHeight, surfaceRoughness)
		return windSpeed
	}
	return v
}

// Density computes air density from surface pressure and temperature
// via the ideal gas law. Temperature is clamped at absolute zero, and
// any non-physical result falls back to the standard density.
func (m Model) Density(pressureKPa, temperatureC float64) float64 {
	if temperatureC < AbsoluteZeroC {
		m.log.Warnf("temperature %.2fC is below absolute zero, clamping", temperatureC)
		temperatureC = AbsoluteZeroC
	}
	kelvin := temperatureC - AbsoluteZeroC
	rho := pressureKPa * 1000 / (m.r * kelvin)
	if math.IsNaN(rho) || math.IsInf(rho, 0) || rho <= 0 {
		m.log.Warnf("air density calculation failed (p=%.2f kPa, t=%.2fC), using standard density", pressureKPa, temperatureC)
		return m.rhoStd
	}
	return rho
}

// AdjustmentFactor returns the density-correction factor
// (rho_std/rho)^(1/3) applied to power-curve queries. The cube-root
// form approximates the kinetic-energy-flux scaling of turbine output
// with density.
func (m Model) AdjustmentFactor(density float64) float64 {
	if density <= 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return 1
	}
	return math.Cbrt(m.rhoStd / density)
}
