package config

import "fmt"

// PhysicsConfig defines the atmospheric constants and site parameters
// of the wind model.
type PhysicsConfig struct {
	// GasConstant is the specific gas constant of dry air in J/(kg·K).
	GasConstant float64 `json:"gas_constant"`
	// StdDensity is the standard air density in kg/m³.
	StdDensity float64 `json:"std_density"`
	// ReferenceHeight is the anemometer height of the weather station in
	// metres.
	ReferenceHeight float64 `json:"reference_height"`
	// LossFraction derates the curve output for wake, electrical and
	// availability losses. 0 means no derating.
	LossFraction float64 `json:"loss_fraction"`
	// UseSiteDensity switches the density correction from the standard
	// constant to station pressure and temperature. Off by default; the
	// standard constant keeps the adjustment factor at 1.
	UseSiteDensity bool `json:"use_site_density"`
	// WindSpeedFactor converts the station wind speed unit to m/s.
	// The default converts km/h.
	WindSpeedFactor float64 `json:"wind_speed_factor"`
}

// SetDefaults applies the physical defaults.
func (c *PhysicsConfig) SetDefaults() {
	if c.GasConstant == 0 {
		c.GasConstant = 287.05
	}
	if c.StdDensity == 0 {
		c.StdDensity = 1.225
	}
	if c.ReferenceHeight == 0 {
		c.ReferenceHeight = 10
	}
	if c.WindSpeedFactor == 0 {
		c.WindSpeedFactor = 0.27778
	}
}

// Validate checks the physical parameter ranges.
func (c PhysicsConfig) Validate() error {
	if c.GasConstant <= 0 {
		return fmt.Errorf("gas_constant must be positive")
	}
	if c.StdDensity <= 0 {
		return fmt.Errorf("std_density must be positive")
	}
	if c.ReferenceHeight <= 0 {
		return fmt.Errorf("reference_height must be positive")
	}
	if c.LossFraction < 0 || c.LossFraction >= 1 {
		return fmt.Errorf("loss_fraction must be in [0, 1), got %.3f", c.LossFraction)
	}
	if c.WindSpeedFactor <= 0 {
		return fmt.Errorf("wind_speed_factor must be positive")
	}
	return nil
}
