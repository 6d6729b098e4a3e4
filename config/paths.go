package config

import "fmt"

// PathsConfig locates the input tables and the output directory.
type PathsConfig struct {
	// TurbineTable is the CSV base table of turbine sites.
	TurbineTable string `json:"turbine_table"`
	// CurveDir holds the manufacturer power curve files, one per model.
	CurveDir string `json:"curve_dir"`
	// WeatherDir holds the per-station meteorological series.
	WeatherDir string `json:"weather_dir"`
	// SunTimes is the sunrise/sunset table covering all turbines.
	SunTimes string `json:"sun_times"`
	// ObservedDir holds the observed production exports used by the
	// back-calculation.
	ObservedDir string `json:"observed_dir"`
	// OutputDir receives the run outputs.
	OutputDir string `json:"output_dir"`
}

// SetDefaults applies the conventional data layout.
func (c *PathsConfig) SetDefaults() {
	if c.CurveDir == "" {
		c.CurveDir = "data/curves"
	}
	if c.WeatherDir == "" {
		c.WeatherDir = "data/weather"
	}
	if c.ObservedDir == "" {
		c.ObservedDir = "data/observed"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
}

// Validate checks mandatory paths.
func (c PathsConfig) Validate() error {
	if c.TurbineTable == "" {
		return fmt.Errorf("turbine_table is required")
	}
	if c.SunTimes == "" {
		return fmt.Errorf("sun_times is required")
	}
	return nil
}
