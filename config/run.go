package config

import "fmt"

// RunConfig selects what one invocation processes.
type RunConfig struct {
	// Turbine selects a site from the base table by name, matched
	// case-insensitively. Empty means every turbine in the table.
	Turbine string `json:"turbine"`
	// Year is the processing year; season bounds and sun times are
	// anchored to it.
	Year int `json:"year"`
	// StepMinutes is the sampling interval of the weather series, used
	// to convert power totals to energy.
	StepMinutes int `json:"step_minutes"`
}

// SetDefaults applies the hourly sampling convention.
func (c *RunConfig) SetDefaults() {
	if c.StepMinutes == 0 {
		c.StepMinutes = 60
	}
}

// Validate checks mandatory fields.
func (c RunConfig) Validate() error {
	if c.Year == 0 {
		return fmt.Errorf("run year is required")
	}
	if c.StepMinutes <= 0 {
		return fmt.Errorf("step_minutes must be positive")
	}
	return nil
}
