package model

import (
	"fmt"

	"github.com/ovrim/windcurb/core/roughness"
)

// TurbineProfile describes a wind farm as configured in the turbine
// base table. It is loaded once per run and passed by reference into
// the estimators.
type TurbineProfile struct {
	Name            string
	Station         string // nearby weather station providing the series
	CurveModel      string // power-curve file identifier
	HubHeight       float64
	ReferenceHeight float64 // height of the wind-speed measurement
	Units           int
	RatedCapacityKW float64
	LossFraction    float64 // aggregate electrical/availability losses, [0,1)
	Roughness       roughness.Table
}

// Validate checks that the profile can drive an estimation run.
func (p TurbineProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("turbine name is required")
	}
	if p.HubHeight <= 0 {
		return fmt.Errorf("turbine %s: hub height must be positive, got %.2f", p.Name, p.HubHeight)
	}
	if p.ReferenceHeight <= 0 {
		return fmt.Errorf("turbine %s: reference height must be positive, got %.2f", p.Name, p.ReferenceHeight)
	}
	if p.Units < 1 {
		return fmt.Errorf("turbine %s: unit count must be at least 1, got %d", p.Name, p.Units)
	}
	if p.LossFraction < 0 || p.LossFraction >= 1 {
		return fmt.Errorf("turbine %s: loss fraction must be in [0,1), got %.3f", p.Name, p.LossFraction)
	}
	return nil
}
