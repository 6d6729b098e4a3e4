// Package power turns meteorological series into estimated electrical
// output and, in the inverse direction, reconstructs the hub-height
// wind speed implied by observed production. Both estimators share the
// power curve and the air-density correction from core/atmosphere.
package power
