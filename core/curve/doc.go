// Package curve models a manufacturer power curve as an ordered set of
// (wind speed, power) samples. It supports the forward lookup used for
// power estimation and the inverse lookup used to back-calculate the
// hub-height wind speed from observed power.
package curve
