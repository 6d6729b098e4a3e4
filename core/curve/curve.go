package curve

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Sample is a single point of a manufacturer power curve.
type Sample struct {
	WindSpeed float64 // m/s
	Power     float64 // kW
}

// Curve holds the ordered power-curve samples together with the
// power-deduplicated subset used for inverse lookups.
type Curve struct {
	samples []Sample

	// Inverse lookup tables, sorted by power. When two samples share a
	// power value only the lower wind speed is retained, so the inverse
	// resolves to the lower-speed root near cut-out.
	invPower []float64
	invSpeed []float64
}

// New builds a Curve from the given samples. Samples must already be
// ordered by wind speed, as read from the curve file. At least two
// samples are required for interpolation to be defined.
func New(samples []Sample) (*Curve, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("power curve needs at least 2 samples, got %d", len(samples))
	}
	c := &Curve{samples: append([]Sample(nil), samples...)}
	c.buildInverse()
	return c, nil
}

func (c *Curve) buildInverse() {
	firstSpeed := make(map[float64]float64, len(c.samples))
	powers := make([]float64, 0, len(c.samples))
	for _, s := range c.samples {
		if _, seen := firstSpeed[s.Power]; !seen {
			firstSpeed[s.Power] = s.WindSpeed
			powers = append(powers, s.Power)
		}
	}
	sort.Float64s(powers)
	c.invPower = powers
	c.invSpeed = make([]float64, len(powers))
	for i, p := range powers {
		c.invSpeed[i] = firstSpeed[p]
	}
}

// Samples returns a copy of the curve samples.
func (c *Curve) Samples() []Sample {
	return append([]Sample(nil), c.samples...)
}

// LookupPower returns the power for the given wind speed by linear
// interpolation. Outside the sampled wind-speed domain the turbine is
// assumed non-generating and 0 is returned. The result is always finite
// and never negative.
func (c *Curve) LookupPower(windSpeed float64) float64 {
	if math.IsNaN(windSpeed) || math.IsInf(windSpeed, 0) {
		return 0
	}
	first, last := c.samples[0], c.samples[len(c.samples)-1]
	if windSpeed < first.WindSpeed || windSpeed > last.WindSpeed {
		return 0
	}
	i := sort.Search(len(c.samples), func(i int) bool {
		return c.samples[i].WindSpeed >= windSpeed
	})
	if i < len(c.samples) && c.samples[i].WindSpeed == windSpeed {
		return math.Max(0, c.samples[i].Power)
	}
	lo, hi := c.samples[i-1], c.samples[i]
	p := interpolate(windSpeed, lo.WindSpeed, hi.WindSpeed, lo.Power, hi.Power)
	return math.Max(0, p)
}

// LookupWindSpeed returns the wind speed implied by the given power by
// inverse linear interpolation over the deduplicated samples. Outside
// the achievable power range it returns NaN; this is an expected
// outcome near cut-in and cut-out, not an error.
func (c *Curve) LookupWindSpeed(power float64) float64 {
	if math.IsNaN(power) || math.IsInf(power, 0) {
		return math.NaN()
	}
	n := len(c.invPower)
	if power < c.invPower[0] || power > c.invPower[n-1] {
		return math.NaN()
	}
	i := sort.SearchFloat64s(c.invPower, power)
	if i < n && c.invPower[i] == power {
		return c.invSpeed[i]
	}
	return interpolate(power, c.invPower[i-1], c.invPower[i], c.invSpeed[i-1], c.invSpeed[i])
}

// MaxPower returns the highest power value on the curve.
func (c *Curve) MaxPower() float64 {
	return c.invPower[len(c.invPower)-1]
}

// Validate reports recoverable anomalies in the curve data. Warnings do
// not block processing; callers are expected to log them.
func (c *Curve) Validate() []string {
	var warnings []string
	for i := 1; i < len(c.samples); i++ {
		if c.samples[i].WindSpeed < c.samples[i-1].WindSpeed {
			warnings = append(warnings, "wind speeds are not monotonically non-decreasing")
			break
		}
	}
	powers := make([]float64, len(c.samples))
	for i, s := range c.samples {
		powers[i] = s.Power
	}
	if floats.Min(powers) < 0 {
		warnings = append(warnings, "curve contains negative power values")
	}
	return warnings
}

func interpolate(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
