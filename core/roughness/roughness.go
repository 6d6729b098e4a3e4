// Package roughness maps calendar months to the seasonal surface
// roughness length of a turbine site. Agricultural sites change
// roughness through the growing cycle, so the table carries one value
// per season rather than a single annual constant.
package roughness

import (
	"fmt"
	"time"
)

// Season identifies a land-cover period of the year.
type Season int

const (
	Summer      Season = iota // Jun-Jul
	PreHarvest                // Aug
	PostHarvest               // Sep-Nov, pre-snow
	SnowCovered               // Dec-Feb
	Spring                    // Mar-May
)

// String returns a human-readable season name.
func (s Season) String() string {
	switch s {
	case Summer:
		return "Summer Jun-Jul"
	case PreHarvest:
		return "Pre-harvest Aug"
	case PostHarvest:
		return "Post-harvest/pre-snow Sep-Nov"
	case SnowCovered:
		return "Snow covered Dec-Feb"
	case Spring:
		return "Spring Mar-May"
	default:
		return "unknown"
	}
}

// SeasonFor returns the season a month belongs to.
func SeasonFor(month time.Month) Season {
	switch month {
	case time.June, time.July:
		return Summer
	case time.August:
		return PreHarvest
	case time.September, time.October, time.November:
		return PostHarvest
	case time.December, time.January, time.February:
		return SnowCovered
	default:
		return Spring
	}
}

// Table holds the per-season roughness lengths of a site in metres.
type Table struct {
	Summer      float64 `json:"summer"`
	PreHarvest  float64 `json:"pre_harvest"`
	PostHarvest float64 `json:"post_harvest"`
	SnowCovered float64 `json:"snow_covered"`
	Spring      float64 `json:"spring"`
}

// ForMonth returns the roughness length for the given month.
func (t Table) ForMonth(month time.Month) float64 {
	switch SeasonFor(month) {
	case Summer:
		return t.Summer
	case PreHarvest:
		return t.PreHarvest
	case PostHarvest:
		return t.PostHarvest
	case SnowCovered:
		return t.SnowCovered
	default:
		return t.Spring
	}
}

// Validate checks that every season carries a positive roughness length.
func (t Table) Validate() error {
	values := map[Season]float64{
		Summer:      t.Summer,
		PreHarvest:  t.PreHarvest,
		PostHarvest: t.PostHarvest,
		SnowCovered: t.SnowCovered,
		Spring:      t.Spring,
	}
	for season, v := range values {
		if v <= 0 {
			return fmt.Errorf("invalid roughness %.3f for season %q", v, season)
		}
	}
	return nil
}
