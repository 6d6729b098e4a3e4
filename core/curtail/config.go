package curtail

import (
	"fmt"
	"time"
)

const monthDayLayout = "01-02"

// Config defines the curtailment season and the candidate cut-in
// thresholds to evaluate. Season boundaries are month-day strings
// re-anchored to the processing year.
type Config struct {
	// SeasonStart and SeasonEnd bound the restricted season, format "MM-DD".
	SeasonStart string `json:"season_start"`
	SeasonEnd   string `json:"season_end"`
	// Thresholds is the set of candidate cut-in speeds in m/s. Each is
	// evaluated independently.
	Thresholds []float64 `json:"thresholds"`
	// BufferMinutes is the margin applied after sunrise and before sunset.
	BufferMinutes int `json:"buffer_minutes"`
	// SmartMinTempC and SmartMaxPrecipMm gate the smart rule: only warm,
	// dry conditions justify the additional stop.
	SmartMinTempC    float64 `json:"smart_min_temp_c"`
	SmartMaxPrecipMm float64 `json:"smart_max_precip_mm"`
}

// SetDefaults applies the regulatory defaults.
func (c *Config) SetDefaults() {
	if c.SeasonStart == "" {
		c.SeasonStart = "07-15"
	}
	if c.SeasonEnd == "" {
		c.SeasonEnd = "09-30"
	}
	if len(c.Thresholds) == 0 {
		c.Thresholds = []float64{5.0, 5.5, 6.0, 6.5, 7.0, 7.5, 8.0}
	}
	if c.BufferMinutes == 0 {
		c.BufferMinutes = 60
	}
	if c.SmartMinTempC == 0 {
		c.SmartMinTempC = 9.5
	}
	if c.SmartMaxPrecipMm == 0 {
		c.SmartMaxPrecipMm = 1
	}
}

// Validate checks the season bounds and threshold set.
func (c Config) Validate() error {
	start, err := time.Parse(monthDayLayout, c.SeasonStart)
	if err != nil {
		return fmt.Errorf("invalid season_start %q: %w", c.SeasonStart, err)
	}
	end, err := time.Parse(monthDayLayout, c.SeasonEnd)
	if err != nil {
		return fmt.Errorf("invalid season_end %q: %w", c.SeasonEnd, err)
	}
	if end.Before(start) {
		return fmt.Errorf("season_end %s precedes season_start %s", c.SeasonEnd, c.SeasonStart)
	}
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("at least one cut-in threshold is required")
	}
	for _, thr := range c.Thresholds {
		if thr <= 0 {
			return fmt.Errorf("cut-in threshold must be positive, got %.2f", thr)
		}
	}
	if c.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must not be negative")
	}
	return nil
}

// Buffer returns the sunrise/sunset margin as a duration.
func (c Config) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

// seasonRange anchors the month-day bounds to the given year. Both
// boundaries are midnight instants and the range is inclusive.
func (c Config) seasonRange(year int, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.Parse(monthDayLayout, c.SeasonStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season_start %q: %w", c.SeasonStart, err)
	}
	end, err := time.Parse(monthDayLayout, c.SeasonEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season_end %q: %w", c.SeasonEnd, err)
	}
	s := time.Date(year, start.Month(), start.Day(), 0, 0, 0, 0, loc)
	e := time.Date(year, end.Month(), end.Day(), 0, 0, 0, 0, loc)
	return s, e, nil
}
