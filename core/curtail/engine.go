package curtail

import (
	"fmt"
	"math"
	"time"

	"github.com/ovrim/windcurb/core/logger"
	"github.com/ovrim/windcurb/core/model"
)

const dateLayout = "2006-01-02"

// Window is the per-day restricted interval derived from sun times.
// Timestamps at or before RestrictedStart, or at or after
// RestrictedEnd, fall into the restricted period of the day.
type Window struct {
	Date            time.Time
	RestrictedStart time.Time // sunrise + buffer
	RestrictedEnd   time.Time // sunset - buffer
}

// Correction carries the per-threshold corrected power columns for one
// row. Both start equal to the uncorrected estimate; the engine zeroes
// them independently.
type Correction struct {
	BlanketKW float64
	SmartKW   float64
}

// Engine evaluates curtailment rules for one season of one year. The
// per-date window table is built once and only read afterwards, so an
// Engine is safe for concurrent row evaluation.
type Engine struct {
	cfg         Config
	seasonStart time.Time
	seasonEnd   time.Time
	windows     map[string]Window
	log         logger.Logger
}

// NewEngine derives the per-day windows for every sun-data entry whose
// date falls inside the season of the given year. Days whose daylight
// is too short to leave a work window (restricted start at or after
// restricted end) are dropped and never curtail.
func NewEngine(cfg Config, sun []model.SunTimes, year int, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("curtailment config: %w", err)
	}
	loc := time.UTC
	if len(sun) > 0 {
		loc = sun[0].Date.Location()
	}
	start, end, err := cfg.seasonRange(year, loc)
	if err != nil {
		return nil, err
	}

	windows := make(map[string]Window)
	for _, day := range sun {
		if day.Date.Before(start) || day.Date.After(end) {
			continue
		}
		w := Window{
			Date:            day.Date,
			RestrictedStart: day.Sunrise.Add(cfg.Buffer()),
			RestrictedEnd:   day.Sunset.Add(-cfg.Buffer()),
		}
		if !w.RestrictedStart.Before(w.RestrictedEnd) {
			log.Warnf("day %s has no work window (restricted %s..%s), skipping",
				day.Date.Format(dateLayout), w.RestrictedStart.Format("15:04"), w.RestrictedEnd.Format("15:04"))
			continue
		}
		key := day.Date.Format(dateLayout)
		if _, dup := windows[key]; dup {
			log.Warnf("duplicate sun data for %s, keeping first entry", key)
			continue
		}
		windows[key] = w
	}
	log.Infof("derived %d curtailment windows for season %s..%s %d", len(windows), cfg.SeasonStart, cfg.SeasonEnd, year)

	return &Engine{
		cfg:         cfg,
		seasonStart: start,
		seasonEnd:   end,
		windows:     windows,
		log:         log,
	}, nil
}

// Thresholds returns the configured cut-in thresholds.
func (e *Engine) Thresholds() []float64 {
	return append([]float64(nil), e.cfg.Thresholds...)
}

// WindowFor returns the restricted window of the timestamp's calendar
// day, if one was derived.
func (e *Engine) WindowFor(ts time.Time) (Window, bool) {
	w, ok := e.windows[ts.Format(dateLayout)]
	return w, ok
}

// NewCorrections builds the per-threshold corrected columns for a row,
// both initialized to the uncorrected power.
func (e *Engine) NewCorrections(powerKW float64) map[float64]Correction {
	corr := make(map[float64]Correction, len(e.cfg.Thresholds))
	for _, thr := range e.cfg.Thresholds {
		corr[thr] = Correction{BlanketKW: powerKW, SmartKW: powerKW}
	}
	return corr
}

// Evaluate applies the blanket and smart rules to one row. Rows
// outside the season, on days without sun data, inside the daily work
// window, or with a missing wind-speed value pass through unchanged.
// Each threshold is evaluated independently.
func (e *Engine) Evaluate(ts time.Time, hubWindSpeed, temperatureC, precipitationMm float64, corrections map[float64]Correction) {
	if ts.Before(e.seasonStart) || ts.After(e.seasonEnd) {
		return
	}
	w, ok := e.WindowFor(ts)
	if !ok {
		return
	}
	if ts.After(w.RestrictedStart) && ts.Before(w.RestrictedEnd) {
		// Inside the daily work window.
		return
	}
	if math.IsNaN(hubWindSpeed) || math.IsInf(hubWindSpeed, 0) {
		// Cannot determine, do not curtail.
		return
	}
	for thr, c := range corrections {
		if hubWindSpeed > thr {
			continue
		}
		c.BlanketKW = 0
		if temperatureC > e.cfg.SmartMinTempC && precipitationMm < e.cfg.SmartMaxPrecipMm {
			c.SmartKW = 0
		}
		corrections[thr] = c
	}
}
