package curtail

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovrim/windcurb/core/model"
	"github.com/ovrim/windcurb/infra/logger"
)

func testConfig() Config {
	cfg := Config{Thresholds: []float64{5.0, 6.5}}
	cfg.SetDefaults()
	return cfg
}

func sunDay(year int, month time.Month, day, riseHour, setHour int) model.SunTimes {
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return model.SunTimes{
		Date:    date,
		Sunrise: date.Add(time.Duration(riseHour) * time.Hour),
		Sunset:  date.Add(time.Duration(setHour) * time.Hour),
	}
}

func seasonSun(year int) []model.SunTimes {
	var sun []model.SunTimes
	for d := time.Date(year, 7, 15, 0, 0, 0, 0, time.UTC); !d.After(time.Date(year, 9, 30, 0, 0, 0, 0, time.UTC)); d = d.AddDate(0, 0, 1) {
		sun = append(sun, model.SunTimes{
			Date:    d,
			Sunrise: d.Add(6 * time.Hour),
			Sunset:  d.Add(20 * time.Hour),
		})
	}
	return sun
}

func newEngine(t *testing.T, cfg Config, sun []model.SunTimes) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, sun, 2020, logger.NopLogger{})
	require.NoError(t, err)
	return e
}

func TestWindowDerivation(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})
	w, ok := e.WindowFor(time.Date(2020, 8, 10, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 8, 10, 7, 0, 0, 0, time.UTC), w.RestrictedStart)
	assert.Equal(t, time.Date(2020, 8, 10, 19, 0, 0, 0, time.UTC), w.RestrictedEnd)
}

func TestWindowOutsideSeasonDropped(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 6, 1, 6, 20)})
	_, ok := e.WindowFor(time.Date(2020, 6, 1, 5, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestShortDaylightContributesNoWindow(t *testing.T) {
	// Sunrise 10:00, sunset 11:00: buffers invert the window.
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 10, 11)})
	_, ok := e.WindowFor(time.Date(2020, 8, 10, 4, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 4, 0, 0, 0, time.UTC), 3.0, 12, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)
}

func TestBlanketRule(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})

	// 06:30 is before the 07:00 restricted start: restricted.
	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 4.0, 5, 0, corr)
	assert.Equal(t, 0.0, corr[5.0].BlanketKW)
	assert.Equal(t, 0.0, corr[6.5].BlanketKW)
	// Cold morning: smart columns keep the power.
	assert.Equal(t, 400.0, corr[5.0].SmartKW)
	assert.Equal(t, 400.0, corr[6.5].SmartKW)

	// Midday is inside the work window: unchanged.
	corr = e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 12, 0, 0, 0, time.UTC), 4.0, 5, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)
}

func TestSmartRule(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})

	// Warm and dry: both rules zero the power.
	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 4.0, 10, 0, corr)
	assert.Equal(t, 0.0, corr[5.0].BlanketKW)
	assert.Equal(t, 0.0, corr[5.0].SmartKW)

	// Wet: smart keeps the power.
	corr = e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 4.0, 10, 2, corr)
	assert.Equal(t, 0.0, corr[5.0].BlanketKW)
	assert.Equal(t, 400.0, corr[5.0].SmartKW)

	// Exactly at the temperature gate: not strictly warmer, smart keeps.
	corr = e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 4.0, 9.5, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].SmartKW)
}

func TestThresholdIndependence(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})
	corr := e.NewCorrections(400)
	// Wind between the two thresholds: only the higher one curtails.
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 5.5, 12, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)
	assert.Equal(t, 0.0, corr[6.5].BlanketKW)
}

func TestThresholdMonotonicity(t *testing.T) {
	cfg := Config{Thresholds: []float64{5.0, 5.5, 6.0, 6.5, 7.0, 7.5, 8.0}}
	cfg.SetDefaults()
	e := newEngine(t, cfg, []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})
	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), 5.2, 12, 0, corr)
	curtailedAbove := false
	for _, thr := range e.Thresholds() {
		curtailed := corr[thr].BlanketKW == 0
		if curtailedAbove && !curtailed {
			t.Fatalf("threshold %.1f not curtailed although a lower one was", thr)
		}
		if curtailed {
			curtailedAbove = true
		}
	}
	assert.True(t, curtailedAbove)
}

func TestMissingWindSpeedNeverCurtails(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})
	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 8, 10, 6, 30, 0, 0, time.UTC), math.NaN(), 12, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)
	assert.Equal(t, 400.0, corr[5.0].SmartKW)
}

func TestSeasonBoundary(t *testing.T) {
	e := newEngine(t, testConfig(), seasonSun(2020))

	// One second before the season start is never curtailed.
	corr := e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 7, 14, 23, 59, 59, 0, time.UTC), 1.0, 12, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)

	// Exactly at the season start is eligible. Midnight precedes the
	// restricted start, so the blanket rule fires.
	corr = e.NewCorrections(400)
	e.Evaluate(time.Date(2020, 7, 15, 0, 0, 0, 0, time.UTC), 1.0, 12, 0, corr)
	assert.Equal(t, 0.0, corr[5.0].BlanketKW)
}

func TestNoSunDataNoCorrection(t *testing.T) {
	e := newEngine(t, testConfig(), []model.SunTimes{sunDay(2020, 8, 10, 6, 20)})
	corr := e.NewCorrections(400)
	// In season, but no sun entry for Aug 11.
	e.Evaluate(time.Date(2020, 8, 11, 6, 30, 0, 0, time.UTC), 1.0, 12, 0, corr)
	assert.Equal(t, 400.0, corr[5.0].BlanketKW)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate())

	bad := testConfig()
	bad.SeasonStart = "13-40"
	assert.Error(t, bad.Validate())

	bad = testConfig()
	bad.SeasonEnd = "01-01"
	assert.Error(t, bad.Validate())

	bad = testConfig()
	bad.Thresholds = []float64{-1}
	assert.Error(t, bad.Validate())
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "07-15", cfg.SeasonStart)
	assert.Equal(t, "09-30", cfg.SeasonEnd)
	assert.Len(t, cfg.Thresholds, 7)
	assert.Equal(t, time.Hour, cfg.Buffer())
	assert.Equal(t, 9.5, cfg.SmartMinTempC)
	assert.Equal(t, 1.0, cfg.SmartMaxPrecipMm)
}
