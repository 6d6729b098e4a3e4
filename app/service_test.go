package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovrim/windcurb/config"
)

// fixtureConfig lays out a complete single-turbine data directory and
// returns a configuration pointing at it.
func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	turbines := write("turbines.csv",
		"Asset Name,Nearby_Station,Model,hub_height,number_of_turbines,total_capacity_MW,"+
			"Summer Jun-Jul,Pre-harvest Aug,Post-harvest/pre-snow Sep-Nov,Snow covered Dec-Feb,Spring Mar-May\n"+
			"Test Farm,TESTSTN,T1000,80,2,2.0,0.1,0.1,0.1,0.1,0.1\n")
	write("T1000.txt", "wind\tpower\n0\t0\n3\t0\n12\t1000\n25\t1000\n")
	write("TESTSTN_2020_filled.csv",
		"Date/Time (LST),Temp (°C),Wind Spd (km/h),Precip. Amount (mm)\n"+
			"2020-07-20 06:30,15,14.4,0\n"+
			"2020-07-20 12:00,18,14.4,0\n"+
			"2020-07-20 23:00,12,36,0\n")
	sun := write("sun_times.csv",
		"turbine_name,date,rise,set\nTest Farm,Jul 20 2005,06:00,20:00\n")
	write("Test Farm_2020_volumes.csv",
		"Date/Time (LST),Volume\n"+
			"2020-07-20 06:30,1000\n"+
			"2020-07-20 12:00,1000\n"+
			"2020-07-20 23:00,2000\n")

	cfg := &config.Config{}
	cfg.Physics.SetDefaults()
	cfg.Curtailment.SetDefaults()
	cfg.Run.SetDefaults()
	cfg.Run.Year = 2020
	cfg.Paths.TurbineTable = turbines
	cfg.Paths.CurveDir = dir
	cfg.Paths.WeatherDir = dir
	cfg.Paths.SunTimes = sun
	cfg.Paths.ObservedDir = dir
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	return cfg
}

func readSummary(t *testing.T, cfg *config.Config) RunSummary {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "Test Farm_2020_summary.json"))
	require.NoError(t, err)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	return summary
}

func TestServiceRun(t *testing.T) {
	cfg := fixtureConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.NoError(t, svc.Run(context.Background()))

	summary := readSummary(t, cfg)
	assert.Equal(t, "Test Farm", summary.Turbine)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 0, summary.FallbackRows)
	assert.Greater(t, summary.MeanPowerKW, 0.0)
	require.Len(t, summary.Losses, 7)

	// 14.4 km/h at the reference height extrapolates to about 5.8 m/s at
	// 80 m hub height. The 06:30 row sits in the restricted morning
	// period, so thresholds above that speed curtail exactly one row;
	// thresholds below it curtail none. The 23:00 row is restricted too
	// but far above every threshold, and the noon row is in the work
	// window.
	byThr := map[float64]int{}
	for _, l := range summary.Losses {
		byThr[l.Threshold] = l.BlanketRows
	}
	assert.Equal(t, 0, byThr[5.0])
	assert.Equal(t, 0, byThr[5.5])
	assert.Equal(t, 1, byThr[6.0])
	assert.Equal(t, 1, byThr[8.0])

	data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "Test Farm_2020_estimated.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "blanket_6.0")
	assert.Contains(t, lines[0], "smart_8.0")
}

func TestServiceRunBackCalc(t *testing.T) {
	cfg := fixtureConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.NoError(t, svc.RunBackCalc(context.Background()))

	summary := readSummary(t, cfg)
	require.NotNil(t, summary.WindSpeeds)
	assert.Equal(t, 3, summary.WindSpeeds.N)

	data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "Test Farm_2020_backcalc.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	// 1000 kW over 2 units is 500 kW per unit, which the curve inverts
	// to 6 m/s.
	assert.True(t, strings.HasSuffix(lines[1], ",6"))
}

func TestServiceRunUnknownTurbine(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Run.Turbine = "does-not-exist"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.Error(t, svc.Run(context.Background()))
}
