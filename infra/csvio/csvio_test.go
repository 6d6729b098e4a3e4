package csvio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const turbineTable = `Asset Name,Nearby_Station,Model,hub_height,number_of_turbines,total_capacity_MW,Summer Jun-Jul,Pre-harvest Aug,Post-harvest/pre-snow Sep-Nov,Snow covered Dec-Feb,Spring Mar-May
Castle River,PINCHER CREEK,V47-660,50,55,36.3,0.1,0.25,0.05,0.01,0.03
Summerview,FORT MACLEOD,V80-1800,65,39,70.2,0.12,0.3,0.06,0.01,0.04
`

func TestReadTurbines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Nearby_base.csv", turbineTable)

	profiles, err := ReadTurbines(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	p := profiles[0]
	assert.Equal(t, "Castle River", p.Name)
	assert.Equal(t, "PINCHER CREEK", p.Station)
	assert.Equal(t, "V47-660", p.CurveModel)
	assert.Equal(t, 50.0, p.HubHeight)
	assert.Equal(t, 55, p.Units)
	assert.InDelta(t, 36300, p.RatedCapacityKW, 1e-9)
	assert.Equal(t, 0.25, p.Roughness.PreHarvest)
	assert.Equal(t, 0.01, p.Roughness.SnowCovered)
}

func TestReadTurbinesMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.csv", "Asset Name,hub_height\nCastle River,50\n")
	_, err := ReadTurbines(path)
	require.Error(t, err)
}

func TestFindTurbine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Nearby_base.csv", turbineTable)
	profiles, err := ReadTurbines(path)
	require.NoError(t, err)

	p, err := FindTurbine(profiles, "castle")
	require.NoError(t, err)
	assert.Equal(t, "Castle River", p.Name)

	_, err = FindTurbine(profiles, "nonexistent")
	require.Error(t, err)
}

func TestReadPowerCurve(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "V47-660.txt", "wind\tpower\n0\t0\n3\t0\n12\t660\n25\t660\n")

	c, err := ReadPowerCurve(path)
	require.NoError(t, err)
	assert.InDelta(t, 660*(6.0-3.0)/9.0, c.LookupPower(6), 1e-9)
}

func TestReadPowerCurveTooShort(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "short.txt", "wind\tpower\n3\t0\n")
	_, err := ReadPowerCurve(path)
	require.Error(t, err)
}

func TestReadWeather(t *testing.T) {
	dir := t.TempDir()
	content := "Date/Time (LST),Temp (°C),Wind Spd (km/h),Precip. Amount (mm),Stn Press (kPa)\n" +
		"2020-07-20 12:00,15.5,36,0,95.5\n" +
		"2020-07-20 13:00,16.1,,0.2,95.4\n"
	path := writeFile(t, dir, "PINCHER CREEK_2020_filled.csv", content)

	samples, err := ReadWeather(path, 0.27778)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, time.Date(2020, 7, 20, 12, 0, 0, 0, time.UTC), samples[0].Timestamp)
	assert.InDelta(t, 36*0.27778, samples[0].WindSpeedRef, 1e-9)
	assert.Equal(t, 15.5, samples[0].TemperatureC)
	assert.Equal(t, 95.5, samples[0].PressureKPa)
	// Missing wind reading is carried as NaN, not zero.
	assert.True(t, math.IsNaN(samples[1].WindSpeedRef))
}

func TestReadWeatherMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "w.csv", "Date/Time (LST),Temp (°C)\n2020-07-20 12:00,15\n")
	_, err := ReadWeather(path, 0.27778)
	require.Error(t, err)
}

func TestReadSunTimes(t *testing.T) {
	dir := t.TempDir()
	content := "turbine_name,date,rise,set\n" +
		"Castle River,Jul 20 2005,06:02,20:45\n" +
		"Castle River,Jul 21 2005,06:03,20:44\n" +
		"Other,Jul 20 2005,06:10,20:40\n"
	path := writeFile(t, dir, "Sun.csv", content)

	sun, err := ReadSunTimes(path, "Castle River", 2020)
	require.NoError(t, err)
	require.Len(t, sun, 2)

	assert.Equal(t, time.Date(2020, 7, 20, 0, 0, 0, 0, time.UTC), sun[0].Date)
	assert.Equal(t, time.Date(2020, 7, 20, 6, 2, 0, 0, time.UTC), sun[0].Sunrise)
	assert.Equal(t, time.Date(2020, 7, 20, 20, 45, 0, 0, time.UTC), sun[0].Sunset)

	_, err = ReadSunTimes(path, "Missing", 2020)
	require.Error(t, err)
}

func TestReadObservedPower(t *testing.T) {
	dir := t.TempDir()
	content := "Date/Time (LST),Volume\n2020-07-20 12:00,12000\n2020-07-20 13:00,\n"
	path := writeFile(t, dir, "Castle River_2020.csv", content)

	observed, err := ReadObservedPower(path)
	require.NoError(t, err)
	require.Len(t, observed, 2)
	assert.Equal(t, 12000.0, observed[0].PowerKW)
	assert.True(t, math.IsNaN(observed[1].PowerKW))
}

func TestFindInputFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "PINCHER CREEK_2020_filled.csv", "x")
	writeFile(t, dir, "unrelated.csv", "x")

	path, err := FindInputFile(dir, "PINCHER CREEK", 2020)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PINCHER CREEK_2020_filled.csv"), path)

	_, err = FindInputFile(dir, "NOWHERE", 2020)
	require.Error(t, err)
}

func TestFindObservedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "export_Castle River_2020_hourly.csv", "x")

	path, err := FindObservedFile(dir, "Castle River", 2020)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export_Castle River_2020_hourly.csv"), path)
}
