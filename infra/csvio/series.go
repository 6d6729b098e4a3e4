package csvio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ovrim/windcurb/core/curve"
	"github.com/ovrim/windcurb/core/model"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ReadPowerCurve loads a tab-separated manufacturer curve file with a
// header row and (wind speed, power) columns.
func ReadPowerCurve(path string) (*curve.Curve, error) {
	_, rows, err := readTable(path, '\t')
	if err != nil {
		return nil, err
	}
	samples := make([]curve.Sample, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 || (field(row, 0) == "" && field(row, 1) == "") {
			continue
		}
		ws, err := requireFloat(path, "wind speed", field(row, 0))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		p, err := requireFloat(path, "power", field(row, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		samples = append(samples, curve.Sample{WindSpeed: ws, Power: p})
	}
	c, err := curve.New(samples)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ReadWeather loads a meteorological series. Wind speed is converted
// from km/h with the given factor. Missing readings become NaN; the
// roughness column is attached later from the turbine's seasonal
// table.
func ReadWeather(path string, windSpeedFactor float64) ([]model.WeatherSample, error) {
	header, rows, err := readTable(path, ',')
	if err != nil {
		return nil, err
	}
	timeIdx, err := columnIndex(path, header, "Date/Time (LST)", "Date/Time")
	if err != nil {
		return nil, err
	}
	windIdx, err := columnIndex(path, header, "Wind Spd (km/h)")
	if err != nil {
		return nil, err
	}
	tempIdx, err := columnIndex(path, header, "Temp (°C)", "Temp (C)")
	if err != nil {
		return nil, err
	}
	precipIdx, err := columnIndex(path, header, "Precip. Amount (mm)")
	if err != nil {
		return nil, err
	}
	// Pressure is optional; older station exports do not carry it.
	pressIdx, pressErr := columnIndex(path, header, "Stn Press (kPa)")

	samples := make([]model.WeatherSample, 0, len(rows))
	for i, row := range rows {
		tsField := field(row, timeIdx)
		if tsField == "" {
			continue
		}
		ts, err := parseTimestamp(tsField)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		s := model.WeatherSample{
			Timestamp:       ts,
			WindSpeedRef:    parseFloat(field(row, windIdx)) * windSpeedFactor,
			TemperatureC:    parseFloat(field(row, tempIdx)),
			PrecipitationMm: parseFloat(field(row, precipIdx)),
			PressureKPa:     math.NaN(),
			Roughness:       math.NaN(),
		}
		if pressErr == nil {
			s.PressureKPa = parseFloat(field(row, pressIdx))
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: no weather rows found", path)
	}
	return samples, nil
}

// ReadSunTimes loads the sunrise/sunset table for one turbine,
// re-anchoring the dates to the processing year.
func ReadSunTimes(path, turbineName string, year int) ([]model.SunTimes, error) {
	header, rows, err := readTable(path, ',')
	if err != nil {
		return nil, err
	}
	turbineIdx, err := columnIndex(path, header, "turbine_name")
	if err != nil {
		return nil, err
	}
	dateIdx, err := columnIndex(path, header, "date")
	if err != nil {
		return nil, err
	}
	riseIdx, err := columnIndex(path, header, "rise")
	if err != nil {
		return nil, err
	}
	setIdx, err := columnIndex(path, header, "set")
	if err != nil {
		return nil, err
	}

	var sun []model.SunTimes
	for i, row := range rows {
		if field(row, turbineIdx) != turbineName {
			continue
		}
		date, err := time.Parse("Jan 2 2006", field(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		date = time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		rise, err := parseClock(field(row, riseIdx))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		set, err := parseClock(field(row, setIdx))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		sun = append(sun, model.SunTimes{
			Date:    date,
			Sunrise: date.Add(rise),
			Sunset:  date.Add(set),
		})
	}
	if len(sun) == 0 {
		return nil, fmt.Errorf("%s: no sun data found for turbine %q", path, turbineName)
	}
	return sun, nil
}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized clock time %q", s)
}

// ReadObservedPower loads the observed farm-level production series.
func ReadObservedPower(path string) ([]model.ObservedPower, error) {
	header, rows, err := readTable(path, ',')
	if err != nil {
		return nil, err
	}
	timeIdx, err := columnIndex(path, header, "Date/Time (LST)", "Date/Time", "time")
	if err != nil {
		return nil, err
	}
	volumeIdx, err := columnIndex(path, header, "Volume")
	if err != nil {
		return nil, err
	}
	var observed []model.ObservedPower
	for i, row := range rows {
		tsField := field(row, timeIdx)
		if tsField == "" {
			continue
		}
		ts, err := parseTimestamp(tsField)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		observed = append(observed, model.ObservedPower{
			Timestamp: ts,
			PowerKW:   parseFloat(field(row, volumeIdx)),
		})
	}
	if len(observed) == 0 {
		return nil, fmt.Errorf("%s: no observed power rows found", path)
	}
	return observed, nil
}

// FindInputFile locates the meteorological file for a station and
// year, preferring the canonical "{station}_{year}_filled.csv" name
// and falling back to any file containing both tokens.
func FindInputFile(dir, station string, year int) (string, error) {
	canonical := filepath.Join(dir, fmt.Sprintf("%s_%d_filled.csv", station, year))
	if _, err := os.Stat(canonical); err == nil {
		return canonical, nil
	}
	return findByTokens(dir, station, year)
}

// FindObservedFile locates the observed production file for a turbine
// and year.
func FindObservedFile(dir, turbine string, year int) (string, error) {
	return findByTokens(dir, turbine, year)
}

func findByTokens(dir, token string, year int) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %s: %w", dir, err)
	}
	yearToken := fmt.Sprintf("%d", year)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, token) && strings.Contains(name, yearToken) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no file matching %q and %d in %s", token, year, dir)
}
