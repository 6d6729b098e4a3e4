package model

import (
	"math"
	"time"
)

// WeatherSample is one meteorological observation, typically hourly.
// Missing numeric readings are carried as NaN rather than zero so that
// downstream stages can tell "no data" from "calm and dry".
type WeatherSample struct {
	Timestamp       time.Time
	WindSpeedRef    float64 // m/s at the reference height
	TemperatureC    float64
	PressureKPa     float64
	PrecipitationMm float64
	Roughness       float64 // m, seasonal surface roughness at the site
}

// HasWindSpeed reports whether the sample carries a usable wind-speed
// reading.
func (s WeatherSample) HasWindSpeed() bool {
	return !math.IsNaN(s.WindSpeedRef) && !math.IsInf(s.WindSpeedRef, 0)
}

// SunTimes gives the sunrise and sunset instants for one calendar day
// at a turbine site.
type SunTimes struct {
	Date    time.Time // midnight of the day, site-local clock
	Sunrise time.Time
	Sunset  time.Time
}

// ObservedPower is one farm-level power reading aligned with the
// weather series.
type ObservedPower struct {
	Timestamp time.Time
	PowerKW   float64
}
