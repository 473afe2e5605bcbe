package domain

import (
	"strings"
	"time"
)

// Location is one monitored area.
type Location struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Condition is the canonical weather condition group.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionOther        Condition = "Other"
)

// ParseCondition maps a provider condition string onto the canonical set.
// Unrecognized or empty values map to ConditionOther.
func ParseCondition(s string) Condition {
	s = strings.TrimSpace(s)
	for _, c := range []Condition{
		ConditionClear, ConditionClouds, ConditionRain, ConditionSnow,
		ConditionDrizzle, ConditionThunderstorm,
	} {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return ConditionOther
}

// Wet reports whether the condition means water is falling.
func (c Condition) Wet() bool {
	switch c {
	case ConditionRain, ConditionSnow, ConditionDrizzle, ConditionThunderstorm:
		return true
	default:
		return false
	}
}

// WeatherSnapshot is the normalized current conditions for one area.
type WeatherSnapshot struct {
	TemperatureC    float64   `json:"temperature_c"`
	HumidityPct     int       `json:"humidity_pct"`
	CloudCoverPct   int       `json:"cloud_cover_pct"`
	WindSpeedMS     float64   `json:"wind_speed_ms"`
	PrecipitationMM float64   `json:"precipitation_mm_1h"`
	Condition       Condition `json:"condition"`
	Description     string    `json:"description,omitempty"`
	ObservedAt      time.Time `json:"observed_at"`
}

// ForecastPoint is one forecast interval, nominally three hours wide.
type ForecastPoint struct {
	At                time.Time `json:"at"`
	TemperatureC      float64   `json:"temperature_c"`
	HumidityPct       int       `json:"humidity_pct"`
	WindSpeedMS       float64   `json:"wind_speed_ms"`
	PrecipitationMM3h float64   `json:"precipitation_mm_3h"`
	Condition         Condition `json:"condition"`
	Description       string    `json:"description,omitempty"`
}

// ForecastSeries is a chronologically ordered list of forecast points.
type ForecastSeries []ForecastPoint

// Nearest returns the earliest point in the series, or nil when it is empty.
func (s ForecastSeries) Nearest() *ForecastPoint {
	if len(s) == 0 {
		return nil
	}
	p := s[0]
	return &p
}

// PrecipitationSample is one hyperlocal rainfall reading.
type PrecipitationSample struct {
	At               time.Time `json:"at"`
	IntensityMMPerHr float64   `json:"intensity_mm_per_hr"`
}

// PrecipitationSignal summarizes a hyperlocal rainfall feed. Build it with
// NewPrecipitationSignal so MaxIntensityMMPerHr always matches Samples.
type PrecipitationSignal struct {
	MaxIntensityMMPerHr float64               `json:"max_intensity_mm_per_hr"`
	Samples             []PrecipitationSample `json:"samples"`
}

// NewPrecipitationSignal builds a signal from samples, clamping negative
// intensities to zero and recording the maximum.
func NewPrecipitationSignal(samples []PrecipitationSample) PrecipitationSignal {
	out := make([]PrecipitationSample, len(samples))
	var peak float64
	for i, s := range samples {
		if s.IntensityMMPerHr < 0 {
			s.IntensityMMPerHr = 0
		}
		if s.IntensityMMPerHr > peak {
			peak = s.IntensityMMPerHr
		}
		out[i] = s
	}
	return PrecipitationSignal{MaxIntensityMMPerHr: peak, Samples: out}
}

// Accent is the coarse band a score falls into.
type Accent string

const (
	AccentGood   Accent = "Good"
	AccentFair   Accent = "Fair"
	AccentPoor   Accent = "Poor"
	AccentSevere Accent = "Severe"
)

// Trigger records which signal, if any, forced the score to zero.
type Trigger string

const (
	TriggerNone              Trigger = "none"
	TriggerPrecipitation     Trigger = "precipitation"
	TriggerCurrentCondition  Trigger = "current_condition"
	TriggerForecastCondition Trigger = "forecast_condition"
)

// ScoreResult is the dryability verdict for one area.
type ScoreResult struct {
	Score            int     `json:"score"`
	Status           string  `json:"status"`
	Advisory         string  `json:"advisory"`
	Accent           Accent  `json:"accent"`
	Trigger          Trigger `json:"trigger"`
	IntensityMMPerHr float64 `json:"intensity_mm_per_hr,omitempty"`
}

// AreaAlert is the per-area alert verdict.
type AreaAlert struct {
	Location Location
	Severe   bool
	// Reason is a short human description of what was detected.
	Reason string
}

// AlertDecision is the aggregated notify-or-not outcome for a run.
type AlertDecision struct {
	ShouldNotify bool
	Message      string
	Areas        []string
}

// Reading is everything one run learned about one area.
type Reading struct {
	RunID           string               `json:"run_id"`
	Location        Location             `json:"location"`
	Current         WeatherSnapshot      `json:"current"`
	HasCurrent      bool                 `json:"has_current"`
	Forecast        ForecastSeries       `json:"forecast"`
	Precipitation   *PrecipitationSignal `json:"precipitation,omitempty"`
	Result          ScoreResult          `json:"result"`
	DegradedSources []string             `json:"degraded_sources,omitempty"`
	ScoredAt        time.Time            `json:"scored_at"`
}

// Degraded reports whether any data source failed for this area.
func (r Reading) Degraded() bool {
	return len(r.DegradedSources) > 0
}
