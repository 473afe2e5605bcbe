package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Neutral values substituted when a provider omits a field.
const (
	DefaultHumidityPct   = 50
	DefaultCloudCoverPct = 0
	DefaultTemperatureC  = 0.0
)

// yolpDateLayout is the YOLP sample timestamp format.
const yolpDateLayout = "200601021504"

// jst is Japan Standard Time, the zone YOLP timestamps are expressed in.
var jst = time.FixedZone("JST", 9*60*60)

// NormalizeCurrent converts an OpenWeather current-conditions payload into a
// WeatherSnapshot. It never fails: absent blocks take the package defaults
// and a missing observation time falls back to the package clock.
func NormalizeCurrent(raw RawCurrent) WeatherSnapshot {
	condition, description := firstCondition(raw.Weather)

	observedAt := Now()
	if raw.Dt != nil {
		observedAt = time.Unix(*raw.Dt, 0).UTC()
	}

	rain := rainAmount(raw.Rain, "1h")

	return WeatherSnapshot{
		TemperatureC:    temperature(raw.Main),
		HumidityPct:     humidity(raw.Main),
		CloudCoverPct:   cloudCover(raw.Clouds),
		WindSpeedMS:     windSpeed(raw.Wind),
		PrecipitationMM: rain,
		Condition:       condition,
		Description:     description,
		ObservedAt:      observedAt,
	}
}

// NormalizeForecast converts an OpenWeather forecast payload into a
// chronological ForecastSeries. Entries without a timestamp cannot be placed
// in time and are dropped. The result is never nil.
func NormalizeForecast(raw RawForecast) ForecastSeries {
	series := make(ForecastSeries, 0, len(raw.List))
	for _, entry := range raw.List {
		if entry.Dt == nil {
			continue
		}
		condition, description := firstCondition(entry.Weather)
		series = append(series, ForecastPoint{
			At:                time.Unix(*entry.Dt, 0).UTC(),
			TemperatureC:      temperature(entry.Main),
			HumidityPct:       humidity(entry.Main),
			WindSpeedMS:       windSpeed(entry.Wind),
			PrecipitationMM3h: rainAmount(entry.Rain, "3h"),
			Condition:         condition,
			Description:       description,
		})
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].At.Before(series[j].At)
	})
	return series
}

// NormalizePrecipitation converts a YOLP payload into a PrecipitationSignal.
// Samples with no rainfall value or an unparseable date are skipped.
func NormalizePrecipitation(raw RawPrecipitation) PrecipitationSignal {
	var samples []PrecipitationSample
	for _, feature := range raw.Feature {
		for _, w := range feature.Property.WeatherList.Weather {
			if w.Rainfall == nil {
				continue
			}
			at, err := time.ParseInLocation(yolpDateLayout, w.Date, jst)
			if err != nil {
				continue
			}
			samples = append(samples, PrecipitationSample{
				At:               at.UTC(),
				IntensityMMPerHr: *w.Rainfall,
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].At.Before(samples[j].At)
	})
	return NewPrecipitationSignal(samples)
}

func firstCondition(weather []RawCondition) (Condition, string) {
	if len(weather) == 0 {
		return ConditionOther, ""
	}
	return ParseCondition(weather[0].Main), weather[0].Description
}

func temperature(m *RawMain) float64 {
	if m == nil || m.Temp == nil || !finite(*m.Temp) {
		return DefaultTemperatureC
	}
	return *m.Temp
}

func humidity(m *RawMain) int {
	if m == nil || m.Humidity == nil || !finite(*m.Humidity) {
		return DefaultHumidityPct
	}
	return clampPct(*m.Humidity)
}

func cloudCover(c *RawClouds) int {
	if c == nil || c.All == nil || !finite(*c.All) {
		return DefaultCloudCoverPct
	}
	return clampPct(*c.All)
}

func windSpeed(w *RawWind) float64 {
	if w == nil || w.Speed == nil || !finite(*w.Speed) || *w.Speed < 0 {
		return 0
	}
	return *w.Speed
}

// rainAmount reads rain[key] from a rain block, tolerating a missing block,
// a non-object value, or a non-numeric amount. Negative amounts read as 0.
func rainAmount(raw json.RawMessage, key string) float64 {
	if len(raw) == 0 {
		return 0
	}
	var block map[string]any
	if err := json.Unmarshal(raw, &block); err != nil {
		return 0
	}
	v, ok := block[key].(float64)
	if !ok || !finite(v) || v < 0 {
		return 0
	}
	return v
}

func clampPct(v float64) int {
	r := math.Round(v)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	default:
		return int(r)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
