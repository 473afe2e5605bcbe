package domain

import (
	"bytes"
	"encoding/json"
)

// RawCurrent is the OpenWeather current-conditions payload. Every field is
// optional; the normalizer fills gaps with defaults.
type RawCurrent struct {
	Dt      *int64          `json:"dt"`
	Main    *RawMain        `json:"main"`
	Clouds  *RawClouds      `json:"clouds"`
	Wind    *RawWind        `json:"wind"`
	Rain    json.RawMessage `json:"rain"` // usually {"1h": mm}; anything else is ignored
	Weather []RawCondition  `json:"weather"`
}

// UnmarshalJSON treats a bare array as an empty payload so that every field
// falls back to its default.
func (c *RawCurrent) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		*c = RawCurrent{}
		return nil
	}
	type plain RawCurrent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = RawCurrent(p)
	return nil
}

// RawMain holds the thermodynamic block shared by current and forecast payloads.
type RawMain struct {
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
}

// RawClouds holds cloud cover.
type RawClouds struct {
	All *float64 `json:"all"`
}

// RawWind holds wind speed.
type RawWind struct {
	Speed *float64 `json:"speed"`
}

// RawCondition is one weather[] entry.
type RawCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// RawForecast is the OpenWeather 5-day/3-hour forecast payload.
type RawForecast struct {
	List []RawForecastEntry `json:"list"`
}

// UnmarshalJSON accepts either the usual {"list": [...]} envelope or a bare
// array of entries.
func (f *RawForecast) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		return json.Unmarshal(data, &f.List)
	}
	type envelope RawForecast
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*f = RawForecast(env)
	return nil
}

// RawForecastEntry is one list[] element of the forecast payload.
type RawForecastEntry struct {
	Dt      *int64          `json:"dt"`
	Main    *RawMain        `json:"main"`
	Clouds  *RawClouds      `json:"clouds"`
	Wind    *RawWind        `json:"wind"`
	Rain    json.RawMessage `json:"rain"` // usually {"3h": mm}
	Weather []RawCondition  `json:"weather"`
}

// RawPrecipitation is the YOLP weather payload.
type RawPrecipitation struct {
	Feature []RawPrecipitationFeature `json:"Feature"`
}

// UnmarshalJSON accepts either the usual {"Feature": [...]} envelope or a
// bare array of features.
func (p *RawPrecipitation) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		return json.Unmarshal(data, &p.Feature)
	}
	type envelope RawPrecipitation
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = RawPrecipitation(env)
	return nil
}

// RawPrecipitationFeature is one Feature[] element.
type RawPrecipitationFeature struct {
	Property struct {
		WeatherList struct {
			Weather []RawRainfall `json:"Weather"`
		} `json:"WeatherList"`
	} `json:"Property"`
}

// RawRainfall is one 5-minute rainfall sample.
type RawRainfall struct {
	Type     string   `json:"Type"` // "observation" or "forecast"
	Date     string   `json:"Date"` // YYYYMMDDHHmm, JST
	Rainfall *float64 `json:"Rainfall"`
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
