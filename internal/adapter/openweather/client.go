package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/laundry-alert/internal/adapter/fetch"
	"github.com/couchcryptid/laundry-alert/internal/domain"
)

// DefaultBaseURL is the OpenWeather 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Metric and error sources.
const (
	SourceCurrent  = "openweather_current"
	SourceForecast = "openweather_forecast"
)

// Client implements domain.ConditionsProvider using the OpenWeather API.
type Client struct {
	apiKey  string
	baseURL string
	lang    string
	fetcher *fetch.Fetcher
}

// NewClient creates an OpenWeather client. Current and forecast calls share
// the fetcher's circuit breaker.
func NewClient(apiKey, baseURL, lang string, fetcher *fetch.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		lang:    lang,
		fetcher: fetcher,
	}
}

// FetchCurrent returns normalized current conditions for loc.
func (c *Client) FetchCurrent(ctx context.Context, loc domain.Location) (domain.WeatherSnapshot, error) {
	var raw domain.RawCurrent
	if err := c.fetcher.GetJSON(ctx, SourceCurrent, c.endpoint("weather", loc), &raw); err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return domain.NormalizeCurrent(raw), nil
}

// FetchForecast returns the normalized 3-hour forecast for loc.
func (c *Client) FetchForecast(ctx context.Context, loc domain.Location) (domain.ForecastSeries, error) {
	var raw domain.RawForecast
	if err := c.fetcher.GetJSON(ctx, SourceForecast, c.endpoint("forecast", loc), &raw); err != nil {
		return nil, err
	}
	return domain.NormalizeForecast(raw), nil
}

func (c *Client) endpoint(path string, loc domain.Location) string {
	params := url.Values{
		"lat":   {strconv.FormatFloat(loc.Latitude, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(loc.Longitude, 'f', 4, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	if c.lang != "" {
		params.Set("lang", c.lang)
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
}
