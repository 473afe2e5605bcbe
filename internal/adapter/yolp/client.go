package yolp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/laundry-alert/internal/adapter/fetch"
	"github.com/couchcryptid/laundry-alert/internal/domain"
)

// DefaultBaseURL is the YOLP weather (rainfall) API endpoint.
const DefaultBaseURL = "https://map.yahooapis.jp/weather/V1/place"

// Source labels YOLP calls in errors and metrics.
const Source = "yolp"

// Client implements domain.PrecipitationProvider using the Yahoo! Open Local
// Platform weather API, which returns observed and forecast rainfall in
// 5-minute steps for the next hour.
type Client struct {
	appID   string
	baseURL string
	fetcher *fetch.Fetcher
}

// NewClient creates a YOLP rainfall client.
func NewClient(appID, baseURL string, fetcher *fetch.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{appID: appID, baseURL: baseURL, fetcher: fetcher}
}

// FetchPrecipitation returns the near-term rainfall signal for loc.
func (c *Client) FetchPrecipitation(ctx context.Context, loc domain.Location) (domain.PrecipitationSignal, error) {
	// YOLP takes lon,lat order.
	coords := strconv.FormatFloat(loc.Longitude, 'f', 6, 64) + "," + strconv.FormatFloat(loc.Latitude, 'f', 6, 64)
	params := url.Values{
		"coordinates": {coords},
		"appid":       {c.appID},
		"output":      {"json"},
		"interval":    {"5"},
	}

	var raw domain.RawPrecipitation
	if err := c.fetcher.GetJSON(ctx, Source, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), &raw); err != nil {
		return domain.PrecipitationSignal{}, err
	}
	return domain.NormalizePrecipitation(raw), nil
}
