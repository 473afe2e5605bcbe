package domain

import "context"

// ConditionsProvider fetches current conditions and the short-range forecast.
type ConditionsProvider interface {
	FetchCurrent(ctx context.Context, loc Location) (WeatherSnapshot, error)
	FetchForecast(ctx context.Context, loc Location) (ForecastSeries, error)
}

// PrecipitationProvider fetches a hyperlocal near-term rainfall signal.
type PrecipitationProvider interface {
	FetchPrecipitation(ctx context.Context, loc Location) (PrecipitationSignal, error)
}

// Notifier delivers a plain-text message to a recipient.
type Notifier interface {
	Deliver(ctx context.Context, recipient, text string) error
}
