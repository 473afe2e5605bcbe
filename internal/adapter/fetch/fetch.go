// Package fetch performs single-attempt JSON GETs against weather providers.
//
// Every call is bounded by the client timeout and never retried. Each
// Fetcher owns a circuit breaker scoped to one run: once a provider has
// failed maxFailures times in a row, the remaining calls for that provider
// fail fast instead of each waiting out its own timeout.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/laundry-alert/internal/domain"
	"github.com/couchcryptid/laundry-alert/internal/observability"
	"github.com/sony/gobreaker/v2"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// Fetcher issues GET requests for one provider.
type Fetcher struct {
	provider   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a Fetcher. maxFailures is the number of consecutive failures
// that opens the breaker; zero disables tripping.
func New(provider string, timeout time.Duration, maxFailures uint32, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return NewWithClient(provider, &http.Client{Timeout: timeout}, maxFailures, metrics, logger)
}

// NewWithClient creates a Fetcher around a caller-provided http.Client.
func NewWithClient(provider string, httpClient *http.Client, maxFailures uint32, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		// A run is short; once open the breaker stays open for the rest of it.
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	return &Fetcher{
		provider:   provider,
		httpClient: httpClient,
		breaker:    cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// GetJSON fetches fullURL and decodes the body into out. source labels the
// call in errors and metrics. Any failure is returned as *domain.ProviderError.
func (f *Fetcher) GetJSON(ctx context.Context, source, fullURL string, out any) error {
	start := time.Now()
	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.get(ctx, fullURL)
	})
	f.metrics.ProviderDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err == nil {
		if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
			err = &domain.ProviderError{Source: source, Reason: domain.ReasonMalformed, Err: fmt.Errorf("decode response: %w", decodeErr)}
		}
	}
	if err != nil {
		f.metrics.ProviderRequests.WithLabelValues(source, "error").Inc()
		return f.providerError(source, err)
	}

	f.metrics.ProviderRequests.WithLabelValues(source, "success").Inc()
	return nil
}

func (f *Fetcher) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, redactURL(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: truncate(body, 256)}
	}
	return body, nil
}

func (f *Fetcher) providerError(source string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	reason := domain.ReasonTransport
	var se *statusError
	var ne net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		reason = domain.ReasonCircuitOpen
	case errors.As(err, &se):
		reason = domain.ReasonStatus
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		reason = domain.ReasonTimeout
	}
	return &domain.ProviderError{Source: source, Reason: reason, Err: err}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// redactURL strips the query string, which carries the API credential, from
// transport errors before they reach the logs.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, parseErr := url.Parse(ue.URL); parseErr == nil {
			u.RawQuery = ""
			ue.URL = u.String()
		}
	}
	return err
}
