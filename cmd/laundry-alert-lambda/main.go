// Command laundry-alert-lambda runs one alert cycle per invocation. It is
// meant to be triggered by an EventBridge schedule; the event body is only
// logged.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/couchcryptid/laundry-alert/internal/app"
	"github.com/couchcryptid/laundry-alert/internal/config"
	"github.com/couchcryptid/laundry-alert/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Result is returned to the invoker.
type Result struct {
	RunID        string   `json:"run_id"`
	Outcome      string   `json:"outcome"`
	ShouldNotify bool     `json:"should_notify"`
	Notified     bool     `json:"notified"`
	SevereAreas  []string `json:"severe_areas,omitempty"`
}

type runFunc func(ctx context.Context) (pipeline.Summary, error)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("laundry alert lambda initialized", "areas", len(cfg.Locations))

	lambda.Start(newHandler(func(ctx context.Context) (pipeline.Summary, error) {
		return app.Run(ctx, cfg, logger)
	}, logger))
}

// newHandler wraps a run. Runs that produced no report or found no data are
// returned as errors so the invocation is marked failed.
func newHandler(run runFunc, logger *slog.Logger) func(ctx context.Context, event events.CloudWatchEvent) (Result, error) {
	return func(ctx context.Context, event events.CloudWatchEvent) (Result, error) {
		logger.InfoContext(ctx, "laundry alert invoked", "event_id", event.ID, "source", event.Source)

		summary, err := run(ctx)
		result := Result{
			RunID:        summary.RunID,
			Outcome:      string(summary.Outcome),
			ShouldNotify: summary.Decision.ShouldNotify,
			Notified:     summary.Notified,
			SevereAreas:  summary.Decision.Areas,
		}
		if err != nil {
			return result, fmt.Errorf("laundry alert run %s: %w", summary.Outcome, err)
		}
		return result, nil
	}
}
