package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/laundry-alert/internal/app"
	"github.com/couchcryptid/laundry-alert/internal/config"
	"github.com/couchcryptid/laundry-alert/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := app.Run(ctx, cfg, logger)
	if err != nil {
		var re *domain.RenderError
		switch {
		case errors.As(err, &re):
			logger.Error("failed to produce report", "stage", re.Stage, "error", err)
		case errors.Is(err, domain.ErrNoData):
			logger.Error("no current conditions for any area", "error", err)
		default:
			logger.Error("run failed", "error", err)
		}
	}

	stop()
	os.Exit(summary.ExitCode())
}
