// Package app wires configuration into a runnable pipeline. Both the CLI and
// the Lambda entrypoint build their run through here.
package app

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/laundry-alert/internal/adapter/fetch"
	kafkaadapter "github.com/couchcryptid/laundry-alert/internal/adapter/kafka"
	"github.com/couchcryptid/laundry-alert/internal/adapter/line"
	"github.com/couchcryptid/laundry-alert/internal/adapter/openweather"
	"github.com/couchcryptid/laundry-alert/internal/adapter/yolp"
	"github.com/couchcryptid/laundry-alert/internal/config"
	"github.com/couchcryptid/laundry-alert/internal/observability"
	"github.com/couchcryptid/laundry-alert/internal/pipeline"
	"github.com/couchcryptid/laundry-alert/internal/report"
	"github.com/prometheus/client_golang/prometheus"
)

// PushJob is the Pushgateway job name metrics are grouped under.
const PushJob = "laundry_alert"

// Build creates a Pipeline from cfg, registering its metrics with reg.
// Capabilities whose credentials are absent are logged and left disabled.
// The returned close function releases the Kafka writer, if any.
func Build(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*pipeline.Pipeline, func(), error) {
	metrics := observability.NewMetrics(reg)

	renderer, err := report.NewRenderer(cfg.ReportTemplate, cfg.ReportMaxRows, cfg.Timezone)
	if err != nil {
		return nil, nil, err
	}

	for _, missing := range cfg.MissingCapabilities() {
		logger.Warn("capability disabled", "capability", missing.Capability, "missing", missing.Missing)
	}

	opts := pipeline.Options{
		Locations:     cfg.Locations,
		Recipient:     cfg.LineUserID,
		Renderer:      renderer,
		ReportPath:    cfg.ReportOutput,
		ReportURL:     cfg.ReportURL,
		NotifyTimeout: cfg.NotifyTimeout,
		Zone:          cfg.Timezone,
		WriteReport:   report.WriteFile,
	}

	if cfg.ConditionsEnabled() {
		f := fetch.New("openweather", cfg.ProviderTimeout, cfg.ProviderBreakerFailures, metrics, logger)
		opts.Conditions = openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.OpenWeatherLang, f)
		logger.Info("openweather enabled", "timeout", cfg.ProviderTimeout, "lang", cfg.OpenWeatherLang)
	}

	if cfg.PrecipitationEnabled() {
		f := fetch.New(yolp.Source, cfg.ProviderTimeout, cfg.ProviderBreakerFailures, metrics, logger)
		opts.Precipitation = yolp.NewClient(cfg.YOLPAppID, cfg.YOLPBaseURL, f)
		logger.Info("yolp precipitation enabled", "timeout", cfg.ProviderTimeout)
	}

	if cfg.NotifyEnabled() {
		opts.Notifier = line.NewNotifier(cfg.LineChannelToken, cfg.LineBaseURL, cfg.NotifyTimeout, logger)
		logger.Info("line notification enabled")
	}

	closeFn := func() {}
	if cfg.PublishEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		opts.Publisher = writer
		closeFn = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.MetricsPushEnabled() {
		opts.Pusher = observability.NewPusher(cfg.PushgatewayURL, PushJob, reg)
		logger.Info("metrics push enabled", "gateway", cfg.PushgatewayURL)
	}

	return pipeline.New(opts, logger, metrics), closeFn, nil
}

// Run builds a pipeline on a fresh registry and executes one run bounded by
// cfg.RunTimeout.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Summary, error) {
	p, closeFn, err := Build(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return pipeline.Summary{Outcome: pipeline.OutcomeRenderFailed}, err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	return p.Run(ctx)
}
