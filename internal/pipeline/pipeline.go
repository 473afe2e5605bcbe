package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/laundry-alert/internal/domain"
	"github.com/couchcryptid/laundry-alert/internal/observability"
	"github.com/couchcryptid/laundry-alert/internal/report"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentAreas bounds in-flight per-area fetches.
const maxConcurrentAreas = 4

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeDegraded     Outcome = "degraded"
	OutcomeNotifyFailed Outcome = "notify_failed"
	OutcomeNoData       Outcome = "no_data"
	OutcomeRenderFailed Outcome = "render_failed"
)

var outcomes = []Outcome{OutcomeOK, OutcomeDegraded, OutcomeNotifyFailed, OutcomeNoData, OutcomeRenderFailed}

// Renderer turns the run's readings into a report document.
type Renderer interface {
	Render(readings []domain.Reading, now time.Time) ([]byte, error)
}

// ReadingPublisher ships readings to an external sink.
type ReadingPublisher interface {
	Publish(ctx context.Context, readings []domain.Reading) error
}

// MetricsPusher sends the run's metrics somewhere they outlive the process.
type MetricsPusher interface {
	Push(ctx context.Context) error
}

// Options wires a Pipeline. Conditions, Precipitation, Notifier, Publisher
// and Pusher may be nil to disable that capability.
type Options struct {
	Locations     []domain.Location
	Conditions    domain.ConditionsProvider
	Precipitation domain.PrecipitationProvider
	Notifier      domain.Notifier
	Recipient     string
	Renderer      Renderer
	Publisher     ReadingPublisher
	Pusher        MetricsPusher
	ReportPath    string
	ReportURL     string
	NotifyTimeout time.Duration
	Zone          *time.Location // forecast times in alert reasons; nil means UTC

	// WriteReport persists the rendered document. Defaults to report.WriteFile.
	WriteReport func(path string, doc []byte) error
}

// Summary reports what a run did.
type Summary struct {
	RunID    string
	Outcome  Outcome
	Readings []domain.Reading
	Decision domain.AlertDecision
	Notified bool
}

// ExitCode maps the outcome to a process exit status: 0 when a report was
// produced (even with degraded data or a failed notification), 1 when no
// report could be produced, 2 when no area had current conditions.
//
// OutcomeOK, OutcomeDegraded and OutcomeNotifyFailed all exit 0. Callers that
// need to tell them apart read Outcome, which is also logged on "run completed",
// exported as the run outcome gauge and returned in the Lambda result.
func (s Summary) ExitCode() int {
	switch s.Outcome {
	case OutcomeRenderFailed:
		return 1
	case OutcomeNoData:
		return 2
	default:
		return 0
	}
}

// Pipeline runs one fetch, score, report and notify cycle.
type Pipeline struct {
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline with the given options and observability.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.WriteReport == nil {
		opts.WriteReport = report.WriteFile
	}
	return &Pipeline{opts: opts, logger: logger, metrics: metrics}
}

// Run executes a single run to completion. It returns a *domain.RenderError
// when the report could not be produced and domain.ErrNoData when no area
// yielded current conditions. Provider and notification failures are logged
// and reflected in the Summary only.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", summary.RunID)
	logger.Info("run started", "areas", len(p.opts.Locations))

	summary.Readings = p.fetchAll(ctx, logger, summary.RunID)

	alerts := make([]domain.AreaAlert, 0, len(summary.Readings))
	for _, rd := range summary.Readings {
		alerts = append(alerts, domain.Decide(rd.Location, rd.Result, rd.Current, rd.Forecast.Nearest(), p.opts.Zone))
	}
	summary.Decision = domain.BuildAlert(alerts, p.opts.ReportURL)
	p.recordReadings(summary.Readings)

	p.publish(ctx, logger, summary.Readings)

	renderErr := p.renderReport(logger, summary.Readings)

	notifyErr := p.notify(ctx, logger, summary.Decision)
	summary.Notified = summary.Decision.ShouldNotify && notifyErr == nil && p.opts.Notifier != nil

	var runErr error
	switch {
	case renderErr != nil:
		summary.Outcome = OutcomeRenderFailed
		runErr = renderErr
	case !anyCurrent(summary.Readings):
		summary.Outcome = OutcomeNoData
		runErr = domain.ErrNoData
	case notifyErr != nil:
		summary.Outcome = OutcomeNotifyFailed
	case anyDegraded(summary.Readings):
		summary.Outcome = OutcomeDegraded
	default:
		summary.Outcome = OutcomeOK
	}

	p.recordRun(summary.Outcome, time.Since(start))
	p.pushMetrics(ctx, logger)

	logger.Info("run completed",
		"outcome", summary.Outcome,
		"should_notify", summary.Decision.ShouldNotify,
		"severe_areas", summary.Decision.Areas,
		"duration", time.Since(start),
	)
	return summary, runErr
}

// fetchAll gathers one Reading per location. Areas are fetched concurrently
// and joined by index, so the result order matches the configured order.
func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger, runID string) []domain.Reading {
	readings := make([]domain.Reading, len(p.opts.Locations))

	var g errgroup.Group
	g.SetLimit(maxConcurrentAreas)
	for i, loc := range p.opts.Locations {
		g.Go(func() error {
			readings[i] = p.fetchArea(ctx, logger.With("area", loc.Name), loc)
			readings[i].RunID = runID
			return nil
		})
	}
	_ = g.Wait() // fetchArea never fails; errors are absorbed into DegradedSources

	return readings
}

// fetchArea fetches and scores a single area. A failed source is logged and
// replaced by defaults; it never prevents the area from being scored.
func (p *Pipeline) fetchArea(ctx context.Context, logger *slog.Logger, loc domain.Location) domain.Reading {
	rd := domain.Reading{
		Location: loc,
		Current:  domain.NormalizeCurrent(domain.RawCurrent{}),
		Forecast: domain.ForecastSeries{},
	}

	if p.opts.Conditions == nil {
		rd.DegradedSources = append(rd.DegradedSources, sourceConditions)
	} else {
		current, err := p.opts.Conditions.FetchCurrent(ctx, loc)
		if err != nil {
			rd.DegradedSources = append(rd.DegradedSources, p.degrade(logger, err, "current conditions"))
		} else {
			rd.Current = current
			rd.HasCurrent = true
		}

		forecast, err := p.opts.Conditions.FetchForecast(ctx, loc)
		if err != nil {
			rd.DegradedSources = append(rd.DegradedSources, p.degrade(logger, err, "forecast"))
		} else if forecast != nil {
			rd.Forecast = forecast
		}
	}

	if p.opts.Precipitation != nil {
		signal, err := p.opts.Precipitation.FetchPrecipitation(ctx, loc)
		if err != nil {
			rd.DegradedSources = append(rd.DegradedSources, p.degrade(logger, err, "precipitation"))
		} else {
			rd.Precipitation = &signal
		}
	}

	rd.Result = domain.Score(rd.Current, rd.Forecast, rd.Precipitation)
	rd.ScoredAt = domain.Now()

	logger.Debug("area scored",
		"score", rd.Result.Score,
		"accent", rd.Result.Accent,
		"trigger", rd.Result.Trigger,
		"degraded", rd.DegradedSources,
	)
	return rd
}

const sourceConditions = "conditions"

// degrade logs a provider failure and returns the source name to record.
func (p *Pipeline) degrade(logger *slog.Logger, err error, what string) string {
	source := what
	reason := domain.ReasonTransport
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		source = pe.Source
		reason = pe.Reason
	}
	logger.Warn(what+" fetch failed, using defaults", "error", err, "source", source, "reason", reason)
	return source
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, readings []domain.Reading) {
	if p.opts.Publisher == nil {
		return
	}
	if err := p.opts.Publisher.Publish(ctx, readings); err != nil {
		logger.Warn("publish readings failed", "error", err, "count", len(readings))
		return
	}
	p.metrics.ReadingsPublished.Add(float64(len(readings)))
}

func (p *Pipeline) renderReport(logger *slog.Logger, readings []domain.Reading) error {
	if p.opts.Renderer == nil {
		return &domain.RenderError{Stage: report.StageExecute, Err: errors.New("no renderer configured")}
	}
	doc, err := p.opts.Renderer.Render(readings, domain.Now())
	if err == nil {
		err = p.opts.WriteReport(p.opts.ReportPath, doc)
	}
	if err != nil {
		var re *domain.RenderError
		if !errors.As(err, &re) {
			err = &domain.RenderError{Stage: report.StageWrite, Err: err}
		}
		logger.Error("report rendering failed", "error", err, "path", p.opts.ReportPath)
		return err
	}
	logger.Info("report written", "path", p.opts.ReportPath, "bytes", len(doc))
	return nil
}

// notify delivers the alert at most once. It returns nil when nothing needed
// sending or notification is disabled.
func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, decision domain.AlertDecision) error {
	if !decision.ShouldNotify {
		return nil
	}
	if p.opts.Notifier == nil {
		logger.Info("notification disabled, alert not sent", "areas", decision.Areas)
		p.metrics.Notifications.WithLabelValues("skipped").Inc()
		return nil
	}

	if p.opts.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.NotifyTimeout)
		defer cancel()
	}

	if err := p.opts.Notifier.Deliver(ctx, p.opts.Recipient, decision.Message); err != nil {
		logger.Error("notification failed", "error", err, "areas", decision.Areas)
		p.metrics.Notifications.WithLabelValues("failed").Inc()
		return err
	}
	logger.Info("notification sent", "areas", decision.Areas)
	p.metrics.Notifications.WithLabelValues("sent").Inc()
	return nil
}

func (p *Pipeline) recordReadings(readings []domain.Reading) {
	degraded := 0
	for _, rd := range readings {
		p.metrics.AreaScore.WithLabelValues(rd.Location.Name).Set(float64(rd.Result.Score))
		if rd.Degraded() {
			degraded++
		}
	}
	p.metrics.DegradedAreas.Set(float64(degraded))
}

func (p *Pipeline) recordRun(outcome Outcome, elapsed time.Duration) {
	for _, o := range outcomes {
		v := 0.0
		if o == outcome {
			v = 1
		}
		p.metrics.RunOutcome.WithLabelValues(string(o)).Set(v)
	}
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.metrics.LastRunTimestamp.Set(float64(domain.Now().Unix()))
}

func (p *Pipeline) pushMetrics(ctx context.Context, logger *slog.Logger) {
	if p.opts.Pusher == nil {
		return
	}
	if err := p.opts.Pusher.Push(ctx); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}
}

func anyCurrent(readings []domain.Reading) bool {
	for _, rd := range readings {
		if rd.HasCurrent {
			return true
		}
	}
	return false
}

func anyDegraded(readings []domain.Reading) bool {
	for _, rd := range readings {
		if rd.Degraded() {
			return true
		}
	}
	return false
}
