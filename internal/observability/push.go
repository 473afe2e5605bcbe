package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher sends a registry's metrics to a Prometheus Pushgateway. A run-once
// job has no scrape endpoint, so the last run's metrics are pushed instead.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher creates a Pusher for the given gateway URL and job name.
func NewPusher(gatewayURL, job string, gatherer prometheus.Gatherer) *Pusher {
	return &Pusher{pusher: push.New(gatewayURL, job).Gatherer(gatherer)}
}

// Push replaces the job's metric group on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
