package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData means no current conditions could be obtained for any location.
var ErrNoData = errors.New("no current conditions available for any location")

// Provider failure reasons.
const (
	ReasonTimeout     = "timeout"
	ReasonTransport   = "transport"
	ReasonStatus      = "status"
	ReasonMalformed   = "malformed"
	ReasonCircuitOpen = "circuit_open"
)

// ProviderError is a failed call to an upstream data source. It degrades
// that source's contribution for the run and never aborts it.
type ProviderError struct {
	Source string
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a capability disabled because a credential is
// absent. Weather fetching, scoring and rendering still proceed.
type ConfigurationError struct {
	Capability string
	Missing    []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s disabled: %s not set", e.Capability, strings.Join(e.Missing, ", "))
}

// RenderError means the report could not be produced. It is the only
// per-stage failure that fails the run.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render report: %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
