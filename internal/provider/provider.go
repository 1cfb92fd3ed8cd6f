// Package provider defines the interface to the language-model inference
// backend. Concrete implementations live in separate packages
// (e.g. modules/provider/ollama) and typically also implement core.Module
// for lifecycle management.
package provider

import "context"

// Provider is the interface for communicating with an inference backend.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ContextWindowSize returns the maximum context window in tokens.
	ContextWindowSize() int

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement to
// support active health probing. The maintenance scheduler calls HealthCheck
// periodically; the gateway reports the last observed state.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
