package provider

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrBackendDown indicates the backend could not be reached or
	// answered with a server error. Expected during backend restarts.
	ErrBackendDown = errors.New("inference backend unavailable")

	// ErrMalformedReply indicates the backend answered but the response
	// body could not be decoded.
	ErrMalformedReply = errors.New("malformed backend reply")

	// ErrNoProvider indicates no provider module is configured.
	ErrNoProvider = errors.New("no provider configured")
)

// IsDegraded reports whether the error represents an expected degraded
// outcome (backend unreachable, timed out, or talking nonsense) rather
// than a programming fault. Degraded errors are converted into fallback
// text by the orchestrator instead of being surfaced to the caller.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrBackendDown) || errors.Is(err, ErrMalformedReply)
}
