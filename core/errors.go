package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOffline means the network was unreachable and no cached data, not
	// even expired data, was available. Distinct from a generic network
	// failure so callers can suggest reconnecting rather than retrying.
	ErrOffline = errors.New("offline and no cached data available")

	// ErrRateLimited marks a failure chain that includes an HTTP 429 from
	// some source.
	ErrRateLimited = errors.New("rate limited by remote source")

	// ErrNotFound means the item does not exist at the source.
	ErrNotFound = errors.New("item not found")

	// ErrNoCompatibleVersion means the item exists but has no version
	// matching the requested constraints.
	ErrNoCompatibleVersion = errors.New("no compatible version")

	// ErrDownloadUnavailable means the selected version has no file URL
	// (typically distribution opt-out). Distinct from ErrNotFound.
	ErrDownloadUnavailable = errors.New("download unavailable")

	// ErrDependencyUnresolved means a required dependency could not be
	// found by any provider.
	ErrDependencyUnresolved = errors.New("required dependency unresolved")
)

// StatusError is a non-success HTTP response surfaced by the fetch client.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case 429:
		return ErrRateLimited
	case 404:
		return ErrNotFound
	}
	return nil
}

// Retryable reports whether the status may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	switch {
	case e.Code >= 500:
		return true
	case e.Code == 408 || e.Code == 425 || e.Code == 429:
		return true
	}
	return false
}

// ProviderError wraps a single provider's failure so the aggregator can
// report which source degraded.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
