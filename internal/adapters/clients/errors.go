// Package clients provides the instrumented HTTP client the SDK uses to
// talk to the 5sim API.
package clients

import "errors"

// Client errors represent failures in the HTTP client layer. They carry no
// API semantics; the fivesim package translates them into its error
// taxonomy.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and
	// requests are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned when no attempt produced a
	// response at all. The last attempt's error is wrapped for context.
	// Server-error responses are not wrapped; the final response is
	// returned for the caller to classify.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
