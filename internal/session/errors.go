// File: internal/session/errors.go
package session

import "errors"

// Classified failure reasons for the session lifecycle. Callers branch on
// these with errors.Is; raw automation errors never cross this boundary.
var (
	// ErrUnavailable means the session artifact could not be obtained at all
	// (store I/O failure). Distinct from an artifact that fails validation.
	ErrUnavailable = errors.New("session unavailable")

	// ErrRefreshPrecondition means the refresh agent cannot be invoked:
	// missing executable or missing required environment secrets. Operator
	// intervention is required; this is not retryable.
	ErrRefreshPrecondition = errors.New("refresh precondition failed")

	// ErrRefreshFailed means the refresh agent ran but no valid session
	// resulted, or the agent itself failed. No further automatic retries.
	ErrRefreshFailed = errors.New("session refresh failed")
)
