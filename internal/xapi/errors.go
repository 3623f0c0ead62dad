// File: internal/xapi/errors.go
package xapi

import "fmt"

// RemoteError is a non-2xx answer from the platform's API. The response is
// authoritative, so remote errors are not automatically retried.
type RemoteError struct {
	Status int
	Body   string
	// Payload is the parsed error body when it was valid JSON, else nil.
	Payload map[string]interface{}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("platform API returned status %d", e.Status)
}

// Authentication reports whether the failure is authentication-class, which
// should invalidate cached credentials. The platform answers 403 to a stale
// csrf token and 401 to a dead bearer.
func (e *RemoteError) Authentication() bool {
	return e.Status == 401 || e.Status == 403
}

// TransportError is a network-level failure (timeout, connection refused).
// Kept distinct from RemoteError so callers can choose to retry transients.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
