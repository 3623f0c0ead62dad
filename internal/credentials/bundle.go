// File: internal/credentials/bundle.go
package credentials

import (
	"fmt"
	"strings"
)

// Bundle carries the three ephemeral credentials required to call the
// platform's internal API. Derived fresh per process lifetime from a session
// artifact; cached in memory only, never persisted.
type Bundle struct {
	AuthToken   string
	CSRFToken   string
	BearerToken string
}

// Complete reports whether all three credentials are present.
func (b Bundle) Complete() bool {
	return len(b.Missing()) == 0
}

// Missing names the absent credentials, in a fixed order.
func (b Bundle) Missing() []string {
	var missing []string
	if b.AuthToken == "" {
		missing = append(missing, "auth_token")
	}
	if b.CSRFToken == "" {
		missing = append(missing, "csrf_token")
	}
	if b.BearerToken == "" {
		missing = append(missing, "bearer_token")
	}
	return missing
}

// ExtractionError reports exactly which credentials could not be resolved by
// either extraction strategy. Not retried automatically: a missing credential
// usually means the platform's client changed shape.
type ExtractionError struct {
	Missing []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("missing authentication tokens: %s", strings.Join(e.Missing, ", "))
}
