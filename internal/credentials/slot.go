// File: internal/credentials/slot.go
package credentials

import "sync"

// tokenSlot is the single mutable cell the two extraction strategies race
// over. Interception writes win outright; the fallback may only fill an empty
// slot, so if interception captured anything the fallback result is discarded.
type tokenSlot struct {
	mu          sync.Mutex
	token       string
	intercepted bool
}

// record stores a token captured via network interception, overwriting any
// earlier capture. Returns true when the token differs from the previous one,
// so callers can log each distinct token once.
func (s *tokenSlot) record(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	distinct := token != s.token
	s.token = token
	s.intercepted = true
	return distinct
}

// fill stores a fallback-sourced token only if interception captured nothing.
func (s *tokenSlot) fill(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.intercepted && s.token == "" {
		s.token = token
	}
}

// value returns the current token and whether it came from interception.
func (s *tokenSlot) value() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.intercepted
}
