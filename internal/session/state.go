// File: internal/session/state.go
package session

// State enumerates the session lifecycle states the refresher walks through.
type State int

const (
	StateUnknown State = iota
	StateValidating
	StateValid
	StateInvalid
	StateRefreshing
	StateRevalidating
	StateRefreshFailed
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateValidating:
		return "validating"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	case StateRefreshing:
		return "refreshing"
	case StateRevalidating:
		return "revalidating"
	case StateRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

// Event enumerates the observations that drive state transitions.
type Event int

const (
	EventValidationStarted Event = iota
	EventValidationPassed
	EventValidationFailed
	EventRefreshStarted
	EventRefreshSucceeded
	EventRefreshErrored
)

// Transition is the pure transition function of the session state machine.
// The single-retry bound is structural: a validation failure after
// StateRevalidating lands in StateRefreshFailed, from which no event leads
// back to StateRefreshing.
func Transition(s State, e Event) State {
	switch s {
	case StateUnknown:
		if e == EventValidationStarted {
			return StateValidating
		}
	case StateValidating:
		switch e {
		case EventValidationPassed:
			return StateValid
		case EventValidationFailed:
			return StateInvalid
		}
	case StateInvalid:
		if e == EventRefreshStarted {
			return StateRefreshing
		}
	case StateRefreshing:
		switch e {
		case EventRefreshSucceeded:
			return StateRevalidating
		case EventRefreshErrored:
			return StateRefreshFailed
		}
	case StateRevalidating:
		switch e {
		case EventValidationPassed:
			return StateValid
		case EventValidationFailed:
			return StateRefreshFailed
		}
	}
	// Terminal states and undefined events hold their state.
	return s
}

// Terminal reports whether the state machine has reached an outcome.
func (s State) Terminal() bool {
	return s == StateValid || s == StateRefreshFailed
}
