// File: internal/session/refresher.go
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Refresher drives the session lifecycle: validate, refresh through the
// external agent when invalid, validate once more. The retry bound is
// exactly one refresh; unlimited re-login attempts against a third-party
// platform risk tripping anti-automation defenses.
type Refresher struct {
	store     *Store
	validator Validator
	agent     RefreshAgent
	log       *zap.Logger

	// Concurrent EnsureValidSession calls collapse onto one run so two
	// refresh agents never race to write the same artifact.
	group singleflight.Group
}

// NewRefresher wires the store, validator and agent together.
func NewRefresher(store *Store, validator Validator, agent RefreshAgent, logger *zap.Logger) *Refresher {
	return &Refresher{
		store:     store,
		validator: validator,
		agent:     agent,
		log:       logger.Named("session_refresher"),
	}
}

// EnsureValidSession returns nil when a valid session is confirmed or
// established, a classified error otherwise. Safe for concurrent use.
func (r *Refresher) EnsureValidSession(ctx context.Context) error {
	_, err, _ := r.group.Do("ensure-valid-session", func() (interface{}, error) {
		return nil, r.ensure(ctx)
	})
	return err
}

// Path exposes the local artifact path for components that drive a browser
// against the current session.
func (r *Refresher) Path() string {
	return r.store.Path()
}

// Identity exposes the artifact revision token used as a credential cache
// key.
func (r *Refresher) Identity() (string, error) {
	return r.store.Identity()
}

// ensure walks the state machine to a terminal state.
func (r *Refresher) ensure(ctx context.Context) error {
	state := Transition(StateUnknown, EventValidationStarted)

	valid, err := r.validate(ctx)
	if err != nil {
		return err
	}
	state = r.step(state, validationEvent(valid))
	if state == StateValid {
		r.log.Info("Current session is valid.")
		return nil
	}

	r.log.Warn("Current session is invalid or missing. Attempting refresh.")
	state = r.step(state, EventRefreshStarted)
	if err := r.agent.Refresh(ctx); err != nil {
		r.step(state, EventRefreshErrored)
		return err
	}
	state = r.step(state, EventRefreshSucceeded)

	// The agent wrote the new artifact to the durable store; drop the stale
	// local copy so revalidation picks up the fresh one.
	if err := r.store.Invalidate(); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	valid, err = r.validate(ctx)
	if err != nil {
		return err
	}
	state = r.step(state, validationEvent(valid))
	if state == StateValid {
		r.log.Info("Refreshed session confirmed as valid.")
		return nil
	}

	// A failure right after an explicit refresh indicates a systemic problem
	// (platform UI change, credential change, rate limiting). Surface it.
	r.log.Error("Session was refreshed but still fails validation.")
	return fmt.Errorf("%w: refreshed session failed validation", ErrRefreshFailed)
}

// validate ensures the artifact is present locally, then checks it live.
// An artifact that is absent everywhere is simply not valid; store I/O
// failures are surfaced as "unavailable" instead.
func (r *Refresher) validate(ctx context.Context) (bool, error) {
	present, err := r.store.EnsureLocal(ctx)
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}
	return r.validator.IsValid(ctx, r.store.Path()), nil
}

func (r *Refresher) step(s State, e Event) State {
	next := Transition(s, e)
	r.log.Debug("Session state transition.",
		zap.Stringer("from", s),
		zap.Stringer("to", next),
	)
	return next
}

func validationEvent(valid bool) Event {
	if valid {
		return EventValidationPassed
	}
	return EventValidationFailed
}
