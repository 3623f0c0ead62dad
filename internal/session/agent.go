// File: internal/session/agent.go
package session

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Environment variables the refresh agent needs to perform interactive login.
const (
	envUsername = "X_USERNAME"
	envPassword = "X_PASSWORD"
)

// RefreshAgent performs interactive login and writes a fresh session artifact
// to the durable store. The concrete implementation is an external process;
// this interface exists so the refresher's state machine is testable.
type RefreshAgent interface {
	Refresh(ctx context.Context) error
}

// ExecAgent invokes the external refresh executable. The agent takes no
// arguments, reads its secrets from the environment, uploads the artifact
// itself, and reports the outcome via exit code.
type ExecAgent struct {
	path string
	log  *zap.Logger
}

var _ RefreshAgent = (*ExecAgent)(nil)

// NewExecAgent builds an agent wrapper for the executable at path.
func NewExecAgent(path string, logger *zap.Logger) *ExecAgent {
	return &ExecAgent{path: path, log: logger.Named("refresh_agent")}
}

// Refresh checks the preconditions, then runs the agent to completion.
// Precondition failures are fatal and must not be retried; they mean an
// operator has to fix the deployment, not that the session is bad.
func (a *ExecAgent) Refresh(ctx context.Context) error {
	if _, err := os.Stat(a.path); err != nil {
		return fmt.Errorf("%w: refresh agent not found at %s", ErrRefreshPrecondition, a.path)
	}
	if os.Getenv(envUsername) == "" || os.Getenv(envPassword) == "" {
		return fmt.Errorf("%w: %s and %s must be set", ErrRefreshPrecondition, envUsername, envPassword)
	}

	a.log.Info("Invoking refresh agent.", zap.String("path", a.path))
	cmd := exec.CommandContext(ctx, a.path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		a.log.Error("Refresh agent failed.",
			zap.Error(err),
			zap.ByteString("output", tail(out, 4096)),
		)
		return fmt.Errorf("%w: agent exited with error: %v", ErrRefreshFailed, err)
	}

	a.log.Info("Refresh agent completed; new artifact written to the durable store.")
	return nil
}

// tail returns at most the last n bytes of b, for bounded diagnostic logging.
func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
