// File: internal/session/agent_test.go
package session_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/session"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script agents are not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "refresh-agent")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func setAgentEnv(t *testing.T) {
	t.Helper()
	t.Setenv("X_USERNAME", "user")
	t.Setenv("X_PASSWORD", "pass")
}

func TestExecAgentMissingBinaryIsPrecondition(t *testing.T) {
	setAgentEnv(t)
	agent := session.NewExecAgent("/nonexistent/refresh-agent", zap.NewNop())

	err := agent.Refresh(context.Background())
	assert.ErrorIs(t, err, session.ErrRefreshPrecondition)
}

func TestExecAgentMissingCredentialsIsPrecondition(t *testing.T) {
	path := writeScript(t, "exit 0")
	t.Setenv("X_USERNAME", "")
	t.Setenv("X_PASSWORD", "")

	agent := session.NewExecAgent(path, zap.NewNop())
	err := agent.Refresh(context.Background())
	assert.ErrorIs(t, err, session.ErrRefreshPrecondition)
}

func TestExecAgentSuccess(t *testing.T) {
	setAgentEnv(t)
	path := writeScript(t, "exit 0")

	agent := session.NewExecAgent(path, zap.NewNop())
	assert.NoError(t, agent.Refresh(context.Background()))
}

func TestExecAgentNonZeroExitIsRefreshFailure(t *testing.T) {
	setAgentEnv(t)
	path := writeScript(t, "echo 'login challenge failed' >&2; exit 3")

	agent := session.NewExecAgent(path, zap.NewNop())
	err := agent.Refresh(context.Background())
	assert.ErrorIs(t, err, session.ErrRefreshFailed)
	assert.NotErrorIs(t, err, session.ErrRefreshPrecondition)
}
