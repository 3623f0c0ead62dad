// File: internal/service/server_test.go
package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/credentials"
	"github.com/ehc-io/xmedia-downloader/internal/service"
	"github.com/ehc-io/xmedia-downloader/internal/session"
)

type fakeInspector struct {
	exists          bool
	ensureErr       error
	invalidateCalls int
}

func (f *fakeInspector) EnsureLocal(ctx context.Context) (bool, error) {
	return f.exists, f.ensureErr
}

func (f *fakeInspector) Path() string { return "/tmp/session/x-session.json" }

func (f *fakeInspector) Invalidate() error {
	f.invalidateCalls++
	return nil
}

type fakeValidator struct {
	valid bool
}

func (f *fakeValidator) IsValid(ctx context.Context, artifactPath string) bool { return f.valid }

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) EnsureValidSession(ctx context.Context) error {
	f.calls++
	return f.err
}

type serverFixture struct {
	server    *service.Server
	queue     *service.JobQueue
	inspector *fakeInspector
	validator *fakeValidator
	refresher *fakeRefresher
	creds     *credentials.Cache
}

func newServerFixture(queueCapacity int) *serverFixture {
	f := &serverFixture{
		queue:     service.NewJobQueue(newBlockingRunner(), queueCapacity, zap.NewNop()),
		inspector: &fakeInspector{},
		validator: &fakeValidator{},
		refresher: &fakeRefresher{},
		creds:     credentials.NewCache(zap.NewNop()),
	}
	f.server = service.NewServer(":0", f.queue, f.inspector, f.validator, f.refresher, f.creds, zap.NewNop())
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.server.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(1)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnqueueDownloadAccepted(t *testing.T) {
	f := newServerFixture(4)
	rec := f.do(t, http.MethodPost, "/api/v1/downloads", `{"url": "https://x.com/u/status/123"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeBody(t, rec)
	jobID, ok := body["job_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, jobID)

	job, found := f.queue.Lookup(jobID)
	require.True(t, found)
	assert.Equal(t, service.JobQueued, job.Status)
}

func TestEnqueueDownloadRejectsBadRequests(t *testing.T) {
	f := newServerFixture(4)

	rec := f.do(t, http.MethodPost, "/api/v1/downloads", `{"other": "field"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/downloads", `{"url": "https://example.com/nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnqueueDownloadQueueFull(t *testing.T) {
	// Capacity 1 with no worker running: the second request must bounce.
	f := newServerFixture(1)

	rec := f.do(t, http.MethodPost, "/api/v1/downloads", `{"url": "https://x.com/u/status/1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/downloads", `{"url": "https://x.com/u/status/2"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestJobStatusEndpoint(t *testing.T) {
	f := newServerFixture(4)
	id, err := f.queue.Enqueue("https://x.com/u/status/9")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/downloads/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(service.JobQueued), body["status"])

	rec = f.do(t, http.MethodGet, "/api/v1/downloads/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionStatusEndpoint(t *testing.T) {
	f := newServerFixture(1)
	f.inspector.exists = true
	f.validator.valid = true

	rec := f.do(t, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["valid"])
}

func TestSessionStatusAbsentArtifactSkipsValidation(t *testing.T) {
	f := newServerFixture(1)
	f.inspector.exists = false
	f.validator.valid = true // must not be consulted

	rec := f.do(t, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, false, body["valid"])
}

func TestSessionStatusStoreUnavailable(t *testing.T) {
	f := newServerFixture(1)
	f.inspector.ensureErr = fmt.Errorf("%w: backend down", session.ErrUnavailable)

	rec := f.do(t, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSessionRefreshEndpoint(t *testing.T) {
	f := newServerFixture(1)
	f.creds.Put("artifact@1", credentials.Bundle{AuthToken: "stale"})

	rec := f.do(t, http.MethodPost, "/api/v1/session/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.refresher.calls)
	assert.Equal(t, 1, f.inspector.invalidateCalls, "forced refresh drops the local artifact copy")

	_, cached := f.creds.Get("artifact@1")
	assert.False(t, cached, "forced refresh clears cached credentials")
}

func TestSessionRefreshPreconditionConflict(t *testing.T) {
	f := newServerFixture(1)
	f.refresher.err = fmt.Errorf("%w: credentials not configured", session.ErrRefreshPrecondition)

	rec := f.do(t, http.MethodPost, "/api/v1/session/refresh", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionRefreshFailureBadGateway(t *testing.T) {
	f := newServerFixture(1)
	f.refresher.err = fmt.Errorf("%w: still invalid after refresh", session.ErrRefreshFailed)

	rec := f.do(t, http.MethodPost, "/api/v1/session/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
