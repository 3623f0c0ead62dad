// File: internal/xapi/client_test.go
package xapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/credentials"
)

func testBundle() credentials.Bundle {
	return credentials.Bundle{
		AuthToken:   "auth-token-value",
		CSRFToken:   "csrf-token-value",
		BearerToken: "AAAA-bearer-value",
	}
}

func newTestClient(serverURL string) *Client {
	c := NewClient(http.DefaultClient, "test-agent/1.0", zap.NewNop())
	c.endpoint = serverURL
	return c
}

func TestFetchPostSendsAuthenticatedRequest(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Write([]byte(`{"data": {"tweetResult": {"result": {"__typename": "Tweet"}}}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	env, err := c.FetchPost(context.Background(), "12345", testBundle())
	require.NoError(t, err)

	result, ok := env.Result()
	assert.True(t, ok)
	assert.Equal(t, "Tweet", result["__typename"])

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "Bearer AAAA-bearer-value", captured.Header.Get("Authorization"))
	assert.Equal(t, "csrf-token-value", captured.Header.Get("X-Csrf-Token"))
	assert.Equal(t, "yes", captured.Header.Get("X-Twitter-Active-User"))
	assert.Equal(t, "OAuth2Session", captured.Header.Get("X-Twitter-Auth-Type"))
	assert.Equal(t, "test-agent/1.0", captured.Header.Get("User-Agent"))
	assert.Contains(t, captured.Header.Get("Cookie"), "auth_token=auth-token-value")
	assert.Contains(t, captured.Header.Get("Cookie"), "ct0=csrf-token-value")

	query := captured.URL.Query()
	assert.Contains(t, query.Get("variables"), `"tweetId":"12345"`)
	assert.NotEmpty(t, query.Get("features"))
	assert.NotEmpty(t, query.Get("fieldToggles"))
}

func TestFetchPostClassifiesAuthRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": [{"message": "Could not authenticate you"}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchPost(context.Background(), "1", testBundle())
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.Status)
	assert.True(t, remote.Authentication())
	assert.NotNil(t, remote.Payload)
}

func TestFetchPostForbiddenIsAuthClass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchPost(context.Background(), "1", testBundle())

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.True(t, remote.Authentication())
}

func TestFetchPostServerErrorIsNotAuthClass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchPost(context.Background(), "1", testBundle())

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.False(t, remote.Authentication())
	assert.Nil(t, remote.Payload, "non-JSON bodies leave the payload nil")
	assert.Equal(t, "not json", remote.Body)
}

func TestFetchPostTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediate close forces a connection error

	c := newTestClient(server.URL)
	_, err := c.FetchPost(context.Background(), "1", testBundle())
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestFetchPostToleratesMissingResultPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	env, err := c.FetchPost(context.Background(), "1", testBundle())
	require.NoError(t, err, "a schema drift is not a fetch failure")

	_, ok := env.Result()
	assert.False(t, ok)
}
