// File: internal/credentials/bundle_test.go
package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ehc-io/xmedia-downloader/internal/credentials"
)

func TestBundleComplete(t *testing.T) {
	full := credentials.Bundle{AuthToken: "a", CSRFToken: "c", BearerToken: "b"}
	assert.True(t, full.Complete())
	assert.Empty(t, full.Missing())

	assert.False(t, credentials.Bundle{}.Complete())
}

func TestBundleMissingOrder(t *testing.T) {
	b := credentials.Bundle{CSRFToken: "c"}
	assert.Equal(t, []string{"auth_token", "bearer_token"}, b.Missing())

	assert.Equal(t,
		[]string{"auth_token", "csrf_token", "bearer_token"},
		credentials.Bundle{}.Missing())
}

func TestExtractionErrorNamesMissingTokens(t *testing.T) {
	err := &credentials.ExtractionError{Missing: []string{"auth_token", "bearer_token"}}
	assert.Equal(t, "missing authentication tokens: auth_token, bearer_token", err.Error())
}
