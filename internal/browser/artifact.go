// File: internal/browser/artifact.go
package browser

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
)

// Artifact is the serialized browser state produced by the refresh agent: a
// cookie jar plus per-origin storage snapshot. The on-disk shape matches the
// storage-state JSON the agent writes, so the two processes stay compatible
// without a translation layer.
type Artifact struct {
	Cookies []ArtifactCookie `json:"cookies"`
	Origins []ArtifactOrigin `json:"origins"`
}

// ArtifactCookie is a single serialized cookie.
type ArtifactCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// ArtifactOrigin carries the localStorage snapshot for one origin.
type ArtifactOrigin struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// StorageEntry is a single localStorage key/value pair.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadArtifact reads and parses a session artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse session artifact %s: %w", path, err)
	}
	if len(a.Cookies) == 0 {
		return nil, fmt.Errorf("session artifact %s contains no cookies", path)
	}
	return &a, nil
}
