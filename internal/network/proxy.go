// File: internal/network/proxy.go
package network

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseProxySpec turns a deployment-style proxy spec into a *url.URL usable by
// http.ProxyURL. The spec is either "host:port" or "user:pass@host:port"; an
// empty spec means no proxy. A scheme prefix is accepted but not required.
func ParseProxySpec(spec string) (*url.URL, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if !strings.Contains(spec, "://") {
		spec = "http://" + spec
	}
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy spec %q: %w", spec, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy spec %q: missing host", spec)
	}
	return u, nil
}

// SplitProxyCredentials decomposes a proxy spec into the server address and
// optional credentials, the shape the browser launch flags need.
func SplitProxyCredentials(spec string) (server, username, password string, err error) {
	u, err := ParseProxySpec(spec)
	if err != nil || u == nil {
		return "", "", "", err
	}
	server = u.Scheme + "://" + u.Host
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}
	return server, username, password, nil
}
