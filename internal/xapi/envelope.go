// File: internal/xapi/envelope.go
package xapi

import (
	json "github.com/json-iterator/go"
)

// Envelope is the raw structured response from the platform's data endpoint.
// The schema is not owned by this system and changes without notice, so every
// access goes through optional lookups that report "not found" instead of
// panicking on a shape we did not expect.
type Envelope map[string]interface{}

// ParseEnvelope decodes a response body into an Envelope.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env, nil
}

// Result walks the load-bearing key path data.tweetResult.result. Absence
// may mean "no content" rather than "malformed response"; it is never an
// error at this layer.
func (e Envelope) Result() (map[string]interface{}, bool) {
	data, ok := childObject(e, "data")
	if !ok {
		return nil, false
	}
	tweetResult, ok := childObject(data, "tweetResult")
	if !ok {
		return nil, false
	}
	return childObject(tweetResult, "result")
}

// childObject looks up a key and asserts it is a JSON object.
func childObject(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

// childSlice looks up a key and asserts it is a JSON array.
func childSlice(m map[string]interface{}, key string) ([]interface{}, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]interface{})
	return s, ok
}

// childString looks up a key and asserts it is a string.
func childString(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// childFloat looks up a key and asserts it is a JSON number.
func childFloat(m map[string]interface{}, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
