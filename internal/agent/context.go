// Package agent defines the Agent contract, the small
// input/context-in, text-out interface every concrete agent shape
// satisfies, plus three concrete shapes (LLM-only, tool-using,
// delegating) and the parallel orchestrator that fans a turn out to
// several of them at once.
package agent

import (
	"encoding/json"
	"fmt"
)

// Context is the per-call keyed map a host passes alongside a turn's
// input text. Storage is JSON under the hood: the typed accessors are
// a convenience layer over an encode/decode round trip, not a generic
// heterogeneous container. Simpler and more portable, at the cost of
// the extra marshal on each access.
//
// Well-known keys (informative, not enforced): "language",
// "response_format", "user_id", "session_id", "timezone".
type Context struct {
	values map[string]json.RawMessage
}

// NewContext returns an empty Context ready for use.
func NewContext() *Context {
	return &Context{values: make(map[string]json.RawMessage)}
}

// Set stores value under key, JSON-encoding it. An encode failure is
// returned rather than panicking; callers that only ever store JSON-safe
// values (strings, numbers, maps) never see one.
func (c *Context) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("agent: context set %q: %w", key, err)
	}
	c.values[key] = raw
	return nil
}

// SetRaw stores a pre-encoded JSON value under key, bypassing
// marshaling. Useful when a caller already holds json.RawMessage, e.g.
// forwarding a tool-result payload into the context unchanged.
func (c *Context) SetRaw(key string, raw json.RawMessage) {
	c.values[key] = raw
}

// Get decodes the value stored under key into dst, a pointer. Reports
// false if the key is absent; a decode error is returned as the error
// return alongside false so a caller can distinguish "absent" from
// "present but malformed".
func (c *Context) Get(key string, dst any) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("agent: context get %q: %w", key, err)
	}
	return true, nil
}

// GetString is a convenience accessor for the common case of a
// string-valued key. Returns "" if absent or not a string.
func (c *Context) GetString(key string) string {
	var s string
	if ok, err := c.Get(key, &s); err != nil || !ok {
		return ""
	}
	return s
}

// Has reports whether key is present, without decoding its value.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Delete removes key. A no-op if absent.
func (c *Context) Delete(key string) {
	delete(c.values, key)
}

// Keys returns every key currently stored, in no particular order.
func (c *Context) Keys() []string {
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	return out
}

// Clone returns a shallow copy whose map is independent of the
// original: mutating the clone never affects c, and vice versa. Used by
// the Parallel Orchestrator so concurrent specialist calls do not race
// on a single shared Context.
func (c *Context) Clone() *Context {
	if c == nil {
		return NewContext()
	}
	out := &Context{values: make(map[string]json.RawMessage, len(c.values))}
	for k, v := range c.values {
		out.values[k] = v
	}
	return out
}
