package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry is a thread-safe mapping from tool name to Tool. Keys are
// unique; registering a name that already exists replaces the previous
// tool. A caller that observes a tool via List must be able to Get the
// same name and invoke it, even if another goroutine performs
// subsequent registrations. List snapshots under the same lock Get
// uses, so this holds by construction.
//
// List order is insertion order, for readability in logs and
// deterministic test fixtures, but that ordering is not part of the
// public contract: concurrent Register calls may interleave with a
// concurrent List in either order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts or replaces the tool under its own Name(). The
// tool's declared input schema is validated as well-formed JSON-Schema;
// a malformed schema is rejected rather than silently accepted and
// later failing every LLM request that includes it.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool: cannot register nil tool")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool: cannot register tool with empty name")
	}
	if err := validateSchema(t.InputSchema()); err != nil {
		return fmt.Errorf("tool: invalid input schema for %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
	return nil
}

// Unregister removes a tool by name. Removing an absent name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the tool registered under name, or (nil, false).
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns a snapshot of all registered tools in insertion order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Contains reports whether a tool is registered under name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

func validateSchema(schema json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schema)); err != nil {
		return err
	}
	_, err := compiler.Compile("schema.json")
	return err
}
