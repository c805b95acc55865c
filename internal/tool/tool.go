// Package tool defines the Tool capability contract and a thread-safe
// registry of tools by name.
package tool

import (
	"context"
	"encoding/json"

	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// Tool is a named capability exposing a JSON-Schema input shape and a
// blocking, context-aware invocation returning JSON. Execute may be called
// concurrently on the same Tool and must be safe to do so; the registry
// hands out shared references, never copies.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// Definition returns the LLM-facing ToolDefinition for a Tool.
func Definition(t Tool) models.ToolDefinition {
	return models.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: []byte(t.InputSchema()),
	}
}

// Func adapts a plain function to the Tool interface for simple,
// stateless tools that need no fields of their own.
type Func struct {
	FuncName        string
	FuncDescription string
	Schema          json.RawMessage
	Fn              func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

func (f Func) Name() string                 { return f.FuncName }
func (f Func) Description() string          { return f.FuncDescription }
func (f Func) InputSchema() json.RawMessage { return f.Schema }
func (f Func) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	return f.Fn(ctx, args)
}
