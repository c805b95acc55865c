package mcp

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/tool"
)

const maxToolNameLen = 64

// ToolCaller is the subset of Manager a ToolAdapter needs, named
// separately so tests can substitute a fake without a live Manager.
type ToolCaller interface {
	CallTool(ctx context.Context, serverName, toolName string, arguments map[string]any) (*ToolCallResult, error)
}

// ToolAdapter wraps one remote MCP tool so it satisfies the local Tool
// contract (internal/tool.Tool). It never mutates the manager and is
// safe to call concurrently: Execute only reads the cached tool
// definition and forwards to the manager, which serializes its own
// request/response pairing per client.
type ToolAdapter struct {
	caller     ToolCaller
	serverName string
	tool       *MCPTool
	name       string
}

// NewToolAdapter builds an adapter with a pre-sanitized, registry-safe
// name (see SafeToolName) so two servers exposing a tool with the same
// short name never collide in one registry.
func NewToolAdapter(caller ToolCaller, serverName string, t *MCPTool, safeName string) *ToolAdapter {
	return &ToolAdapter{caller: caller, serverName: serverName, tool: t, name: safeName}
}

func (a *ToolAdapter) Name() string { return a.name }

func (a *ToolAdapter) Description() string {
	desc := strings.TrimSpace(a.tool.Description)
	if desc == "" {
		return "MCP tool " + a.serverName + "." + a.tool.Name
	}
	return "MCP tool " + a.serverName + "." + a.tool.Name + ": " + desc
}

func (a *ToolAdapter) InputSchema() json.RawMessage {
	if len(a.tool.InputSchema) == 0 {
		return json.RawMessage(`{"type":"object"}`)
	}
	return a.tool.InputSchema
}

// Execute invokes the remote tool through the manager and flattens its
// content blocks into a single JSON object: "text" (joined on
// newlines), and "images"/"resources" arrays when the result carries
// those content kinds. A result with IsError set is surfaced as a tool
// failure carrying the textual content, matching the executor's
// expectation that a failed tool call returns a non-nil error rather
// than a success payload that happens to say "error".
func (a *ToolAdapter) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return nil, agenterr.New(agenterr.KindInvalidRequest, err).WithOp("mcp_tool_execute")
		}
	}

	// Required-field short circuit: a call that is guaranteed to fail
	// server-side is rejected without a round trip.
	for _, field := range a.tool.RequiredFields() {
		if _, ok := arguments[field]; !ok {
			return nil, agenterr.New(agenterr.KindInvalidRequest,
				fmt.Errorf("missing required argument %q", field)).WithOp(a.tool.Name)
		}
	}

	result, err := a.caller.CallTool(ctx, a.serverName, a.tool.Name, arguments)
	if err != nil {
		return nil, err
	}

	flattened := flattenToolResult(result)
	if result != nil && result.IsError {
		return nil, agenterr.New(agenterr.KindToolCallFailed, nil).
			WithOp(a.tool.Name).
			WithMessage(flattened.Text)
	}

	payload, err := json.Marshal(flattened)
	if err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, err).WithOp("mcp_tool_execute")
	}
	return payload, nil
}

// flattenedResult is the JSON object an MCP ToolCallResult becomes once
// it crosses into a plain Tool's return value.
type flattenedResult struct {
	Text      string   `json:"text,omitempty"`
	Images    []string `json:"images,omitempty"`
	Resources []string `json:"resources,omitempty"`
}

func flattenToolResult(result *ToolCallResult) flattenedResult {
	var out flattenedResult
	if result == nil {
		return out
	}

	var textParts []string
	for _, item := range result.Content {
		switch item.Type {
		case "text":
			if item.Text != "" {
				textParts = append(textParts, item.Text)
			}
		case "image":
			out.Images = append(out.Images, item.Data)
		case "resource":
			out.Resources = append(out.Resources, item.Text)
		}
	}
	out.Text = strings.Join(textParts, "\n")
	return out
}

var _ tool.Tool = (*ToolAdapter)(nil)

// SafeToolName derives a registry-safe tool name from a server name and
// a raw MCP tool name: lower-cased, non-alphanumerics collapsed to a
// single underscore, prefixed "mcp_", truncated (with a content hash
// suffix) to maxToolNameLen, and de-duplicated against already-used
// names in the same discovery pass.
func SafeToolName(serverName, toolName string, used map[string]struct{}) string {
	base := "mcp_" + sanitizeToolPart(serverName) + "_" + sanitizeToolPart(toolName)
	name := base
	if len(name) > maxToolNameLen {
		name = truncateWithHash(base, serverName, toolName)
	}

	if _, exists := used[name]; exists {
		name = dedupeWithHash(name, serverName, toolName)
	}

	used[name] = struct{}{}
	return name
}

func sanitizeToolPart(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	underscore := false
	for _, r := range value {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			underscore = false
		default:
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	clean := strings.Trim(b.String(), "_")
	if clean == "" {
		return "tool"
	}
	return clean
}

func toolNameHash(serverName, toolName string) string {
	sum := sha1.Sum([]byte(serverName + ":" + toolName))
	return hex.EncodeToString(sum[:])[:8]
}

func truncateWithHash(base, serverName, toolName string) string {
	suffix := "_" + toolNameHash(serverName, toolName)
	if maxToolNameLen <= len(suffix) {
		return suffix[len(suffix)-maxToolNameLen:]
	}
	trimLen := maxToolNameLen - len(suffix)
	if trimLen > len(base) {
		trimLen = len(base)
	}
	return base[:trimLen] + suffix
}

func dedupeWithHash(base, serverName, toolName string) string {
	suffix := "_" + toolNameHash(serverName, toolName)
	name := base + suffix
	if len(name) <= maxToolNameLen {
		return name
	}
	return truncateWithHash(base, serverName, toolName)
}
