package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/tool"
)

// ResourceReader is the slice of Manager the resource bridge needs.
type ResourceReader interface {
	ReadResource(ctx context.Context, serverID string, uri string) ([]*ResourceContent, error)
}

// PromptGetter is the slice of Manager the prompt bridge needs.
type PromptGetter interface {
	GetPrompt(ctx context.Context, serverID string, name string, arguments map[string]string) (*GetPromptResult, error)
}

// ResourceReadBridge exposes one server's resources/read as a synthetic
// tool, so an LLM can pull resource contents into the conversation
// without a dedicated resource surface. The agent's resource filter is
// enforced per call: a URI the policy excludes reads as not found.
type ResourceReadBridge struct {
	reader     ResourceReader
	serverName string
	name       string
	filter     Filter
}

// NewResourceReadBridge builds the synthetic resource-read tool for one
// server, constrained by the agent's resource filter.
func NewResourceReadBridge(reader ResourceReader, serverName, safeName string, filter Filter) *ResourceReadBridge {
	return &ResourceReadBridge{reader: reader, serverName: serverName, name: safeName, filter: filter}
}

func (b *ResourceReadBridge) Name() string { return b.name }

func (b *ResourceReadBridge) Description() string {
	return fmt.Sprintf("Read an MCP resource from %s by uri", b.serverName)
}

func (b *ResourceReadBridge) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"uri":{"type":"string"}},"required":["uri"]}`)
}

func (b *ResourceReadBridge) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var input struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, agenterr.New(agenterr.KindInvalidRequest, err).WithOp(b.name)
	}
	if strings.TrimSpace(input.URI) == "" {
		return nil, agenterr.New(agenterr.KindInvalidRequest, fmt.Errorf("uri is required")).WithOp(b.name)
	}
	if !b.filter.ShouldInclude(input.URI) {
		return nil, agenterr.New(agenterr.KindResourceNotFound, nil).
			WithOp(b.name).
			WithMessage(fmt.Sprintf("resource %q is not available to this agent", input.URI))
	}

	contents, err := b.reader.ReadResource(ctx, b.serverName, input.URI)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(flattenResourceContents(contents))
	if err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, err).WithOp(b.name)
	}
	return payload, nil
}

// flattenedResource mirrors flattenedResult's shape for resource reads:
// text joined on newlines, base64 blobs collected separately.
type flattenedResource struct {
	Text  string   `json:"text,omitempty"`
	Blobs []string `json:"blobs,omitempty"`
}

func flattenResourceContents(contents []*ResourceContent) flattenedResource {
	var out flattenedResource
	var textParts []string
	for _, c := range contents {
		if c == nil {
			continue
		}
		if c.Text != "" {
			textParts = append(textParts, c.Text)
		}
		if c.Blob != "" {
			out.Blobs = append(out.Blobs, c.Blob)
		}
	}
	out.Text = strings.Join(textParts, "\n")
	return out
}

// PromptGetBridge exposes one server's prompts/get as a synthetic tool.
type PromptGetBridge struct {
	getter     PromptGetter
	serverName string
	name       string
}

// NewPromptGetBridge builds the synthetic prompt-get tool for one server.
func NewPromptGetBridge(getter PromptGetter, serverName, safeName string) *PromptGetBridge {
	return &PromptGetBridge{getter: getter, serverName: serverName, name: safeName}
}

func (b *PromptGetBridge) Name() string { return b.name }

func (b *PromptGetBridge) Description() string {
	return fmt.Sprintf("Fetch an MCP prompt from %s by name, with optional arguments", b.serverName)
}

func (b *PromptGetBridge) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"arguments":{"type":"object"}},"required":["name"]}`)
}

func (b *PromptGetBridge) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var input struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments,omitempty"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, agenterr.New(agenterr.KindInvalidRequest, err).WithOp(b.name)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, agenterr.New(agenterr.KindInvalidRequest, fmt.Errorf("name is required")).WithOp(b.name)
	}

	result, err := b.getter.GetPrompt(ctx, b.serverName, input.Name, input.Arguments)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, err).WithOp(b.name)
	}
	return payload, nil
}

var (
	_ tool.Tool = (*ResourceReadBridge)(nil)
	_ tool.Tool = (*PromptGetBridge)(nil)
)

// RegisterBridges registers the synthetic resource-read and prompt-get
// tools for every connected server into registry, named
// mcp_resource_read_<server> and mcp_prompt_get_<server>. The resource
// bridge carries the active agent's resource filter. Returns the number
// of tools registered.
func RegisterBridges(manager *Manager, registry *tool.Registry) int {
	manager.mu.RLock()
	servers := make([]string, 0, len(manager.clients))
	for name := range manager.clients {
		servers = append(servers, name)
	}
	filter := Filter{}
	if manager.agentConfig != nil {
		filter = manager.agentConfig.Resources
	}
	manager.mu.RUnlock()

	used := make(map[string]struct{})
	for _, t := range registry.List() {
		used[t.Name()] = struct{}{}
	}

	count := 0
	for _, server := range servers {
		readName := bridgeToolName("mcp_resource_read_", server, used)
		if err := registry.Register(NewResourceReadBridge(manager, server, readName, filter)); err == nil {
			count++
		}
		promptName := bridgeToolName("mcp_prompt_get_", server, used)
		if err := registry.Register(NewPromptGetBridge(manager, server, promptName)); err == nil {
			count++
		}
	}
	return count
}

// bridgeToolName derives the synthetic tool name for one server's
// bridge, applying the same sanitization and length budget SafeToolName
// uses for discovered tools.
func bridgeToolName(prefix, serverName string, used map[string]struct{}) string {
	name := prefix + sanitizeToolPart(serverName)
	if len(name) > maxToolNameLen {
		name = truncateWithHash(name, prefix, serverName)
	}
	if _, exists := used[name]; exists {
		name = dedupeWithHash(name, prefix, serverName)
	}
	used[name] = struct{}{}
	return name
}
