package mcp

import (
	"context"

	"github.com/haasonsaas/agentrtcore/internal/tool"
)

// DiscoverAndRegister obtains the manager's filtered tool list (scoped
// to whichever agent configuration InitializeAgent installed), wraps
// each discovered tool through ToolAdapter, and registers it into
// registry. Re-running this for the same manager/registry pair is
// idempotent: re-registering under the same safe name simply replaces
// the previous entry, matching Registry.Register's own semantics.
//
// Returns the number of tools registered.
func DiscoverAndRegister(ctx context.Context, manager *Manager, registry *tool.Registry) int {
	discovered := manager.DiscoverTools(ctx)

	// Names held by other tools are reserved; names held by MCP adapters
	// from an earlier pass are not, so a repeat pass reuses them.
	used := make(map[string]struct{})
	for _, t := range registry.List() {
		if _, isAdapter := t.(*ToolAdapter); isAdapter {
			continue
		}
		used[t.Name()] = struct{}{}
	}

	count := 0
	for _, d := range discovered {
		safeName := SafeToolName(d.ServerName, d.Tool.Name, used)
		if err := registry.Register(NewToolAdapter(manager, d.ServerName, d.Tool, safeName)); err != nil {
			continue
		}
		count++
	}
	return count
}
