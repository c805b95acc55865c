package mcp

import (
	"context"
	"fmt"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/backoff"
)

// InitializeAgent resolves the named agent's MCP configuration from
// fileConfig, then connects every server it references through the
// Manager's retry policy. A connect failure on any one server is
// logged and that server is simply omitted from the active set
// (graceful degradation), so InitializeAgent itself only fails when
// the agent has no configuration at all, which is a deployment bug
// rather than a runtime outage.
func (m *Manager) InitializeAgent(ctx context.Context, fileConfig *FileConfig, agentName string) error {
	if fileConfig == nil {
		return agenterr.New(agenterr.KindConfigError, fmt.Errorf("nil MCP file configuration")).WithOp("initialize_agent")
	}

	agentCfg, ok := fileConfig.AgentConfigurations[agentName]
	if !ok {
		return agenterr.New(agenterr.KindConfigError,
			fmt.Errorf("agent %q has no MCP configuration", agentName)).WithOp("initialize_agent")
	}

	m.mu.Lock()
	m.fileConfig = fileConfig
	m.agentName = agentName
	m.agentConfig = agentCfg
	m.mu.Unlock()

	for _, serverName := range agentCfg.MCPServers {
		if err := m.connectByName(ctx, serverName); err != nil {
			m.logger.Error(ctx, "MCP server unreachable, degrading gracefully",
				"agent", agentName, "server", serverName, "error", err)
		}
	}

	return nil
}

// connectByName resolves serverName against the Manager's fileConfig
// and connects it through the retry policy. Already-connected servers
// are a no-op.
func (m *Manager) connectByName(ctx context.Context, serverName string) error {
	m.mu.RLock()
	if _, exists := m.clients[serverName]; exists {
		m.mu.RUnlock()
		return nil
	}
	fileConfig := m.fileConfig
	handler := m.samplingHandler
	policy := m.retryPolicy
	maxAttempts := m.maxAttempts
	m.mu.RUnlock()

	if fileConfig == nil {
		return agenterr.New(agenterr.KindConfigError, fmt.Errorf("manager not initialized")).WithOp("connect")
	}
	serverCfg, ok := fileConfig.MCPServers[serverName]
	if !ok {
		return agenterr.New(agenterr.KindConfigError,
			fmt.Errorf("server %q not defined in MCP configuration", serverName)).WithOp("connect")
	}

	client := NewClientWithTracer(serverCfg, m.logger, m.tracer)
	_, err := backoff.Run(ctx, policy, maxAttempts, func(ctx context.Context, attempt int) (struct{}, error) {
		if connErr := client.Connect(ctx); connErr != nil {
			return struct{}{}, agenterr.New(agenterr.KindConnectionFailed, connErr).WithOp("connect")
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	if handler != nil {
		client.HandleSampling(handler)
	}

	m.mu.Lock()
	m.clients[serverName] = client
	m.mu.Unlock()

	m.logger.Info(ctx, "connected to MCP server", "server", serverName, "name", client.ServerInfo().Name)
	return nil
}

// ConnectedServers returns the names of every server currently
// connected, in no particular order.
func (m *Manager) ConnectedServers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	return names
}

// DiscoverTools refreshes and returns every tool exposed by a connected
// server, tagged with its server name and filtered by the active
// agent's tool policy. A nil/zero-value policy excludes everything;
// callers that never called InitializeAgent must register tools
// explicitly instead. A server whose list call fails keeps its previously
// cached tools (see RefreshCapabilities); it never fails the whole
// discovery pass.
func (m *Manager) DiscoverTools(ctx context.Context) []DiscoveredTool {
	m.mu.RLock()
	clients := make(map[string]*Client, len(m.clients))
	for name, c := range m.clients {
		clients[name] = c
	}
	filter := Filter{}
	if m.agentConfig != nil {
		filter = m.agentConfig.Tools
	}
	m.mu.RUnlock()

	var discovered []DiscoveredTool
	for name, client := range clients {
		if err := client.RefreshCapabilities(ctx); err != nil {
			m.logger.Warn(ctx, "tool discovery failed for server, skipping", "server", name, "error", err)
			continue
		}
		for _, tool := range client.Tools() {
			if !filter.ShouldInclude(tool.Name) {
				continue
			}
			discovered = append(discovered, DiscoveredTool{ServerName: name, Tool: tool})
		}
	}
	return discovered
}

// DiscoverResources is DiscoverTools' counterpart for resources,
// filtered by the active agent's resource policy (URIs matched as glob
// patterns, per Filter.ShouldInclude).
func (m *Manager) DiscoverResources(ctx context.Context) []DiscoveredResource {
	m.mu.RLock()
	clients := make(map[string]*Client, len(m.clients))
	for name, c := range m.clients {
		clients[name] = c
	}
	filter := Filter{}
	if m.agentConfig != nil {
		filter = m.agentConfig.Resources
	}
	m.mu.RUnlock()

	var discovered []DiscoveredResource
	for name, client := range clients {
		if err := client.RefreshCapabilities(ctx); err != nil {
			m.logger.Warn(ctx, "resource discovery failed for server, skipping", "server", name, "error", err)
			continue
		}
		for _, resource := range client.Resources() {
			if !filter.ShouldInclude(resource.URI) {
				continue
			}
			discovered = append(discovered, DiscoveredResource{ServerName: name, Resource: resource})
		}
	}
	return discovered
}

// HealthCheck reports the connectedness of every server the active
// agent's configuration references, regardless of whether it is
// currently in the client map (an omitted server reports false rather
// than being left out entirely).
func (m *Manager) HealthCheck() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]bool)
	if m.agentConfig != nil {
		for _, name := range m.agentConfig.MCPServers {
			client, exists := m.clients[name]
			status[name] = exists && client.Connected()
		}
		return status
	}
	for name, client := range m.clients {
		status[name] = client.Connected()
	}
	return status
}

// Reconnect re-creates and re-connects the named server's client. Any
// existing handle is removed from the active set first, a new client is
// then connected through the retry policy, and only once it is in place
// is the stale handle closed. The replacement is not atomic: while the
// new client connects, and after a failed Reconnect, the server is
// absent from the active set. Closing the stale handle does not wait for
// calls still in flight on it.
func (m *Manager) Reconnect(ctx context.Context, serverName string) error {
	m.mu.Lock()
	stale, hadStale := m.clients[serverName]
	delete(m.clients, serverName)
	m.mu.Unlock()

	if err := m.connectByName(ctx, serverName); err != nil {
		return err
	}

	if hadStale {
		if err := stale.Close(); err != nil {
			m.logger.Warn(ctx, "failed to close stale MCP client on reconnect", "server", serverName, "error", err)
		}
	}
	return nil
}

// SetSamplingHandler installs the server-initiated sampling callback
// on every currently connected client and on any client connected
// afterward.
func (m *Manager) SetSamplingHandler(handler SamplingHandler) {
	m.mu.Lock()
	m.samplingHandler = handler
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	if handler == nil {
		return
	}
	for _, c := range clients {
		c.HandleSampling(handler)
	}
}

// Shutdown disconnects every connected server, logging but not
// propagating individual disconnect errors. It is Stop under a name
// that matches the rest of this file's agent-lifecycle vocabulary.
func (m *Manager) Shutdown() error {
	return m.Stop()
}
