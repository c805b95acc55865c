package mcp

import (
	"context"
	"testing"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
)

func TestInitializeAgentNilFileConfig(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	err := mgr.InitializeAgent(context.Background(), nil, "research")
	if err == nil {
		t.Fatal("expected error for nil file config")
	}
	if agenterr.KindOf(err) != agenterr.KindConfigError {
		t.Errorf("expected KindConfigError, got %v", agenterr.KindOf(err))
	}
}

func TestInitializeAgentUnknownAgent(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	fileCfg := &FileConfig{
		MCPServers:          map[string]*ServerConfig{},
		AgentConfigurations: map[string]*AgentConfig{},
	}
	err := mgr.InitializeAgent(context.Background(), fileCfg, "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown agent name")
	}
}

func TestInitializeAgentDegradesGracefullyOnUnreachableServer(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	fileCfg := &FileConfig{
		MCPServers: map[string]*ServerConfig{
			"ghost": {ID: "ghost", Transport: TransportStdio, Command: "definitely-not-a-real-binary-xyz"},
		},
		AgentConfigurations: map[string]*AgentConfig{
			"research": {MCPServers: []string{"ghost"}},
		},
	}

	err := mgr.InitializeAgent(context.Background(), fileCfg, "research")
	if err != nil {
		t.Fatalf("expected InitializeAgent to degrade gracefully, got error: %v", err)
	}
	if len(mgr.ConnectedServers()) != 0 {
		t.Error("expected no connected servers when the only configured one is unreachable")
	}
}

func TestConnectByNameUnknownServer(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	fileCfg := &FileConfig{
		MCPServers:          map[string]*ServerConfig{},
		AgentConfigurations: map[string]*AgentConfig{},
	}
	mgr.fileConfig = fileCfg

	err := mgr.connectByName(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for server not defined in config")
	}
}

func TestConnectByNameNotInitialized(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	err := mgr.connectByName(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error when manager has no file config")
	}
}

func TestDiscoverToolsWithoutAgentConfigExcludesEverything(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	discovered := mgr.DiscoverTools(context.Background())
	if len(discovered) != 0 {
		t.Errorf("expected no tools discovered without an agent policy, got %d", len(discovered))
	}
}

func TestDiscoverResourcesWithoutAgentConfigExcludesEverything(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	discovered := mgr.DiscoverResources(context.Background())
	if len(discovered) != 0 {
		t.Errorf("expected no resources discovered without an agent policy, got %d", len(discovered))
	}
}

func TestHealthCheckWithAgentConfigReportsMissingAsDown(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	mgr.agentConfig = &AgentConfig{MCPServers: []string{"never-connected"}}

	status := mgr.HealthCheck()
	connected, ok := status["never-connected"]
	if !ok {
		t.Fatal("expected health check to report on every configured server")
	}
	if connected {
		t.Error("expected never-connected server to report false")
	}
}

func TestHealthCheckWithoutAgentConfigReportsEmptyClients(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	status := mgr.HealthCheck()
	if len(status) != 0 {
		t.Errorf("expected empty health check with no clients and no agent policy, got %v", status)
	}
}

func TestReconnectUnknownServerFails(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	mgr.fileConfig = &FileConfig{
		MCPServers:          map[string]*ServerConfig{},
		AgentConfigurations: map[string]*AgentConfig{},
	}
	err := mgr.Reconnect(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error reconnecting to an undefined server")
	}
}

func TestConnectedServersEmptyInitially(t *testing.T) {
	mgr := NewManager(&Config{}, nil)
	if got := mgr.ConnectedServers(); len(got) != 0 {
		t.Errorf("expected no connected servers initially, got %v", got)
	}
}

func TestShutdownIsStop(t *testing.T) {
	mgr := NewManager(&Config{Enabled: true}, nil)
	if err := mgr.Shutdown(); err != nil {
		t.Errorf("expected Shutdown to succeed, got %v", err)
	}
}
