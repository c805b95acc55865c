package mcp

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandEnvNoDollarUnchanged(t *testing.T) {
	out, err := ExpandEnv("plain string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain string" {
		t.Errorf("expected unchanged string, got %q", out)
	}
}

func TestExpandEnvBracedAndBare(t *testing.T) {
	t.Setenv("MCP_TEST_TOKEN", "secret123")
	out, err := ExpandEnv(`{"token":"${MCP_TEST_TOKEN}","bare":"$MCP_TEST_TOKEN"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"token":"secret123","bare":"secret123"}`
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestExpandEnvUnsetVariableFails(t *testing.T) {
	os.Unsetenv("MCP_TEST_DEFINITELY_UNSET")
	_, err := ExpandEnv("${MCP_TEST_DEFINITELY_UNSET}")
	if err == nil {
		t.Fatal("expected error for unset environment variable")
	}
}

func TestLoadConfigMergePrecedence(t *testing.T) {
	dir := t.TempDir()
	homePath := filepath.Join(dir, "home.json")
	projectPath := filepath.Join(dir, "project.json")

	homeJSON := `{
		"mcpServers": {
			"shared": {"transport": "stdio", "command": "home-cmd"},
			"home-only": {"transport": "stdio", "command": "home-only-cmd"}
		},
		"agentConfigurations": {
			"research": {"mcpServers": ["home-only"]}
		}
	}`
	projectJSON := `{
		"mcpServers": {
			"shared": {"transport": "stdio", "command": "project-cmd"}
		},
		"agentConfigurations": {
			"research": {"mcpServers": ["shared"]}
		}
	}`

	if err := os.WriteFile(homePath, []byte(homeJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(projectPath, []byte(projectJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(projectPath, homePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.MCPServers["shared"].Command; got != "project-cmd" {
		t.Errorf("expected project config to win for shared server, got %q", got)
	}
	if _, ok := cfg.MCPServers["home-only"]; !ok {
		t.Error("expected home-only server to survive merge")
	}
	if got := cfg.AgentConfigurations["research"].MCPServers; len(got) != 1 || got[0] != "shared" {
		t.Errorf("expected project agent config to win, got %v", got)
	}
}

func TestLoadConfigMissingFilesReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "nope.json"), filepath.Join(dir, "also-nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.MCPServers) != 0 || len(cfg.AgentConfigurations) != 0 {
		t.Error("expected empty config when no files exist")
	}
}

func TestLoadConfigInvalidServerFails(t *testing.T) {
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "project.json")
	badJSON := `{"mcpServers": {"bad": {"transport": "stdio"}}}`
	if err := os.WriteFile(projectPath, []byte(badJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(projectPath, "")
	if err == nil {
		t.Fatal("expected validation error for stdio server missing command")
	}
}

func TestLoadConfigWireShape(t *testing.T) {
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "project.json")
	projectJSON := `{
		"mcpServers": {
			"filings": {
				"transport": "stdio",
				"command": "filings-server",
				"args": ["--readonly"],
				"env": {"CACHE_DIR": "/tmp/cache"},
				"cwd": "/srv/filings"
			},
			"market": {
				"transport": "http",
				"url": "https://mcp.example.com/rpc",
				"headers": {"X-Team": "research"},
				"timeoutSecs": 5
			}
		}
	}`
	if err := os.WriteFile(projectPath, []byte(projectJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(projectPath, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filings := cfg.MCPServers["filings"]
	if filings.WorkDir != "/srv/filings" {
		t.Errorf("expected cwd to map to WorkDir, got %q", filings.WorkDir)
	}
	if filings.Env["CACHE_DIR"] != "/tmp/cache" {
		t.Errorf("env not carried through: %v", filings.Env)
	}

	market := cfg.MCPServers["market"]
	if market.Timeout != 5*time.Second {
		t.Errorf("expected timeoutSecs 5 to map to 5s, got %v", market.Timeout)
	}
	if market.Headers["X-Team"] != "research" {
		t.Errorf("headers not carried through: %v", market.Headers)
	}
}

func TestLoadConfigSSETransport(t *testing.T) {
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "project.json")
	projectJSON := `{
		"mcpServers": {
			"events": {"transport": "sse", "url": "https://mcp.example.com/sse"}
		}
	}`
	if err := os.WriteFile(projectPath, []byte(projectJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(projectPath, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := cfg.MCPServers["events"]
	if events.Transport != TransportSSE {
		t.Errorf("expected sse transport, got %q", events.Transport)
	}
	// The client layer treats sse like http: same transport type.
	if _, ok := NewTransport(events).(*HTTPTransport); !ok {
		t.Error("expected sse server to get the HTTP transport")
	}
}

func TestDefaultHomeConfigPath(t *testing.T) {
	p := DefaultHomeConfigPath("myapp")
	if p == "" {
		t.Skip("no home directory available in this environment")
	}
	if filepath.Base(p) != "mcp.json" {
		t.Errorf("expected path to end in mcp.json, got %q", p)
	}
}
