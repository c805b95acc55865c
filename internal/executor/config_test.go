package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
)

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "executor.yaml")
	body := `
model: claude-sonnet-4
system_prompt: You are a careful assistant.
max_iterations: 5
max_tokens: 2048
temperature: 0.2
stop_sequences:
  - "STOP"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfigYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "claude-sonnet-4" {
		t.Errorf("expected model %q, got %q", "claude-sonnet-4", cfg.Model)
	}
	if cfg.MaxIterations != 5 {
		t.Errorf("expected max_iterations 5, got %d", cfg.MaxIterations)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.Temperature)
	}
	if len(cfg.StopSequences) != 1 || cfg.StopSequences[0] != "STOP" {
		t.Errorf("expected one stop sequence %q, got %v", "STOP", cfg.StopSequences)
	}
}

func TestLoadConfigYAMLMissingFile(t *testing.T) {
	_, err := LoadConfigYAML(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if agenterr.KindOf(err) != agenterr.KindConfigError {
		t.Errorf("expected KindConfigError, got %v", agenterr.KindOf(err))
	}
}

func TestLoadConfigYAMLMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := LoadConfigYAML(path)
	if agenterr.KindOf(err) != agenterr.KindConfigError {
		t.Errorf("expected KindConfigError, got %v", agenterr.KindOf(err))
	}
}

func TestLoadConfigYAMLAppliesDefaultsThroughNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	if err := os.WriteFile(path, []byte("model: claude-sonnet-4\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfigYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withDefaults := cfg.withDefaults()
	if withDefaults.MaxIterations != defaultMaxIterations {
		t.Errorf("expected default max iterations %d, got %d", defaultMaxIterations, withDefaults.MaxIterations)
	}
	if withDefaults.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens %d, got %d", defaultMaxTokens, withDefaults.MaxTokens)
	}
	if withDefaults.Temperature == nil || *withDefaults.Temperature != defaultTemperature {
		t.Errorf("expected default temperature %v, got %v", defaultTemperature, withDefaults.Temperature)
	}
}
