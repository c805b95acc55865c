package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
)

// FileConfig is the on-disk shape of .mcp.json: named server
// definitions plus the per-agent policy that selects and filters them.
type FileConfig struct {
	MCPServers          map[string]*ServerConfig `json:"mcpServers"`
	AgentConfigurations map[string]*AgentConfig  `json:"agentConfigurations"`
}

// rawServerConfig is the wire shape of one mcpServers entry. It differs
// from ServerConfig where the file format does: the working directory is
// "cwd" and the timeout is "timeoutSecs" (an integer, defaulting to the
// transport's own 30s when absent), not a Go duration.
type rawServerConfig struct {
	Transport   string            `json:"transport"`
	Command     string            `json:"command"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env"`
	Cwd         string            `json:"cwd"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers"`
	TimeoutSecs int               `json:"timeoutSecs"`
}

func (r *rawServerConfig) toServerConfig() *ServerConfig {
	sc := &ServerConfig{
		Transport: TransportType(r.Transport),
		Command:   r.Command,
		Args:      r.Args,
		Env:       r.Env,
		WorkDir:   r.Cwd,
		URL:       r.URL,
		Headers:   r.Headers,
	}
	if r.TimeoutSecs > 0 {
		sc.Timeout = time.Duration(r.TimeoutSecs) * time.Second
	}
	return sc
}

// LoadConfig reads the project config at projectPath and, if homePath
// is non-empty and exists, merges it underneath: project entries take
// precedence per server name and per agent name. Every string field is
// passed through ExpandEnv; an unset variable is a ConfigError, not a
// silent empty substitution.
func LoadConfig(projectPath, homePath string) (*FileConfig, error) {
	merged := &FileConfig{
		MCPServers:          map[string]*ServerConfig{},
		AgentConfigurations: map[string]*AgentConfig{},
	}

	if homePath != "" {
		if _, err := os.Stat(homePath); err == nil {
			home, err := loadConfigFile(homePath)
			if err != nil {
				return nil, err
			}
			mergeConfig(merged, home)
		}
	}

	if projectPath != "" {
		if _, err := os.Stat(projectPath); err == nil {
			project, err := loadConfigFile(projectPath)
			if err != nil {
				return nil, err
			}
			mergeConfig(merged, project)
		}
	}

	for name, cfg := range merged.MCPServers {
		cfg.ID = name
		if cfg.Name == "" {
			cfg.Name = name
		}
		if err := cfg.Validate(); err != nil {
			return nil, agenterr.New(agenterr.KindConfigError, err).WithOp("load_mcp_config")
		}
	}

	return merged, nil
}

func mergeConfig(dst, src *FileConfig) {
	for name, cfg := range src.MCPServers {
		dst.MCPServers[name] = cfg
	}
	for name, cfg := range src.AgentConfigurations {
		dst.AgentConfigurations[name] = cfg
	}
}

func loadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, agenterr.New(agenterr.KindConfigError, err).WithOp("read_mcp_config")
	}

	expanded, err := ExpandEnv(string(data))
	if err != nil {
		return nil, agenterr.New(agenterr.KindConfigError, err).WithOp("expand_mcp_config")
	}

	var wire struct {
		MCPServers          map[string]*rawServerConfig `json:"mcpServers"`
		AgentConfigurations map[string]*AgentConfig     `json:"agentConfigurations"`
	}
	if err := json.Unmarshal([]byte(expanded), &wire); err != nil {
		return nil, agenterr.New(agenterr.KindConfigError, err).WithOp("parse_mcp_config")
	}

	cfg := &FileConfig{
		MCPServers:          map[string]*ServerConfig{},
		AgentConfigurations: wire.AgentConfigurations,
	}
	if cfg.AgentConfigurations == nil {
		cfg.AgentConfigurations = map[string]*AgentConfig{}
	}
	for name, raw := range wire.MCPServers {
		cfg.MCPServers[name] = raw.toServerConfig()
	}

	return cfg, nil
}

// envVarPattern matches both ${VAR} and bare $VAR forms.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// ExpandEnv expands ${VAR} and $VAR references in s using the process
// environment. An unset variable is a configuration error: failing
// loudly beats silently substituting "". Input containing no "$" is
// returned unchanged (expansion is idempotent on such inputs).
func ExpandEnv(s string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var firstErr error
	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := match
		name = strings.TrimPrefix(name, "${")
		name = strings.TrimPrefix(name, "$")
		name = strings.TrimSuffix(name, "}")

		val, ok := os.LookupEnv(name)
		if !ok {
			firstErr = fmt.Errorf("unset environment variable %q", name)
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// DefaultProjectConfigPath is the conventional project-local MCP config
// file, resolved relative to the working directory.
func DefaultProjectConfigPath() string {
	return filepath.Join(".", ".mcp.json")
}

// DefaultHomeConfigPath is the conventional per-user MCP config file,
// merged underneath the project config (project entries win).
func DefaultHomeConfigPath(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "mcp.json")
}

// Watch starts an fsnotify watch on path and invokes onChange (with a
// freshly reloaded FileConfig) whenever the file is written. The
// returned function stops the watch. Errors from individual reload
// attempts are delivered via onError rather than stopping the watch,
// since a transient parse failure during an editor's atomic-save
// sequence should not kill hot-reload for subsequent valid writes.
func Watch(projectPath, homePath string, onChange func(*FileConfig), onError func(error)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, agenterr.New(agenterr.KindConfigError, err).WithOp("watch_mcp_config")
	}

	if projectPath != "" {
		_ = watcher.Add(filepath.Dir(projectPath))
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(projectPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, loadErr := LoadConfig(projectPath, homePath)
				if loadErr != nil {
					if onError != nil {
						onError(loadErr)
					}
					continue
				}
				if onChange != nil {
					onChange(cfg)
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(watchErr)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
