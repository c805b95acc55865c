package executor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
)

// Config parameterises one Executor. Zero values for MaxIterations,
// MaxTokens, and Temperature are replaced with their documented
// defaults by New; Model and SystemPrompt are used as given.
type Config struct {
	// MaxIterations bounds the number of provider calls a single run
	// performs. Defaults to 10 if <= 0.
	MaxIterations int `yaml:"max_iterations"`

	// Model is passed through verbatim on every CompletionRequest.
	Model string `yaml:"model"`

	// SystemPrompt, if non-empty, is attached to every request as the
	// system field.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxTokens bounds the provider's response length. Defaults to 4096
	// if <= 0.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is advisory, passed through to the provider when
	// non-nil. Defaults to 0.7 if nil.
	Temperature *float64 `yaml:"temperature,omitempty"`

	// StopSequences, if non-empty, is attached to every request.
	StopSequences []string `yaml:"stop_sequences,omitempty"`
}

// LoadConfigYAML reads an ExecutorConfig override file: a per-agent YAML
// document that overrides the zero-value Config an Executor would
// otherwise get. An empty or missing MaxIterations/MaxTokens/Temperature
// in the file still gets withDefaults' fallback once passed to New.
func LoadConfigYAML(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, agenterr.New(agenterr.KindConfigError, fmt.Errorf("read executor config %s: %w", path, err)).WithOp("load_config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, agenterr.New(agenterr.KindConfigError, fmt.Errorf("parse executor config %s: %w", path, err)).WithOp("load_config")
	}
	return cfg, nil
}

const (
	defaultMaxIterations = 10
	defaultMaxTokens     = 4096
	defaultTemperature   = 0.7
)

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Temperature == nil {
		t := defaultTemperature
		c.Temperature = &t
	}
	return c
}
