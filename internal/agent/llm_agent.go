package agent

import (
	"context"
	"fmt"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/provider"
	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// LLMAgentConfig parameterises an LLMAgent. Zero MaxTokens/Temperature
// fall back to the same defaults executor.Config uses, so the two
// agent shapes feel consistent to a caller configuring both.
type LLMAgentConfig struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  *float64
}

const (
	defaultLLMAgentMaxTokens   = 4096
	defaultLLMAgentTemperature = 0.7
)

func (c LLMAgentConfig) withDefaults() LLMAgentConfig {
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultLLMAgentMaxTokens
	}
	if c.Temperature == nil {
		t := defaultLLMAgentTemperature
		c.Temperature = &t
	}
	return c
}

// LLMAgent is the baseline agent shape: one provider call per turn, no
// loop, no tools. Used both as a standalone agent and as a delegation
// leaf behind a DelegatingAgent.
type LLMAgent struct {
	agentName string
	provider  provider.Provider
	config    LLMAgentConfig
}

// NewLLMAgent builds an LLMAgent named name, backed by p.
func NewLLMAgent(name string, p provider.Provider, cfg LLMAgentConfig) *LLMAgent {
	return &LLMAgent{agentName: name, provider: p, config: cfg.withDefaults()}
}

func (a *LLMAgent) Name() string { return a.agentName }

// Process issues a single completion and returns its text, or the
// "No response" sentinel if the assistant message carried none. That
// matches the fallback the executor uses for end_turn/stop_sequence
// responses, so a caller sees consistent text across both agent shapes.
func (a *LLMAgent) Process(ctx context.Context, input string, actx *Context) (string, error) {
	if input == "" {
		return "", agenterr.New(agenterr.KindInvalidRequest, fmt.Errorf("input must not be empty")).WithOp("process")
	}

	req := &models.CompletionRequest{
		Model:       a.config.Model,
		Messages:    []models.Message{models.NewTextMessage(models.RoleUser, input)},
		System:      a.config.SystemPrompt,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	}

	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		return "", agenterr.New(agenterr.KindProcessingFailed, err).WithOp("process")
	}

	if text := resp.Message.Text(); text != "" {
		return text, nil
	}
	return "No response", nil
}

var _ Agent = (*LLMAgent)(nil)
