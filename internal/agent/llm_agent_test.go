package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haasonsaas/agentrtcore/pkg/models"
)

func TestLLMAgentProcessReturnsText(t *testing.T) {
	p := &fakeProvider{
		name:     "fake",
		response: &models.CompletionResponse{Message: models.NewTextMessage(models.RoleAssistant, "42"), StopReason: models.StopEndTurn},
	}
	a := NewLLMAgent("calculator", p, LLMAgentConfig{Model: "claude-test", SystemPrompt: "be terse"})

	got, err := a.Process(context.Background(), "what is 6*7?", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, "calculator", a.Name())

	require.Len(t, p.calls, 1)
	assert.Equal(t, "claude-test", p.calls[0].Model)
	assert.Equal(t, "be terse", p.calls[0].System)
	assert.Nil(t, p.calls[0].Tools)
}

func TestLLMAgentProcessNoResponseFallback(t *testing.T) {
	p := &fakeProvider{
		name:     "fake",
		response: &models.CompletionResponse{Message: models.Message{Role: models.RoleAssistant}, StopReason: models.StopEndTurn},
	}
	a := NewLLMAgent("a", p, LLMAgentConfig{Model: "m"})

	got, err := a.Process(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "No response", got)
}

func TestLLMAgentProcessRejectsEmptyInput(t *testing.T) {
	a := NewLLMAgent("a", &fakeProvider{}, LLMAgentConfig{Model: "m"})
	_, err := a.Process(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestLLMAgentProcessPropagatesProviderError(t *testing.T) {
	p := &fakeProvider{name: "fake", err: errProviderFailed}
	a := NewLLMAgent("a", p, LLMAgentConfig{Model: "m"})

	_, err := a.Process(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errProviderFailed)
}
