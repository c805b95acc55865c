package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeywordRouterFirstMatchWins(t *testing.T) {
	router := NewKeywordRouter([]RoutingRule{
		{Patterns: []string{"invoice", "billing"}, Target: "billing"},
		{Patterns: []string{"outage", "down"}, Target: "support"},
	}, "general")

	got, err := router(context.Background(), "my INVOICE is wrong", nil)
	require.NoError(t, err)
	assert.Equal(t, "billing", got)
}

func TestNewKeywordRouterFallsBackToDefault(t *testing.T) {
	router := NewKeywordRouter([]RoutingRule{
		{Patterns: []string{"invoice"}, Target: "billing"},
	}, "general")

	got, err := router(context.Background(), "what's the weather like?", nil)
	require.NoError(t, err)
	assert.Equal(t, "general", got)
}

func TestDelegatingAgentWithKeywordRouterEndToEnd(t *testing.T) {
	billing := &stubAgent{name: "billing", response: "here's your invoice"}
	general := &stubAgent{name: "general", response: "how can I help?"}

	router := NewKeywordRouter([]RoutingRule{
		{Patterns: []string{"invoice"}, Target: "billing"},
	}, "general")
	d, err := NewDelegatingAgent("top", map[string]Agent{"billing": billing, "general": general}, router)
	require.NoError(t, err)

	got, err := d.Process(context.Background(), "please resend my invoice", nil)
	require.NoError(t, err)
	assert.Equal(t, "here's your invoice", got)
}
