package agent

import (
	"context"

	"github.com/haasonsaas/agentrtcore/internal/executor"
	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// historyKey is the well-known Context key a caller may populate with
// []models.Message to continue a prior conversation through a
// ToolAgent, rather than starting fresh on every turn.
const historyKey = "history"

// ToolAgent owns an Executor and delegates every turn to its bounded
// LLM-loop. It is the agent shape used whenever a turn may require tool
// calls.
type ToolAgent struct {
	agentName string
	executor  *executor.Executor
}

// NewToolAgent builds a ToolAgent named name around exec.
func NewToolAgent(name string, exec *executor.Executor) *ToolAgent {
	return &ToolAgent{agentName: name, executor: exec}
}

func (a *ToolAgent) Name() string { return a.agentName }

// Process runs one bounded agentic loop via the underlying Executor. If
// actx carries a "history" entry ([]models.Message), it is used as the
// conversation's prior turns; otherwise the loop starts fresh.
func (a *ToolAgent) Process(ctx context.Context, input string, actx *Context) (string, error) {
	var history []models.Message
	if actx != nil {
		if _, err := actx.Get(historyKey, &history); err != nil {
			return "", err
		}
	}
	return a.executor.RunWithHistory(ctx, input, history)
}

var _ Agent = (*ToolAgent)(nil)
