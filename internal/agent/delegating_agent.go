package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
)

// Router picks which sub-agent, by name, should handle one turn. It may
// inspect both the raw input text and the call's Context.
type Router func(ctx context.Context, input string, actx *Context) (string, error)

// DelegatingAgent routes a turn to exactly one of its named sub-agents,
// chosen by Router, and forwards the result verbatim. Construction
// fails if there are no sub-agents or no router, since a delegating
// agent lacking either is a deployment bug, not a runtime condition to
// recover from.
type DelegatingAgent struct {
	agentName string
	subAgents map[string]Agent
	router    Router
}

// NewDelegatingAgent builds a DelegatingAgent named name over subAgents,
// using router to pick among them. Returns an error if subAgents is
// empty or router is nil.
func NewDelegatingAgent(name string, subAgents map[string]Agent, router Router) (*DelegatingAgent, error) {
	if len(subAgents) == 0 {
		return nil, agenterr.New(agenterr.KindInitializationFailed, fmt.Errorf("delegating agent %q requires at least one sub-agent", name)).WithOp("new_delegating_agent")
	}
	if router == nil {
		return nil, agenterr.New(agenterr.KindInitializationFailed, fmt.Errorf("delegating agent %q requires a router", name)).WithOp("new_delegating_agent")
	}
	copied := make(map[string]Agent, len(subAgents))
	for k, v := range subAgents {
		copied[k] = v
	}
	return &DelegatingAgent{agentName: name, subAgents: copied, router: router}, nil
}

func (a *DelegatingAgent) Name() string { return a.agentName }

// SubAgentNames returns the names of every sub-agent, sorted, for
// diagnostics and for routers that want to enumerate their options.
func (a *DelegatingAgent) SubAgentNames() []string {
	out := make([]string, 0, len(a.subAgents))
	for name := range a.subAgents {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Process asks the router which sub-agent should handle input, then
// forwards to it. A router choosing an unknown name fails with
// ProcessingFailed, listing the agents actually available.
func (a *DelegatingAgent) Process(ctx context.Context, input string, actx *Context) (string, error) {
	name, err := a.router(ctx, input, actx)
	if err != nil {
		return "", agenterr.New(agenterr.KindProcessingFailed, err).WithOp("route")
	}

	sub, ok := a.subAgents[name]
	if !ok {
		available := strings.Join(a.SubAgentNames(), ", ")
		return "", agenterr.New(agenterr.KindProcessingFailed,
			fmt.Errorf("router selected unknown agent %q; available: [%s]", name, available),
		).WithOp("route")
	}

	return sub.Process(ctx, input, actx)
}

var _ Agent = (*DelegatingAgent)(nil)
