package agent

import (
	"context"
	"strings"
)

// RoutingRule matches a turn's input text against a set of keyword
// patterns and, on a match, selects Target by name.
type RoutingRule struct {
	Patterns []string
	Target   string
}

// NewKeywordRouter builds a Router that checks rules in order (first
// match wins) and falls back to defaultTarget if none match. Matching
// is a case-insensitive substring test against the raw input text,
// deliberately lightweight: a host that needs smarter routing can
// supply any Router of its own, including one backed by an LLM.
func NewKeywordRouter(rules []RoutingRule, defaultTarget string) Router {
	return func(ctx context.Context, input string, actx *Context) (string, error) {
		lower := strings.ToLower(input)
		for _, rule := range rules {
			for _, pattern := range rule.Patterns {
				p := strings.ToLower(strings.TrimSpace(pattern))
				if p == "" {
					continue
				}
				if strings.Contains(lower, p) {
					return rule.Target, nil
				}
			}
		}
		return defaultTarget, nil
	}
}
