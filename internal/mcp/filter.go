package mcp

import "path"

// Filter is an allow/deny policy applied to a set of names. Allow is
// either the wildcard "*" (everything passes) or an explicit list of
// names/glob patterns; Deny always takes precedence over Allow.
type Filter struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// ShouldInclude reports whether name passes this filter: denied if it
// matches any Deny pattern, otherwise included if Allow is the wildcard
// "*" or name matches one of the explicit Allow patterns.
func (f Filter) ShouldInclude(name string) bool {
	for _, pattern := range f.Deny {
		if matchName(pattern, name) {
			return false
		}
	}

	if len(f.Allow) == 0 {
		return false
	}
	for _, pattern := range f.Allow {
		if pattern == "*" || matchName(pattern, name) {
			return true
		}
	}
	return false
}

// matchName matches name against pattern using shell glob semantics
// (path.Match) where resource URIs and tool names alike use "*" as a
// wildcard; an invalid pattern is treated as a literal non-match rather
// than a filter-construction error, since ShouldInclude has no error
// return.
func matchName(pattern, name string) bool {
	if pattern == name {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// AgentConfig is one agent's MCP policy: which servers it may use and
// which of their tools/resources are exposed to it.
type AgentConfig struct {
	MCPServers []string `json:"mcpServers"`
	Tools      Filter   `json:"tools"`
	Resources  Filter   `json:"resources"`
}

// DiscoveredTool pairs an MCPTool with the server it was discovered on,
// the shape surfaced through the manager once multiple servers are in
// play.
type DiscoveredTool struct {
	ServerName string
	Tool       *MCPTool
}

// DiscoveredResource pairs an MCPResource with its server name.
type DiscoveredResource struct {
	ServerName string
	Resource   *MCPResource
}
