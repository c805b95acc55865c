package models

// StopReason is why the LLM stopped generating a message.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopSequence  StopReason = "stop_sequence"
	StopToolUse   StopReason = "tool_use"
)

// ToolDefinition is the LLM-facing shape of a registered tool: name,
// prose description, and a JSON-Schema object describing its arguments.
// Name uniquely identifies the tool within a registry.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema []byte `json:"input_schema"`
}

// Usage reports token consumption for one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CompletionRequest is everything a Provider needs to produce one
// completion. Invariants: MaxTokens >= 1; Tools is omitted entirely
// (nil, not empty) when there are no tools to offer; Temperature, when
// set, is advisory and in [0, 2].
type CompletionRequest struct {
	Model         string           `json:"model"`
	Messages      []Message        `json:"messages"`
	System        string           `json:"system,omitempty"`
	MaxTokens     int              `json:"max_tokens"`
	Temperature   *float64         `json:"temperature,omitempty"`
	Tools         []ToolDefinition `json:"tools,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
}

// CompletionResponse is the provider's synchronous reply: a complete
// assistant message, the reason it stopped, and token accounting.
type CompletionResponse struct {
	Message    Message    `json:"message"`
	StopReason StopReason `json:"stop_reason"`
	Usage      Usage      `json:"usage"`

	// Attempts is the number of provider-call attempts it took to
	// produce this response, including the final successful one. A
	// Provider without a retry policy reports 1. Providers that retry
	// transient failures internally (see internal/backoff) report the
	// RetryResult.Attempts they settled on, so callers can observe
	// retry pressure without reaching into the provider.
	Attempts int `json:"-"`
}
