// Package provider defines the synchronous LLM completion contract the
// executor calls against. Concrete wire adapters (Anthropic, OpenAI,
// Bedrock, ...) live outside this package; provider only names the
// interface and the error mapping every adapter must honor.
package provider

import (
	"context"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// Provider produces one completion per call. There is no streaming: the
// executor always waits for a full CompletionResponse before deciding
// what to do next. Implementations may be called concurrently from
// unrelated executor invocations and must not share mutable state across
// calls beyond what a plain HTTP client already tolerates.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *models.CompletionRequest) (*models.CompletionResponse, error)
}

// WrapError maps a provider-specific failure to the shared error kind
// the executor's ProcessingFailed branch expects, preserving the
// original message for logs. UnexpectedResponse (a malformed or
// schema-drifted reply body) has no dedicated Kind in the taxonomy, so
// it is folded into ProcessingFailed, the documented catch-all.
func WrapError(kind agenterr.Kind, op string, cause error) *agenterr.Error {
	return agenterr.New(kind, cause).WithOp(op)
}

// Common provider failure kinds, named here so adapters don't need to
// remember which agenterr.Kind each provider failure maps to.
const (
	KindAuthenticationFailed = agenterr.KindAuthenticationFailed
	KindRateLimitExceeded    = agenterr.KindRateLimitExceeded
	KindInvalidRequest       = agenterr.KindInvalidRequest
	KindModelNotFound        = agenterr.KindModelNotFound
	KindRequestFailed        = agenterr.KindRequestFailed
	// KindUnexpectedResponse has no distinct taxonomy entry; adapters
	// should use agenterr.KindProcessingFailed directly for it.
)
