// Package agenterr defines the error taxonomy shared by the MCP
// transports, the client manager, the retry policy, and the agent
// executor: a closed set of kinds rather than a zoo of error types, each
// carrying its own retryability.
package agenterr

import "errors"

// Kind classifies why an operation failed. The set mirrors the failure
// surface of the runtime end to end: configuration, MCP transport and
// protocol, tool execution, and LLM provider errors all resolve to one
// of these.
type Kind string

const (
	KindConfigError          Kind = "config_error"
	KindNotConnected         Kind = "not_connected"
	KindConnectionFailed     Kind = "connection_failed"
	KindRequestFailed        Kind = "request_failed"
	KindToolCallFailed       Kind = "tool_call_failed"
	KindServerNotFound       Kind = "server_not_found"
	KindResourceNotFound     Kind = "resource_not_found"
	KindInvalidPattern       Kind = "invalid_pattern"
	KindInvalidURI           Kind = "invalid_uri"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindRateLimitExceeded    Kind = "rate_limit_exceeded"
	KindModelNotFound        Kind = "model_not_found"
	KindInvalidRequest       Kind = "invalid_request"
	KindInitializationFailed Kind = "initialization_failed"
	KindProcessingFailed     Kind = "processing_failed"
)

// retryableKinds mirrors the table in the error handling design: only
// these kinds are ever retried, and RateLimitExceeded is the sole LLM
// provider kind that is.
var retryableKinds = map[Kind]bool{
	KindNotConnected:      true,
	KindConnectionFailed:  true,
	KindRequestFailed:     true,
	KindRateLimitExceeded: true,
}

// Retryable reports whether operations failing with this kind should be
// retried by the Retry Policy.
func (k Kind) Retryable() bool {
	return retryableKinds[k]
}

// Error is the runtime's error value: a kind, a short operation label
// for logs, and the underlying cause it wraps.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// New constructs an Error of the given kind wrapping cause. The cause's
// own message is used as Message unless overridden with WithMessage.
func New(kind Kind, cause error) *Error {
	e := &Error{Kind: kind, Cause: cause}
	if cause != nil {
		e.Message = cause.Error()
	}
	return e
}

// WithOp sets the operation label (e.g. "call_tool", "connect") and
// returns the error for chaining.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithMessage overrides the message text and returns the error for
// chaining.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether this error's kind should be retried.
func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// Is reports whether target is an *Error of the same Kind, or a sentinel
// for that kind. This lets callers write errors.Is(err, agenterr.ErrNotConnected).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	if k, ok := kindSentinels[target]; ok {
		return e.Kind == k
	}
	return false
}

// kindSentinels lets plain sentinel values (below) compare equal via
// errors.Is to any *Error of the matching kind, without requiring
// callers to construct an *Error just to compare kinds.
var kindSentinels = map[error]Kind{}

func sentinel(kind Kind, text string) error {
	err := errors.New(text)
	kindSentinels[err] = kind
	return err
}

// Sentinel values for common comparisons, e.g. errors.Is(err, agenterr.ErrServerNotFound).
var (
	ErrNotConnected     = sentinel(KindNotConnected, "agenterr: not connected")
	ErrServerNotFound   = sentinel(KindServerNotFound, "agenterr: server not found")
	ErrResourceNotFound = sentinel(KindResourceNotFound, "agenterr: resource not found")
	ErrToolNotFound     = sentinel(KindProcessingFailed, "agenterr: tool not found")
)

// Of returns the *Error wrapped in err, if any, and whether it was found.
func Of(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind carried by err, or KindProcessingFailed if
// err is not (or does not wrap) an *Error. ProcessingFailed is the
// catch-all kind.
func KindOf(err error) Kind {
	if e, ok := Of(err); ok {
		return e.Kind
	}
	return KindProcessingFailed
}
