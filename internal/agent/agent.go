package agent

import "context"

// Agent is the capability every concrete agent shape satisfies: take a
// turn's input text and the call's Context, and return the assistant's
// response text. Implementations may read and mutate the supplied
// Context; the caller owns its lifetime.
type Agent interface {
	Name() string
	Process(ctx context.Context, input string, actx *Context) (string, error)
}
