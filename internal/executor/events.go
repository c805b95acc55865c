package executor

import "encoding/json"

// EventHandler observes one run's progress without influencing its
// outcome. The sink is optional: all methods have a no-op default
// (NopEventHandler). Handlers may block briefly but must not panic;
// the executor does not isolate handler faults beyond ordinary Go
// panics propagating to the caller of Run.
type EventHandler interface {
	// OnToolStart fires for each tool-use block before the tool is looked
	// up and executed, including a block naming an unregistered tool.
	OnToolStart(id, name string, input json.RawMessage)

	// OnToolDone fires after a tool call completes, successfully or not.
	// err is nil on success; durationMs covers only the Execute call.
	OnToolDone(id, name string, err error, durationMs int64)

	// OnComplete fires once, when the run concludes with assistant text
	// (end_turn or stop_sequence), before run returns.
	OnComplete(text string)

	// OnError fires once, when a provider call or a tool-use block naming
	// an unregistered tool fails the run outright.
	// run still returns the same error after this call.
	OnError(text string)
}

// NopEventHandler implements EventHandler with no-ops; used when a
// caller passes a nil handler to New.
type NopEventHandler struct{}

func (NopEventHandler) OnToolStart(id, name string, input json.RawMessage) {}
func (NopEventHandler) OnToolDone(id, name string, err error, ms int64)    {}
func (NopEventHandler) OnComplete(text string)                             {}
func (NopEventHandler) OnError(text string)                                {}

var _ EventHandler = NopEventHandler{}
