// Package executor implements the bounded "LLM -> tool calls -> tool
// results -> LLM" loop: the Agent Executor. One Executor wraps a
// Provider and a Registry and drives conversations to a stop condition
// within a fixed number of provider calls.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/observability"
	"github.com/haasonsaas/agentrtcore/internal/provider"
	"github.com/haasonsaas/agentrtcore/internal/tool"
	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// Sentinel return strings for non-end_turn stop conditions. These are
// returned as successful run() results, not errors: a caller that hit
// the iteration cap or a truncated response still gets a string back.
const (
	TextMaxIterations     = "max iterations reached"
	TextNoResponse        = "No response"
	TextToolExecFailed    = "Tool execution failed"
	TextResponseTruncated = "Response truncated"
)

// Executor runs one bounded agentic loop per call. It owns no shared
// mutable state beyond its configuration; concurrent Run calls on the
// same Executor are independent, each building its own conversation
// slice.
type Executor struct {
	provider provider.Provider
	registry *tool.Registry
	config   Config
	logger   *observability.Logger
	events   EventHandler
	tracer   *observability.Tracer
	metrics  *Metrics
}

// New builds an Executor. A nil logger defaults to a Logger built from a
// zero LogConfig (info level, JSON to stdout); a nil EventHandler
// defaults to NopEventHandler{}. tracer and metrics are both optional:
// a nil tracer skips span creation, and a nil metrics skips recording,
// so an Executor built for tests need not pull in a live collector.
func New(p provider.Provider, registry *tool.Registry, cfg Config, logger *observability.Logger, events EventHandler, metrics *Metrics) *Executor {
	return NewWithTracer(p, registry, cfg, logger, events, nil, metrics)
}

// NewWithTracer is New plus an explicit *observability.Tracer, for
// callers that want each loop iteration and tool call wrapped in a span.
func NewWithTracer(p provider.Provider, registry *tool.Registry, cfg Config, logger *observability.Logger, events EventHandler, tracer *observability.Tracer, metrics *Metrics) *Executor {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	if events == nil {
		events = NopEventHandler{}
	}
	return &Executor{
		provider: p,
		registry: registry,
		config:   cfg.withDefaults(),
		logger:   logger.WithFields("component", "executor"),
		events:   events,
		tracer:   tracer,
		metrics:  metrics,
	}
}

// Run starts a fresh conversation from userMessage alone.
func (e *Executor) Run(ctx context.Context, userMessage string) (string, error) {
	return e.RunWithHistory(ctx, userMessage, nil)
}

// RunWithHistory continues an existing conversation: the fresh user
// turn built from userMessage is appended after history, so a typical
// history ends with a prior assistant turn (or is empty).
func (e *Executor) RunWithHistory(ctx context.Context, userMessage string, history []models.Message) (string, error) {
	if userMessage == "" {
		return "", agenterr.New(agenterr.KindInvalidRequest, fmt.Errorf("user message must not be empty")).WithOp("run")
	}

	// Every run gets a request ID for log correlation unless the host
	// already stamped one on the context.
	if observability.GetRequestID(ctx) == "" {
		ctx = observability.AddRequestID(ctx, uuid.NewString())
	}

	conversation := make([]models.Message, 0, len(history)+1)
	conversation = append(conversation, history...)
	conversation = append(conversation, models.NewTextMessage(models.RoleUser, userMessage))

	for iteration := 1; ; iteration++ {
		if iteration > e.config.MaxIterations {
			e.logger.Debug(ctx, "max iterations reached", "max_iterations", e.config.MaxIterations)
			e.metrics.RecordIteration("max_iterations")
			return TextMaxIterations, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req := e.buildRequest(conversation)

		resp, err := e.completeWithSpan(ctx, req)
		if err != nil {
			wrapped := agenterr.New(agenterr.KindProcessingFailed, err).WithOp("run")
			e.events.OnError(wrapped.Error())
			e.metrics.RecordIteration("error")
			return "", wrapped
		}
		e.recordRetryMetrics(resp.Attempts)

		conversation = append(conversation, resp.Message)

		switch resp.StopReason {
		case models.StopEndTurn:
			text := textOrDefault(resp.Message)
			e.events.OnComplete(text)
			e.metrics.RecordIteration("end_turn")
			return text, nil

		case models.StopSequence:
			text := textOrDefault(resp.Message)
			e.events.OnComplete(text)
			e.metrics.RecordIteration("end_turn")
			return text, nil

		case models.StopMaxTokens:
			e.metrics.RecordIteration("max_tokens")
			return TextResponseTruncated, nil

		case models.StopToolUse:
			toolUses := resp.Message.ToolUses()
			if len(toolUses) == 0 {
				e.metrics.RecordIteration("tool_use")
				return TextToolExecFailed, nil
			}

			resultMsg, err := e.executeToolUses(ctx, toolUses)
			if err != nil {
				wrapped := agenterr.New(agenterr.KindProcessingFailed, err).WithOp("run")
				e.events.OnError(wrapped.Error())
				e.metrics.RecordIteration("error")
				return "", wrapped
			}
			e.metrics.RecordIteration("tool_use")
			conversation = append(conversation, resultMsg)
			continue

		default:
			// Unknown stop reasons are treated as end_turn, per the
			// documented fallback: log at debug level so a
			// non-standard provider doesn't break the loop.
			e.logger.Debug(ctx, "unrecognized stop reason, treating as end_turn", "stop_reason", resp.StopReason)
			text := textOrDefault(resp.Message)
			e.events.OnComplete(text)
			e.metrics.RecordIteration("end_turn")
			return text, nil
		}
	}
}

// completeWithSpan wraps one provider.Complete call in an LLM span when a
// tracer is configured.
func (e *Executor) completeWithSpan(ctx context.Context, req *models.CompletionRequest) (*models.CompletionResponse, error) {
	if e.tracer == nil {
		return e.provider.Complete(ctx, req)
	}
	spanCtx, span := e.tracer.TraceLLMRequest(ctx, e.provider.Name(), req.Model)
	defer span.End()

	resp, err := e.provider.Complete(spanCtx, req)
	if err != nil {
		e.tracer.RecordError(span, err)
		return nil, err
	}
	e.tracer.SetAttributes(span, "llm.stop_reason", string(resp.StopReason), "llm.attempts", resp.Attempts)
	return resp, nil
}

// recordRetryMetrics translates a response's attempt count into the
// retry counter: attempts-1 failed-and-retried calls, then one success.
// A response with one attempt (the first try succeeded) records a single
// success and nothing else; zero attempts (the provider does not report
// a count) records nothing.
func (e *Executor) recordRetryMetrics(attempts int) {
	if attempts <= 0 {
		return
	}
	for i := 1; i < attempts; i++ {
		e.metrics.RecordRetry("retry")
	}
	e.metrics.RecordRetry("success")
}

func (e *Executor) buildRequest(conversation []models.Message) *models.CompletionRequest {
	req := &models.CompletionRequest{
		Model:         e.config.Model,
		Messages:      conversation,
		System:        e.config.SystemPrompt,
		MaxTokens:     e.config.MaxTokens,
		Temperature:   e.config.Temperature,
		StopSequences: e.config.StopSequences,
	}

	tools := e.registry.List()
	if len(tools) > 0 {
		defs := make([]models.ToolDefinition, len(tools))
		for i, t := range tools {
			defs[i] = tool.Definition(t)
		}
		req.Tools = defs
	}

	return req
}

// executeToolUses dispatches every tool-use block in appearance order,
// sequentially: this preserves the deterministic id->result pairing the
// model expects, and tool execution is never parallelized here. It
// returns the single user-role message carrying every ToolResultBlock,
// in the same order the tool-use blocks appeared.
//
// A block naming an unregistered tool is a hard failure: the call
// returns agenterr.ErrToolNotFound and no further completion is issued.
// A registered tool that fails to execute is a soft failure, appended
// as an error-flagged result so the model can decide what to do next.
func (e *Executor) executeToolUses(ctx context.Context, uses []models.ToolUseBlock) (models.Message, error) {
	blocks := make([]models.ContentBlock, 0, len(uses))

	for _, use := range uses {
		e.events.OnToolStart(use.ID, use.Name, use.Input)

		t, ok := e.registry.Get(use.Name)
		if !ok {
			return models.Message{}, agenterr.New(agenterr.KindProcessingFailed, agenterr.ErrToolNotFound).
				WithOp(use.Name).
				WithMessage(fmt.Sprintf("tool %q not registered", use.Name))
		}

		start := time.Now()

		toolCtx := ctx
		var toolSpan trace.Span
		if e.tracer != nil {
			toolCtx, toolSpan = e.tracer.TraceToolExecution(ctx, use.Name)
		}

		result, execErr := t.Execute(toolCtx, use.Input)

		elapsed := time.Since(start)
		elapsedMs := elapsed.Milliseconds()
		e.events.OnToolDone(use.ID, use.Name, execErr, elapsedMs)

		status := "success"
		if execErr != nil {
			status = "error"
		}
		if toolSpan != nil {
			if execErr != nil {
				e.tracer.RecordError(toolSpan, execErr)
			}
			toolSpan.End()
		}
		e.metrics.RecordToolCall(use.Name, status, elapsed.Seconds())

		if execErr != nil {
			blocks = append(blocks, models.ToolResultBlock{
				ToolUseID: use.ID,
				Content:   fmt.Sprintf("Error: %s", execErr.Error()),
				IsError:   true,
			})
			continue
		}
		blocks = append(blocks, models.ToolResultBlock{
			ToolUseID: use.ID,
			Content:   string(result),
		})
	}

	return models.Message{Role: models.RoleUser, Content: blocks}, nil
}

func textOrDefault(msg models.Message) string {
	if text := msg.Text(); text != "" {
		return text
	}
	return TextNoResponse
}
