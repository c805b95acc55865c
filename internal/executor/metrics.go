package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the bounded agentic loop's shape: how many iterations a
// run takes, how long each tool call runs, and how often a provider call
// is retried before the loop gives up on it.
type Metrics struct {
	// IterationCounter counts LLM round-trips taken per run outcome.
	// Labels: outcome (end_turn|max_tokens|tool_use|max_iterations|error)
	IterationCounter *prometheus.CounterVec

	// ToolCallDuration measures tool execution latency in seconds.
	// Labels: tool_name, status (success|error)
	ToolCallDuration *prometheus.HistogramVec

	// RetryCounter counts provider retry attempts by outcome.
	// Labels: status (success|retry|exhausted)
	RetryCounter *prometheus.CounterVec
}

// NewMetrics registers a fresh set of executor metrics with the default
// Prometheus registry. Call once per process and share the result across
// Executors; registering twice with the same registry panics.
func NewMetrics() *Metrics {
	return &Metrics{
		IterationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentrtcore_executor_iterations_total",
				Help: "Total number of executor loop iterations by terminal outcome",
			},
			[]string{"outcome"},
		),
		ToolCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentrtcore_executor_tool_call_duration_seconds",
				Help:    "Duration of tool executions driven by the executor loop",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"tool_name", "status"},
		),
		RetryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentrtcore_executor_provider_retries_total",
				Help: "Total number of provider call attempts by status",
			},
			[]string{"status"},
		),
	}
}

// RecordIteration increments the iteration counter for the given outcome.
func (m *Metrics) RecordIteration(outcome string) {
	if m == nil {
		return
	}
	m.IterationCounter.WithLabelValues(outcome).Inc()
}

// RecordToolCall records a tool execution's duration and status.
func (m *Metrics) RecordToolCall(toolName, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ToolCallDuration.WithLabelValues(toolName, status).Observe(durationSeconds)
}

// RecordRetry records a single provider call attempt outcome. status is
// one of "success" (the call that finally succeeded), "retry" (a failed
// attempt that will be retried), or "exhausted" (the final failed
// attempt of a maxed-out retry budget).
func (m *Metrics) RecordRetry(status string) {
	if m == nil {
		return
	}
	m.RetryCounter.WithLabelValues(status).Inc()
}
