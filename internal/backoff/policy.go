// Package backoff computes and sleeps through exponential retry delays for
// the MCP connection manager and LLM provider calls.
package backoff

import (
	"math"
	"time"
)

// Policy defines the parameters for exponential backoff calculation. There
// is deliberately no jitter term: retries here are against a small, fixed
// set of local/remote endpoints (an MCP server process, a provider API),
// not a thundering herd of clients, so the simpler deterministic formula is
// used and tests can assert exact delays.
type Policy struct {
	// InitialMs is the backoff before the second attempt, in milliseconds.
	InitialMs float64
	// MaxMs caps the computed backoff regardless of attempt number.
	MaxMs float64
	// Multiplier is applied once per attempt beyond the first.
	Multiplier float64
}

// ComputeBackoff returns the delay before the given attempt, using
// min(MaxMs, InitialMs * Multiplier^(attempt-1)). Attempt numbers are
// 1-indexed; attempt 1 (the first retry, after the initial try failed)
// yields InitialMs.
func ComputeBackoff(policy Policy, attempt int) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	base := policy.InitialMs * math.Pow(policy.Multiplier, exp)
	total := math.Min(policy.MaxMs, base)
	return time.Duration(math.Round(total)) * time.Millisecond
}

// DefaultPolicy returns the backoff used for MCP server reconnects and LLM
// provider retries: 200ms initial, 10s cap, doubling each attempt.
func DefaultPolicy() Policy {
	return Policy{
		InitialMs:  200,
		MaxMs:      10000,
		Multiplier: 2,
	}
}
