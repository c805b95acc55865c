package backoff

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

var errTemporary = errors.New("temporary error")

// retryableErr wraps an error and reports itself as retryable, mimicking
// the subset of agenterr.Error this package depends on.
type retryableErr struct{ err error }

func (r retryableErr) Error() string   { return r.err.Error() }
func (r retryableErr) Retryable() bool { return true }

type nonRetryableErr struct{ err error }

func (r nonRetryableErr) Error() string   { return r.err.Error() }
func (r nonRetryableErr) Retryable() bool { return false }

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 10, MaxMs: 100, Multiplier: 2}

	var attempts int32
	result, err := Run(ctx, policy, 3, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "success", nil
	})

	if err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if result.Value != "success" {
		t.Errorf("Run() value = %v, want success", result.Value)
	}
	if result.Attempts != 1 {
		t.Errorf("Run() attempts = %v, want 1", result.Attempts)
	}
}

func TestRun_SucceedsAfterRetries(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 5, MaxMs: 100, Multiplier: 2}

	var attempts int32
	result, err := Run(ctx, policy, 5, func(_ context.Context, attempt int) (int, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return 0, retryableErr{errTemporary}
		}
		return int(n), nil
	})

	if err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if result.Value != 3 {
		t.Errorf("Run() value = %v, want 3", result.Value)
	}
	if result.Attempts != 3 {
		t.Errorf("Run() attempts = %v, want 3", result.Attempts)
	}
}

func TestRun_AllAttemptsFail_ReturnsLiteralLastError(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 5, MaxMs: 100, Multiplier: 2}

	var attempts int32
	result, err := Run(ctx, policy, 3, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", retryableErr{errTemporary}
	})

	wantErr := retryableErr{errTemporary}
	if err != wantErr {
		t.Errorf("Run() error = %v, want literal %v (not a wrapping sentinel)", err, wantErr)
	}
	if result.LastError != wantErr {
		t.Errorf("Run() LastError = %v, want %v", result.LastError, wantErr)
	}
	if result.Attempts != 3 {
		t.Errorf("Run() attempts = %v, want 3", result.Attempts)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("Function called %v times, want 3", attempts)
	}
}

func TestRun_NonRetryableFailsFast(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 5, MaxMs: 100, Multiplier: 2}

	var attempts int32
	_, err := Run(ctx, policy, 5, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", nonRetryableErr{errTemporary}
	})

	if _, ok := err.(nonRetryableErr); !ok {
		t.Errorf("Run() error = %v, want nonRetryableErr", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("Function called %v times, want 1 (non-retryable should not retry)", attempts)
	}
}

func TestRun_UnclassifiedErrorTreatedAsNonRetryable(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 5, MaxMs: 100, Multiplier: 2}

	var attempts int32
	_, err := Run(ctx, policy, 5, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", errTemporary
	})

	if !errors.Is(err, errTemporary) {
		t.Errorf("Run() error = %v, want errTemporary", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("Function called %v times, want 1", attempts)
	}
}

func TestRun_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{InitialMs: 100, MaxMs: 1000, Multiplier: 2}

	var attempts int32
	go func() {
		for atomic.LoadInt32(&attempts) < 1 {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := Run(ctx, policy, 5, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", retryableErr{errTemporary}
	})
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if result.Attempts < 1 {
		t.Errorf("Run() attempts = %v, want >= 1", result.Attempts)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("Run() took too long: %v", elapsed)
	}
}

func TestRun_ContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := Policy{InitialMs: 100, MaxMs: 1000, Multiplier: 2}

	var attempts int32
	_, err := Run(ctx, policy, 5, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "success", nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if atomic.LoadInt32(&attempts) != 0 {
		t.Errorf("Function called %v times, want 0", attempts)
	}
}

func TestRun_AttemptNumberPassedCorrectly(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 1, MaxMs: 100, Multiplier: 2}

	var receivedAttempts []int
	_, _ = Run(ctx, policy, 3, func(_ context.Context, attempt int) (struct{}, error) {
		receivedAttempts = append(receivedAttempts, attempt)
		return struct{}{}, retryableErr{errTemporary}
	})

	expected := []int{1, 2, 3}
	if len(receivedAttempts) != len(expected) {
		t.Fatalf("Got %v attempts, want %v", len(receivedAttempts), len(expected))
	}
	for i, v := range expected {
		if receivedAttempts[i] != v {
			t.Errorf("Attempt %d: got %v, want %v", i, receivedAttempts[i], v)
		}
	}
}

func TestRun_BackoffActuallyApplied(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 20, MaxMs: 1000, Multiplier: 2}

	start := time.Now()
	var attempts int32
	_, _ = Run(ctx, policy, 3, func(_ context.Context, attempt int) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", retryableErr{errTemporary}
	})
	elapsed := time.Since(start)

	// Sleep after attempt 1: 20ms, after attempt 2: 40ms; 60ms minimum.
	if elapsed < 50*time.Millisecond {
		t.Errorf("Run() completed too quickly: %v, expected >= 50ms of backoff", elapsed)
	}
}

func TestRun_GenericTypes(t *testing.T) {
	ctx := context.Background()
	policy := Policy{InitialMs: 1, MaxMs: 100, Multiplier: 2}

	type Result struct {
		Value int
		Name  string
	}

	result, err := Run(ctx, policy, 1, func(_ context.Context, attempt int) (Result, error) {
		return Result{Value: 42, Name: "test"}, nil
	})

	if err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if result.Value.Value != 42 || result.Value.Name != "test" {
		t.Errorf("Run() value = %+v, want {Value:42 Name:test}", result.Value)
	}
}
