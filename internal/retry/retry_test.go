package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestSucceedsAfterRetryableFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusServiceUnavailable, URL: "u"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestNonRetryableStatusFailsImmediately(t *testing.T) {
	calls := 0
	want := &StatusError{StatusCode: http.StatusNotFound, URL: "u"}
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (404 is not retryable)", calls)
	}
}

func TestExhaustsAttempts(t *testing.T) {
	calls := 0
	cause := errors.New("connection reset")
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return cause
	})
	if calls != 3 {
		t.Errorf("calls = %d, want MaxAttempts", calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want wrapped cause", err)
	}
}

func TestCancellationStopsBackoff(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := WithRetry(ctx, cfg, func() error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, Multiplier: 2.0}

	if got := calculateBackoff(0, cfg); got != time.Second {
		t.Errorf("attempt 0 backoff = %v", got)
	}
	if got := calculateBackoff(1, cfg); got != 2*time.Second {
		t.Errorf("attempt 1 backoff = %v", got)
	}
	if got := calculateBackoff(10, cfg); got != 4*time.Second {
		t.Errorf("attempt 10 backoff = %v, want cap", got)
	}
}
