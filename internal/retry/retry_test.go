package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

var errRetryable = errors.New("retryable")

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func(err error) bool { return errors.Is(err, errRetryable) }, func() error {
		calls++
		if calls < 3 {
			return errRetryable
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := Do(context.Background(), fastConfig(5), func(err error) bool { return errors.Is(err, errRetryable) }, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(error) bool { return true }, func() error {
		calls++
		return errRetryable
	})
	if !errors.Is(err, errRetryable) || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
	err := Do(ctx, cfg, func(error) bool { return true }, func() error { return errRetryable })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.ErrUnexpectedEOF, true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("bad request"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestApplyJitterRange(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := applyJitter(d)
		if got < 75*time.Millisecond || got >= 125*time.Millisecond {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
}
