package errors

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// fastRetry retries quickly enough for tests.
var fastRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
	BackoffFactor:  2.0,
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryTransient, "transient"},
		{CategoryPermanent, "permanent"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.category.String(); got != tt.expected {
				t.Errorf("Category(%d).String() = %s, want %s", tt.category, got, tt.expected)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	k := key.Tag("db")
	plain := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, CategoryPermanent},
		{"unknown", plain, CategoryPermanent},
		{"categorized transient", Transient(plain, "dial"), CategoryTransient},
		{"categorized permanent", Permanent(plain, "auth"), CategoryPermanent},
		{"wait timeout", &registry.WaitError{Key: k, Cause: context.DeadlineExceeded}, CategoryTransient},
		{"wait canceled", &registry.WaitError{Key: k, Cause: context.Canceled}, CategoryTransient},
		{"builder failure", &registry.BuilderError{Key: k, Attempt: 1, Err: plain}, CategoryTransient},
		{"builder permanent cause", &registry.BuilderError{Key: k, Err: Permanent(plain, "auth")}, CategoryPermanent},
		{"builder panic", &registry.BuilderError{Key: k, Err: &registry.PanicError{Value: "boom"}}, CategoryPermanent},
		{"builder reentrant", &registry.BuilderError{Key: k, Err: &registry.ReentrantError{Key: k}}, CategoryPermanent},
		{"builder nested wait", &registry.BuilderError{Key: k, Err: &registry.WaitError{Key: k, Cause: context.DeadlineExceeded}}, CategoryTransient},
		{"builder context", &registry.BuilderError{Key: k, Err: context.DeadlineExceeded}, CategoryPermanent},
		{"reentrant", &registry.ReentrantError{Key: k}, CategoryPermanent},
		{"type mismatch", &registry.TypeMismatchError{Key: k, Want: reflect.TypeFor[int](), Got: reflect.TypeFor[string]()}, CategoryPermanent},
		{"nil builder", registry.ErrNilBuilder, CategoryPermanent},
		{"invalid key", registry.ErrInvalidKey, CategoryPermanent},
		{"already initialized", registry.ErrAlreadyInitialized, CategoryPermanent},
		{"context canceled", context.Canceled, CategoryPermanent},
		{"wrapped wait", fmt.Errorf("load: %w", &registry.WaitError{Key: k, Cause: context.Canceled}), CategoryTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.err); got != tt.expected {
				t.Errorf("Categorize(%v) = %s, want %s", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&registry.WaitError{Cause: context.DeadlineExceeded}) {
		t.Error("wait timeout should be retryable")
	}
	if IsRetryable(&registry.ReentrantError{}) {
		t.Error("reentrant construction should not be retryable")
	}
	if IsRetryable(errors.New("unknown")) {
		t.Error("unknown errors should not be retryable")
	}
}

func TestCategorizedError(t *testing.T) {
	base := errors.New("refused")

	err := Transient(base, "dial db")
	if got, want := err.Error(), "dial db: refused (category: transient, attempts: 0)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("should unwrap to base error")
	}

	err = NewCategorized(base, CategoryPermanent, "")
	err.Retries = 2
	if got, want := err.Error(), "refused (category: permanent, attempts: 2)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWithRetrySuccess(t *testing.T) {
	calls := 0
	res := WithRetry(fastRetry, func() (string, error) {
		calls++
		if calls < 3 {
			return "", Transient(errors.New("busy"), "")
		}
		return "ok", nil
	})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Value != "ok" || res.Attempts != 3 {
		t.Errorf("got value=%q attempts=%d, want ok/3", res.Value, res.Attempts)
	}
}

func TestWithRetryPermanentStopsImmediately(t *testing.T) {
	calls := 0
	res := WithRetry(fastRetry, func() (int, error) {
		calls++
		return 0, &registry.ReentrantError{Key: key.Tag("k")}
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	var catErr *CategorizedError
	if !errors.As(res.Err, &catErr) || catErr.Category != CategoryPermanent {
		t.Errorf("expected permanent CategorizedError, got %v", res.Err)
	}
	if !errors.Is(res.Err, registry.ErrReentrant) {
		t.Error("final error should unwrap to ErrReentrant")
	}
}

func TestWithRetryExhausted(t *testing.T) {
	calls := 0
	res := WithRetry(fastRetry, func() (int, error) {
		calls++
		return 0, Transient(errors.New("busy"), "")
	})

	if calls != 3 || res.Attempts != 3 {
		t.Errorf("calls=%d attempts=%d, want 3/3", calls, res.Attempts)
	}
	var catErr *CategorizedError
	if !errors.As(res.Err, &catErr) || catErr.Context != "max retries exceeded" {
		t.Errorf("expected max retries error, got %v", res.Err)
	}
}

func TestWithRetryContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res := WithRetryContext(ctx, fastRetry, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
}

func TestWithRetryContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	res := WithRetryContext(ctx, cfg, func(context.Context) (int, error) {
		cancel()
		return 0, Transient(errors.New("busy"), "")
	})
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
}

func TestWithRetryCustomRetryable(t *testing.T) {
	calls := 0
	cfg := NewRetryConfig(
		WithMaxAttempts(4),
		WithInitialBackoff(time.Millisecond),
		WithRetryableFunc(func(error) bool { return true }),
	)
	cfg.Jitter = 0
	res := WithRetry(cfg, func() (int, error) {
		calls++
		return 0, errors.New("always")
	})
	if calls != 4 || res.Attempts != 4 {
		t.Errorf("calls=%d attempts=%d, want 4/4", calls, res.Attempts)
	}
}

func TestNoRetry(t *testing.T) {
	calls := 0
	res := WithRetry(NoRetry, func() (int, error) {
		calls++
		return 0, Transient(errors.New("busy"), "")
	})
	if calls != 1 || res.Err == nil {
		t.Errorf("calls=%d err=%v, want 1 call and an error", calls, res.Err)
	}
}

func TestRetryGet(t *testing.T) {
	r := registry.New()
	var calls atomic.Int32

	v, err := RetryGet(context.Background(), fastRetry, r, key.Tag("db"), func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("connection refused")
		}
		return "conn", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "conn" || calls.Load() != 3 {
		t.Errorf("got %q after %d calls, want conn after 3", v, calls.Load())
	}
	if r.State(key.Tag("db")) != registry.StateReady {
		t.Errorf("state = %s, want ready", r.State(key.Tag("db")))
	}
}

func TestRetryGetPanicNotRetried(t *testing.T) {
	r := registry.New()
	var calls atomic.Int32

	_, err := RetryGet(context.Background(), fastRetry, r, key.Tag("p"), func(context.Context) (int, error) {
		calls.Add(1)
		panic("bad config")
	})
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	var panicErr *registry.PanicError
	if !errors.As(err, &panicErr) {
		t.Errorf("expected PanicError, got %v", err)
	}
}

func TestJittered(t *testing.T) {
	base := 100 * time.Millisecond
	if got := jittered(base, 0); got != base {
		t.Errorf("no jitter: got %s, want %s", got, base)
	}
	for range 100 {
		got := jittered(base, 0.5)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered(%s, 0.5) = %s out of range", base, got)
		}
	}
}
