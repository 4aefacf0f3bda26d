package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/coverletter-backend/internal/pkg/retry"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := pkgRetry.DefaultRetryConfig()
	if cfg.Delay >= cfg.MaxDelay {
		t.Fatalf("delay %s must be below max delay %s", cfg.Delay, cfg.MaxDelay)
	}
}

func TestToRetryOptionsAttempts(t *testing.T) {
	cfg := &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := retry.Do(func() error {
		calls++
		return errors.New("boom")
	}, cfg.ToRetryOptions(context.Background())...)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestToRetryOptionsStopsOnCancelledContext(t *testing.T) {
	cfg := &pkgRetry.RetryConfig{Attempts: 5, Delay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_ = retry.Do(func() error {
		calls++
		return errors.New("boom")
	}, cfg.ToRetryOptions(ctx)...)

	if calls > 1 {
		t.Fatalf("expected at most one attempt with cancelled context, got %d", calls)
	}
}
