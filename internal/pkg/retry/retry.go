package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 100 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// ToRetryOptions converts the config into retry-go options bound to ctx
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// WithTimeout bounds ctx by the overall retry timeout. Zero leaves ctx as is.
func (rc *RetryConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rc.Timeout)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
