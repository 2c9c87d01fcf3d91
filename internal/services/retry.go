package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"navexpo/internal/domain"
)

// RetryPolicy retries transient store failures with a doubling backoff.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is used by the admission core.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 50 * time.Millisecond}

func (p RetryPolicy) backoff() retry.Backoff {
	delay := p.Delay
	if delay <= 0 {
		delay = time.Millisecond
	}
	return retry.WithMaxRetries(uint64(max(p.Attempts, 1)-1), retry.NewExponential(delay))
}

// Do runs fn until it succeeds, fails with a non-transient error, attempts run out,
// or ctx is done. The last error from fn is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var last error
	err := retry.Do(ctx, p.backoff(), func(context.Context) error {
		last = fn()
		if domain.IsTransient(last) {
			return retry.RetryableError(last)
		}
		return last
	})
	if err == nil || ctx.Err() == nil || !errors.Is(err, ctx.Err()) {
		return err
	}
	if last != nil {
		return last
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}
