package api

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ScaleFactor is the base unit of the exponential backoff.
const ScaleFactor = 300 * time.Millisecond

// Default retry settings.
const (
	DefaultMaxErrorRetry = 3
	DefaultMaxDelay      = 20 * time.Second
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait first. The zero value never retries.
type RetryPolicy struct {
	// MaxErrorRetry is the maximum number of retries after the first attempt.
	MaxErrorRetry int
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxErrorRetry: DefaultMaxErrorRetry,
		MaxDelay:      DefaultMaxDelay,
	}
}

// Delay returns the delay before the next attempt and true, or false when
// the call must stop. retries is the number of attempts already made minus
// one.
func (p RetryPolicy) Delay(ctx context.Context, err error, retries int) (time.Duration, bool) {
	if retries >= p.MaxErrorRetry {
		return 0, false
	}
	if !p.ShouldRetry(ctx, err) {
		return 0, false
	}
	return p.Backoff(retries), true
}

// Backoff returns min(MaxDelay, 2^(retries+1) * ScaleFactor).
func (p RetryPolicy) Backoff(retries int) time.Duration {
	if retries < 0 {
		retries = 0
	}
	if retries >= 30 {
		return p.MaxDelay
	}
	delay := time.Duration(int64(1)<<(retries+1)) * ScaleFactor
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether err is transient. Network failures are
// retried unless they can never succeed (bad scheme, untrusted
// certificate, redirect loop). Service errors are retried for 500, 502 and
// 503 only.
func (p RetryPolicy) ShouldRetry(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if ctx == nil {
			ctx = context.Background()
		}
		retry, _ := retryablehttp.DefaultRetryPolicy(ctx, nil, netErr.Err)
		return retry
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable()
	}

	return false
}

// Wait sleeps for delay or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
