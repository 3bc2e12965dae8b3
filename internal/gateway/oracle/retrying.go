package oracle

import (
	"context"
	"errors"
	"time"

	"dispatch-service/internal/logx"
	"dispatch-service/internal/service/dispatch"
)

type decider interface {
	Decide(ctx context.Context, req dispatch.DecisionRequest) (*dispatch.Decision, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the retry behavior of RetryingClient.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingClient retries transient oracle failures with exponential backoff.
// The caller's context deadline still bounds the whole exchange, so the
// strategy's fail-closed timeout is never exceeded by retries.
type RetryingClient struct {
	next    decider
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingClient wraps next with retries. Returns nil if next is nil.
func NewRetryingClient(next decider, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingClient {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingClient{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Decide implements the oracle contract with retries.
func (c *RetryingClient) Decide(ctx context.Context, req dispatch.DecisionRequest) (*dispatch.Decision, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		dec, err := c.next.Decide(ctx, req)
		if err == nil {
			return dec, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == c.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(c.cfg.BaseDelay, c.cfg.MaxDelay, attempt)
		if c.retries != nil {
			c.retries.Inc()
		}
		c.logger.Warn("decision oracle retry",
			logx.String("order_id", req.OrderID),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// isRetryable treats server-side and transport failures as transient; client
// errors (4xx) are permanent.
func isRetryable(err error) bool {
	var st *StatusError
	if errors.As(err, &st) {
		return st.Code >= 500 || st.Code == 429
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Transport-level failure.
	return true
}

// backoff computes the retry delay.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
