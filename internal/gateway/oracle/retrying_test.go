package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatch-service/internal/logx"
	"dispatch-service/internal/service/dispatch"
)

type fakeDecider struct {
	answers []func() (*dispatch.Decision, error)
	calls   int
}

func (f *fakeDecider) Decide(context.Context, dispatch.DecisionRequest) (*dispatch.Decision, error) {
	i := f.calls
	f.calls++
	if i >= len(f.answers) {
		i = len(f.answers) - 1
	}
	return f.answers[i]()
}

type countingRetries struct{ n int }

func (c *countingRetries) Inc() { c.n++ }

func okDecision() func() (*dispatch.Decision, error) {
	return func() (*dispatch.Decision, error) {
		id := int64(10)
		return &dispatch.Decision{SelectedCourierID: &id, Confidence: 0.7}, nil
	}
}

func failWith(err error) func() (*dispatch.Decision, error) {
	return func() (*dispatch.Decision, error) { return nil, err }
}

func TestRetryingClient_SucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	next := &fakeDecider{answers: []func() (*dispatch.Decision, error){
		failWith(&StatusError{Code: 503}),
		okDecision(),
	}}
	retries := &countingRetries{}
	c := NewRetryingClient(next, logx.Nop(), retries, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})

	dec, err := c.Decide(context.Background(), dispatch.DecisionRequest{OrderID: "order_1"})
	require.NoError(t, err)
	require.NotNil(t, dec)
	require.Equal(t, 2, next.calls)
	require.Equal(t, 1, retries.n)
}

func TestRetryingClient_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	next := &fakeDecider{answers: []func() (*dispatch.Decision, error){
		failWith(&StatusError{Code: 400}),
	}}
	c := NewRetryingClient(next, logx.Nop(), nil, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})

	_, err := c.Decide(context.Background(), dispatch.DecisionRequest{})
	require.Error(t, err)
	require.Equal(t, 1, next.calls)
}

func TestRetryingClient_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	transient := errors.New("connection reset")
	next := &fakeDecider{answers: []func() (*dispatch.Decision, error){
		failWith(transient),
	}}
	c := NewRetryingClient(next, logx.Nop(), nil, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})

	_, err := c.Decide(context.Background(), dispatch.DecisionRequest{})
	require.ErrorIs(t, err, transient)
	require.Equal(t, 3, next.calls)
}

func TestRetryingClient_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next := &fakeDecider{answers: []func() (*dispatch.Decision, error){
		failWith(&StatusError{Code: 503}),
	}}
	c := NewRetryingClient(next, logx.Nop(), nil, RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})

	_, err := c.Decide(ctx, dispatch.DecisionRequest{})
	require.Error(t, err)
	require.Equal(t, 1, next.calls)
}

func TestNewRetryingClient_NilNext(t *testing.T) {
	t.Parallel()
	require.Nil(t, NewRetryingClient(nil, logx.Nop(), nil, RetryConfig{}))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	require.True(t, isRetryable(&StatusError{Code: 500}))
	require.True(t, isRetryable(&StatusError{Code: 503}))
	require.True(t, isRetryable(&StatusError{Code: 429}))
	require.False(t, isRetryable(&StatusError{Code: 400}))
	require.False(t, isRetryable(&StatusError{Code: 404}))
	require.False(t, isRetryable(context.Canceled))
	require.False(t, isRetryable(context.DeadlineExceeded))
	require.True(t, isRetryable(errors.New("dial tcp: connection refused")))
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	max := 500 * time.Millisecond
	require.Equal(t, 100*time.Millisecond, backoff(base, max, 1))
	require.Equal(t, 200*time.Millisecond, backoff(base, max, 2))
	require.Equal(t, 400*time.Millisecond, backoff(base, max, 3))
	require.Equal(t, max, backoff(base, max, 4))
}
