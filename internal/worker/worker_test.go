package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRetrier struct {
	calls atomic.Int32
	err   error
}

func (r *countingRetrier) RetryPending(ctx context.Context) (int, error) {
	r.calls.Add(1)
	return 1, r.err
}

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) SweepExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, nil
}

func TestWebhookRetryWorker_RunsUntilCanceled(t *testing.T) {
	r := &countingRetrier{err: errors.New("db down")}
	w := NewWebhookRetryWorker(r, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNewWebhookRetryWorker_DefaultInterval(t *testing.T) {
	w := NewWebhookRetryWorker(&countingRetrier{}, 0)
	assert.Equal(t, time.Minute, w.interval)
}

func TestSessionSweeper(t *testing.T) {
	_, err := NewSessionSweeper(&countingPurger{}, "not a schedule")
	require.Error(t, err)

	p := &countingPurger{}
	s, err := NewSessionSweeper(p, "@every 1s")
	require.NoError(t, err)

	s.sweep()
	assert.Equal(t, int32(1), p.calls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
