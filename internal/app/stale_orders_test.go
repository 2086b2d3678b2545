package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

type fakeReclaimer struct {
	mu        sync.Mutex
	calls     int
	olderThan time.Duration
	n         int64
	err       error
}

func (f *fakeReclaimer) ReclaimStale(_ domain.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.olderThan = olderThan
	return f.n, f.err
}

func (f *fakeReclaimer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewStaleOrderSweeper_NilReclaimer(t *testing.T) {
	t.Parallel()

	s := NewStaleOrderSweeper(nil, time.Minute, time.Minute)
	assert.Nil(t, s)
	// Run on a nil sweeper is a no-op, not a panic.
	s.Run(context.Background())
}

func TestNewStaleOrderSweeper_Defaults(t *testing.T) {
	t.Parallel()

	s := NewStaleOrderSweeper(&fakeReclaimer{}, 0, 0)
	require.NotNil(t, s)
	assert.Equal(t, 10*time.Minute, s.maxAge)
	assert.Equal(t, time.Minute, s.interval)
}

func TestStaleOrderSweeper_SweepsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	rec := &fakeReclaimer{n: 3}
	s := NewStaleOrderSweeper(rec, 10*time.Minute, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
	assert.Equal(t, 10*time.Minute, rec.olderThan)
}

func TestStaleOrderSweeper_SurvivesReclaimError(t *testing.T) {
	t.Parallel()

	rec := &fakeReclaimer{err: errors.New("mongo down")}
	s := NewStaleOrderSweeper(rec, time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Errors are logged, not fatal; ticks keep coming.
	require.Eventually(t, func() bool { return rec.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
