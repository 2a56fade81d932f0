package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTask(t *testing.T) {
	q := NewQueue(3)

	value, err := q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

func TestQueuePropagatesTaskError(t *testing.T) {
	q := NewQueue(1)
	boom := errors.New("boom")

	_, err := q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestQueueBoundsConcurrency(t *testing.T) {
	q := NewQueue(3)

	var mu sync.Mutex
	running, peak := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil, nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 3)
	assert.Equal(t, 0, q.Active())
	assert.Equal(t, 0, q.Pending())
}

func TestQueuePriorityOrdering(t *testing.T) {
	q := NewQueue(1)

	// Occupy the single slot so the remaining submissions queue up.
	release := make(chan struct{})
	blockerStarted := make(chan struct{})
	go q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
		close(blockerStarted)
		<-release
		return nil, nil
	})
	<-blockerStarted

	var mu sync.Mutex
	var order []string

	submit := func(name string, priority int) chan struct{} {
		queued := make(chan struct{})
		go func() {
			close(queued)
			q.Do(context.Background(), priority, func(ctx context.Context) (any, error) {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				return nil, nil
			})
		}()
		return queued
	}

	<-submit("low-1", 1)
	for q.Pending() < 1 {
		time.Sleep(time.Millisecond)
	}
	<-submit("high", 5)
	for q.Pending() < 2 {
		time.Sleep(time.Millisecond)
	}
	<-submit("low-2", 1)
	for q.Pending() < 3 {
		time.Sleep(time.Millisecond)
	}

	close(release)
	for q.Pending() > 0 || q.Active() > 0 {
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"high", "low-1", "low-2"}, order)
}

func TestQueueClearRejectsPending(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	started := make(chan struct{})
	go q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
				return nil, nil
			})
			errs <- err
		}()
	}
	for q.Pending() < 2 {
		time.Sleep(time.Millisecond)
	}

	assert.Equal(t, 2, q.Clear())
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, <-errs, ErrQueueCleared)
	}

	close(release)
}

func TestQueueContextCancellation(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	started := make(chan struct{})
	go q.Do(context.Background(), 0, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := q.Do(ctx, 0, func(ctx context.Context) (any, error) {
			return nil, nil
		})
		errs <- err
	}()
	for q.Pending() < 1 {
		time.Sleep(time.Millisecond)
	}

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)
	assert.Equal(t, 0, q.Pending())

	close(release)
}
