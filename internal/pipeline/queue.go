package pipeline

import (
	"context"
	"errors"
	"sync"

	"shopassist/internal/logger"
)

// ErrQueueCleared is delivered to tasks rejected by Clear before they
// started running.
var ErrQueueCleared = errors.New("queue cleared before task started")

// TaskFunc is a unit of queued work.
type TaskFunc func(ctx context.Context) (any, error)

type taskResult struct {
	value any
	err   error
}

type queuedTask struct {
	ctx      context.Context
	priority int
	seq      uint64
	fn       TaskFunc
	result   chan taskResult
}

// Queue runs tasks with bounded concurrency. Pending tasks are picked by
// highest priority first, then submission order within a priority.
type Queue struct {
	mu            sync.Mutex
	pending       []*queuedTask
	active        int
	maxConcurrent int
	seq           uint64
}

// NewQueue creates a queue running at most maxConcurrent tasks at once.
func NewQueue(maxConcurrent int) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{maxConcurrent: maxConcurrent}
}

// Do submits fn and blocks until it completes, the queue is cleared, or
// ctx is done. Higher priority values run sooner.
func (q *Queue) Do(ctx context.Context, priority int, fn TaskFunc) (any, error) {
	task := &queuedTask{
		ctx:      ctx,
		priority: priority,
		fn:       fn,
		result:   make(chan taskResult, 1),
	}

	q.mu.Lock()
	task.seq = q.seq
	q.seq++
	q.pending = append(q.pending, task)
	q.dispatchLocked()
	q.mu.Unlock()

	select {
	case res := <-task.result:
		return res.value, res.err
	case <-ctx.Done():
		q.remove(task)
		return nil, ctx.Err()
	}
}

// Pending reports the number of tasks waiting to start.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Active reports the number of tasks currently running.
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Clear rejects every pending task with ErrQueueCleared. Running tasks
// finish normally.
func (q *Queue) Clear() int {
	q.mu.Lock()
	cleared := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, task := range cleared {
		task.result <- taskResult{err: ErrQueueCleared}
	}
	if len(cleared) > 0 {
		logger.Debug().Int("cleared", len(cleared)).Msg("Task queue cleared")
	}
	return len(cleared)
}

// dispatchLocked starts pending tasks while a concurrency slot is free.
// Caller holds q.mu.
func (q *Queue) dispatchLocked() {
	for q.active < q.maxConcurrent && len(q.pending) > 0 {
		next := q.takeNextLocked()
		q.active++
		go q.run(next)
	}
}

// takeNextLocked pops the highest-priority pending task, oldest first
// within a priority. Caller holds q.mu.
func (q *Queue) takeNextLocked() *queuedTask {
	best := 0
	for i := 1; i < len(q.pending); i++ {
		p, b := q.pending[i], q.pending[best]
		if p.priority > b.priority || (p.priority == b.priority && p.seq < b.seq) {
			best = i
		}
	}

	task := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	return task
}

func (q *Queue) run(task *queuedTask) {
	value, err := task.fn(task.ctx)
	task.result <- taskResult{value: value, err: err}

	q.mu.Lock()
	q.active--
	q.dispatchLocked()
	q.mu.Unlock()
}

// remove drops a task from the pending list if it has not started.
func (q *Queue) remove(task *queuedTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, pending := range q.pending {
		if pending == task {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}
