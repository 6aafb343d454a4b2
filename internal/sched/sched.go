// Package sched provides the cancellable delayed-task abstraction used for
// every suspension point in shopfront: the search debounce, the checkout
// processing delay, the add-to-cart feedback window and the sync poll.
//
// A Task is a revocable handle. Its state is observable (pending, fired,
// cancelled) and Cancel is idempotent. A cancelled task never runs its
// callback, even when the underlying timer already fired and the callback is
// waiting to be delivered to the owning loop.
//
// Realtime backs tasks with time.AfterFunc and hands each callback to a post
// function, which the TUI points at its update loop so callbacks never run
// concurrently with view code. Virtual is a manual clock for tests.
package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// TaskState reports where a task is in its lifecycle.
type TaskState int32

const (
	TaskPending TaskState = iota
	TaskFired
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskFired:
		return "fired"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is a handle to a scheduled callback.
type Task struct {
	state atomic.Int32
	stop  func() bool
}

// State returns the current state of the task. A nil task reports cancelled.
func (t *Task) State() TaskState {
	if t == nil {
		return TaskCancelled
	}
	return TaskState(t.state.Load())
}

// Pending is shorthand for State() == TaskPending.
func (t *Task) Pending() bool {
	return t.State() == TaskPending
}

// Cancel revokes the task. It returns true only for the call that moved the
// task out of the pending state.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	if !t.state.CompareAndSwap(int32(TaskPending), int32(TaskCancelled)) {
		return false
	}
	if t.stop != nil {
		t.stop()
	}
	return true
}

func (t *Task) run(f func()) {
	if !t.state.CompareAndSwap(int32(TaskPending), int32(TaskFired)) {
		return
	}
	f()
}

// Scheduler arms delayed callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) *Task
	Now() time.Time
}

// Realtime schedules on the wall clock.
type Realtime struct {
	mu   sync.RWMutex
	post func(func())
}

// NewRealtime returns a wall-clock scheduler. When post is nil callbacks run
// on the timer goroutine.
func NewRealtime(post func(func())) *Realtime {
	return &Realtime{post: post}
}

// SetPost replaces the function used to deliver callbacks.
func (r *Realtime) SetPost(post func(func())) {
	r.mu.Lock()
	r.post = post
	r.mu.Unlock()
}

// AfterFunc implements Scheduler.
func (r *Realtime) AfterFunc(d time.Duration, f func()) *Task {
	task := &Task{}
	timer := time.AfterFunc(d, func() {
		r.deliver(func() { task.run(f) })
	})
	task.stop = timer.Stop
	return task
}

// Now implements Scheduler.
func (r *Realtime) Now() time.Time {
	return time.Now()
}

func (r *Realtime) deliver(f func()) {
	r.mu.RLock()
	post := r.post
	r.mu.RUnlock()
	if post == nil {
		f()
		return
	}
	post(f)
}

// Sleep blocks for d on the scheduler's clock or until ctx is done.
func Sleep(ctx context.Context, s Scheduler, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	task := s.AfterFunc(d, func() { close(done) })
	select {
	case <-ctx.Done():
		task.Cancel()
		return ctx.Err()
	case <-done:
		return nil
	}
}
