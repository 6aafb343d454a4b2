package sched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtual_RunsTasksInDueOrder(t *testing.T) {
	clock := NewVirtual(epoch)
	var got []string

	clock.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	clock.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	clock.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, epoch.Add(200*time.Millisecond), clock.Now())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, clock.Pending())
}

func TestVirtual_NowInsideCallbackIsDueTime(t *testing.T) {
	clock := NewVirtual(epoch)
	var at time.Time
	clock.AfterFunc(time.Second, func() { at = clock.Now() })

	clock.Advance(5 * time.Second)

	assert.Equal(t, epoch.Add(time.Second), at)
}

func TestVirtual_ChainedTasksInsideWindowRun(t *testing.T) {
	clock := NewVirtual(epoch)
	ticks := 0
	var arm func()
	arm = func() {
		clock.AfterFunc(time.Second, func() {
			ticks++
			arm()
		})
	}
	arm()

	clock.Advance(3500 * time.Millisecond)

	assert.Equal(t, 3, ticks)
	assert.Equal(t, 1, clock.Pending())
}

func TestTask_CancelPreventsCallback(t *testing.T) {
	clock := NewVirtual(epoch)
	ran := false
	task := clock.AfterFunc(time.Second, func() { ran = true })

	require.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel must be a no-op")
	assert.Equal(t, TaskCancelled, task.State())

	clock.Advance(2 * time.Second)
	assert.False(t, ran)
}

func TestTask_CancelAfterFireIsNoop(t *testing.T) {
	clock := NewVirtual(epoch)
	task := clock.AfterFunc(time.Second, func() {})

	clock.Advance(time.Second)

	assert.Equal(t, TaskFired, task.State())
	assert.False(t, task.Cancel())
	assert.Equal(t, TaskFired, task.State())
}

func TestTask_NilHandle(t *testing.T) {
	var task *Task
	assert.False(t, task.Cancel())
	assert.Equal(t, TaskCancelled, task.State())
	assert.False(t, task.Pending())
}

func TestRealtime_PostsCallbacks(t *testing.T) {
	posted := make(chan func(), 1)
	r := NewRealtime(func(f func()) { posted <- f })

	ran := make(chan struct{})
	task := r.AfterFunc(time.Millisecond, func() { close(ran) })

	select {
	case f := <-posted:
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never posted")
	}
	<-ran
	assert.Equal(t, TaskFired, task.State())
}

func TestRealtime_CancelAfterPostBeforeRun(t *testing.T) {
	posted := make(chan func(), 1)
	r := NewRealtime(func(f func()) { posted <- f })

	ran := false
	task := r.AfterFunc(time.Millisecond, func() { ran = true })

	var deliver func()
	select {
	case deliver = <-posted:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never posted")
	}

	require.True(t, task.Cancel())
	deliver()
	assert.False(t, ran, "revoked task must not run even if already queued")
}

func TestSleep_ContextCancel(t *testing.T) {
	r := NewRealtime(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, r, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep_ZeroDuration(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), NewVirtual(epoch), 0))
}
