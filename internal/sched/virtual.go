package sched

import (
	"sync"
	"time"
)

// Virtual is a manually advanced clock. Callbacks run synchronously inside
// Advance, ordered by due time and then by scheduling order.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue []*virtualEntry
}

type virtualEntry struct {
	at   time.Time
	seq  uint64
	task *Task
	f    func()
}

// NewVirtual returns a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now implements Scheduler.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc implements Scheduler.
func (v *Virtual) AfterFunc(d time.Duration, f func()) *Task {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	task := &Task{}
	v.queue = append(v.queue, &virtualEntry{at: v.now.Add(d), seq: v.seq, task: task, f: f})
	return task
}

// Advance moves the clock forward by d, running every task that falls due.
// Tasks scheduled by callbacks run too when they fall inside the window.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		entry := v.popDue(target)
		if entry == nil {
			break
		}
		entry.task.run(entry.f)
	}

	v.mu.Lock()
	if target.After(v.now) {
		v.now = target
	}
	v.mu.Unlock()
}

// Pending counts tasks that are still waiting to fire.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, e := range v.queue {
		if e.task.Pending() {
			n++
		}
	}
	return n
}

func (v *Virtual) popDue(target time.Time) *virtualEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	best := -1
	for i, e := range v.queue {
		if e.at.After(target) {
			continue
		}
		if best < 0 || e.at.Before(v.queue[best].at) ||
			(e.at.Equal(v.queue[best].at) && e.seq < v.queue[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	entry := v.queue[best]
	v.queue = append(v.queue[:best], v.queue[best+1:]...)
	if entry.at.After(v.now) {
		v.now = entry.at
	}
	return entry
}
