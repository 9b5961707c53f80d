package eventq

import (
	"container/heap"
	"sync"
	"time"
)

// TimerID identifies a single scheduled future execution, returned by
// [Timer.Schedule] and accepted by [Timer.Cancel].
type TimerID uint64

// timerEntry is one scheduled task, ordered within timerHeap by when.
type timerEntry struct {
	id       TimerID
	when     time.Time
	callback func()
}

// timerHeap is a min-heap of timerEntry ordered by when, the same
// container/heap pattern the teacher's Loop uses for its own timer queue
// in loop.go.
type timerHeap []timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Timer schedules callbacks to run at a future point in time, backed by a
// single dedicated goroutine shared by every caller — a direct translation
// of timer.cc's TimerImpl, whose condition-variable wait-with-timeout loop
// becomes a sync.Cond wait woken by a per-wait time.AfterFunc here.
type Timer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	heap    timerHeap
	nextID  TimerID
	running bool
	done    chan struct{}
}

func newTimer() *Timer {
	t := &Timer{running: true, done: make(chan struct{})}
	t.cond = sync.NewCond(&t.mu)
	go t.run()
	return t
}

// Now returns the current time according to the clock this Timer uses to
// evaluate due callbacks.
func (t *Timer) Now() time.Time {
	return time.Now()
}

// Schedule arranges for f to run at when. If when is not in the future, f
// runs as soon as the dispatch goroutine can get to it, in an arbitrary
// order relative to other due callbacks. The returned ID can be passed to
// Cancel.
func (t *Timer) Schedule(when time.Time, f func()) TimerID {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	heap.Push(&t.heap, timerEntry{id: id, when: when, callback: f})
	t.cond.Signal()
	t.mu.Unlock()
	return id
}

// Cancel removes a scheduled callback before it fires. It reports whether
// the callback was actually found and removed — false means either the id
// is unknown or the callback has already run.
func (t *Timer) Cancel(id TimerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.heap {
		if e.id == id {
			heap.Remove(&t.heap, i)
			t.cond.Signal()
			return true
		}
	}
	return false
}

// stop halts the dispatch goroutine. Pending callbacks never run.
func (t *Timer) stop() {
	t.mu.Lock()
	t.running = false
	t.cond.Signal()
	t.mu.Unlock()
	<-t.done
}

// run is the dispatch goroutine. It mirrors TimerImpl's loop exactly: pop
// the earliest entry, if it is due run it, otherwise sleep (via cond.Wait
// woken by a background timer, since sync.Cond has no wait-with-timeout)
// until either it becomes due or a new, earlier entry is scheduled.
func (t *Timer) run() {
	defer close(t.done)

	for {
		t.mu.Lock()
		for {
			if !t.running {
				t.mu.Unlock()
				return
			}
			if len(t.heap) == 0 {
				t.cond.Wait()
				continue
			}
			now := time.Now()
			if !t.heap[0].when.After(now) {
				break
			}
			wait := t.heap[0].when.Sub(now)
			t.waitFor(wait)
		}
		entry := heap.Pop(&t.heap).(timerEntry)
		t.mu.Unlock()

		recoverInto(structuredLogger{}, categoryTimer, "", "", entry.callback)
	}
}

// waitFor blocks the run loop for up to d, or until woken early by
// Schedule/Cancel/stop via cond.Signal/Broadcast, whichever comes first.
// t.mu must be held on entry and is held again on return, matching
// sync.Cond.Wait's own contract; a background timer stands in for
// condition_variable::wait_for, since sync.Cond has no built-in deadline.
func (t *Timer) waitFor(d time.Duration) {
	wake := time.AfterFunc(d, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer wake.Stop()
	t.cond.Wait()
}

var (
	defaultTimerMu sync.Mutex
	defaultTimer   *Timer
)

// CurrentTimer returns the process-wide [Timer] singleton, lazily creating
// it on first use. Unlike the original's static-storage-duration instance,
// this one can be shut down explicitly with [StopDefaultTimer] and will be
// recreated by the next call to CurrentTimer — chosen in preference to an
// unstoppable singleton so tests (and long-lived processes that want a
// clean shutdown path) have one, per the Timer lifetime decision recorded
// in DESIGN.md.
func CurrentTimer() *Timer {
	defaultTimerMu.Lock()
	defer defaultTimerMu.Unlock()
	if defaultTimer == nil {
		defaultTimer = newTimer()
	}
	return defaultTimer
}

// StopDefaultTimer halts the process-wide Timer's dispatch goroutine, if
// one has been created. A subsequent call to [CurrentTimer] creates a
// fresh one. Any callbacks still pending on the stopped timer never run.
func StopDefaultTimer() {
	defaultTimerMu.Lock()
	t := defaultTimer
	defaultTimer = nil
	defaultTimerMu.Unlock()
	if t != nil {
		t.stop()
	}
}
