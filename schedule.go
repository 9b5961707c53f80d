package eventq

import (
	"sync"
	"time"
)

// scheduleControlBlock owns the recurring timer registration behind a
// single [Schedule], translating schedule_control_block.{h,cc} into the
// idiom of this package: one q.take() for the schedule's whole lifetime,
// released only once it has genuinely stopped rearming itself.
type scheduleControlBlock struct {
	mu sync.Mutex

	q        *EventQueue
	f        func() Promise[bool]
	interval time.Duration
	id       string

	running         bool
	scheduledRunSet bool
	scheduledRun    time.Time
	currentTimer    *TimerID

	done Resolver[Empty]
}

func newScheduleControlBlock(q *EventQueue, f func() Promise[bool], interval time.Duration, id string, done Resolver[Empty]) *scheduleControlBlock {
	q.take()
	return &scheduleControlBlock{
		q:        q,
		f:        f,
		interval: interval,
		id:       id,
		running:  true,
		done:     done,
	}
}

// start arms the first run. Unlike the constructor, it is deliberately
// separate so a fully-built block is never referenced by a timer callback
// before it exists.
func (scb *scheduleControlBlock) start() {
	scb.scheduleNextRun()
}

// cancel stops any pending timer and finishes the schedule immediately,
// without waiting for an in-flight run of f to complete.
func (scb *scheduleControlBlock) cancel() {
	scb.mu.Lock()
	if scb.currentTimer != nil {
		CurrentTimer().Cancel(*scb.currentTimer)
		scb.currentTimer = nil
	}
	scb.mu.Unlock()

	scb.finish()
}

// finish marks the schedule as stopped and resolves Done, exactly once.
// It also releases the q.take() acquired at construction — from this point
// the schedule no longer keeps q's worker alive.
func (scb *scheduleControlBlock) finish() {
	scb.mu.Lock()
	wasRunning := scb.running
	scb.running = false
	scb.mu.Unlock()

	if wasRunning {
		scb.done.Resolve(Empty{})
		scb.q.logger.logDebug(categorySchedule, scb.q.id, "schedule "+scb.id+" stopped")
		scb.q.release()
	}
}

// timerCallback runs on the Timer's dispatch goroutine; it hands off to
// q's worker (rather than calling f directly) so f and its continuation
// always run with the queue's own exclusivity guarantees.
func (scb *scheduleControlBlock) timerCallback() {
	scb.mu.Lock()
	scb.currentTimer = nil
	scb.mu.Unlock()

	scb.q.addTask(scb.id, func() {
		scb.mu.Lock()
		running := scb.running
		scb.mu.Unlock()
		if !running {
			return
		}
		ThenVoid(scb.f(), scb.q, scb.id, func(keepRunning bool) {
			if !keepRunning {
				scb.finish()
			} else {
				scb.scheduleNextRun()
			}
		})
	})
}

// scheduleNextRun arms the Timer for the next firing, anchored to the
// original cadence rather than to "now" each time, so a slow run of f
// never causes the schedule to drift later and later — it only ever
// catches up or falls behind by the overrun itself.
func (scb *scheduleControlBlock) scheduleNextRun() {
	scb.mu.Lock()
	defer scb.mu.Unlock()

	if !scb.running {
		return
	}

	if !scb.scheduledRunSet {
		scb.scheduledRun = CurrentTimer().Now()
		scb.scheduledRunSet = true
	} else {
		scb.scheduledRun = scb.scheduledRun.Add(scb.interval)
	}

	id := CurrentTimer().Schedule(scb.scheduledRun, scb.timerCallback)
	scb.currentTimer = &id
}

// Schedule represents one still-running (or already-cancelled) recurring
// invocation of the function passed to [EventQueue.DoPeriodically]. It is
// a small value type; every copy points to the same cancellation and
// completion machinery, and dropping copies neither counts nor cancels
// anything.
type Schedule struct {
	scb  *scheduleControlBlock
	done Promise[Empty]
}

// Done returns a promise that resolves once the schedule has stopped
// running, whether because f returned false or because [Schedule.Cancel]
// was called.
func (s Schedule) Done() Promise[Empty] {
	return s.done
}

// Cancel stops the schedule. If a run of f is already in flight, it is
// allowed to finish, but no further run is scheduled afterward — Cancel
// never blocks waiting for an in-flight run, matching
// ScheduleCancelTrigger's immediate, non-blocking Cancel. There is no
// finalizer-driven cancellation; a Schedule that is simply dropped keeps
// running forever, by design (see DESIGN.md).
func (s Schedule) Cancel() {
	s.scb.cancel()
}

// DoPeriodically repeatedly invokes f, waiting interval between the start
// of one invocation and the start of the next, until f resolves to false
// or the returned [Schedule] is cancelled. The first invocation happens
// immediately (interval elapses between invocations, not before the
// first one). Every invocation of f, and its continuation, runs as a task
// on q, in the same relative order as any other work enqueued on q at the
// time.
func (q *EventQueue) DoPeriodically(id string, interval time.Duration, f func() Promise[bool]) Schedule {
	donePromise, doneResolver := CreateResolver[Empty](id)
	scb := newScheduleControlBlock(q, f, interval, id, doneResolver)
	scb.start()
	return Schedule{scb: scb, done: donePromise}
}

// DoPeriodicallySync is [EventQueue.DoPeriodically] for a synchronous
// predicate, for callers with no further asynchronous work to interleave
// between the decision to continue and the next run.
func (q *EventQueue) DoPeriodicallySync(id string, interval time.Duration, f func() bool) Schedule {
	return q.DoPeriodically(id, interval, func() Promise[bool] {
		return CreateResolvedPromise(f(), id)
	})
}
