package eventq

import (
	"github.com/joeycumines/logiface"
)

// Category names used as the "category" field on log records emitted by
// this package, mirroring the set of categories the teacher's own
// LogEntry.Category doc comment enumerates ("timer", "promise",
// "microtask", "poll", "shutdown"), narrowed to this domain's components.
const (
	categoryTask         = "task"
	categoryPromise      = "promise"
	categorySchedule     = "schedule"
	categorySubscription = "subscription"
	categoryTimer        = "timer"
)

// structuredLogger wraps the optional *logiface.Logger[logiface.Event]
// attached to a queue, falling back to a no-op so call sites never need a
// nil check.
type structuredLogger struct {
	l *logiface.Logger[logiface.Event]
}

func newStructuredLogger(l *logiface.Logger[logiface.Event]) structuredLogger {
	return structuredLogger{l: l}
}

// logPanic records a recovered user-callback panic. It never itself
// panics, regardless of whether a logger is configured.
func (s structuredLogger) logPanic(category, queueID, taskID string, r any) {
	if s.l == nil {
		return
	}
	err := WrapPanic(r)
	s.l.Err().
		Str("category", category).
		Str("queue", queueID).
		Str("task", taskID).
		Err(err).
		Log("recovered panic in user callback")
}

// logDebug records a low-volume lifecycle event (schedule stopped,
// subscription removed) at debug level.
func (s structuredLogger) logDebug(category, queueID, msg string) {
	if s.l == nil {
		return
	}
	s.l.Debug().
		Str("category", category).
		Str("queue", queueID).
		Log(msg)
}

// recoverInto runs f, recovering any panic and routing it to the logger
// under the given category/queue/task labels. It is the single choke point
// through which every user callback (task thunk, Then continuation,
// subscription listener, schedule function) is invoked, so that an
// unhandled exception in client code never crashes the worker goroutine —
// spec.md §7 leaves the *behavior* on panic undefined, but an abandoned
// worker goroutine would violate the shutdown invariants in spec.md §8, so
// this package always recovers and logs rather than propagating.
func recoverInto(logger structuredLogger, category, queueID, taskID string, f func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			logger.logPanic(category, queueID, taskID, r)
		}
	}()
	f()
	return false
}
