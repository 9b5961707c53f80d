package eventq

import (
	"errors"
	"fmt"
)

// ErrQueueFinished is returned by [EventQueue.Enqueue], [Enqueue],
// [EnqueueWithResolver], and the [Process] wrappers built on them, when
// the target queue's [EventQueue.Finish] has already been called — new
// steady-state work is rejected rather than silently accepted, but this
// is an operational condition rather than a programming error, so it is
// reported rather than panicked. It does not apply to continuation
// delivery (a [Then] handoff, a [Schedule] firing), which is already kept
// alive past Finish by its own take/release pairing and always runs.
// [Topic.Publish] delivers through [EventQueue.Enqueue], so a subscriber
// whose queue has finished is skipped for that publish.
var ErrQueueFinished = errors.New("eventq: queue is finished")

// ProgrammingError is the panic payload raised for the class of mistakes
// that this package treats as fatal client bugs rather than operational
// errors: calling [ThenCurrent], [Topic.Publish], or [Publication.Subscribe] off
// an EventQueue worker goroutine, calling [Get], [GetFunc], or
// [SubscribeAndWait] from one, resolving a [Resolver] twice, or joining a
// queue from its own worker.
type ProgrammingError struct {
	// Op names the operation that was misused, e.g. "ThenCurrent", "Resolve".
	Op string
	// Detail is a human-readable explanation of the violated invariant.
	Detail string
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("eventq: %s: %s", e.Op, e.Detail)
}

// fatal panics with a [ProgrammingError]. It is the sole entry point for
// raising the fatal-error class of failure described in spec.md §7, so
// every call site reads the same regardless of which invariant it guards.
func fatal(op, detail string) {
	panic(&ProgrammingError{Op: op, Detail: detail})
}

// PanicError wraps a value recovered from a panicking user callback
// (a task thunk, a [Then] continuation, a subscription listener, or a
// schedule function). The library never propagates user panics as Go
// panics of its own — spec.md §7 leaves behavior on an unhandled
// exception undefined and expects clients to guard their own closures —
// but a recovered panic is logged (see logging.go) and, when it can be
// observed here, reported as a PanicError so callers with access to one
// can use [errors.Is]/[errors.As] against the original cause.
type PanicError struct {
	// Value is the raw value passed to panic().
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("eventq: recovered panic: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value was itself an
// error, enabling [errors.Is]/[errors.As] through the cause chain.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// WrapPanic converts a recover()'d value into an error, for use by the
// panic-recovery wrapper installed around every user callback.
func WrapPanic(r any) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return &PanicError{Value: err}
	}
	return &PanicError{Value: r}
}
