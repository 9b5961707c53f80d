// Package eventq provides composable primitives for structuring
// cooperative, message-passing concurrent programs: single-consumer event
// queues, single-assignment promises that chain callbacks across queues,
// many-to-many publish/subscribe topics, and cancellable periodic
// schedules anchored on a shared wall-clock timer.
//
// # Architecture
//
// An [EventQueue] is a FIFO of tasks backed by exactly one dedicated worker
// goroutine; client work submitted via [EventQueue.Enqueue] always runs on
// that worker, in submission order. A [Promise] is a single-assignment
// future: [Then] attaches a continuation that runs on a (possibly
// different) queue once the upstream value is resolved, regardless of
// whether the continuation was attached before or after resolution. A
// [Topic] fans a published value out to every current [Subscription],
// delivering each one through its own subscriber's queue. A [Schedule]
// arms a package-level [Timer] to invoke a user function periodically,
// re-arming at the original intended cadence to avoid drift.
//
// # Thread Safety
//
// [EventQueue.Enqueue], [Resolver.Resolve] (via the package-level
// [Then]/[ResolveAll] functions), [Topic.Publish], and [Schedule.Cancel]
// are all safe to call from any goroutine. Promise continuations,
// subscription listeners, and schedule functions always run on an event
// queue worker goroutine, never on the timer goroutine and never on an
// arbitrary caller's goroutine. [CurrentEventQueue] returns the queue
// owning the calling goroutine, or nil off a worker.
//
// # Error Handling
//
// There is no error/rejection channel on a [Promise] — values are always
// eventually supplied by the client. Programmer mistakes (double-resolve,
// calling a worker-only helper off a queue, or a blocking helper from
// within one) panic with a [ProgrammingError] rather than returning an
// error, matching the "fatal, abort" class of failure this library treats
// as non-recoverable misuse rather than an operational condition.
//
// # Usage
//
//	q := eventq.NewEventQueue("worker")
//	defer func() { q.Finish(); q.Join() }()
//
//	p, err := eventq.Enqueue(q, "compute", func() int { return 41 })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	done := eventq.ThenVoid(p, q, "print", func(v int) {
//	    fmt.Println(v + 1)
//	})
//	eventq.Get(done)
package eventq
