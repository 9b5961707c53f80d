package eventq

import "time"

// Process bundles exactly one owned [EventQueue] with the conventional
// lifecycle a long-lived component built on it needs: construct, enqueue
// work against yourself over your lifetime, Finish, Join. Embedding
// Process in a domain type is the idiomatic equivalent of the original's
// inheritance from Process — Go has no protected members, so the
// delegating methods below are exported instead, on the EventQueue's own
// identifier-based semantics.
type Process struct {
	q *EventQueue
}

// NewProcess constructs a Process with its own freshly started
// [EventQueue]. id is used only for observability.
func NewProcess(id string, opts ...QueueOption) *Process {
	return &Process{q: NewEventQueue(id, opts...)}
}

// Queue returns the Process's underlying [EventQueue], for call sites that
// need package-level generic helpers such as [Then] or [ResolveAll].
func (p *Process) Queue() *EventQueue {
	return p.q
}

// Enqueue submits f as a task on the Process's queue. It returns
// [ErrQueueFinished] if the Process's queue has already been finished.
func (p *Process) Enqueue(id string, f func()) (Promise[Empty], error) {
	return p.q.Enqueue(id, f)
}

// Finish stops the Process's queue from accepting further steady-state
// work once its current backlog drains; see [EventQueue.Finish].
func (p *Process) Finish() {
	p.q.Finish()
}

// Join blocks until the Process's queue worker has exited.
func (p *Process) Join() {
	p.q.Join()
}

// DoPeriodically delegates to the Process's own queue; see
// [EventQueue.DoPeriodically].
func (p *Process) DoPeriodically(id string, interval time.Duration, f func() Promise[bool]) Schedule {
	return p.q.DoPeriodically(id, interval, f)
}

// DoPeriodicallySync delegates to the Process's own queue; see
// [EventQueue.DoPeriodicallySync].
func (p *Process) DoPeriodicallySync(id string, interval time.Duration, f func() bool) Schedule {
	return p.q.DoPeriodicallySync(id, interval, f)
}

// ProcessEnqueue submits f as a task on p's queue and returns a promise
// for its result. A free function rather than a method of Process, since
// Go methods cannot introduce a type parameter beyond their receiver's.
func ProcessEnqueue[T any](p *Process, id string, f func() T) (Promise[T], error) {
	return Enqueue(p.q, id, f)
}

// ProcessEnqueueWithResolver submits init as a task on p's queue, handing
// it the resolver for the returned promise; see [EnqueueWithResolver].
func ProcessEnqueueWithResolver[T any](p *Process, id string, init func(Resolver[T])) (Promise[T], error) {
	return EnqueueWithResolver(p.q, id, init)
}

// ProcessCreateResolver returns a fresh, unresolved promise and the
// resolver that supplies its value, mirroring Process::CreateResolver in
// the original (process_impl.h), which delegates straight through to
// EventQueue::CreateResolver. p is accepted only for parity with that
// delegation and for discoverability alongside ProcessEnqueue — like
// [CreateResolver] itself, the result is not tied to any particular queue.
func ProcessCreateResolver[T any](p *Process, id string) (Promise[T], Resolver[T]) {
	return CreateResolver[T](id)
}
