package eventq

import "sync"

// Empty is the result type of a [Promise] that carries no value — most
// commonly the promise returned by a side-effecting [Then] continuation,
// a plain [EventQueue.Enqueue], or [ResolveAll].
type Empty struct{}

// promiseControlBlock is the shared, mutex-guarded state behind a
// [Promise]/[Resolver] pair: an optional result and, until it is set, the
// list of continuations waiting on it. It is never exposed directly;
// [Promise] and [Resolver] are the value types clients hold.
type promiseControlBlock[T any] struct {
	mu         sync.Mutex
	resolved   bool
	result     T
	dependents []func(T)
	listener   PromiseListener
}

func newPromiseControlBlock[T any](id string) *promiseControlBlock[T] {
	return &promiseControlBlock[T]{listener: notifyPromiseCreated(id)}
}

// resolve sets the control block's result exactly once. A second call is a
// programming error: resolving twice almost always indicates a bug in the
// caller's bookkeeping, so this fails loudly rather than silently
// discarding the second value.
func (pcb *promiseControlBlock[T]) resolve(result T) {
	pcb.mu.Lock()
	if pcb.resolved {
		pcb.mu.Unlock()
		fatal("Resolve", "promise already resolved")
	}
	pcb.resolved = true
	pcb.result = result
	deps := pcb.dependents
	pcb.dependents = nil
	for _, d := range deps {
		d(result)
	}
	if pcb.listener != nil {
		pcb.listener.OnResolved()
	}
	pcb.mu.Unlock()
}

// thenPCB attaches a continuation to pcb that runs f on q once pcb resolves,
// returning the control block for the continuation's own result. It is a
// free function, not a method, because Go methods cannot introduce a type
// parameter beyond their receiver's — Y has no home on a method of
// promiseControlBlock[X].
//
// q.take() is called unconditionally before the dependent can possibly
// fire, and the dependent itself calls q.release() once it has enqueued the
// continuation's task — this is what keeps q's worker alive across the
// handoff even if q.Finish was already called and its own FIFO is
// momentarily empty, mirroring PromiseControlBlock::Then's Take/Release
// pairing around EventQueue::AddTask.
func thenPCB[X, Y any](pcb *promiseControlBlock[X], q *EventQueue, f func(X) Y, id string) *promiseControlBlock[Y] {
	npcb := newPromiseControlBlock[Y](id)
	resolver := Resolver[Y]{pcb: npcb}

	dep := func(value X) {
		q.addTask(id, func() { resolver.Resolve(f(value)) })
		q.release()
	}

	q.take()

	pcb.mu.Lock()
	if pcb.resolved {
		result := pcb.result
		pcb.mu.Unlock()
		dep(result)
	} else {
		pcb.dependents = append(pcb.dependents, dep)
		pcb.mu.Unlock()
	}

	return npcb
}

// Promise is the read side of a single-assignment value that becomes
// available at some future point, always by way of running on an
// [EventQueue]. Promise is a small value type, safe to copy and share
// freely between goroutines; all synchronization lives in the control
// block it points to.
type Promise[T any] struct {
	pcb *promiseControlBlock[T]
}

// Resolver is the write side of a [Promise], obtained from [CreateResolver]
// or [EnqueueWithResolver]. Resolve may be called at most once.
type Resolver[T any] struct {
	pcb *promiseControlBlock[T]
}

// Resolve supplies the promise's result, waking any continuations already
// registered via [Then] and notifying the promise's [PromiseListener], if
// any. Calling Resolve a second time panics with a [ProgrammingError].
func (r Resolver[T]) Resolve(result T) {
	r.pcb.resolve(result)
}

// CreateResolver returns a fresh, unresolved promise and the resolver that
// supplies its value. id is used only for lifecycle-listener and logging
// observability.
func CreateResolver[T any](id string) (Promise[T], Resolver[T]) {
	pcb := newPromiseControlBlock[T](id)
	return Promise[T]{pcb: pcb}, Resolver[T]{pcb: pcb}
}

// CreateResolvedPromise returns a promise that is already resolved to val.
// Any [Then] attached to it still runs asynchronously, as a task enqueued
// on the continuation's queue — it never runs synchronously inline with
// the call to Then.
func CreateResolvedPromise[T any](val T, id string) Promise[T] {
	p, r := CreateResolver[T](id)
	r.Resolve(val)
	return p
}

// Enqueue submits f as a task on q and returns a promise for its result.
// It returns [ErrQueueFinished], and a zero Promise that never resolves,
// if [EventQueue.Finish] has already been called — f never runs in that
// case.
func Enqueue[T any](q *EventQueue, id string, f func() T) (Promise[T], error) {
	p, r := CreateResolver[T](id)
	if !q.tryAddTask(id, func() { r.Resolve(f()) }) {
		return Promise[T]{}, ErrQueueFinished
	}
	return p, nil
}

// EnqueueWithResolver submits init as a task on q, handing it the resolver
// for the returned promise. Unlike [Enqueue], init decides when (and
// whether, and how many times it attempts to) call Resolve — useful when
// the result depends on further asynchronous work kicked off from within
// the task itself. It returns [ErrQueueFinished] if [EventQueue.Finish]
// has already been called; init never runs in that case.
func EnqueueWithResolver[T any](q *EventQueue, id string, init func(Resolver[T])) (Promise[T], error) {
	p, r := CreateResolver[T](id)
	if !q.tryAddTask(id, func() { init(r) }) {
		return Promise[T]{}, ErrQueueFinished
	}
	return p, nil
}

// Then attaches a continuation that runs f on q once p resolves, with f's
// result delivered via the returned promise. f always runs as a task on q,
// never synchronously on the caller's goroutine or p's own queue.
func Then[X, Y any](p Promise[X], q *EventQueue, id string, f func(X) Y) Promise[Y] {
	return Promise[Y]{pcb: thenPCB(p.pcb, q, f, id)}
}

// ThenCurrent attaches a continuation on the calling goroutine's own queue,
// as returned by [CurrentEventQueue]. It panics with a [ProgrammingError]
// if called from any goroutine other than an EventQueue worker — use [Then]
// with an explicit queue in that case.
func ThenCurrent[X, Y any](p Promise[X], id string, f func(X) Y) Promise[Y] {
	q := CurrentEventQueue()
	if q == nil {
		fatal("ThenCurrent", "not running on an EventQueue worker goroutine; use Then with an explicit queue")
	}
	return Then(p, q, id, f)
}

// ThenVoid is [Then] for a side-effecting continuation that produces no
// value of its own; the returned promise resolves to [Empty] once f runs.
func ThenVoid[X any](p Promise[X], q *EventQueue, id string, f func(X)) Promise[Empty] {
	return Then(p, q, id, func(x X) Empty {
		f(x)
		return Empty{}
	})
}

// ThenVoidCurrent is [ThenVoid] using [CurrentEventQueue]; see [ThenCurrent]
// for the panic condition.
func ThenVoidCurrent[X any](p Promise[X], id string, f func(X)) Promise[Empty] {
	q := CurrentEventQueue()
	if q == nil {
		fatal("ThenVoidCurrent", "not running on an EventQueue worker goroutine; use ThenVoid with an explicit queue")
	}
	return ThenVoid(p, q, id, f)
}

// AnyPromise erases a [Promise[T]]'s value type, the substitute for the
// original's variadic template Promise<Ys>... — Go generics have no
// equivalent of a heterogeneous parameter pack, so [ResolveAll] instead
// takes a slice of this sealed interface. The only implementation is
// Promise[T] for any T; no other type may implement it.
type AnyPromise interface {
	registerDone(q *EventQueue, id string, onDone func())
}

func (p Promise[T]) registerDone(q *EventQueue, id string, onDone func()) {
	thenPCB(p.pcb, q, func(T) Empty {
		onDone()
		return Empty{}
	}, id)
}

// ResolveAll returns a promise that resolves to [Empty] once every promise
// in promises has resolved, regardless of their (possibly distinct) value
// types. The individual results are discarded; ResolveAll answers only
// "have they all settled", not "what did they produce" (see the
// ResolveAll entry in DESIGN.md for why no fan-in tuple type is offered).
// ResolveAll with zero promises resolves immediately.
func ResolveAll(q *EventQueue, id string, promises ...AnyPromise) Promise[Empty] {
	p, r := CreateResolver[Empty](id)

	if len(promises) == 0 {
		r.Resolve(Empty{})
		return p
	}

	var mu sync.Mutex
	remaining := len(promises)

	for _, pr := range promises {
		pr.registerDone(q, id, func() {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				r.Resolve(Empty{})
			}
		})
	}

	return p
}
