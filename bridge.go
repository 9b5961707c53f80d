package eventq

// Get blocks the calling goroutine until promise resolves, and returns its
// value. It must never be called from an EventQueue worker goroutine —
// doing so panics with a [ProgrammingError], since a worker blocked in Get
// can never make progress on the very queue whose progress it may be
// waiting on. Get is for bridging ordinary goroutines (a test, a main
// function, an unrelated subsystem) into the queue/promise world, exactly
// as non_csp_utils.h's Get function bridges a "non-CSP thread".
//
// Internally, Get spins up a private, throwaway EventQueue exactly for
// the duration of the call: it attaches a Then continuation there to
// capture the result, then Finishes and Joins that queue, which blocks
// until the continuation has actually run.
func Get[T any](promise Promise[T]) T {
	if CurrentEventQueue() != nil {
		fatal("Get", "must not be called from an EventQueue worker goroutine")
	}

	q := NewEventQueue("get")
	var result T
	q.Enqueue("get.attach", func() {
		ThenVoidCurrent(promise, "get.capture", func(v T) {
			result = v
		})
	})
	q.Finish()
	q.Join()
	return result
}

// GetFunc is [Get] for a promise produced by an asynchronous function that
// must itself run on an EventQueue worker goroutine to kick off its own
// work — f runs on the same private queue Get uses internally, so it is
// always safe for f to call [ThenCurrent] or [CurrentEventQueue].
func GetFunc[T any](f func() Promise[T]) T {
	if CurrentEventQueue() != nil {
		fatal("GetFunc", "must not be called from an EventQueue worker goroutine")
	}

	q := NewEventQueue("get")
	var result T
	q.Enqueue("get.attach", func() {
		ThenVoidCurrent(f(), "get.capture", func(v T) {
			result = v
		})
	})
	q.Finish()
	q.Join()
	return result
}

// SubscribeAndWait blocks the calling goroutine, subscribing to pub and
// invoking listener for every delivered value, until listener returns
// false — at which point it unsubscribes and returns. listener itself
// runs on a private queue, the same way Get's continuation does; it must
// never block waiting on the calling goroutine. Like [Get], it must never
// be called from an EventQueue worker goroutine.
func SubscribeAndWait[T any](pub *Publication[T], listener func(T) bool) {
	if CurrentEventQueue() != nil {
		fatal("SubscribeAndWait", "must not be called from an EventQueue worker goroutine")
	}

	q := NewEventQueue("subscribe-and-wait")
	done := make(chan struct{})

	q.Enqueue("subscribe-and-wait.attach", func() {
		var sub Subscription[T]
		sub = pub.Subscribe("subscribe-and-wait.listener", func(v T) {
			if !listener(v) {
				sub.Unsubscribe()
				close(done)
			}
		})
	})

	<-done
	q.Finish()
	q.Join()
}
