package eventq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateResolvedPromise(t *testing.T) {
	q := NewEventQueue("resolved")
	defer func() {
		q.Finish()
		q.Join()
	}()

	p := CreateResolvedPromise(42, "val")

	result := make(chan int, 1)
	q.Enqueue("observe", func() {
		ThenVoidCurrent(p, "observe", func(v int) { result <- v })
	})
	assert.Equal(t, 42, <-result)
}

func TestResolverDoubleResolvePanics(t *testing.T) {
	_, r := CreateResolver[int]("double")
	r.Resolve(1)

	assert.Equal(t, &ProgrammingError{Op: "Resolve", Detail: "promise already resolved"}, recoveredPanic(func() {
		r.Resolve(2)
	}))
}

// recoveredPanic runs f and returns the value it panicked with, or nil if
// it returned normally. Unlike assert.PanicsWithValue, which compares with
// ==, the result can be checked with assert.Equal, so a *ProgrammingError
// is compared by its fields rather than by pointer identity.
func recoveredPanic(f func()) (r any) {
	defer func() { r = recover() }()
	f()
	return nil
}

func TestThen_SingleQueueChain(t *testing.T) {
	q := NewEventQueue("chain")
	defer func() {
		q.Finish()
		q.Join()
	}()

	const steps = 100
	result := make(chan int, 1)

	q.Enqueue("start", func() {
		p := CreateResolvedPromise(0, "seed")
		for i := 0; i < steps; i++ {
			p = ThenCurrent(p, "step", func(v int) int { return v + 1 })
		}
		ThenVoidCurrent(p, "final", func(v int) { result <- v })
	})

	assert.Equal(t, steps, <-result)
}

func TestThen_PingPongAcrossQueues(t *testing.T) {
	a := NewEventQueue("ping")
	b := NewEventQueue("pong")
	defer func() {
		a.Finish()
		b.Finish()
		a.Join()
		b.Join()
	}()

	const bounces = 1024
	done := make(chan int, 1)

	var bounce func(p Promise[int], from, to *EventQueue, n int)
	bounce = func(p Promise[int], from, to *EventQueue, n int) {
		if n == 0 {
			ThenVoid(p, from, "final", func(v int) { done <- v })
			return
		}
		next := Then(p, to, "bounce", func(v int) int { return v + 1 })
		bounce(next, to, from, n-1)
	}

	seed := CreateResolvedPromise(0, "seed")
	bounce(seed, a, b, bounces)

	assert.Equal(t, bounces, <-done)
}

func TestThenCurrent_OffWorkerPanics(t *testing.T) {
	p := CreateResolvedPromise(1, "seed")
	assert.Equal(t,
		&ProgrammingError{Op: "ThenCurrent", Detail: "not running on an EventQueue worker goroutine; use Then with an explicit queue"},
		recoveredPanic(func() { ThenCurrent(p, "x", func(int) int { return 0 }) }),
	)
}

func TestResolveAll_HeterogeneousFanIn(t *testing.T) {
	q := NewEventQueue("resolve-all")
	defer func() {
		q.Finish()
		q.Join()
	}()

	done := make(chan struct{}, 1)

	q.Enqueue("start", func() {
		p1, err := Enqueue(q, "p1", func() int { return 1 })
		assert.NoError(t, err)
		p2, err := Enqueue(q, "p2", func() string { return "two" })
		assert.NoError(t, err)
		p3, err := Enqueue(q, "p3", func() bool { return true })
		assert.NoError(t, err)
		p4 := CreateResolvedPromise(4.0, "p4")

		all := ResolveAll(q, "all", p1, p2, p3, p4)
		ThenVoidCurrent(all, "observe", func(Empty) { close(done) })
	})

	<-done
}

func TestResolveAll_Empty(t *testing.T) {
	q := NewEventQueue("resolve-all-empty")
	defer func() {
		q.Finish()
		q.Join()
	}()

	done := make(chan struct{}, 1)
	q.Enqueue("start", func() {
		all := ResolveAll(q, "all")
		ThenVoidCurrent(all, "observe", func(Empty) { close(done) })
	})
	<-done
}
