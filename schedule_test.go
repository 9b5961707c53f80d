package eventq

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoPeriodicallySync_StopsAfterFalse(t *testing.T) {
	q := NewEventQueue("periodic-sync")
	defer func() {
		q.Finish()
		q.Join()
	}()

	var runs atomic.Int64
	const wanted = 5

	sched := q.DoPeriodicallySync("tick", 5*time.Millisecond, func() bool {
		n := runs.Add(1)
		return n < wanted
	})

	select {
	case <-getDoneChan(sched):
	case <-time.After(5 * time.Second):
		t.Fatal("schedule never finished")
	}

	assert.EqualValues(t, wanted, runs.Load())
}

func TestDoPeriodically_CancelStopsFutureRuns(t *testing.T) {
	q := NewEventQueue("periodic-cancel")
	defer func() {
		q.Finish()
		q.Join()
	}()

	var runs atomic.Int64
	sched := q.DoPeriodicallySync("tick", 10*time.Millisecond, func() bool {
		runs.Add(1)
		return true
	})

	time.Sleep(35 * time.Millisecond)
	sched.Cancel()

	select {
	case <-getDoneChan(sched):
	case <-time.After(time.Second):
		t.Fatal("Cancel did not resolve Done")
	}

	observed := runs.Load()
	require.True(t, observed >= 1)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, observed, runs.Load())
}

func TestDoPeriodically_FirstRunIsImmediate(t *testing.T) {
	q := NewEventQueue("periodic-immediate")
	defer func() {
		q.Finish()
		q.Join()
	}()

	start := time.Now()
	first := make(chan time.Duration, 1)

	sched := q.DoPeriodicallySync("tick", time.Hour, func() bool {
		first <- time.Since(start)
		return false
	})
	defer sched.Cancel()

	select {
	case elapsed := <-first:
		assert.Less(t, elapsed, 500*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("first run never happened")
	}
}

// getDoneChan adapts Schedule.Done() (a Promise[Empty]) into a channel for
// test synchronization, via the same private-queue bridge Get uses.
func getDoneChan(s Schedule) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		Get(s.Done())
		close(ch)
	}()
	return ch
}
