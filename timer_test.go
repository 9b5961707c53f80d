package eventq

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_ScheduleFiresAfterDelay(t *testing.T) {
	timer := newTimer()
	defer timer.stop()

	fired := make(chan time.Time, 1)
	start := timer.Now()
	timer.Schedule(start.Add(20*time.Millisecond), func() {
		fired <- timer.Now()
	})

	select {
	case got := <-fired:
		assert.True(t, !got.Before(start.Add(20*time.Millisecond)))
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimer_PastDueRunsAlmostImmediately(t *testing.T) {
	timer := newTimer()
	defer timer.stop()

	fired := make(chan struct{}, 1)
	timer.Schedule(timer.Now().Add(-time.Hour), func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("past-due callback never ran")
	}
}

func TestTimer_CancelPreventsFiring(t *testing.T) {
	timer := newTimer()
	defer timer.stop()

	var ran atomic.Bool
	id := timer.Schedule(timer.Now().Add(50*time.Millisecond), func() { ran.Store(true) })

	ok := timer.Cancel(id)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestTimer_CancelUnknownIDReturnsFalse(t *testing.T) {
	timer := newTimer()
	defer timer.stop()

	assert.False(t, timer.Cancel(TimerID(9999)))
}

func TestTimer_CancelAfterFiringReturnsFalse(t *testing.T) {
	timer := newTimer()
	defer timer.stop()

	fired := make(chan struct{})
	id := timer.Schedule(timer.Now(), func() { close(fired) })

	<-fired
	time.Sleep(10 * time.Millisecond)
	assert.False(t, timer.Cancel(id))
}

func TestCurrentTimer_LazySingletonAndStop(t *testing.T) {
	StopDefaultTimer()

	t1 := CurrentTimer()
	t2 := CurrentTimer()
	assert.Same(t, t1, t2)

	StopDefaultTimer()
	t3 := CurrentTimer()
	assert.NotSame(t, t1, t3)

	StopDefaultTimer()
}
