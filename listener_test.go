package eventq

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingEventListener struct {
	enqueued, dequeued, started, completed atomic.Int64
}

func (l *recordingEventListener) OnEnqueued()  { l.enqueued.Add(1) }
func (l *recordingEventListener) OnDequeued()  { l.dequeued.Add(1) }
func (l *recordingEventListener) OnStarted()   { l.started.Add(1) }
func (l *recordingEventListener) OnCompleted() { l.completed.Add(1) }

type recordingQueueListener struct {
	mu          sync.Mutex
	perEvent    *recordingEventListener
	dequeuedIDs []string
}

func (l *recordingQueueListener) OnEventEnqueued(id string) EventListener {
	return l.perEvent
}

func (l *recordingQueueListener) OnEventDequeued(id string) {
	l.mu.Lock()
	l.dequeuedIDs = append(l.dequeuedIDs, id)
	l.mu.Unlock()
}

func TestWithQueueListener_ObservesTaskLifecycle(t *testing.T) {
	ql := &recordingQueueListener{perEvent: &recordingEventListener{}}
	q := NewEventQueue("observed", WithQueueListener(ql))

	q.Enqueue("first", func() {})
	q.Finish()
	q.Join()

	assert.EqualValues(t, 1, ql.perEvent.enqueued.Load())
	assert.EqualValues(t, 1, ql.perEvent.dequeued.Load())
	assert.EqualValues(t, 1, ql.perEvent.started.Load())
	assert.EqualValues(t, 1, ql.perEvent.completed.Load())
	assert.Equal(t, []string{"first"}, ql.dequeuedIDs)
}

type recordingPromiseListener struct {
	resolved atomic.Bool
}

func (l *recordingPromiseListener) OnResolved() { l.resolved.Store(true) }

type recordingLifecycleListener struct {
	queueListener   *recordingQueueListener
	promiseListener *recordingPromiseListener
}

func (l *recordingLifecycleListener) OnEventQueueCreated(id string) EventQueueListener {
	return l.queueListener
}

func (l *recordingLifecycleListener) OnPromiseCreated(id string) PromiseListener {
	return l.promiseListener
}

func TestSetLifecycleListener_ObservesCreation(t *testing.T) {
	lc := &recordingLifecycleListener{
		queueListener:   &recordingQueueListener{perEvent: &recordingEventListener{}},
		promiseListener: &recordingPromiseListener{},
	}
	SetLifecycleListener(lc)
	defer SetLifecycleListener(nil)

	assert.Same(t, LifecycleListener(lc), CurrentLifecycleListener())

	q := NewEventQueue("from-lifecycle")
	defer func() {
		q.Finish()
		q.Join()
	}()

	q.Enqueue("task", func() {})

	assertEventually(t, func() bool {
		return lc.queueListener.perEvent.completed.Load() == 1
	})

	_, r := CreateResolver[int]("promise-from-lifecycle")
	r.Resolve(1)
	assertEventually(t, func() bool {
		return lc.promiseListener.resolved.Load()
	})
}

func assertEventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}
