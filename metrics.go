package eventq

import "sync/atomic"

// QueueMetrics is a point-in-time snapshot of an [EventQueue]'s counters.
// All fields are zero unless the queue was constructed with
// [WithMetrics](true); collection adds minimal overhead (a handful of
// atomic increments per task) when enabled, and none when disabled,
// matching the teacher's "inert until opted in" design for its own
// metrics.go.
type QueueMetrics struct {
	TasksEnqueued  int64
	TasksStarted   int64
	TasksCompleted int64
	TasksPanicked  int64
}

// queueCounters holds the live atomic counters backing QueueMetrics.
// A nil *queueCounters (the default, when metrics are disabled) makes
// every increment a no-op via the nil-receiver guards below, so hot-path
// call sites never need to branch on whether metrics are enabled.
type queueCounters struct {
	enqueued  atomic.Int64
	started   atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

func (c *queueCounters) incEnqueued() {
	if c != nil {
		c.enqueued.Add(1)
	}
}

func (c *queueCounters) incStarted() {
	if c != nil {
		c.started.Add(1)
	}
}

func (c *queueCounters) incCompleted() {
	if c != nil {
		c.completed.Add(1)
	}
}

func (c *queueCounters) incPanicked() {
	if c != nil {
		c.panicked.Add(1)
	}
}

func (c *queueCounters) snapshot() QueueMetrics {
	if c == nil {
		return QueueMetrics{}
	}
	return QueueMetrics{
		TasksEnqueued:  c.enqueued.Load(),
		TasksStarted:   c.started.Load(),
		TasksCompleted: c.completed.Load(),
		TasksPanicked:  c.panicked.Load(),
	}
}

// Metrics returns a snapshot of this queue's counters. The result is
// always the zero value unless the queue was created with
// [WithMetrics](true).
func (q *EventQueue) Metrics() QueueMetrics {
	return q.counters.snapshot()
}
