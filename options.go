package eventq

import "github.com/joeycumines/logiface"

// queueOptions holds the resolved configuration for a newly constructed
// [EventQueue] or [Process].
type queueOptions struct {
	logger         *logiface.Logger[logiface.Event]
	queueListener  EventQueueListener
	metricsEnabled bool
}

// QueueOption configures an [EventQueue] (or [Process]) at construction
// time, mirroring the teacher's LoopOption/loopOptionImpl functional-
// options pattern.
type QueueOption interface {
	applyQueue(*queueOptions)
}

type queueOptionFunc func(*queueOptions)

func (f queueOptionFunc) applyQueue(o *queueOptions) { f(o) }

// WithLogger attaches a structured logger, used to record recovered
// panics from user callbacks and low-volume lifecycle events. Without it,
// such events are silently discarded.
func WithLogger(logger *logiface.Logger[logiface.Event]) QueueOption {
	return queueOptionFunc(func(o *queueOptions) {
		o.logger = logger
	})
}

// WithQueueListener attaches an [EventQueueListener] directly to the
// queue being constructed, as an alternative to routing through the
// single process-wide [LifecycleListener] slot (see [SetLifecycleListener]).
// If both are present, both are notified; the directly-attached listener's
// hooks run first.
func WithQueueListener(l EventQueueListener) QueueOption {
	return queueOptionFunc(func(o *queueOptions) {
		o.queueListener = l
	})
}

// WithMetrics enables or disables counter collection on the queue. Disabled
// by default.
func WithMetrics(enabled bool) QueueOption {
	return queueOptionFunc(func(o *queueOptions) {
		o.metricsEnabled = enabled
	})
}

// resolveQueueOptions applies opts over the zero-value defaults, skipping
// nil entries so a caller can pass a conditionally-nil option without an
// extra branch.
func resolveQueueOptions(opts []QueueOption) *queueOptions {
	cfg := &queueOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyQueue(cfg)
	}
	return cfg
}
