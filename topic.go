package eventq

import "sync"

// subscriptionControlBlock is the shared state behind one [Subscription]:
// which topic it is attached to (nil once unsubscribed), which queue
// deliveries run on, and the listener itself. A nil topic field, checked
// under mu both by [Topic.Publish]'s delivery task and by Unsubscribe
// itself, is what makes "no further delivery starts once Unsubscribe
// returns" true even though Publish may have already enqueued a delivery
// task for this subscriber before the unsubscribe happened.
type subscriptionControlBlock[T any] struct {
	mu       sync.Mutex
	topic    *Topic[T]
	q        *EventQueue
	listener func(T)
	id       string
}

// Topic is the broadcast point of a publish/subscribe channel of values of
// type T. Subscribers attach through its [Publication], obtained via
// [Topic.Publication]; only the owner of the Topic value can publish.
type Topic[T any] struct {
	mu            sync.Mutex
	subscriptions []*subscriptionControlBlock[T]
	publication   *Publication[T]
}

// Publication is the subscribe-only facet of a [Topic], handed out to
// components that should be able to listen but never publish.
type Publication[T any] struct {
	topic *Topic[T]
}

// NewTopic constructs an empty topic with no subscribers.
func NewTopic[T any]() *Topic[T] {
	t := &Topic[T]{}
	t.publication = &Publication[T]{topic: t}
	return t
}

// Publication returns the subscribe-only view of t.
func (t *Topic[T]) Publication() *Publication[T] {
	return t.publication
}

func (t *Topic[T]) add(block *subscriptionControlBlock[T]) {
	t.mu.Lock()
	t.subscriptions = append(t.subscriptions, block)
	t.mu.Unlock()
}

func (t *Topic[T]) remove(block *subscriptionControlBlock[T]) {
	t.mu.Lock()
	for i, b := range t.subscriptions {
		if b == block {
			t.subscriptions = append(t.subscriptions[:i], t.subscriptions[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
}

// Publish delivers value to every subscriber currently attached, each on
// its own subscribing queue, and returns a promise that resolves once all
// of those deliveries have completed. A subscriber that unsubscribed
// before its delivery task actually runs never has its listener invoked,
// even though the task was already enqueued at the time Publish took its
// snapshot of subscribers. Publish must be called from an EventQueue
// worker goroutine — the returned promise's own bookkeeping is enqueued on
// that queue, mirroring Topic::Publish's reliance on EventQueue::Get().
//
// Unlike Topic::ResolvePublishPromiseWhenRecipientsDone's hand-rolled
// recursive one-at-a-time chain (a workaround for the original language's
// lack of a heterogeneous-but-same-type fan-in), this resolves all
// deliveries concurrently via [ResolveAll], which is a more natural fit
// once delivery order no longer needs to be threaded through manually.
func (t *Topic[T]) Publish(value T) Promise[Empty] {
	q := CurrentEventQueue()
	if q == nil {
		fatal("Publish", "must be called from an EventQueue worker goroutine")
	}

	t.mu.Lock()
	subs := make([]*subscriptionControlBlock[T], len(t.subscriptions))
	copy(subs, t.subscriptions)
	t.mu.Unlock()

	completions := make([]AnyPromise, 0, len(subs))
	for _, block := range subs {
		block := block
		p, err := block.q.Enqueue(block.id, func() {
			block.mu.Lock()
			attached := block.topic != nil
			block.mu.Unlock()
			if !attached {
				return
			}
			block.listener(value)
		})
		if err != nil {
			// The subscriber's own queue has already finished; there is
			// no delivery to wait for, so it contributes nothing to the
			// fan-in rather than blocking Publish forever.
			continue
		}
		completions = append(completions, p)
	}

	return ResolveAll(q, "", completions...)
}

// Subscribe attaches listener to receive every value subsequently
// published on the underlying topic. Deliveries run as tasks on the
// calling goroutine's own queue (see [CurrentEventQueue]); Subscribe
// panics with a [ProgrammingError] if not called from an EventQueue worker
// goroutine. The returned [Subscription] must eventually be unsubscribed
// explicitly — there is no finalizer, per the Subscription lifetime
// decision recorded in DESIGN.md.
func (p *Publication[T]) Subscribe(id string, listener func(T)) Subscription[T] {
	q := CurrentEventQueue()
	if q == nil {
		fatal("Subscribe", "must be called from an EventQueue worker goroutine")
	}

	block := &subscriptionControlBlock[T]{
		topic:    p.topic,
		q:        q,
		listener: listener,
		id:       id,
	}
	p.topic.add(block)
	return Subscription[T]{block: block}
}

// Subscription represents one attachment to a [Topic], obtained from
// [Publication.Subscribe].
type Subscription[T any] struct {
	block *subscriptionControlBlock[T]
}

// Unsubscribe detaches the subscription. Once Unsubscribe returns, no
// delivery of this subscription's listener can begin that had not already
// begun — the guarantee [Topic.Publish] relies on to decide, under the
// same lock, whether an already-enqueued delivery task should still fire.
// Unsubscribe is idempotent: a second call is a no-op.
func (s Subscription[T]) Unsubscribe() {
	block := s.block
	block.mu.Lock()
	topic := block.topic
	block.topic = nil
	block.mu.Unlock()

	if topic != nil {
		topic.remove(block)
		block.q.logger.logDebug(categorySubscription, block.q.id, "subscription "+block.id+" removed")
	}
}
