package wtman

import (
	"sync"
	"sync/atomic"
)

// DefaultSubscriberBuffer is the per-subscriber event buffer size.
const DefaultSubscriberBuffer = 256

// Event is one item delivered to a subscriber. Exactly one field is
// non-nil: an output chunk or the terminal status.
type Event struct {
	Chunk  *OutputChunk
	Status *StatusEvent
}

// Bus broadcasts output chunks and terminal status events for active
// executions. Delivery is per-subscriber buffered; when a subscriber falls
// behind, its oldest buffered chunks are dropped so the producing process
// is never blocked. There is no replay: a subscriber sees only what is
// published after it attaches.
type Bus struct {
	buffer int

	mu     sync.Mutex
	subs   map[string][]*Subscription
	active map[string]bool
}

// NewBus creates a bus with the given per-subscriber buffer size. A size of
// zero or less uses DefaultSubscriberBuffer.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[string][]*Subscription),
		active: make(map[string]bool),
	}
}

// Register opens a broadcast topic for an execution. Subscribe succeeds
// only between Register and Finish.
func (b *Bus) Register(id string) {
	b.mu.Lock()
	b.active[id] = true
	b.mu.Unlock()
}

// Subscribe attaches a new subscriber to an active execution. It returns
// ErrNotActive when the execution is unknown or already terminal.
func (b *Bus) Subscribe(id string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active[id] {
		return nil, ErrNotActive
	}
	sub := &Subscription{
		bus: b,
		id:  id,
		ch:  make(chan Event, b.buffer),
	}
	b.subs[id] = append(b.subs[id], sub)
	return sub, nil
}

// Publish broadcasts an output chunk to every subscriber of its execution.
// It never blocks.
func (b *Bus) Publish(chunk OutputChunk) {
	b.mu.Lock()
	subs := append([]*Subscription(nil), b.subs[chunk.ExecutionID]...)
	b.mu.Unlock()

	ev := Event{Chunk: &chunk}
	for _, sub := range subs {
		sub.send(ev)
	}
}

// Finish delivers the terminal status event and closes every subscription
// for the execution. The status event is enqueued at the expense of older
// chunks, never dropped. Further subscribes for the id fail.
func (b *Bus) Finish(status StatusEvent) {
	b.mu.Lock()
	subs := b.subs[status.ExecutionID]
	delete(b.subs, status.ExecutionID)
	delete(b.active, status.ExecutionID)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.send(Event{Status: &status})
		sub.shutdown()
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.id]
	for i, s := range list {
		if s == sub {
			b.subs[sub.id] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Subscription is one subscriber's view of an execution's event stream.
type Subscription struct {
	bus     *Bus
	id      string
	dropped atomic.Uint64

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// Events returns the receive channel. It is closed after the terminal
// status event has been delivered, or when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Dropped returns how many events were discarded because the subscriber
// fell behind.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close detaches the subscriber. Safe to call more than once and
// concurrently with delivery.
func (s *Subscription) Close() {
	s.bus.remove(s)
	s.shutdown()
}

// send enqueues an event, evicting the oldest buffered event when full.
// The per-subscription lock serializes senders, so the evict-retry loop
// always makes progress.
func (s *Subscription) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *Subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
