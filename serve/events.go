package serve

import (
	"sync"

	"github.com/claudiup423/dominator/eval"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls this far behind starts dropping events; the persisted
// evaluation record remains authoritative.
const subscriberBuffer = 16

// Broadcaster fans evaluation events out to HTTP stream subscribers.
// Safe for concurrent use.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan eval.Event]struct{}
	closed bool
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan eval.Event]struct{})}
}

// Publish delivers an event to every subscriber without blocking.
// Events to slow subscribers are dropped.
func (b *Broadcaster) Publish(ev eval.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel. The
// caller must Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan eval.Event {
	ch := make(chan eval.Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan eval.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan eval.Event]struct{})
}
