// apps/game-session/internal/coordinator/broker.go
//
// In-process fan-out of session events to SSE streams and Settle waiters.
// Subscribers are keyed by user; a subscriber whose buffer is full misses the
// event rather than stalling the coordinator loop.

package coordinator

import (
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 16

// Broker delivers each Event to the subscribers of Event.User.
type Broker struct {
	mu      sync.RWMutex
	subs    map[string]map[chan Event]struct{}
	dropped atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for user. The returned cancel removes it and is
// safe to call more than once.
func (b *Broker) Subscribe(user string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	set, ok := b.subs[user]
	if !ok {
		set = make(map[chan Event]struct{})
		b.subs[user] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() { once.Do(func() { b.remove(user, ch) }) }
}

func (b *Broker) remove(user string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[user]
	delete(set, ch)
	if len(set) == 0 {
		delete(b.subs, user)
	}
}

// Publish never blocks.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.User] {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped counts events lost to full subscriber buffers.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
