package catalog

import (
	"slices"
	"sync"
	"time"
)

// Snapshot is the full, immutable set of rows of one entity kind as of one successful refresh.
// Generation increases by one with every refresh of the owning DataModel.
type Snapshot[T Entity] struct {
	items       []T
	generation  uint64
	refreshedAt time.Time
}

// BuildSnapshot creates a Snapshot owning a private copy of items.
func BuildSnapshot[T Entity](items []T, generation uint64, refreshedAt time.Time) Snapshot[T] {
	return Snapshot[T]{
		items:       slices.Clone(items),
		generation:  generation,
		refreshedAt: refreshedAt,
	}
}

// Items returns a copy of the snapshot's entities. Nested slices and book pointers are shared
// with the snapshot and must be treated as read-only.
func (s Snapshot[T]) Items() []T {
	if s.items == nil {
		return []T{}
	}

	return slices.Clone(s.items)
}

// Len returns the number of entities.
func (s Snapshot[T]) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the snapshot holds no entities.
func (s Snapshot[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Generation returns the refresh generation that produced this snapshot; 0 means never refreshed.
func (s Snapshot[T]) Generation() uint64 {
	return s.generation
}

// RefreshedAt returns when the snapshot was loaded.
func (s Snapshot[T]) RefreshedAt() time.Time {
	return s.refreshedAt
}

// Kind returns the entity kind of the snapshot.
func (s Snapshot[T]) Kind() Kind {
	return KindOf[T]()
}

// IsStaleAt reports whether the snapshot must be reloaded at now: it is empty or older than ttl.
func (s Snapshot[T]) IsStaleAt(now time.Time, ttl time.Duration) bool {
	return s.IsEmpty() || now.Sub(s.refreshedAt) > ttl
}

// Publisher broadcasts whole snapshots to subscribers with latest-value semantics:
// a slow subscriber only ever misses intermediate snapshots, it never sees a partial one.
type Publisher[T Entity] struct {
	mu          sync.Mutex
	latest      *Snapshot[T]
	subscribers map[uint64]chan Snapshot[T]
	nextID      uint64
}

// NewPublisher creates a Publisher without subscribers.
func NewPublisher[T Entity]() *Publisher[T] {
	return &Publisher[T]{
		subscribers: make(map[uint64]chan Snapshot[T]),
	}
}

// Publish delivers the snapshot to every subscriber, replacing any snapshot not yet received.
// Publish never blocks on a subscriber.
func (p *Publisher[T]) Publish(s Snapshot[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = &s

	for _, ch := range p.subscribers {
		offerLatest(ch, s)
	}
}

// Subscribe registers a subscriber. The channel has a capacity of one and immediately holds the
// latest snapshot if one was published. The returned cancel function unregisters the subscriber
// and closes the channel; it is safe to call more than once.
func (p *Publisher[T]) Subscribe() (<-chan Snapshot[T], func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++

	ch := make(chan Snapshot[T], 1)
	if p.latest != nil {
		ch <- *p.latest
	}

	p.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()

			delete(p.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}

// Latest returns the last published snapshot, if any.
func (p *Publisher[T]) Latest() (Snapshot[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.latest == nil {
		return Snapshot[T]{}, false
	}

	return *p.latest, true
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher[T]) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.subscribers)
}

// offerLatest must only be called while holding the publisher lock, which makes it the only sender.
func offerLatest[T Entity](ch chan Snapshot[T], s Snapshot[T]) {
	select {
	case ch <- s:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	ch <- s
}
