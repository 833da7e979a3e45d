// ABOUTME: Typed publish/subscribe bus used to fan out file activity events
// ABOUTME: Subscribers receive synchronous callbacks; unsubscribe via returned func

package eventbus

import "sync"

// Handler receives published events.
type Handler[T any] func(T)

// Bus fans events out to every registered handler. The zero value is not
// usable; construct with New.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[int]Handler[T]
	nextID int
}

// New returns an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]Handler[T])}
}

// Subscribe registers fn and returns a function that removes it again.
// The returned function is safe to call more than once.
func (b *Bus[T]) Subscribe(fn Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers event to every handler registered at the time of the
// call, synchronously and in no particular order. Handlers registered or
// removed during delivery take effect on the next Publish.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	fns := make([]Handler[T], 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	// The lock is released before callbacks run so a handler may
	// subscribe or unsubscribe without deadlocking.
	for _, fn := range fns {
		fn(event)
	}
}

// Count reports how many handlers are currently registered.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
