// Package bus is the in-process publish/subscribe channel that every view
// uses to learn about state changes.
//
// Dispatch is synchronous: Publish runs every handler that was subscribed to
// the topic when Publish was called, in subscription order, before it
// returns. Handlers subscribed during a dispatch do not see that dispatch.
// Handlers unsubscribed during a dispatch are skipped if they have not run
// yet. Nothing is buffered or replayed.
//
// Topics are typed so a handler can never receive a payload of the wrong
// shape:
//
//	var CartChanged = bus.NewTopic[CartChange]("cart-changed")
//
//	unsubscribe := bus.Subscribe(b, CartChanged, func(c CartChange) { ... })
//	defer unsubscribe()
//	bus.Publish(b, CartChanged, CartChange{Count: 1})
package bus

import (
	"sync"
)

// Topic names a channel carrying payloads of type T.
type Topic[T any] struct {
	name string
}

// NewTopic declares a typed topic.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the wire name of the topic.
func (t Topic[T]) Name() string {
	return t.name
}

type subscription struct {
	id      uint64
	handler func(any)
	active  bool
}

// Bus routes payloads to subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]*subscription
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers handler for topic and returns a function that removes
// it. The returned function is safe to call more than once.
func Subscribe[T any](b *Bus, topic Topic[T], handler func(T)) func() {
	if b == nil || handler == nil {
		return func() {}
	}
	sub := b.add(topic.name, func(payload any) {
		if v, ok := payload.(T); ok {
			handler(v)
		}
	})
	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic.name, sub) })
	}
}

// Publish delivers payload to the current subscribers of topic.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	if b == nil {
		return
	}
	b.dispatch(topic.name, payload)
}

// Len reports how many handlers are subscribed to the named topic.
func (b *Bus) Len(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Bus) add(topic string, handler func(any)) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string][]*subscription)
	}
	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, active: true}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub
}

func (b *Bus) remove(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target.active = false
	list := b.subs[topic]
	for i, sub := range list {
		if sub.id != target.id {
			continue
		}
		next := make([]*subscription, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, topic)
		} else {
			b.subs[topic] = next
		}
		return
	}
}

func (b *Bus) dispatch(topic string, payload any) {
	b.mu.Lock()
	snapshot := make([]*subscription, len(b.subs[topic]))
	copy(snapshot, b.subs[topic])
	b.mu.Unlock()

	for _, sub := range snapshot {
		if !b.isActive(sub) {
			continue
		}
		sub.handler(payload)
	}
}

func (b *Bus) isActive(sub *subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sub.active
}
