package broker

import (
	"errors"
	"sync"
)

var ErrBrokerClosed = errors.New("broker is closed")

type localSubscription struct {
	id      uint64
	pattern string
	handler Handler
}

// LocalBroker is an in-process bus with NATS subject semantics. Handlers run on
// the publisher's goroutine and must not block.
type LocalBroker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]localSubscription
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[uint64]localSubscription)}
}

func (b *LocalBroker) Publish(subject, key string, data []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBrokerClosed
	}
	var matched []Handler
	for _, sub := range b.subs {
		if subjectMatches(sub.pattern, subject) {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	msg := Message{Subject: subject, Key: key, Data: data}
	for _, h := range matched {
		h(msg)
	}
	return nil
}

func (b *LocalBroker) Subscribe(subject string, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = localSubscription{id: id, pattern: subject, handler: handler}

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}, nil
}

func (b *LocalBroker) Close() {
	b.mu.Lock()
	b.closed = true
	b.subs = make(map[uint64]localSubscription)
	b.mu.Unlock()
}
