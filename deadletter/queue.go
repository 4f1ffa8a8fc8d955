package deadletter

import "sync"

// queue defines the deadletter queue.
// There should be a single deadletter queue per node.
//
// It is a single-topic channel fan-out — a multi-topic engine is more
// than a node-local diagnostic stream needs.
type queue struct {
	subs     map[chan Letter]struct{}
	capacity int
	sem      sync.Mutex
}

// newQueue creates an instance of queue
func newQueue(capacity int) *queue {
	if capacity <= 0 {
		capacity = DefaultDeadletterQueueCapacity
	}
	return &queue{
		subs:     make(map[chan Letter]struct{}),
		capacity: capacity,
	}
}

// Publish publishes a deadletter. A subscriber whose channel is full never
// blocks the publisher: the letter is dropped for that subscriber only,
// since the stream is diagnostic, not a delivery guarantee.
func (x *queue) Publish(letter Letter) {
	// acquire the lock
	x.sem.Lock()
	// release the lock
	defer x.sem.Unlock()
	for ch := range x.subs {
		select {
		case ch <- letter:
		default:
		}
	}
}

// Subscribe to the deadletters queue
func (x *queue) Subscribe() chan Letter {
	// acquire the lock
	x.sem.Lock()
	// release the lock
	defer x.sem.Unlock()
	ch := make(chan Letter, x.capacity)
	x.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe the given subscriber
func (x *queue) Unsubscribe(ch chan Letter) {
	// acquire the lock
	x.sem.Lock()
	// release the lock
	defer x.sem.Unlock()
	if _, ok := x.subs[ch]; ok {
		delete(x.subs, ch)
		close(ch)
	}
}

// Shutdown shuts down the queue
func (x *queue) Shutdown() {
	// acquire the lock
	x.sem.Lock()
	// release the lock
	defer x.sem.Unlock()
	for ch := range x.subs {
		close(ch)
	}
	x.subs = make(map[chan Letter]struct{})
}
