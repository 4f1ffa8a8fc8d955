// Package mailbox implements the per-process CQueue: an unbounded FIFO of
// wire.Message values that supports selective receive. A
// receive call walks the queue head to tail, trying an ordered list of
// Matchers against each message; the first match removes that message and
// leaves every earlier, skipped message in place.
package mailbox

import (
	"sync"
	"time"

	"github.com/wyrefab/distproc/wire"
)

// Handler is produced by a Matcher once it accepts a message. It decodes
// and runs the user callback; it is invoked outside the mailbox lock so
// that user code is free to send or receive without risking deadlock.
type Handler func() (any, error)

// Matcher is a Message -> Option<Handler>: it inspects a message and
// either declines (false) or returns a Handler to run.
//
// Matchers must be pure: trying the same Matcher twice against the same
// message must return the same verdict. Blocking receive relies on this to
// avoid re-scanning messages it has already rejected.
type Matcher interface {
	tryMatch(msg wire.Message) (Handler, bool)
}

type typedMatcher[T any] struct {
	fp   wire.Fingerprint
	pred func(T) bool
	fn   func(T) (any, error)
}

func (m typedMatcher[T]) tryMatch(msg wire.Message) (Handler, bool) {
	if msg.Fingerprint != m.fp {
		return nil, false
	}
	var value T
	if err := wire.Decode(msg, &value); err != nil {
		// The fingerprint matched but the bytes didn't decode: a
		// programmer error. This is still a match, so the
		// poison message is removed rather than left to jam every future
		// receive; the error propagates to the caller, who terminates
		// the process with Exception(description).
		return func() (any, error) { return nil, err }, true
	}
	if m.pred != nil && !m.pred(value) {
		return nil, false
	}
	return func() (any, error) { return m.fn(value) }, true
}

// Match accepts the first queued message whose fingerprint is T's, decodes
// it, and runs fn.
func Match[T any](fn func(T) (any, error)) Matcher {
	return typedMatcher[T]{fp: wire.FingerprintOf(*new(T)), fn: fn}
}

// MatchIf is Match with an additional predicate evaluated on the decoded
// value; a false predicate leaves the message in the queue for a later
// matcher or a later receive call.
func MatchIf[T any](pred func(T) bool, fn func(T) (any, error)) Matcher {
	return typedMatcher[T]{fp: wire.FingerprintOf(*new(T)), pred: pred, fn: fn}
}

type wildcardMatcher struct {
	fn func(wire.Message) (any, error)
}

func (w wildcardMatcher) tryMatch(msg wire.Message) (Handler, bool) {
	return func() (any, error) { return w.fn(msg) }, true
}

// MatchAny always matches the message it is tried against, regardless of
// fingerprint. It is the only way to drop a message of unknown type from
// the queue; a common fn is one that discards the message
// and returns (nil, nil).
func MatchAny(fn func(wire.Message) (any, error)) Matcher {
	return wildcardMatcher{fn: fn}
}

type blockKind uint8

const (
	blockForever blockKind = iota
	blockNone
	blockTimeout
)

// BlockMode selects how Receive behaves when nothing in the queue matches.
type BlockMode struct {
	kind    blockKind
	timeout time.Duration
}

// Blocking parks the caller until a newly arrived message matches.
func Blocking() BlockMode { return BlockMode{kind: blockForever} }

// NonBlocking returns immediately if nothing matches right now.
func NonBlocking() BlockMode { return BlockMode{kind: blockNone} }

// Timeout is like Blocking but gives up, returning no match, after d.
func Timeout(d time.Duration) BlockMode { return BlockMode{kind: blockTimeout, timeout: d} }

type entry struct {
	msg        wire.Message
	prev, next *entry
}

// CQueue is the unbounded, selective-receive mailbox. The zero value is not
// usable; construct with New. A CQueue is written by many goroutines (any
// sender) and read by one; Push is safe from any goroutine,
// Receive is only meant to be called by the owning process's goroutine,
// though nothing here enforces single-reader discipline beyond that
// expectation.
type CQueue struct {
	mu         sync.Mutex
	head, tail *entry
	length     int
	waitCh     chan struct{}
}

// New creates an empty CQueue.
func New() *CQueue {
	return &CQueue{waitCh: make(chan struct{})}
}

// Push appends msg to the tail and wakes any receiver blocked in Receive.
func (q *CQueue) Push(msg wire.Message) {
	q.mu.Lock()
	e := &entry{msg: msg, prev: q.tail}
	if q.tail != nil {
		q.tail.next = e
	} else {
		q.head = e
	}
	q.tail = e
	q.length++
	wake := q.waitCh
	q.waitCh = make(chan struct{})
	q.mu.Unlock()
	close(wake)
}

// Len reports the number of queued, unmatched messages.
func (q *CQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

func (q *CQueue) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.tail = e.prev
	}
	q.length--
}

// Receive walks the queue for a message matching one of matchers, in
// order, following mode's blocking policy. It returns the Handler's result
// (value, err) and matched=true on a hit; matched=false with a nil err
// means no message matched before NonBlocking returned immediately or
// Timeout expired.
func (q *CQueue) Receive(mode BlockMode, matchers ...Matcher) (value any, matched bool, err error) {
	var timer *time.Timer
	var deadline <-chan time.Time
	if mode.kind == blockTimeout {
		timer = time.NewTimer(mode.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var scanned *entry // last entry examined and rejected, across wait cycles
	for {
		q.mu.Lock()
		waitCh := q.waitCh
		var cur *entry
		if scanned == nil {
			cur = q.head
		} else {
			cur = scanned.next
		}
		for cur != nil {
			next := cur.next
			if h, ok := tryAll(matchers, cur.msg); ok {
				q.unlink(cur)
				q.mu.Unlock()
				v, herr := h()
				return v, true, herr
			}
			scanned = cur
			cur = next
		}
		q.mu.Unlock()

		switch mode.kind {
		case blockNone:
			return nil, false, nil
		case blockForever:
			<-waitCh
		case blockTimeout:
			select {
			case <-waitCh:
			case <-deadline:
				return nil, false, nil
			}
		}
	}
}

func tryAll(matchers []Matcher, msg wire.Message) (Handler, bool) {
	for _, m := range matchers {
		if h, ok := m.tryMatch(msg); ok {
			return h, true
		}
	}
	return nil, false
}
