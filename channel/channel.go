// Package channel implements typed, unidirectional channels: newChan returns a serializable SendPort[T] and a non-serializable
// ReceivePort[T]. ReceivePorts compose via mergePortsBiased and
// mergePortsRR into a tree that receiveChan selects across atomically.
package channel

import (
	"reflect"
	"sync"

	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
)

// SendPort is the serializable write end of a typed channel. It carries
// only the ChannelID; sending through it is implemented by package process,
// which has the local node context needed to route to a remote owner.
type SendPort[T any] struct {
	ID id.ChannelID
}

// queue is the unbounded FIFO backing a Single ReceivePort. Values are
// pushed by whatever delivers to the owning process (a local sendChan call,
// or the node controller routing an inbound frame by ChannelID).
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	waitCh chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{waitCh: make(chan struct{})}
}

func (q *queue[T]) push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	wake := q.waitCh
	q.waitCh = make(chan struct{})
	q.mu.Unlock()
	close(wake)
}

func (q *queue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

func (q *queue[T]) wait() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waitCh
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type portKind uint8

const (
	kindSingle portKind = iota
	kindLeftBiased
	kindRoundRobin
)

// inFlight is shared by every ReceivePort in one merge tree (the root and
// every constituent). Only one receive may be in progress anywhere in the
// tree at a time: concurrent consumption of a merged port and one of its
// constituents is forbidden, and inFlight is what enforces that.
type inFlight struct {
	mu   sync.Mutex
	busy bool
}

func (f *inFlight) acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return errors.ErrConcurrentReceive
	}
	f.busy = true
	return nil
}

func (f *inFlight) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// ReceivePort is the non-serializable read end of a typed channel, or a
// merge of several. It must stay on the process that created it.
type ReceivePort[T any] struct {
	kind     portKind
	q        *queue[T]
	children []*ReceivePort[T]
	rrNext   int
	shared   *inFlight
}

// NewChan creates a typed channel and returns its two ends. id is supplied
// by the caller (package process assigns it from the owning process's
// channel counter).
func NewChan[T any](chID id.ChannelID) (SendPort[T], *ReceivePort[T]) {
	return SendPort[T]{ID: chID}, &ReceivePort[T]{
			kind:   kindSingle,
			q:      newQueue[T](),
			shared: &inFlight{},
		}
}

// deliver is how package process feeds a value into a Single ReceivePort's
// backing queue, whether it arrived from a local sendChan call or was
// routed in by the node controller from a remote connection.
func (r *ReceivePort[T]) deliver(v T) {
	if r.kind != kindSingle {
		panic("channel: deliver called on a merged ReceivePort")
	}
	r.q.push(v)
}

// Deliver is the exported form of deliver, used by package process/node to
// feed an inbound value into the channel identified at construction time.
func (r *ReceivePort[T]) Deliver(v T) { r.deliver(v) }

// mergePortsBiased and mergePortsRR require their children to share the
// same in-flight guard as the merged parent, so consuming the parent and
// a constituent concurrently is detected regardless of which is tried
// first.
func sharedGuard[T any](ports []*ReceivePort[T]) *inFlight {
	for _, p := range ports {
		if p.shared != nil {
			return p.shared
		}
	}
	return &inFlight{}
}

// MergeBiased builds a ReceivePort that, on every receive, tries ports in
// list order and takes the first one with a value ready.
func MergeBiased[T any](ports ...*ReceivePort[T]) *ReceivePort[T] {
	g := sharedGuard(ports)
	for _, p := range ports {
		p.shared = g
	}
	return &ReceivePort[T]{kind: kindLeftBiased, children: ports, shared: g}
}

// MergeRR builds a ReceivePort that, after each successful receive, rotates
// the child list by one so the next receive starts from the following
// child.
func MergeRR[T any](ports ...*ReceivePort[T]) *ReceivePort[T] {
	g := sharedGuard(ports)
	for _, p := range ports {
		p.shared = g
	}
	return &ReceivePort[T]{kind: kindRoundRobin, children: ports, shared: g}
}

// tryOnce performs one non-blocking scan for a value, returning the wait
// channels of every empty leaf it visited so the caller can select on all
// of them before retrying.
func (r *ReceivePort[T]) tryOnce() (T, bool, []<-chan struct{}) {
	switch r.kind {
	case kindSingle:
		v, ok := r.q.tryPop()
		if ok {
			return v, true, nil
		}
		return v, false, []<-chan struct{}{r.q.wait()}
	case kindLeftBiased:
		var waits []<-chan struct{}
		for _, child := range r.children {
			v, ok, w := child.tryOnce()
			if ok {
				return v, true, nil
			}
			waits = append(waits, w...)
		}
		var zero T
		return zero, false, waits
	case kindRoundRobin:
		var waits []<-chan struct{}
		n := len(r.children)
		for i := 0; i < n; i++ {
			idx := (r.rrNext + i) % n
			child := r.children[idx]
			v, ok, w := child.tryOnce()
			if ok {
				r.rrNext = (idx + 1) % n
				return v, true, nil
			}
			waits = append(waits, w...)
		}
		var zero T
		return zero, false, waits
	}
	var zero T
	return zero, false, nil
}

// Receive atomically selects across the port (or its merged tree): it never
// loses a message to a spurious wakeup and never needs to re-check ports
// it already found empty once new data is pending on any of them.
func (r *ReceivePort[T]) Receive() (T, error) {
	if err := r.shared.acquire(); err != nil {
		var zero T
		return zero, err
	}
	defer r.shared.release()

	for {
		v, ok, waits := r.tryOnce()
		if ok {
			return v, nil
		}
		waitAny(waits)
	}
}

// waitAny blocks until any of the given channels is closed. Go has no
// static select over a dynamically sized channel set, so this uses
// reflect.Select rather than spawning a goroutine per channel, which would
// otherwise leak one per call for every leaf that never fires again.
func waitAny(chans []<-chan struct{}) {
	switch len(chans) {
	case 0:
		return
	case 1:
		<-chans[0]
	default:
		cases := make([]reflect.SelectCase, len(chans))
		for i, c := range chans {
			cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(c)}
		}
		reflect.Select(cases)
	}
}
