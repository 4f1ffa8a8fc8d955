// Package deadletter gives operators a diagnostic trail for messages the
// core silently drops by its sending discipline: once a destination
// node's connection is marked Failed, further sends to it are dropped
// rather than retried. The process-level contract is unchanged — the
// original sender only ever learns of the failure via a monitor — but
// every drop is also published here so tooling can observe it.
package deadletter

import (
	"time"

	"github.com/wyrefab/distproc/log"
)

// DefaultDeadletterQueueCapacity is the default per-subscriber buffer size.
const DefaultDeadletterQueueCapacity = 1_000

// Letter records one dropped send.
type Letter struct {
	// Destination is the string form of the identifier (ProcessID,
	// ChannelID, or NodeID) the send was addressed to.
	Destination string
	// Sender is the string form of the identifier of the process that
	// attempted the send, if known.
	Sender string
	// Reason explains why the send was dropped, e.g. "node disconnected".
	Reason string
	// Fingerprint is the wire type fingerprint of the dropped payload.
	Fingerprint uint64
	// SentAt is when the drop was recorded.
	SentAt time.Time
}

// Stream is the node-local deadletter broker. A Node owns exactly one
// Stream for its lifetime.
type Stream struct {
	queue  *queue
	logger log.Logger
}

// NewStream creates an instance of deadletter Stream.
func NewStream(opts ...Option) *Stream {
	stream := &Stream{
		queue:  newQueue(DefaultDeadletterQueueCapacity),
		logger: log.DefaultLogger,
	}
	for _, opt := range opts {
		opt.Apply(stream)
	}
	return stream
}

// Publish records a dropped send and fans it out to every subscriber.
func (s *Stream) Publish(letter Letter) {
	if letter.SentAt.IsZero() {
		letter.SentAt = time.Now()
	}
	s.logger.Debugf("deadletter: destination=(%s) reason=(%s)", letter.Destination, letter.Reason)
	s.queue.Publish(letter)
}

// Subscribe registers a new subscriber and returns its channel.
func (s *Stream) Subscribe() chan Letter {
	return s.queue.Subscribe()
}

// Unsubscribe removes the given subscriber.
func (s *Stream) Unsubscribe(ch chan Letter) {
	s.queue.Unsubscribe(ch)
}

// Close shuts down the stream and disconnects every subscriber.
func (s *Stream) Close() {
	s.queue.Shutdown()
}
