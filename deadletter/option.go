package deadletter

import "github.com/wyrefab/distproc/log"

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(stream *Stream)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(stream *Stream)

func (f OptionFunc) Apply(stream *Stream) {
	f(stream)
}

// WithLogger sets the custom log
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(stream *Stream) {
		stream.logger = logger
	})
}

// WithCapacity specifies a fixed per-subscriber channel capacity.
func WithCapacity(capacity int) Option {
	return OptionFunc(func(stream *Stream) {
		stream.queue = newQueue(capacity)
	})
}
