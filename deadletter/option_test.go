package deadletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wyrefab/distproc/log"
)

func TestOptions(t *testing.T) {
	testCases := []struct {
		name   string
		option Option
		check  func(t *testing.T, s *Stream)
	}{
		{
			name:   "WithLogger",
			option: WithLogger(log.DefaultLogger),
			check: func(t *testing.T, s *Stream) {
				assert.Equal(t, log.DefaultLogger, s.logger)
			},
		},
		{
			name:   "WithCapacity",
			option: WithCapacity(10),
			check: func(t *testing.T, s *Stream) {
				assert.Equal(t, 10, s.queue.capacity)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Stream{queue: newQueue(DefaultDeadletterQueueCapacity)}
			tc.option.Apply(cfg)
			tc.check(t, cfg)
		})
	}
}
