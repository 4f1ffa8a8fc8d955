package deadletter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := newQueue(10)
	require.NotNil(t, q)

	// create a subscriber
	sub := q.Subscribe()

	dl1 := Letter{Destination: "pid-1", Reason: "node disconnected"}
	dl2 := Letter{Destination: "pid-2", Reason: "node disconnected"}

	q.Publish(dl1)
	q.Publish(dl2)

	q.Shutdown()

	var items []Letter
	for entry := range sub {
		items = append(items, entry)
	}

	require.Len(t, items, 2)
	require.Equal(t, dl1, items[0])
	require.Equal(t, dl2, items[1])
}
