package deadletter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	t.Run("With Publication/Subscription", func(t *testing.T) {
		// create an instance of stream
		stream := NewStream()
		require.NotNil(t, stream)

		// create a subscriber
		sub := stream.Subscribe()

		// create two dead letters to publish
		dl1 := Letter{Destination: "pid-1", Reason: "node disconnected"}
		dl2 := Letter{Destination: "pid-2", Reason: "node disconnected"}

		// publish the dead letters
		stream.Publish(dl1)
		stream.Publish(dl2)

		// shutdown the stream
		stream.Close()

		var items []Letter
		for entry := range sub {
			items = append(items, entry)
		}

		require.Len(t, items, 2)
		require.Equal(t, dl1.Destination, items[0].Destination)
		require.Equal(t, dl2.Destination, items[1].Destination)
	})
	t.Run("With Publication/Unsubscription", func(t *testing.T) {
		// create an instance of stream
		stream := NewStream()
		require.NotNil(t, stream)
		defer stream.Close()

		// create a subscriber
		sub := stream.Subscribe()
		// create two dead letters to publish
		dl1 := Letter{Destination: "pid-1", Reason: "node disconnected"}
		dl2 := Letter{Destination: "pid-2", Reason: "node disconnected"}

		// publish the dead letters
		stream.Publish(dl1)
		stream.Publish(dl2)

		stream.Unsubscribe(sub)

		var items []Letter
		for entry := range sub {
			items = append(items, entry)
		}

		require.Len(t, items, 2)
		require.Equal(t, dl1.Destination, items[0].Destination)
		require.Equal(t, dl2.Destination, items[1].Destination)
	})
}
