package eventstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBrokerSubscribe(t *testing.T) {
	broker := New()
	t.Cleanup(broker.Shutdown)

	sub := broker.AddSubscriber()
	require.NotNil(t, sub)
	broker.Subscribe(sub, "orders")
	broker.Subscribe(sub, "payments")

	require.EqualValues(t, 1, broker.SubscribersCount("orders"))
	require.EqualValues(t, 1, broker.SubscribersCount("payments"))

	broker.RemoveSubscriber(sub)
	require.Zero(t, broker.SubscribersCount("orders"))
	require.Zero(t, broker.SubscribersCount("payments"))

	// a removed subscriber can't re-subscribe.
	broker.Subscribe(sub, "refunds")
	require.Zero(t, broker.SubscribersCount("refunds"))
}

func TestBrokerUnsubscribe(t *testing.T) {
	broker := New()
	t.Cleanup(broker.Shutdown)

	sub := broker.AddSubscriber()
	require.NotNil(t, sub)
	broker.Subscribe(sub, "orders")
	broker.Subscribe(sub, "payments")
	require.EqualValues(t, 1, broker.SubscribersCount("orders"))
	require.EqualValues(t, 1, broker.SubscribersCount("payments"))

	broker.Unsubscribe(sub, "orders")
	require.Zero(t, broker.SubscribersCount("orders"))
	require.EqualValues(t, 1, broker.SubscribersCount("payments"))

	// the subscriber is still live, so it can pick up a new topic.
	broker.Subscribe(sub, "refunds")
	require.EqualValues(t, 1, broker.SubscribersCount("refunds"))

	broker.RemoveSubscriber(sub)
	broker.Subscribe(sub, "shipping")
	require.Zero(t, broker.SubscribersCount("shipping"))
}

func TestBrokerPublish(t *testing.T) {
	broker := New()
	t.Cleanup(broker.Shutdown)

	sub := broker.AddSubscriber()
	require.NotNil(t, sub)
	broker.Subscribe(sub, "orders")
	broker.Subscribe(sub, "payments")

	broker.Publish("orders", "order-created")
	broker.Publish("payments", "payment-settled")
	time.Sleep(time.Second)

	var received []*Message
	for msg := range sub.Iterator() {
		received = append(received, msg)
	}

	require.Len(t, received, 2)
	require.Len(t, sub.Topics(), 2)
}

func TestBrokerBroadcast(t *testing.T) {
	broker := New()
	t.Cleanup(broker.Shutdown)

	sub := broker.AddSubscriber()
	require.NotNil(t, sub)
	broker.Subscribe(sub, "orders")
	broker.Subscribe(sub, "payments")

	broker.Broadcast("maintenance-window", []string{"orders", "payments"})
	time.Sleep(time.Second)

	var received []*Message
	for msg := range sub.Iterator() {
		received = append(received, msg)
	}

	require.Len(t, received, 2)
	require.Len(t, sub.Topics(), 2)
}
