package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrefab/distproc/wire"
)

func encode(t *testing.T, v any) wire.Message {
	t.Helper()
	m, err := wire.Encode(v)
	require.NoError(t, err)
	return m
}

// TestSelectiveReceiveLeavesOthersInPlace puts "a":String, 7:Int,
// "b":String in the mailbox and checks that a receive for an Int returns
// 7 and leaves "a", "b" behind in their original order.
func TestSelectiveReceiveLeavesOthersInPlace(t *testing.T) {
	q := New()
	q.Push(encode(t, "a"))
	q.Push(encode(t, 7))
	q.Push(encode(t, "b"))

	value, matched, err := q.Receive(NonBlocking(), Match(func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, 7, value)

	first, matched, err := q.Receive(NonBlocking(), Match(func(v string) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "a", first)

	second, matched, err := q.Receive(NonBlocking(), Match(func(v string) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "b", second)
}

func TestNonBlockingReturnsImmediatelyWhenEmpty(t *testing.T) {
	q := New()
	_, matched, err := q.Receive(NonBlocking(), Match(func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestTimeoutZeroNeverBlocks(t *testing.T) {
	q := New()
	start := time.Now()
	_, matched, err := q.Receive(Timeout(0), Match(func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestBlockingWakesOnPush(t *testing.T) {
	q := New()
	done := make(chan any, 1)
	go func() {
		v, matched, err := q.Receive(Blocking(), Match(func(v int) (any, error) { return v, nil }))
		if err != nil || !matched {
			done <- nil
			return
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(encode(t, 99))

	select {
	case v := <-done:
		assert.Equal(t, 99, v)
	case <-time.After(time.Second):
		t.Fatal("receive never woke up")
	}
}

func TestMatchIfSkipsNonMatchingPredicate(t *testing.T) {
	q := New()
	q.Push(encode(t, 1))
	q.Push(encode(t, 2))

	v, matched, err := q.Receive(NonBlocking(), MatchIf(func(v int) bool { return v == 2 }, func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, 2, v)

	// 1 remains, still at the head.
	v, matched, err = q.Receive(NonBlocking(), Match(func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, 1, v)
}

func TestMatchAnyDropsUnknownMessage(t *testing.T) {
	q := New()
	q.Push(encode(t, "unrecognized"))
	q.Push(encode(t, 5))

	dropped := false
	v, matched, err := q.Receive(NonBlocking(),
		Match(func(v int) (any, error) { return v, nil }),
		MatchAny(func(wire.Message) (any, error) { dropped = true; return nil, nil }),
	)
	require.NoError(t, err)
	require.True(t, matched)
	assert.True(t, dropped)
	assert.Nil(t, v)

	// the int is now at the head and the wildcard already consumed the string.
	v, matched, err = q.Receive(NonBlocking(), Match(func(v int) (any, error) { return v, nil }))
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, 5, v)
	assert.Equal(t, 0, q.Len())
}

func TestDecodeFailureRemovesPoisonMessage(t *testing.T) {
	q := New()
	bad := wire.Message{Fingerprint: wire.FingerprintOf(0), Payload: []byte("not gob")}
	q.Push(bad)

	_, matched, err := q.Receive(NonBlocking(), Match(func(v int) (any, error) { return v, nil }))
	require.Error(t, err)
	require.True(t, matched)
	assert.Equal(t, 0, q.Len())
}
