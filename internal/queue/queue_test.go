package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueuePushPopOrdering(t *testing.T) {
	q := New[int]()

	for round := 0; round < 50; round++ {
		require.Zero(t, q.Len())
		_, ok := q.Pop()
		require.False(t, ok)

		for i := 0; i < round; i++ {
			require.True(t, q.Push(i))
		}
		for i := 0; i < round; i++ {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, v)
		}
	}
}

func TestQueueGrowsAndShrinks(t *testing.T) {
	q := New[int]()
	for i := 0; i < 200; i++ {
		require.True(t, q.Push(i))
	}
	require.Equal(t, 200, q.Len())
	require.GreaterOrEqual(t, q.Cap(), 200)

	for i := 0; i < 190; i++ {
		_, ok := q.Pop()
		require.True(t, ok)
	}
	require.Equal(t, 10, q.Len())
}

func TestQueueWait(t *testing.T) {
	q := New[int]()
	require.True(t, q.Push(1))
	require.True(t, q.Push(2))

	v, ok := q.Wait()
	require.True(t, ok)
	require.Equal(t, 1, v)

	done := make(chan struct{})
	go func() {
		v, ok := q.Wait()
		require.True(t, ok)
		require.Equal(t, 2, v)
		close(done)
	}()
	<-done
}

func TestQueueClose(t *testing.T) {
	q := New[int]()
	require.True(t, q.Push(1))
	require.True(t, q.Push(2))

	q.Close()
	require.True(t, q.IsClosed())
	require.Zero(t, q.Len())
	require.Zero(t, q.Cap())
	require.False(t, q.Push(3))

	_, ok := q.Wait()
	require.False(t, ok)
}

func TestQueueCloseRemaining(t *testing.T) {
	q := New[string]()
	require.True(t, q.Push("a"))
	require.True(t, q.Push("b"))
	require.True(t, q.Push("c"))

	remaining := q.CloseRemaining()
	require.Equal(t, []string{"a", "b", "c"}, remaining)
	require.True(t, q.IsClosed())
	require.Nil(t, q.CloseRemaining())
}

func TestQueueIsEmpty(t *testing.T) {
	q := New[int]()
	require.True(t, q.IsEmpty())
	q.Push(1)
	require.False(t, q.IsEmpty())
}
