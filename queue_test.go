package soundflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayQueueFIFO(t *testing.T) {
	q := NewRelayQueue(4)

	require.True(t, q.TryPush(Packet{1}))
	require.True(t, q.TryPush(Packet{2}))
	require.Equal(t, 2, q.Len())

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1}, p)

	p, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{2}, p)

	_, ok = q.TryPop()
	require.False(t, ok)
}

func TestRelayQueueFullDropsIncoming(t *testing.T) {
	q := NewRelayQueue(2)

	require.True(t, q.TryPush(Packet{1}))
	require.True(t, q.TryPush(Packet{2}))
	require.False(t, q.TryPush(Packet{3}))

	// the queued packets are untouched, the rejected one is gone
	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1}, p)

	p, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{2}, p)

	_, ok = q.TryPop()
	require.False(t, ok)
}
