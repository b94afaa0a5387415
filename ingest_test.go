package soundflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestIngestDrainsStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewRelayQueue(8)
	in := NewIngest(q, discardLogger())

	packets := make(chan Packet, 4)
	packets <- Packet{1}
	packets <- Packet{2}
	close(packets)

	in.Run(context.Background(), packets)

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1}, p)

	p, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{2}, p)
	require.Zero(t, in.Drops())
}

func TestIngestDropsWhenQueueFull(t *testing.T) {
	q := NewRelayQueue(1)
	in := NewIngest(q, discardLogger())

	in.Push(Packet{1})
	in.Push(Packet{2})
	require.Equal(t, uint64(1), in.Drops())

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1}, p)
}

func TestIngestStopsOnContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewRelayQueue(8)
	in := NewIngest(q, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in.Run(ctx, make(chan Packet))
}
