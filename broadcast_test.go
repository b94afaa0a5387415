package soundflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBroadcastFanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewRelayQueue(8)
	b := NewBroadcaster(q, 8, time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Close()
	defer s2.Close()

	require.True(t, q.TryPush(Packet{1}))
	require.True(t, q.TryPush(Packet{2}))

	for _, sub := range []*Subscriber{s1, s2} {
		require.Equal(t, Packet{1}, <-sub.C())
		require.Equal(t, Packet{2}, <-sub.C())
	}

	cancel()
	<-done
}

func TestBroadcastLaggedSubscriberLosesOldest(t *testing.T) {
	q := NewRelayQueue(8)
	b := NewBroadcaster(q, 2, time.Millisecond, discardLogger())

	slow := b.Subscribe()
	defer slow.Close()

	// nobody reads: the third packet evicts the first
	b.publish(Packet{1})
	b.publish(Packet{2})
	b.publish(Packet{3})

	require.Equal(t, Packet{2}, <-slow.C())
	require.Equal(t, Packet{3}, <-slow.C())
	require.Equal(t, uint64(1), slow.Lags())
}

func TestBroadcastSlowSubscriberDoesNotStallFast(t *testing.T) {
	q := NewRelayQueue(8)
	b := NewBroadcaster(q, 2, time.Millisecond, discardLogger())

	fast := b.Subscribe()
	slow := b.Subscribe()
	defer fast.Close()
	defer slow.Close()

	for i := 0; i < 5; i++ {
		b.publish(Packet{float32(i)})
		require.Equal(t, Packet{float32(i)}, <-fast.C())
	}

	// the fast subscriber saw everything, the slow one only kept the tail
	require.Zero(t, fast.Lags())
	require.Equal(t, uint64(3), slow.Lags())
	require.Equal(t, Packet{3}, <-slow.C())
	require.Equal(t, Packet{4}, <-slow.C())
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	q := NewRelayQueue(8)
	b := NewBroadcaster(q, 2, time.Millisecond, discardLogger())

	sub := b.Subscribe()
	sub.Close()
	sub.Close()

	_, ok := <-sub.C()
	require.False(t, ok)

	// publishing after unsubscribe is a no-op
	b.publish(Packet{1})
}
