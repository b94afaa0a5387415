package soundflow

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCaptureSplitsIntoPackets(t *testing.T) {
	q := NewRelayQueue(8)
	c := NewCaptureSource(q, 1000, discardLogger())

	samples := make([]float32, 2500)
	for i := range samples {
		samples[i] = float32(i)
	}
	c.OnSamples(samples)

	var got []Packet
	for {
		p, ok := q.TryPop()
		if !ok {
			break
		}
		got = append(got, p)
	}

	require.Len(t, got, 3)
	require.Len(t, got[0], 1000)
	require.Len(t, got[1], 1000)
	require.Len(t, got[2], 500)
	require.Equal(t, float32(0), got[0][0])
	require.Equal(t, float32(1000), got[1][0])
	require.Equal(t, float32(2499), got[2][499])
	require.Zero(t, c.Drops())
}

func TestCapturePacketsOwnTheirSamples(t *testing.T) {
	q := NewRelayQueue(8)
	c := NewCaptureSource(q, 4, discardLogger())

	buf := []float32{1, 2, 3, 4}
	c.OnSamples(buf)
	buf[0] = 99 // driver reuses its buffer

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1, 2, 3, 4}, p)
}

func TestCaptureDropsWhenQueueFull(t *testing.T) {
	q := NewRelayQueue(2)
	c := NewCaptureSource(q, 2, discardLogger())

	c.OnSamples([]float32{1, 1, 2, 2, 3, 3})
	require.Equal(t, uint64(1), c.Drops())

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{1, 1}, p)

	p, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, Packet{2, 2}, p)
}
