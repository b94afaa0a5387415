package soundflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func filled(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestPlaybackShortPacketLeavesRemainder(t *testing.T) {
	q := NewRelayQueue(8)
	s := NewPlaybackSink(q, 8, discardLogger())

	require.True(t, q.TryPush(Packet{1, 2, 3}))

	out := filled(8, 9)
	s.Fill(out)
	require.Equal(t, []float32{1, 2, 3, 9, 9, 9, 9, 9}, out)
	require.Zero(t, s.Underruns())
}

func TestPlaybackUnderrunIsSilence(t *testing.T) {
	q := NewRelayQueue(8)
	s := NewPlaybackSink(q, 4, discardLogger())

	out := filled(4, 7)
	s.Fill(out)
	require.Equal(t, []float32{0, 0, 0, 0}, out)
	require.Equal(t, uint64(1), s.Underruns())
}

func TestPlaybackLongPacketTruncates(t *testing.T) {
	q := NewRelayQueue(8)
	s := NewPlaybackSink(q, 2, discardLogger())

	require.True(t, q.TryPush(Packet{1, 2, 3, 4}))
	require.True(t, q.TryPush(Packet{5, 6}))

	out := make([]float32, 4)
	s.Fill(out)
	// one packet per chunk; the packet tail beyond the chunk is lost
	require.Equal(t, []float32{1, 2, 5, 6}, out)
}

// End-to-end over the playback relay queue: a 500-sample packet followed by
// a 1000-sample packet, pulled by two 1000-sample callbacks.
func TestPlaybackEndToEnd(t *testing.T) {
	q := NewRelayQueue(128)
	in := NewIngest(q, discardLogger())
	s := NewPlaybackSink(q, 1000, discardLogger())

	in.Push(Packet(filled(500, 1.0)))
	in.Push(Packet(filled(1000, 0.5)))

	pull1 := filled(1000, 9)
	s.Fill(pull1)
	require.Equal(t, filled(500, 1.0), pull1[:500])
	require.Equal(t, filled(500, 9), pull1[500:])

	pull2 := make([]float32, 1000)
	s.Fill(pull2)
	require.Equal(t, filled(1000, 0.5), pull2)
}
