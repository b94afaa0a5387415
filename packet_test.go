package soundflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketChunks(t *testing.T) {
	p := make(Packet, 2500)
	for i := range p {
		p[i] = float32(i)
	}

	var sizes []int
	p.Chunks(1000, func(chunk []float32) {
		sizes = append(sizes, len(chunk))
	})
	require.Equal(t, []int{1000, 1000, 500}, sizes)

	// chunks preserve order
	var first, last float32
	i := 0
	p.Chunks(1000, func(chunk []float32) {
		if i == 0 {
			first = chunk[0]
		}
		last = chunk[len(chunk)-1]
		i++
	})
	require.Equal(t, float32(0), first)
	require.Equal(t, float32(2499), last)
}

func TestPacketEncodeDecode(t *testing.T) {
	p := Packet{0, 1, -1, 0.5, 3.25}
	got, err := DecodePacket(p.Encode(), 1000)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestDecodePacketRejectsMalformed(t *testing.T) {
	_, err := DecodePacket(make([]byte, 7), 1000)
	require.Error(t, err)

	_, err = DecodePacket(make(Packet, 1001).Encode(), 1000)
	require.Error(t, err)

	p, err := DecodePacket(nil, 1000)
	require.NoError(t, err)
	require.Len(t, p, 0)
}
