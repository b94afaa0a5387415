package soundflow

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultPackageSize is the maximum number of samples carried by a
	// single Packet. Not too small to avoid per-packet overhead, not too
	// large to keep per-packet latency bounded.
	DefaultPackageSize = 1000

	// DefaultQueueCapacity is the capacity of the relay queues bridging
	// the hardware callbacks and the async domain.
	DefaultQueueCapacity = 128

	// DefaultBroadcastCapacity is the per-subscriber delivery queue size.
	DefaultBroadcastCapacity = 128

	// DefaultPollInterval is how long the broadcaster sleeps when the
	// capture queue is empty.
	DefaultPollInterval = 10 * time.Millisecond
)

// Packet is the unit of audio exchanged across all boundaries: an ordered
// sequence of float32 samples, at most PackageSize long. Packets carry no
// timestamp or sequence number - ordering is queue order and dropped
// packets manifest as brief silence, never as corruption.
type Packet []float32

const sampleSize = 4 // float32 little-endian on the wire

// Chunks calls fn for each slice of p of at most size samples, in order.
func (p Packet) Chunks(size int, fn func(chunk []float32)) {
	for len(p) > 0 {
		n := min(size, len(p))
		fn(p[:n])
		p = p[n:]
	}
}

// Encode serializes the packet as little-endian float32 samples.
func (p Packet) Encode() []byte {
	data := make([]byte, len(p)*sampleSize)
	for i, s := range p {
		binary.LittleEndian.PutUint32(data[i*sampleSize:], math.Float32bits(s))
	}
	return data
}

// DecodePacket parses a binary frame into a Packet. Frames which are not a
// whole number of samples or exceed maxSamples are rejected; callers skip
// such frames and keep the stream going.
func DecodePacket(data []byte, maxSamples int) (Packet, error) {
	if len(data)%sampleSize != 0 {
		return nil, fmt.Errorf("packet frame of %d bytes is not a whole number of samples", len(data))
	}
	n := len(data) / sampleSize
	if n > maxSamples {
		return nil, fmt.Errorf("packet of %d samples exceeds maximum of %d", n, maxSamples)
	}
	p := make(Packet, n)
	for i := range p {
		p[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*sampleSize:]))
	}
	return p, nil
}
