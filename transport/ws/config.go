package ws

import (
	"github.com/soundflow/soundflow-go"
)

// TransportConfig tunes one websocket transport.
type TransportConfig struct {
	// MaxPacketSamples is the largest packet accepted from the wire.
	// Larger binary frames are skipped, the stream continues.
	MaxPacketSamples int

	// AudioQueueSize is the inbound packet queue of the transport. A full
	// queue drops new inbound packets rather than stalling the reader.
	AudioQueueSize int

	// EnableCompression negotiates permessage-deflate on the connection.
	EnableCompression bool
}

func (c *TransportConfig) Defaults() {
	if c.MaxPacketSamples == 0 {
		c.MaxPacketSamples = soundflow.DefaultPackageSize
	}
	if c.AudioQueueSize == 0 {
		c.AudioQueueSize = soundflow.DefaultQueueCapacity
	}
}
