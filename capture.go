package soundflow

import (
	"log/slog"
	"sync/atomic"
)

// CaptureSource turns raw input-device buffers into Packets. It is driven
// exclusively by the hardware callback: OnSamples is invoked by the device
// adapter with whatever buffer size the driver chose, slices it into
// packets of at most packageSize samples and offers each to the capture
// relay queue. A full queue drops the packet - blocking the hardware
// callback is never an option.
type CaptureSource struct {
	queue       *RelayQueue
	packageSize int
	logger      *slog.Logger
	drops       atomic.Uint64
}

func NewCaptureSource(queue *RelayQueue, packageSize int, logger *slog.Logger) *CaptureSource {
	return &CaptureSource{
		queue:       queue,
		packageSize: packageSize,
		logger:      logger.With(slog.String("component", "capture")),
	}
}

// OnSamples is the hardware callback entry point. The samples slice is
// owned by the driver and only valid for the duration of the call, so each
// chunk is copied into a fresh Packet.
func (c *CaptureSource) OnSamples(samples []float32) {
	Packet(samples).Chunks(c.packageSize, func(chunk []float32) {
		pkt := make(Packet, len(chunk))
		copy(pkt, chunk)
		if !c.queue.TryPush(pkt) {
			n := c.drops.Add(1)
			c.logger.Warn("capture queue full, dropping packet",
				slog.Int("samples", len(pkt)),
				slog.Uint64("dropped_total", n),
			)
		}
	})
}

// Drops reports how many packets were discarded because the capture queue
// was full.
func (c *CaptureSource) Drops() uint64 {
	return c.drops.Load()
}
