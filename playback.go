package soundflow

import (
	"log/slog"
	"sync/atomic"
)

// PlaybackSink feeds the output device from the playback relay queue. It is
// driven by the hardware callback: Fill is invoked with the buffer the
// driver wants filled and must complete without blocking. Per chunk of at
// most packageSize samples one packet is popped; a short packet overwrites
// only its prefix and the chunk remainder keeps whatever the buffer already
// held. An empty queue is an underrun and the chunk is zeroed out.
type PlaybackSink struct {
	queue       *RelayQueue
	packageSize int
	logger      *slog.Logger
	underruns   atomic.Uint64
}

func NewPlaybackSink(queue *RelayQueue, packageSize int, logger *slog.Logger) *PlaybackSink {
	return &PlaybackSink{
		queue:       queue,
		packageSize: packageSize,
		logger:      logger.With(slog.String("component", "playback")),
	}
}

// Fill is the hardware callback entry point.
func (s *PlaybackSink) Fill(out []float32) {
	Packet(out).Chunks(s.packageSize, func(chunk []float32) {
		pkt, ok := s.queue.TryPop()
		if !ok {
			s.underruns.Add(1)
			for i := range chunk {
				chunk[i] = 0
			}
			return
		}
		copy(chunk, pkt)
	})
}

// Underruns reports how many output chunks were filled with silence because
// no packet was available.
func (s *PlaybackSink) Underruns() uint64 {
	return s.underruns.Load()
}
