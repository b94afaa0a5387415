package soundflow

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Ingest drains one inbound packet stream into the playback relay queue,
// applying the same drop-on-full policy as the capture side. One instance
// per inbound stream; it exits when the stream ends or ctx is cancelled and
// never reconnects - that is the caller's business. Multiple concurrent
// ingests share the playback queue and interleave without exclusion.
type Ingest struct {
	queue  *RelayQueue
	logger *slog.Logger
	drops  atomic.Uint64
}

func NewIngest(queue *RelayQueue, logger *slog.Logger) *Ingest {
	return &Ingest{
		queue:  queue,
		logger: logger.With(slog.String("component", "ingest")),
	}
}

// Run consumes packets until the channel closes or ctx is cancelled.
func (in *Ingest) Run(ctx context.Context, packets <-chan Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-packets:
			if !ok {
				in.logger.Debug("inbound stream ended")
				return
			}
			in.Push(pkt)
		}
	}
}

// Push offers a single packet to the playback queue, dropping it when the
// queue is full.
func (in *Ingest) Push(pkt Packet) {
	if !in.queue.TryPush(pkt) {
		n := in.drops.Add(1)
		in.logger.Warn("playback queue full, dropping packet",
			slog.Int("samples", len(pkt)),
			slog.Uint64("dropped_total", n),
		)
	}
}

// Drops reports how many inbound packets were discarded because the
// playback queue was full.
func (in *Ingest) Drops() uint64 {
	return in.drops.Load()
}
