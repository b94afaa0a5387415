package soundflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soundflow/soundflow-go/proto"
)

// Broadcaster drains the capture relay queue on a polling loop and fans
// every packet out to all current subscribers. Each subscriber owns a
// bounded delivery queue: one that cannot keep up has its oldest unread
// packets dropped, it never slows the broadcaster or any other subscriber
// down.
type Broadcaster struct {
	queue        *RelayQueue
	pollInterval time.Duration
	capacity     int
	logger       *slog.Logger

	mu   sync.Mutex
	subs map[string]*Subscriber
}

func NewBroadcaster(queue *RelayQueue, capacity int, pollInterval time.Duration, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		queue:        queue,
		pollInterval: pollInterval,
		capacity:     capacity,
		logger:       logger.With(slog.String("component", "broadcast")),
		subs:         make(map[string]*Subscriber),
	}
}

// Subscribe registers a new subscriber receiving every packet published
// from now on. The subscriber must be closed when no longer consumed.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: proto.ID(),
		c:  make(chan Packet, b.capacity),
		b:  b,
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	n := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("subscribed", slog.String("subscriber_id", sub.id), slog.Int("subscribers", n))
	return sub
}

func (b *Broadcaster) unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.c)
	}
	n := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("unsubscribed", slog.String("subscriber_id", sub.id), slog.Int("subscribers", n))
}

// publish delivers pkt to every subscriber without ever blocking. A full
// delivery queue loses its oldest packet to make room for the new one.
func (b *Broadcaster) publish(pkt Packet) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.c <- pkt:
			continue
		default:
		}

		// lagged reader: evict the oldest unread packet
		select {
		case <-sub.c:
			sub.lags.Add(1)
		default:
		}
		select {
		case sub.c <- pkt:
		default:
		}
	}
}

// Run polls the capture queue until ctx is cancelled. An empty queue
// suspends the loop for the poll interval, bounding CPU while keeping
// latency well under typical packet durations.
func (b *Broadcaster) Run(ctx context.Context) {
	b.logger.Debug("running", slog.Duration("poll_interval", b.pollInterval))
	for {
		pkt, ok := b.queue.TryPop()
		if ok {
			b.publish(pkt)
			continue
		}

		select {
		case <-ctx.Done():
			b.logger.Debug("stopped")
			return
		case <-time.After(b.pollInterval):
		}
	}
}

// Subscriber is one reader of the broadcast feed.
type Subscriber struct {
	id   string
	c    chan Packet
	b    *Broadcaster
	once sync.Once
	lags atomic.Uint64
}

// ID returns the subscriber id.
func (s *Subscriber) ID() string {
	return s.id
}

// C is the delivery channel. It is closed when the subscriber is closed.
func (s *Subscriber) C() <-chan Packet {
	return s.c
}

// Lags reports how many packets this subscriber lost by falling behind.
func (s *Subscriber) Lags() uint64 {
	return s.lags.Load()
}

// Close removes the subscriber from the broadcast.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.b.unsubscribe(s)
	})
}
