package soundflow

// RelayQueue is a bounded FIFO of Packets bridging the hardware callback
// domain and the async domain. Push and pop never block: when the queue is
// full the incoming packet is rejected and the caller decides what to do
// (the capture and ingest paths drop it and log). One producer and one
// consumer per direction.
type RelayQueue struct {
	c chan Packet
}

func NewRelayQueue(capacity int) *RelayQueue {
	return &RelayQueue{c: make(chan Packet, capacity)}
}

// TryPush enqueues p without blocking. Returns false if the queue is full,
// in which case p was not enqueued and the queue is unchanged.
func (q *RelayQueue) TryPush(p Packet) bool {
	select {
	case q.c <- p:
		return true
	default:
		return false
	}
}

// TryPop dequeues the oldest packet without blocking. Returns nil, false
// when the queue is empty.
func (q *RelayQueue) TryPop() (Packet, bool) {
	select {
	case p := <-q.c:
		return p, true
	default:
		return nil, false
	}
}

// Len reports the number of queued packets.
func (q *RelayQueue) Len() int {
	return len(q.c)
}

// Cap reports the queue capacity.
func (q *RelayQueue) Cap() int {
	return cap(q.c)
}
