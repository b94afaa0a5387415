package soundflow

import (
	"context"
)

// DataChannel carries the control plane: JSON request/response/event
// envelopes.
type DataChannel interface {
	Write(data []byte) error
	ReadChan() <-chan []byte
}

// AudioChannel carries the audio plane: one Packet per frame, both
// directions. Writes hand the packet to the transport and must not block
// on the remote peer.
type AudioChannel interface {
	Write(pkt Packet) error
	ReadChan() <-chan Packet
}

// Transport is a bidirectional connection to one peer.
type Transport interface {
	// Closed is closed when the underlying connection is gone.
	Closed() <-chan struct{}

	Control() DataChannel
	Audio() AudioChannel

	Close(ctx context.Context) error
}

// TransportFactory creates the transport for an outgoing session.
type TransportFactory func(ctx context.Context) (Transport, error)

// Acceptor produces transports for incoming connections.
type Acceptor interface {
	Run(ctx context.Context) error
	Channel() <-chan Transport
	Shutdown(ctx context.Context) error
}
