// Package direct provides an in-process transport pair, mainly for tests.
package direct

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundflow/soundflow-go"
)

type dcc struct {
	in     chan []byte
	out    chan []byte
	closed <-chan struct{}
}

func (d *dcc) Write(data []byte) error {
	select {
	case <-d.closed:
		return fmt.Errorf("transport closed")
	case d.out <- data:
		return nil
	}
}

func (d *dcc) ReadChan() <-chan []byte {
	return d.in
}

var _ soundflow.DataChannel = &dcc{}

type dac struct {
	in     chan soundflow.Packet
	out    chan soundflow.Packet
	closed <-chan struct{}
}

func (d *dac) Write(pkt soundflow.Packet) error {
	select {
	case <-d.closed:
		return fmt.Errorf("transport closed")
	case d.out <- pkt:
		return nil
	}
}

func (d *dac) ReadChan() <-chan soundflow.Packet {
	return d.in
}

var _ soundflow.AudioChannel = &dac{}

type directTransport struct {
	cc     *dcc
	ac     *dac
	closed chan struct{}
	once   sync.Once
	peer   *directTransport
}

func (d *directTransport) Closed() <-chan struct{} {
	return d.closed
}

func (d *directTransport) Control() soundflow.DataChannel {
	return d.cc
}

func (d *directTransport) Audio() soundflow.AudioChannel {
	return d.ac
}

func (d *directTransport) Close(_ context.Context) error {
	// closing one end closes both, like tearing down a connection
	d.once.Do(func() {
		close(d.closed)
	})
	if d.peer != nil {
		d.peer.once.Do(func() {
			close(d.peer.closed)
		})
	}
	return nil
}

var _ soundflow.Transport = &directTransport{}

// NewPair creates two connected in-process transports.
func NewPair() (soundflow.Transport, soundflow.Transport) {
	var (
		ctlAB = make(chan []byte, 32)
		ctlBA = make(chan []byte, 32)
		audAB = make(chan soundflow.Packet, 128)
		audBA = make(chan soundflow.Packet, 128)
	)

	a := &directTransport{
		cc:     &dcc{in: ctlBA, out: ctlAB},
		ac:     &dac{in: audBA, out: audAB},
		closed: make(chan struct{}),
	}
	b := &directTransport{
		cc:     &dcc{in: ctlAB, out: ctlBA},
		ac:     &dac{in: audAB, out: audBA},
		closed: make(chan struct{}),
	}
	a.peer, b.peer = b, a
	a.cc.closed, a.ac.closed = a.closed, a.closed
	b.cc.closed, b.ac.closed = b.closed, b.closed

	return a, b
}

// NewTestSessions creates two sessions connected back to back.
func NewTestSessions(ha, hb soundflow.SessionHandler, opts ...soundflow.Option) (*soundflow.Session, *soundflow.Session) {
	ta, tb := NewPair()

	sa := soundflow.NewSession(func(ctx context.Context) (soundflow.Transport, error) {
		return ta, nil
	}, ha, opts...)
	sb := soundflow.NewSession(func(ctx context.Context) (soundflow.Transport, error) {
		return tb, nil
	}, hb, opts...)

	return sa, sb
}
