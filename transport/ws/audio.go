package ws

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/soundflow/soundflow-go"
)

// audioChannel maps the audio plane onto binary websocket frames, one
// encoded packet per frame.
type audioChannel struct {
	input  chan soundflow.Packet
	output chan<- wsMessage
	done   <-chan struct{}
}

func (ac *audioChannel) Write(pkt soundflow.Packet) error {
	select {
	case <-ac.done:
		return fmt.Errorf("transport closed")
	case ac.output <- wsMessage{mt: websocket.BinaryMessage, data: pkt.Encode()}:
		return nil
	}
}

func (ac *audioChannel) ReadChan() <-chan soundflow.Packet {
	return ac.input
}

// offer delivers an inbound packet without blocking the connection reader.
// Returns false when the queue is full and the packet was dropped.
func (ac *audioChannel) offer(pkt soundflow.Packet) bool {
	select {
	case ac.input <- pkt:
		return true
	default:
		return false
	}
}

func newAudioChannel(queueSize int, output chan<- wsMessage, done <-chan struct{}) *audioChannel {
	return &audioChannel{
		input:  make(chan soundflow.Packet, queueSize),
		output: output,
		done:   done,
	}
}

var _ soundflow.AudioChannel = &audioChannel{}
