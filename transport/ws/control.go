package ws

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/soundflow/soundflow-go"
)

type controlChannel struct {
	input  chan []byte
	output chan<- wsMessage
	done   <-chan struct{}
}

func (cc *controlChannel) Write(data []byte) error {
	select {
	case <-cc.done:
		return fmt.Errorf("transport closed")
	case cc.output <- wsMessage{mt: websocket.TextMessage, data: data}:
		return nil
	}
}

func (cc *controlChannel) ReadChan() <-chan []byte {
	return cc.input
}

func newControlChannel(output chan<- wsMessage, done <-chan struct{}) *controlChannel {
	return &controlChannel{
		input:  make(chan []byte, 16),
		output: output,
		done:   done,
	}
}

var _ soundflow.DataChannel = &controlChannel{}
