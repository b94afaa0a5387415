package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundflow/soundflow-go"
)

// WebsocketTransport carries the control plane on text frames and the
// audio plane on binary frames of one websocket connection.
type WebsocketTransport struct {
	conn   *websocket.Conn
	config TransportConfig
	cc     *controlChannel
	ac     *audioChannel
	msgOut chan wsMessage
	done   chan struct{}
	logger *slog.Logger
}

func (w *WebsocketTransport) Closed() <-chan struct{} {
	return w.done
}

func (w *WebsocketTransport) Control() soundflow.DataChannel {
	return w.cc
}

func (w *WebsocketTransport) Audio() soundflow.AudioChannel {
	return w.ac
}

func (w *WebsocketTransport) Close(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case w.msgOut <- wsMessage{
		mt:   websocket.CloseMessage,
		data: websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Closed"),
	}:
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("close failed: %w", ctx.Err())
	case <-w.done:
		return nil
	}
}

func (w *WebsocketTransport) closeNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Close(ctx); err != nil {
		w.logger.Error("close failed", slog.Any("err", err))
	}
}

func (w *WebsocketTransport) processConnection(ctx context.Context) {
	defer func() {
		if err := w.conn.Close(); err != nil {
			w.logger.Debug("connection close failed", slog.Any("err", err))
		}
		w.logger.Debug("transport processing done")
	}()

	// read messages from the connection: text frames feed the control
	// channel, binary frames are decoded into packets
	go func() {
		defer close(w.done)
		defer close(w.ac.input)
		for {
			mt, data, err := w.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					w.logger.Debug("connection was closed by other peer", slog.Any("err", err))
				} else {
					w.logger.Error("read failed", slog.Any("err", err))
				}
				return
			}

			switch mt {
			case websocket.TextMessage:
				w.cc.input <- data
			case websocket.BinaryMessage:
				pkt, err := soundflow.DecodePacket(data, w.config.MaxPacketSamples)
				if err != nil {
					// degraded: skip the frame, keep the stream
					w.logger.Warn("skipping malformed packet frame", slog.Any("err", err))
					continue
				}
				if !w.ac.offer(pkt) {
					w.logger.Warn("inbound audio queue full, dropping packet", slog.Int("samples", len(pkt)))
				}
			}
		}
	}()

	pingTicker := time.NewTicker(5 * time.Second)
	defer pingTicker.Stop()
	for {
		select {
		case <-w.done:
			return

		case <-ctx.Done():
			w.closeNow()

		case <-pingTicker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(1*time.Second)); err != nil {
				w.logger.Debug("ping failed", slog.Any("err", err))
			}

		case msg := <-w.msgOut:
			if isControl(msg.mt) {
				if err := w.conn.WriteControl(msg.mt, msg.data, time.Now().Add(msg.controlTimeout())); err != nil {
					w.logger.Error("write control failed", slog.Any("err", err))
					return
				}
			} else {
				if err := w.conn.WriteMessage(msg.mt, msg.data); err != nil {
					w.logger.Error("write failed", slog.Any("err", err))
					return
				}
			}
		}
	}
}

var _ soundflow.Transport = &WebsocketTransport{}

func newTransport(conn *websocket.Conn, config TransportConfig, logger *slog.Logger) *WebsocketTransport {
	config.Defaults()

	conn.SetPingHandler(func(message string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(1*time.Second))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Timeout() {
			return nil
		}
		return err
	})

	conn.SetPongHandler(func(string) error {
		return nil
	})

	var (
		done   = make(chan struct{})
		msgOut = make(chan wsMessage, 16)
	)

	return &WebsocketTransport{
		conn:   conn,
		config: config,
		cc:     newControlChannel(msgOut, done),
		ac:     newAudioChannel(config.AudioQueueSize, msgOut, done),
		msgOut: msgOut,
		logger: logger,
		done:   done,
	}
}
