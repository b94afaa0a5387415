package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundflow/soundflow-go"
)

type ClientConfig struct {
	Dial      DialConfig
	Transport TransportConfig
}

func (c *ClientConfig) Defaults() {
	c.Dial.Defaults()
	c.Transport.Defaults()
}

type DialConfig struct {
	URL            string
	ConnectTimeout time.Duration
	Headers        http.Header
}

func (d *DialConfig) Defaults() {
	if d.ConnectTimeout == 0 {
		d.ConnectTimeout = 10 * time.Second
	}
}

func (d *DialConfig) doDial(ctx context.Context, compression bool) (*websocket.Conn, *http.Response, error) {
	d.Defaults()

	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, nil, err
	}

	header := http.Header{}
	for k, v := range d.Headers {
		for _, vv := range v {
			header.Add(k, vv)
		}
	}

	dialer := *websocket.DefaultDialer
	dialer.EnableCompression = compression

	dialCtx, cancel := context.WithTimeout(ctx, d.ConnectTimeout)
	defer cancel()
	return dialer.DialContext(dialCtx, u.String(), header)
}

// Connect dials the websocket endpoint and returns a running transport.
func Connect(ctx context.Context, config ClientConfig) (*WebsocketTransport, error) {
	config.Defaults()

	logger := slog.Default().With(
		slog.String("transport", "websocket"),
		slog.String("component", "ws-client"),
		slog.String("endpoint", config.Dial.URL),
	)

	conn, resp, err := config.Dial.doDial(ctx, config.Transport.EnableCompression)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	logger = logger.With(slog.String("remote_addr", conn.RemoteAddr().String()))
	logger.Debug("websocket connection established")

	t := newTransport(conn, config.Transport, logger)

	ok := make(chan struct{})
	go func() {
		ok <- struct{}{}
		t.processConnection(ctx)
	}()
	<-ok

	return t, nil
}

// Client returns a transport factory dialing with the given config.
func Client(config ClientConfig) soundflow.TransportFactory {
	return func(ctx context.Context) (soundflow.Transport, error) {
		return Connect(ctx, config)
	}
}
