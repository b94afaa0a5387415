package ws

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundflow/soundflow-go"
)

func TestClientServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer(ServerConfig{
		Addr: "127.0.0.1:0",
	})
	require.NoError(t, srv.Run(ctx))
	defer srv.Shutdown(context.Background())

	clientTransport, err := Connect(ctx, ClientConfig{
		Dial: DialConfig{URL: fmt.Sprintf("ws://127.0.0.1:%d", srv.Port())},
	})
	require.NoError(t, err)

	var serverTransport soundflow.Transport
	select {
	case serverTransport = <-srv.Channel():
	case <-ctx.Done():
		t.Fatal("no server transport")
	}

	// control message round trip
	require.NoError(t, clientTransport.Control().Write([]byte(`{"version":"1"}`)))
	select {
	case data := <-serverTransport.Control().ReadChan():
		require.JSONEq(t, `{"version":"1"}`, string(data))
	case <-ctx.Done():
		t.Fatal("no control message")
	}

	// audio packet round trip, server to client
	require.NoError(t, serverTransport.Audio().Write(soundflow.Packet{1, 2, 3}))
	select {
	case pkt := <-clientTransport.Audio().ReadChan():
		require.Equal(t, soundflow.Packet{1, 2, 3}, pkt)
	case <-ctx.Done():
		t.Fatal("no audio packet")
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	require.NoError(t, clientTransport.Close(closeCtx))

	// the peer observes the close
	select {
	case <-serverTransport.Closed():
	case <-ctx.Done():
		t.Fatal("server transport not closed")
	}
}

func TestMalformedAudioFrameIsSkipped(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer(ServerConfig{
		Addr:      "127.0.0.1:0",
		Transport: TransportConfig{MaxPacketSamples: 4},
	})
	require.NoError(t, srv.Run(ctx))
	defer srv.Shutdown(context.Background())

	clientTransport, err := Connect(ctx, ClientConfig{
		Dial: DialConfig{URL: fmt.Sprintf("ws://127.0.0.1:%d", srv.Port())},
	})
	require.NoError(t, err)
	defer clientTransport.Close(context.Background())

	serverTransport := <-srv.Channel()

	// oversized, then valid: the stream survives the bad frame
	require.NoError(t, clientTransport.Audio().Write(soundflow.Packet{1, 2, 3, 4, 5}))
	require.NoError(t, clientTransport.Audio().Write(soundflow.Packet{1, 2}))

	select {
	case pkt := <-serverTransport.Audio().ReadChan():
		require.Equal(t, soundflow.Packet{1, 2}, pkt)
	case <-ctx.Done():
		t.Fatal("no audio packet")
	}
}
