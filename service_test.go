package soundflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundflow/soundflow-go"
	"github.com/soundflow/soundflow-go/device"
	"github.com/soundflow/soundflow-go/proto"
	"github.com/soundflow/soundflow-go/proto/flowv1"
	"github.com/soundflow/soundflow-go/transport/direct"
)

// serviceFixture runs a service and a connected client session over an
// in-process transport pair.
type serviceFixture struct {
	engine *device.FakeEngine
	svc    *soundflow.Service
	client *soundflow.Session
	shc    soundflow.SHC
}

func newServiceFixture(t *testing.T, devices ...device.Device) *serviceFixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	engine := device.NewFakeEngine(devices...)
	svc := soundflow.NewService(engine,
		soundflow.WithLogger(logger),
		soundflow.WithPackageSize(4),
		soundflow.WithQueueCapacity(8),
		soundflow.WithPollInterval(time.Millisecond),
	)
	require.NoError(t, svc.Open())

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	shcCh := make(chan soundflow.SHC, 1)
	clientHandler := soundflow.NewHandler(soundflow.HandlerConfig{
		OnBegin: func(_ context.Context, h soundflow.SHC) error {
			shcCh <- h
			return nil
		},
	})

	server, client := direct.NewTestSessions(svc.Handler(), clientHandler, soundflow.WithLogger(logger))
	go server.Run(ctx)
	go client.Run(ctx)

	t.Cleanup(func() {
		_ = client.CloseTimeout(time.Second)
		_ = server.CloseTimeout(time.Second)
		cancel()
		_ = svc.Close()
	})

	return &serviceFixture{
		engine: engine,
		svc:    svc,
		client: client,
		shc:    <-shcCh,
	}
}

func decodeResult[T any](t *testing.T, resp *proto.Response) *T {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return &out
}

func TestServiceDeviceList(t *testing.T) {
	f := newServiceFixture(t,
		device.Device{ID: 0, Name: "Built-in Audio"},
		device.Device{ID: 1, Name: "HDMI Output"},
	)

	resp, err := f.client.Request(context.Background(), &flowv1.DeviceListRequest{})
	require.NoError(t, err)

	res := decodeResult[flowv1.DeviceListResponse](t, resp)
	require.Len(t, res.Devices, 2)
	require.Equal(t, "Built-in Audio", res.Devices[0].Name)
	require.Equal(t, uint32(1), res.Devices[1].ID)
}

func TestServiceDeviceSet(t *testing.T) {
	f := newServiceFixture(t,
		device.Device{ID: 0, Name: "Built-in Audio"},
		device.Device{ID: 1, Name: "HDMI Output"},
	)

	_, err := f.client.Request(context.Background(), &flowv1.DeviceSetRequest{ID: 1})
	require.NoError(t, err)
	require.Equal(t, uint32(1), f.engine.Reg.Default().ID)
}

func TestServiceDeviceSetUnknown(t *testing.T) {
	f := newServiceFixture(t, device.Device{ID: 0, Name: "Built-in Audio"})

	_, err := f.client.Request(context.Background(), &flowv1.DeviceSetRequest{ID: 42})
	require.Error(t, err)

	var respErr *proto.ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, proto.ErrStatusNotFound, respErr.Code)

	// the failed request left the selection untouched
	require.Nil(t, f.engine.Reg.Default())
}

func TestServiceUnknownMethod(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.client.Request(context.Background(), unknownRequest{})
	require.Error(t, err)

	var respErr *proto.ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, proto.ErrNotImplemented, respErr.Code)
}

type unknownRequest struct{}

func (unknownRequest) MethodName() string { return "no.such.method" }

func TestServiceFlowSend(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.client.Request(context.Background(), &flowv1.FlowSendRequest{})
	require.NoError(t, err)

	require.NoError(t, f.shc.Audio().Write(soundflow.Packet{1, 2, 3, 4}))

	require.Eventually(t, func() bool {
		out := f.engine.RenderFrame(4)
		return out[0] == 1 && out[3] == 4
	}, time.Second, time.Millisecond)
}

func TestServiceFlowGet(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.client.Request(context.Background(), &flowv1.FlowGetRequest{})
	require.NoError(t, err)

	// the input driver delivers a frame; it must arrive on the client's
	// audio channel via the broadcaster
	f.engine.CaptureFrame([]float32{5, 6, 7, 8})

	select {
	case pkt := <-f.shc.Audio().ReadChan():
		require.Equal(t, soundflow.Packet{5, 6, 7, 8}, pkt)
	case <-time.After(time.Second):
		t.Fatal("no packet received")
	}
}

func TestServicePing(t *testing.T) {
	f := newServiceFixture(t)

	t0 := time.Now().UnixMilli()
	resp, err := f.client.Request(context.Background(), flowv1.NewPingRequest(nil))
	require.NoError(t, err)

	res := decodeResult[flowv1.PingResponse](t, resp)
	require.GreaterOrEqual(t, res.T1, t0)
	require.Equal(t, res.T1-res.T0, res.OWD)
}

func TestServiceOpenFailsWithoutCapture(t *testing.T) {
	engine := device.NewFakeEngine()
	engine.FailCapture = true

	svc := soundflow.NewService(engine, soundflow.WithLogger(slog.New(slog.DiscardHandler)))
	require.Error(t, svc.Open())
}
