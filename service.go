package soundflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundflow/soundflow-go/device"
	"github.com/soundflow/soundflow-go/proto"
	"github.com/soundflow/soundflow-go/proto/flowv1"
)

// Service is the sound flow service: it owns the two relay queues bridging
// the hardware callbacks and the async domain, the capture/playback
// endpoints and the broadcaster, and serves the flow protocol to sessions.
type Service struct {
	logger *slog.Logger
	engine device.Engine

	captureQueue  *RelayQueue
	playbackQueue *RelayQueue
	capture       *CaptureSource
	sink          *PlaybackSink
	broadcaster   *Broadcaster

	captureStream  device.Stream
	playbackStream device.Stream
}

// NewService wires the streaming pipeline. The queues and the broadcaster
// live for the lifetime of the service; nothing is global.
func NewService(engine device.Engine, opts ...Option) *Service {
	o := newOptions(opts...)

	captureQueue := NewRelayQueue(o.queueCapacity)
	playbackQueue := NewRelayQueue(o.queueCapacity)

	return &Service{
		logger:        o.logger.With(slog.String("component", "service")),
		engine:        engine,
		captureQueue:  captureQueue,
		playbackQueue: playbackQueue,
		capture:       NewCaptureSource(captureQueue, o.packageSize, o.logger),
		sink:          NewPlaybackSink(playbackQueue, o.packageSize, o.logger),
		broadcaster:   NewBroadcaster(captureQueue, o.broadcastCapacity, o.pollInterval, o.logger),
	}
}

// Open opens and starts both hardware endpoints. A failure here is fatal:
// without its devices the service cannot fulfil its purpose.
func (s *Service) Open() error {
	captureStream, err := s.engine.OpenCapture(s.capture.OnSamples)
	if err != nil {
		return fmt.Errorf("open capture device: %w", err)
	}

	playbackStream, err := s.engine.OpenPlayback(s.sink.Fill)
	if err != nil {
		_ = captureStream.Close()
		return fmt.Errorf("open playback device: %w", err)
	}

	if err := captureStream.Start(); err != nil {
		_ = captureStream.Close()
		_ = playbackStream.Close()
		return fmt.Errorf("start capture stream: %w", err)
	}
	if err := playbackStream.Start(); err != nil {
		_ = captureStream.Stop()
		_ = captureStream.Close()
		_ = playbackStream.Close()
		return fmt.Errorf("start playback stream: %w", err)
	}

	s.captureStream = captureStream
	s.playbackStream = playbackStream
	s.logger.Info("audio endpoints open")
	return nil
}

// Run runs the broadcaster poll loop until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.broadcaster.Run(ctx)
}

// Close stops and releases the hardware streams.
func (s *Service) Close() error {
	var firstErr error
	for _, stream := range []device.Stream{s.captureStream, s.playbackStream} {
		if stream == nil {
			continue
		}
		if err := stream.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.engine.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Broadcaster exposes the capture fan-out, e.g. for local subscribers.
func (s *Service) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// Handler builds the session handler serving the flow protocol.
func (s *Service) Handler() SessionHandler {
	return NewHandler(
		HandlerConfig{
			OnBegin: func(ctx context.Context, h SHC) error {
				h.Log().Info("peer connected")
				return nil
			},
			OnEnd: func(ctx context.Context, h SHC) error {
				h.Log().Info("peer disconnected")
				return nil
			},
		},
		HandleRequest(s.handleDeviceList),
		HandleRequest(s.handleDeviceSet),
		HandleRequest(s.handleFlowSend),
		HandleRequest(s.handleFlowGet),
		HandleRequest(handlePing),
	)
}

func (s *Service) handleDeviceList(ctx context.Context, hc SHC, req *flowv1.DeviceListRequest) (*flowv1.DeviceListResponse, error) {
	devices, err := s.engine.Registry().ListDevices(ctx, device.Direction(req.Direction))
	if err != nil {
		return nil, proto.NewError(proto.ErrInternalServerError, fmt.Errorf("list devices: %w", err))
	}
	return &flowv1.DeviceListResponse{Devices: devices}, nil
}

func (s *Service) handleDeviceSet(ctx context.Context, hc SHC, req *flowv1.DeviceSetRequest) (*flowv1.DeviceSetResponse, error) {
	if err := s.engine.Registry().SetDefault(ctx, req.ID); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, proto.NewNotFoundError(err)
		}
		return nil, proto.NewError(proto.ErrInternalServerError, fmt.Errorf("set device: %w", err))
	}
	hc.Log().Info("default output device changed", slog.Any("device_id", req.ID))
	return &flowv1.DeviceSetResponse{}, nil
}

// handleFlowSend starts draining this session's inbound audio frames into
// the playback queue. Concurrent senders share the queue and interleave.
func (s *Service) handleFlowSend(ctx context.Context, hc SHC, _ *flowv1.FlowSendRequest) (*flowv1.FlowSendResponse, error) {
	ingest := NewIngest(s.playbackQueue, hc.Log())
	go ingest.Run(ctx, hc.Audio().ReadChan())
	hc.Log().Info("inbound flow started")
	return &flowv1.FlowSendResponse{}, nil
}

// handleFlowGet subscribes the session to the captured flow and forwards
// packets until the session ends. A slow session lags on its own
// subscriber queue without affecting anyone else.
func (s *Service) handleFlowGet(ctx context.Context, hc SHC, _ *flowv1.FlowGetRequest) (*flowv1.FlowGetResponse, error) {
	sub := s.broadcaster.Subscribe()
	hc.Log().Info("outbound flow started", slog.String("subscriber_id", sub.ID()))

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hc.Done():
				return
			case pkt, ok := <-sub.C():
				if !ok {
					return
				}
				if err := hc.Audio().Write(pkt); err != nil {
					hc.Log().Debug("stopping outbound flow", slog.Any("err", err))
					return
				}
			}
		}
	}()

	return &flowv1.FlowGetResponse{}, nil
}

func handlePing(_ context.Context, _ SHC, req *flowv1.PingRequest) (*flowv1.PingResponse, error) {
	t1 := time.Now().UnixMilli()
	return &flowv1.PingResponse{
		T0:   req.T0,
		T1:   t1,
		OWD:  t1 - req.T0,
		Data: req.Data,
	}, nil
}
