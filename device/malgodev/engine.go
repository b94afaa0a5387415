// Package malgodev implements the device engine and registry on top of
// miniaudio (via malgo).
package malgodev

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/soundflow/soundflow-go/device"
)

// rawFormat is the device format; samples cross the package boundary as
// float32 without conversion.
var rawFormat = malgo.FormatF32

const rawSampleSize = 4

type Config struct {
	SampleRate   uint32
	Channels     uint32
	PeriodSizeMS uint32
}

func (c *Config) Defaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 48000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.PeriodSizeMS == 0 {
		c.PeriodSizeMS = 10
	}
}

// Engine drives the system devices through malgo. It also implements the
// device registry: playback devices are addressed by their index within
// the most recent enumeration, and switching the default re-opens the
// playback stream on the chosen device.
type Engine struct {
	malgoCtx *malgo.AllocatedContext
	config   Config
	logger   *slog.Logger

	mu          sync.Mutex
	playbackCb  func(out []float32)
	playbackDev *malgo.Device
}

func New(config Config, logger *slog.Logger) (*Engine, error) {
	config.Defaults()

	if n := malgo.SampleSizeInBytes(rawFormat); n != rawSampleSize {
		return nil, fmt.Errorf("malgo raw format has wrong sample size (got %d, want %d)", n, rawSampleSize)
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	return &Engine{
		malgoCtx: malgoCtx,
		config:   config,
		logger:   logger.With(slog.String("component", "malgodev")),
	}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	if e.playbackDev != nil {
		e.playbackDev.Uninit()
		e.playbackDev = nil
	}
	e.mu.Unlock()

	if err := e.malgoCtx.Uninit(); err != nil {
		return err
	}
	e.malgoCtx.Free()
	return nil
}

func (e *Engine) Registry() device.Registry {
	return e
}

// OpenCapture opens the default input device. The raw byte buffers of the
// driver are decoded into a scratch sample slice reused across callbacks.
func (e *Engine) OpenCapture(onSamples func(samples []float32)) (device.Stream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = e.config.SampleRate
	deviceConfig.PeriodSizeInMilliseconds = e.config.PeriodSizeMS
	deviceConfig.Capture.Format = rawFormat
	deviceConfig.Capture.Channels = e.config.Channels
	deviceConfig.Alsa.NoMMap = 1

	var scratch []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * int(e.config.Channels)
			if cap(scratch) < n {
				scratch = make([]float32, n)
			}
			scratch = scratch[:n]
			for i := range scratch {
				scratch[i] = math.Float32frombits(binary.LittleEndian.Uint32(pInput[i*rawSampleSize:]))
			}
			onSamples(scratch)
		},
	}

	dev, err := malgo.InitDevice(e.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init capture device: %w", err)
	}

	e.logger.Info("capture device open",
		slog.Int("sample_rate", int(e.config.SampleRate)),
		slog.Int("channels", int(e.config.Channels)),
	)

	return &stream{dev: dev}, nil
}

// OpenPlayback opens the default output device. The fill callback is
// remembered so the playback stream can be re-opened on another device by
// the registry.
func (e *Engine) OpenPlayback(fill func(out []float32)) (device.Stream, error) {
	dev, err := e.initPlayback(nil, fill)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.playbackCb = fill
	e.playbackDev = dev
	e.mu.Unlock()

	e.logger.Info("playback device open",
		slog.Int("sample_rate", int(e.config.SampleRate)),
		slog.Int("channels", int(e.config.Channels)),
	)

	return &engineOwnedPlayback{e: e}, nil
}

func (e *Engine) initPlayback(id *malgo.DeviceID, fill func(out []float32)) (*malgo.Device, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = e.config.SampleRate
	deviceConfig.PeriodSizeInMilliseconds = e.config.PeriodSizeMS
	deviceConfig.Playback.Format = rawFormat
	deviceConfig.Playback.Channels = e.config.Channels
	deviceConfig.Alsa.NoMMap = 1
	if id != nil {
		deviceConfig.Playback.DeviceID = id.Pointer()
	}

	var scratch []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			n := int(frameCount) * int(e.config.Channels)
			if cap(scratch) < n {
				scratch = make([]float32, n)
			}
			scratch = scratch[:n]
			for i := range scratch {
				scratch[i] = 0
			}
			fill(scratch)
			for i, s := range scratch {
				binary.LittleEndian.PutUint32(pOutput[i*rawSampleSize:], math.Float32bits(s))
			}
		},
	}

	dev, err := malgo.InitDevice(e.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init playback device: %w", err)
	}
	return dev, nil
}

// ListDevices enumerates the devices of the given direction, defaulting
// to playback. Devices are re-enumerated on every call, never cached.
func (e *Engine) ListDevices(_ context.Context, dir device.Direction) ([]device.Device, error) {
	typ := malgo.Playback
	if dir == device.DirectionCapture {
		typ = malgo.Capture
	}

	infos, err := e.malgoCtx.Devices(typ)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	res := make([]device.Device, 0, len(infos))
	for i, info := range infos {
		res = append(res, device.Device{
			ID:   uint32(i),
			Name: info.Name(),
		})
	}
	return res, nil
}

// SetDefault re-opens the playback stream on the identified device. The id
// is an index into the current playback enumeration.
func (e *Engine) SetDefault(_ context.Context, id uint32) error {
	infos, err := e.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	if int(id) >= len(infos) {
		return device.ErrNotFound
	}
	target := infos[id]

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playbackCb == nil {
		return fmt.Errorf("playback not open")
	}

	dev, err := e.initPlayback(&target.ID, e.playbackCb)
	if err != nil {
		return fmt.Errorf("open playback device %q: %w", target.Name(), err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("start playback device %q: %w", target.Name(), err)
	}

	if e.playbackDev != nil {
		_ = e.playbackDev.Stop()
		e.playbackDev.Uninit()
	}
	e.playbackDev = dev

	e.logger.Info("default playback device switched", slog.String("name", target.Name()))
	return nil
}

var _ device.Engine = &Engine{}
var _ device.Registry = &Engine{}

// stream wraps a malgo device owned by the caller.
type stream struct {
	dev *malgo.Device
}

func (s *stream) Start() error { return s.dev.Start() }
func (s *stream) Stop() error  { return s.dev.Stop() }
func (s *stream) Close() error {
	s.dev.Uninit()
	return nil
}

// engineOwnedPlayback dispatches to whichever device the registry has
// currently selected.
type engineOwnedPlayback struct {
	e *Engine
}

func (s *engineOwnedPlayback) Start() error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if s.e.playbackDev == nil {
		return fmt.Errorf("playback closed")
	}
	return s.e.playbackDev.Start()
}

func (s *engineOwnedPlayback) Stop() error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if s.e.playbackDev == nil {
		return nil
	}
	return s.e.playbackDev.Stop()
}

func (s *engineOwnedPlayback) Close() error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if s.e.playbackDev != nil {
		s.e.playbackDev.Uninit()
		s.e.playbackDev = nil
	}
	s.e.playbackCb = nil
	return nil
}
