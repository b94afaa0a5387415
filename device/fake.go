package device

import (
	"context"
	"fmt"
	"sync"
)

// FakeEngine is an Engine without hardware. Tests drive the callbacks by
// hand: CaptureFrame plays the role of the input driver delivering a raw
// buffer, RenderFrame the role of the output driver requesting one.
type FakeEngine struct {
	FailCapture  bool
	FailPlayback bool

	Reg *FakeRegistry

	mu        sync.Mutex
	onSamples func([]float32)
	fill      func([]float32)
	closed    bool
}

func NewFakeEngine(devices ...Device) *FakeEngine {
	return &FakeEngine{Reg: &FakeRegistry{Devices: devices}}
}

func (e *FakeEngine) OpenCapture(onSamples func(samples []float32)) (Stream, error) {
	if e.FailCapture {
		return nil, fmt.Errorf("fake capture device unavailable")
	}
	e.mu.Lock()
	e.onSamples = onSamples
	e.mu.Unlock()
	return &fakeStream{}, nil
}

func (e *FakeEngine) OpenPlayback(fill func(out []float32)) (Stream, error) {
	if e.FailPlayback {
		return nil, fmt.Errorf("fake playback device unavailable")
	}
	e.mu.Lock()
	e.fill = fill
	e.mu.Unlock()
	return &fakeStream{}, nil
}

func (e *FakeEngine) Registry() Registry {
	return e.Reg
}

func (e *FakeEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// CaptureFrame invokes the capture callback as the driver would.
func (e *FakeEngine) CaptureFrame(samples []float32) {
	e.mu.Lock()
	cb := e.onSamples
	e.mu.Unlock()
	if cb != nil {
		cb(samples)
	}
}

// RenderFrame asks the playback callback to fill a fresh zeroed buffer of
// n samples and returns it.
func (e *FakeEngine) RenderFrame(n int) []float32 {
	out := make([]float32, n)
	e.mu.Lock()
	fill := e.fill
	e.mu.Unlock()
	if fill != nil {
		fill(out)
	}
	return out
}

type fakeStream struct{}

func (*fakeStream) Start() error { return nil }
func (*fakeStream) Stop() error  { return nil }
func (*fakeStream) Close() error { return nil }

// FakeRegistry is an in-memory Registry.
type FakeRegistry struct {
	Devices []Device
	Err     error

	mu      sync.Mutex
	current *Device
}

func (r *FakeRegistry) ListDevices(_ context.Context, _ Direction) ([]Device, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]Device, len(r.Devices))
	copy(out, r.Devices)
	return out, nil
}

func (r *FakeRegistry) SetDefault(_ context.Context, id uint32) error {
	if r.Err != nil {
		return r.Err
	}
	for i := range r.Devices {
		if r.Devices[i].ID == id {
			r.mu.Lock()
			r.current = &r.Devices[i]
			r.mu.Unlock()
			return nil
		}
	}
	return ErrNotFound
}

// Default reports the device selected by the last successful SetDefault.
func (r *FakeRegistry) Default() *Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
