// Package device abstracts the audio hardware behind small capability
// interfaces so the streaming core stays callback-agnostic and testable
// without a sound card.
package device

import (
	"context"
	"errors"
)

type Direction string

const (
	DirectionCapture  Direction = "capture"
	DirectionPlayback Direction = "playback"
)

// Device identifies one audio endpoint of the system mixer. The id is the
// index of the device within its most recent enumeration; devices are
// re-enumerated on every listing and never cached by the core.
type Device struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// ErrNotFound is returned by Registry.SetDefault when the id matches no
// entry of the current enumeration.
var ErrNotFound = errors.New("device not found")

// Registry enumerates output devices and switches the active default. It
// is consulted only from request handlers, never from hardware callbacks,
// and every call may fail independently.
type Registry interface {
	// ListDevices re-enumerates the devices of the given direction.
	ListDevices(ctx context.Context, dir Direction) ([]Device, error)

	// SetDefault makes the identified playback device the active one.
	// Returns ErrNotFound when id matches no currently enumerated device.
	SetDefault(ctx context.Context, id uint32) error
}

// Stream is a started hardware stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Engine opens the hardware endpoints. The callbacks handed to Open* are
// invoked on the driver's real-time thread: they must not block and the
// buffers they receive are only valid for the duration of the call.
type Engine interface {
	// OpenCapture opens the input device. onSamples receives every raw
	// buffer the driver captured.
	OpenCapture(onSamples func(samples []float32)) (Stream, error)

	// OpenPlayback opens the output device. fill is asked to populate
	// every buffer the driver is about to play.
	OpenPlayback(fill func(out []float32)) (Stream, error)

	// Registry gives access to device enumeration and selection.
	Registry() Registry

	Close() error
}
