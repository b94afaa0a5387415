package flowv1

import (
	"github.com/soundflow/soundflow-go/device"
)

// DeviceListRequest asks for the current device enumeration. Direction is
// advisory; the registry decides how to honor it.
type DeviceListRequest struct {
	Direction string `json:"direction,omitempty"`
}

func (r *DeviceListRequest) MethodName() string {
	return "devices.list"
}

type DeviceListResponse struct {
	Devices []device.Device `json:"devices"`
}

// DeviceSetRequest switches the active default output device. ID must come
// from a preceding devices.list; unknown ids fail with a 404 response.
type DeviceSetRequest struct {
	ID uint32 `json:"id"`
}

func (r *DeviceSetRequest) MethodName() string {
	return "device.set"
}

type DeviceSetResponse struct{}
