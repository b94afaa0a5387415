package flowv1

import (
	"fmt"
	"time"
)

// PingRequest probes session liveness and one-way delay.
type PingRequest struct {
	T0   int64 `json:"t0"`             // T0 is the time the sender provided.
	Data any   `json:"data,omitempty"` // Data is arbitrary data echoed back.
}

func (r *PingRequest) Validate() error {
	if r.T0 == 0 {
		return fmt.Errorf("ping request T0 is required")
	}
	return nil
}

func (r *PingRequest) MethodName() string {
	return "ping"
}

func NewPingRequest(data any) *PingRequest {
	return &PingRequest{
		T0:   time.Now().UnixMilli(),
		Data: data,
	}
}

type PingResponse struct {
	T0   int64 `json:"t0"`             // T0 is the time provided in PingRequest.T0
	T1   int64 `json:"t1"`             // T1 is the time the peer handled the request
	OWD  int64 `json:"owd"`            // OWD is the requester-to-responder one-way delay
	Data any   `json:"data,omitempty"` // Data is the data provided in PingRequest.Data
}
