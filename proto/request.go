package proto

import (
	"fmt"
)

type Request struct {
	messageBase
	Version string `json:"version,omitempty"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func (r *Request) MessageType() string {
	return "request"
}

func (r *Request) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("request ID is required")
	}

	if r.Method == "" {
		return fmt.Errorf("request method is required")
	}

	if r.Params != nil {
		if v, ok := r.Params.(validatable); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("request.params invalid: %w", err)
			}
		}
	}

	return nil
}

// Ok creates a successful response for a request
func (r *Request) Ok(result any) *Response {
	return r.newResponse(result, nil)
}

// NotOk creates a failure response for a request
func (r *Request) NotOk(err *ResponseError) *Response {
	return r.newResponse(nil, err)
}

func (r *Request) newResponse(res any, err *ResponseError) *Response {
	return &Response{
		Version:  r.Version,
		Response: r.ID,
		Result:   res,
		Error:    err,
	}
}

func NewRequest(method string, params any) *Request {
	return &Request{
		Version: Version,
		ID:      ID(),
		Method:  method,
		Params:  params,
	}
}

var _ Message = &Request{}
