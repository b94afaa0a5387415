package soundflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundflow/soundflow-go/proto"
)

type NamedRequest interface {
	MethodName() string
}

type RequestHandler interface {
	MethodName() string
	Handle(ctx context.Context, hc SHC, req *proto.Request) error
}

type typedRequestHandler[I NamedRequest, O any] struct {
	name string
	h    func(context.Context, SHC, I) (*O, error)
}

func (t *typedRequestHandler[I, O]) MethodName() string {
	return t.name
}

func (t *typedRequestHandler[I, O]) Handle(ctx context.Context, hc SHC, req *proto.Request) error {
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	var params I
	if err := json.Unmarshal(raw, &params); err != nil {
		return proto.NewBadRequestError(fmt.Errorf("unmarshal params: %w", err))
	}

	out, err := t.h(ctx, hc, params)
	if err != nil {
		return err
	}

	return hc.Respond(ctx, req.Ok(out))
}

// HandleRequest creates a typed request handler. A handler error becomes
// the failure response of that request and never affects other requests.
func HandleRequest[T NamedRequest, O any](handler func(context.Context, SHC, T) (*O, error)) RequestHandler {
	var zero T
	return &typedRequestHandler[T, O]{
		name: zero.MethodName(),
		h:    handler,
	}
}
