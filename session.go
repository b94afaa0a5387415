package soundflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundflow/soundflow-go/proto"
)

var ErrRequestTimeout = fmt.Errorf("request: timeout")

// Session drives the control plane of one transport: it dispatches
// incoming requests and events to the handler and correlates outgoing
// requests with their responses. The audio plane of the same transport is
// exposed to handlers through the session handler context.
type Session struct {
	id              string
	shCtx           *sessionHandlerCtx
	transport       Transport
	transportFunc   TransportFactory
	closeOnce       sync.Once
	close           chan struct{} // closing triggers session shutdown
	done            chan struct{} // closed once the session has ended
	handler         SessionHandler
	pendingRequests map[string]*pendingRequest
	muPending       sync.Mutex
	requestTimeout  time.Duration
	logger          *slog.Logger
}

// NewSession creates a session for the given transport factory and handler.
func NewSession(transportFunc TransportFactory, handler SessionHandler, opts ...Option) *Session {
	o := newOptions(opts...)

	session := &Session{
		id:              o.id,
		transportFunc:   transportFunc,
		close:           make(chan struct{}),
		done:            make(chan struct{}),
		pendingRequests: map[string]*pendingRequest{},
		handler:         handler,
		requestTimeout:  o.requestTimeout,
		logger: o.logger.With(
			slog.String("component", "session"),
			slog.String("session_id", o.id),
		),
	}

	session.shCtx = &sessionHandlerCtx{sess: session}

	return session
}

func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

type pendingRequest struct {
	id string
	ch chan *proto.Response
}

func (s *Session) newPendingRequest(id string) *pendingRequest {
	s.muPending.Lock()
	defer s.muPending.Unlock()

	pr := &pendingRequest{
		id: id,
		ch: make(chan *proto.Response, 1),
	}

	s.pendingRequests[id] = pr

	return pr
}

func (s *Session) resolvePendingRequest(resp *proto.Response) {
	s.muPending.Lock()
	defer s.muPending.Unlock()

	pr, ok := s.pendingRequests[resp.Response]
	if !ok {
		return
	}

	pr.ch <- resp

	delete(s.pendingRequests, resp.Response)
}

func (s *Session) writeMsgData(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.transport.Control().Write(data)
	}
}

// Request sends a request and waits for its response.
func (s *Session) Request(ctx context.Context, payload NamedRequest) (*proto.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	req := proto.NewRequest(payload.MethodName(), payload)

	s.logger.Debug(
		"Session.Request()",
		"request_id", req.ID,
		"method", req.Method,
		"params", req.Params,
	)

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	pendingRequest := s.newPendingRequest(req.ID)

	if err := s.writeMsgData(ctx, data); err != nil {
		return nil, fmt.Errorf("request [method=%s, id=%s]: %w", req.Method, req.ID, err)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("request [method=%s, id=%s] failed: %w", req.Method, req.ID, ErrRequestTimeout)
	case resp := <-pendingRequest.ch:
		if !resp.Ok() {
			return nil, resp.Error
		}
		return resp, nil
	}
}

// Notify sends an event without expecting a response.
func (s *Session) Notify(ctx context.Context, payload NamedEvent) error {
	evt := proto.NewEvent(payload.EventName(), payload)

	s.logger.Debug(
		"Session.Notify()",
		"event_id", evt.ID,
		"event", evt.Event,
		"data", payload,
	)

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if err := s.writeMsgData(ctx, data); err != nil {
		return fmt.Errorf("notify [event=%s, id=%s]: %w", evt.Event, evt.ID, err)
	}
	return nil
}

// CloseTimeout closes the session, waiting at most timeout for shutdown.
func (s *Session) CloseTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.CloseContext(ctx)
}

func (s *Session) CloseContext(ctx context.Context) error {
	s.logger.Debug("closing session")

	s.closeOnce.Do(func() {
		close(s.close)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

func (s *Session) endSession() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.handler != nil {
		if err := s.handler.OnEnd(ctx, s.shCtx); err != nil {
			s.logger.Error("handler.OnEnd() failed", slog.Any("err", err))
		}
	}

	if err := s.transport.Close(ctx); err != nil {
		s.logger.Error("failed to close transport", slog.Any("err", err))
	}

	close(s.done)
	s.logger.Info("session ended")
}

func (s *Session) handleRequest(ctx context.Context, req *proto.Request) {
	s.logger.Debug("handleRequest", slog.Any("req", req))
	if s.handler == nil {
		return
	}

	if err := s.handler.OnRequest(ctx, s.shCtx, req); err != nil {
		// request-level failure: reported to this caller only
		s.logger.Error("handleRequest failed", slog.String("method", req.Method), slog.Any("err", err))
		if rErr := s.shCtx.Respond(ctx, req.NotOk(proto.ToResponseError(err))); rErr != nil {
			s.logger.Error("failed to write error response", slog.Any("err", rErr))
		}
	}
}

func (s *Session) handleEvent(ctx context.Context, evt *proto.Event) {
	s.logger.Debug("handleEvent", slog.Any("evt", evt))
	if s.handler == nil {
		return
	}

	if err := s.handler.OnEvent(ctx, s.shCtx, evt); err != nil {
		s.logger.Error("handler.OnEvent failed", slog.String("event", evt.Event), slog.Any("err", err))
	}
}

func (s *Session) handleIncoming(ctx context.Context, msg proto.Message) {
	msg.SetReceivedAt(time.Now().UnixMilli())

	switch m := msg.(type) {
	case *proto.Event:
		s.handleEvent(ctx, m)
	case *proto.Request:
		s.handleRequest(ctx, m)
	case *proto.Response:
		s.resolvePendingRequest(m)
	}
}

// Run connects the transport and processes control messages until the
// session is closed, the context is cancelled or the transport fails.
func (s *Session) Run(ctx context.Context) (err error) {
	s.transport, err = s.transportFunc(ctx)
	if err != nil {
		return err
	}

	logger := s.logger

	if s.handler != nil {
		go func() {
			if err := s.handler.OnBegin(ctx, s.shCtx); err != nil {
				logger.Error("handler.OnBegin() failed", slog.Any("err", err))
			}
		}()
	}

	defer s.endSession()

	transportMsgInChan := s.transport.Control().ReadChan()
	transportClosedChan := s.transport.Closed()
	for {
		select {
		case <-s.close:
			return nil
		case <-ctx.Done():
			return nil
		case <-transportClosedChan:
			return nil
		case data, ok := <-transportMsgInChan:
			if !ok {
				logger.Debug("control channel closed")
				return nil
			}

			msg, err := proto.ParseMessage(data)
			if err != nil {
				logger.Error("parsing control message failed", slog.Any("err", err))
				continue
			}
			go s.handleIncoming(ctx, msg)
		}
	}
}
