package flowv1

// FlowSendRequest announces that this session will stream packets to the
// service for playback. After the ack every inbound audio frame of the
// session is drained into the playback queue until the session ends.
type FlowSendRequest struct{}

func (r *FlowSendRequest) MethodName() string {
	return "flow.send"
}

type FlowSendResponse struct{}

// FlowGetRequest subscribes this session to the captured audio flow. After
// the ack the service streams packets over the session's audio channel
// until the session ends; the stream has no natural end.
type FlowGetRequest struct{}

func (r *FlowGetRequest) MethodName() string {
	return "flow.get"
}

type FlowGetResponse struct{}
