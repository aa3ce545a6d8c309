package domain

import (
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

// Device link requests. Every operation replies with the matching response,
// whose error is ErrNotConnected unless the link is connected.

type LinkConnectRequest struct {
	ActorRequestMixIn
}

type LinkConnectResponse struct {
	ActorResponseMixIn
}

type LinkDisconnectRequest struct {
	ActorRequestMixIn
}

type LinkDisconnectResponse struct {
	ActorResponseMixIn
}

type LinkSubscribeRequest struct {
	ActorRequestMixIn
	Topic string
}

type LinkSubscribeResponse struct {
	ActorResponseMixIn
}

type LinkUnsubscribeRequest struct {
	ActorRequestMixIn
	Topic string
}

type LinkUnsubscribeResponse struct {
	ActorResponseMixIn
}

type LinkPublishRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload []byte
}

type LinkPublishResponse struct {
	ActorResponseMixIn
}

// LinkSubscribeStatusRequest subscribes to the device status topic. Replies LinkSubscribeResponse.
type LinkSubscribeStatusRequest struct {
	ActorRequestMixIn
}

// LinkRequestCurrentStateRequest asks the device for a full state report. Replies LinkPublishResponse.
type LinkRequestCurrentStateRequest struct {
	ActorRequestMixIn
}

// LinkRequestSensorDataRequest asks the device for a sensor report. Replies LinkPublishResponse.
type LinkRequestSensorDataRequest struct {
	ActorRequestMixIn
}

// LinkPublishCommandRequest publishes an encoded command on the device command topic. Replies LinkPublishResponse.
type LinkPublishCommandRequest struct {
	ActorRequestMixIn
	Command dysonlink.WireCommand
}

type LinkStateRequest struct {
	ActorRequestMixIn
}

type LinkStateResponse struct {
	ActorResponseMixIn
	State         dysonlink.ConnectionState
	Subscriptions []string
}

// Device link events, sent to the link's parent and its event stream.

type LinkEvent interface {
	LinkSerial() string
}

type LinkEventMixIn struct {
	Serial string
}

func (e LinkEventMixIn) LinkSerial() string {
	return e.Serial
}

type LinkConnected struct {
	LinkEventMixIn
}

// LinkDisconnected has a nil Err after an explicit disconnect.
type LinkDisconnected struct {
	LinkEventMixIn
	Err error
}

// LinkMessage carries every inbound payload. Object is nil when the payload is not JSON.
type LinkMessage struct {
	LinkEventMixIn
	Topic   string
	Payload []byte
	Object  map[string]any
}

type LinkError struct {
	LinkEventMixIn
	Err error
}

type LinkOffline struct {
	LinkEventMixIn
}

// LinkReconnecting announces a scheduled attempt. Attempt starts at 1.
type LinkReconnecting struct {
	LinkEventMixIn
	Attempt int
}

type LinkReconnectFailed struct {
	LinkEventMixIn
}
