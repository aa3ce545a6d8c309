package domain

import (
	"fmt"

	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

// Session events, published on the shared event stream.

type SessionEvent interface {
	DeviceSerial() string
}

type SessionEventMixIn struct {
	Serial string
}

func (e SessionEventMixIn) DeviceSerial() string {
	return e.Serial
}

// StateChanged carries a snapshot produced by exactly one merge.
type StateChanged struct {
	SessionEventMixIn
	State dysonlink.DeviceState
}

type SessionConnected struct {
	SessionEventMixIn
}

type SessionDisconnected struct {
	SessionEventMixIn
	Err error
}

type SessionError struct {
	SessionEventMixIn
	Err error
}

type SessionOffline struct {
	SessionEventMixIn
}

type SessionReconnecting struct {
	SessionEventMixIn
	Attempt int
}

type SessionReconnectFailed struct {
	SessionEventMixIn
}

// Home broker updates

type DeviceUpdateEvent interface {
	DeviceUpdateEvent() string
}

type DeviceUpdateEventMixIn struct {
	Serial string
}

func (e DeviceUpdateEventMixIn) DeviceUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

type DeviceStateUpdateEvent struct {
	DeviceUpdateEventMixIn
	Payload DeviceStatePayload
}

type DeviceAvailabilityUpdateEvent struct {
	DeviceUpdateEventMixIn
	Online bool
}

type BridgeStateUpdateEvent struct {
	DeviceUpdateEventMixIn
	Value bool
}
