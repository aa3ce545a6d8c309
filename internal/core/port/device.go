package port

import (
	"context"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
)

// DeviceLister pulls the account's device list from the cloud service.
// Failures the caller may skip past are *domain.AuthError.
type DeviceLister interface {
	ListDevices(ctx context.Context, credentials domain.CloudCredentials) ([]domain.CloudDevice, error)
}

// AddressResolver maps serials to network addresses. Serials it cannot
// resolve are absent from the result.
type AddressResolver interface {
	ResolveAddresses(ctx context.Context, serials []string) map[string]string
}

// DeviceSession is one connected device as seen by the orchestrator and the
// platform bridge.
type DeviceSession interface {
	Connect() error
	Disconnect() error
	GetSerial() string
	IsConnected() bool
	GetFeatures() dysonlink.Capabilities
	Identity() dysonlink.DeviceIdentity
	Product() dysonlink.Product
	Snapshot() (domain.SessionStateResponse, error)
	PID() *actor.PID
	// Stop releases the session and its link for good.
	Stop()
}

type SessionFactory func(identity dysonlink.DeviceIdentity) DeviceSession
