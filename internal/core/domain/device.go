package domain

import (
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

type CloudCredentials struct {
	Email   string
	Token   string
	Country string
}

// CloudDevice is one entry of the account's device list.
type CloudDevice struct {
	Serial      string
	ProductType string
	Name        string
	Credential  string
}

func (d CloudDevice) Identity() dysonlink.DeviceIdentity {
	return dysonlink.DeviceIdentity{
		Serial:      d.Serial,
		ProductType: d.ProductType,
		Name:        d.Name,
		Credential:  d.Credential,
	}
}

type DeviceSource string

const (
	DeviceSourceCloud  DeviceSource = "cloud"
	DeviceSourceManual DeviceSource = "manual"
)

type DeviceEntry struct {
	Identity dysonlink.DeviceIdentity
	Source   DeviceSource
}

type FailureReason string

const (
	FailureUnsupportedProduct FailureReason = "unsupported product type"
	FailureNoAddress          FailureReason = "no address"
	FailureConnect            FailureReason = "connect failed"
)

type DeviceFailure struct {
	Serial string
	Reason FailureReason
	Err    error
}

// ConnectResult summarizes one discovery run.
type ConnectResult struct {
	Connected   []string
	Unsupported []DeviceFailure
	Failed      []DeviceFailure
	CloudError  error
}

// DeviceSummary is a read-only view of one session for the HTTP surface.
type DeviceSummary struct {
	Serial       string                 `json:"serial"`
	ProductType  string                 `json:"product_type"`
	Model        string                 `json:"model"`
	Name         string                 `json:"name"`
	Connected    bool                   `json:"connected"`
	Capabilities dysonlink.Capabilities `json:"capabilities"`
	State        dysonlink.DeviceState  `json:"state"`
}
