package mqtt

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Transport is one message-bus connection to a single device. All calls
// return immediately and report their outcome through the continuation.
type Transport interface {
	Connect(continuation func(error), timeout time.Duration)
	Disconnect(timeout time.Duration)
	Subscribe(topic string, handler func(topic string, payload []byte), continuation func(error), timeout time.Duration)
	Unsubscribe(topic string, continuation func(error), timeout time.Duration)
	Publish(topic string, payload []byte, continuation func(error), timeout time.Duration)
}

type TransportOptions struct {
	Address          string
	Port             int
	Username         string
	Password         string
	ClientId         string
	ConnectTimeout   time.Duration
	KeepAlive        time.Duration
	OnConnectionLost func(error)
}

type TransportFactory func(opts TransportOptions) Transport

func NewClientId() string {
	return fmt.Sprintf("dyson2mqtt-%s", uuid.NewString())
}

// DeviceTransport is the paho backed Transport. Reconnection is driven by
// the owner, so paho's own auto reconnect stays off.
type DeviceTransport struct {
	conn
}

func NewDeviceTransport(opts TransportOptions) Transport {
	port := opts.Port
	if port == 0 {
		port = 1883
	}
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Address, port))
	clientOpts.SetClientID(opts.ClientId)
	clientOpts.SetUsername(opts.Username)
	clientOpts.SetPassword(opts.Password)
	clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	clientOpts.SetKeepAlive(opts.KeepAlive)
	clientOpts.SetAutoReconnect(false)
	clientOpts.SetConnectRetry(false)
	clientOpts.SetCleanSession(true)
	if opts.OnConnectionLost != nil {
		onLost := opts.OnConnectionLost
		clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			onLost(err)
		})
	}
	return &DeviceTransport{conn: conn{client: mqtt.NewClient(clientOpts)}}
}

func (t *DeviceTransport) Subscribe(topic string, handler func(topic string, payload []byte), continuation func(error), timeout time.Duration) {
	t.subscribe(topic, 1, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Topic(), m.Payload())
	}, continuation, timeout)
}

func (t *DeviceTransport) Publish(topic string, payload []byte, continuation func(error), timeout time.Duration) {
	t.publish(topic, 1, false, payload, continuation, timeout)
}

var _ Transport = (*DeviceTransport)(nil)
