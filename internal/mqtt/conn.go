package mqtt

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var (
	ErrConnectTimeout    = errors.New("MQTT connect timed out")
	ErrConnectionFailed  = errors.New("MQTT connection failed")
	ErrPublishFailed     = errors.New("MQTT publish failed")
	ErrSubscribeFailed   = errors.New("MQTT subscribe failed")
	ErrUnsubscribeFailed = errors.New("MQTT unsubscribe failed")
	ErrOperationTimeout  = errors.New("MQTT operation timed out")
)

// conn wraps a paho client with continuation style calls. Continuations run
// on a separate goroutine once the token completes or the timeout elapses.
type conn struct {
	client mqtt.Client
}

func await(token mqtt.Token, failed, timedOut error, continuation func(error), timeout time.Duration) {
	go func() {
		if !token.WaitTimeout(timeout) {
			continuation(timedOut)
			return
		}
		if err := token.Error(); err != nil {
			continuation(fmt.Errorf("%w: %w", failed, err))
			return
		}
		continuation(nil)
	}()
}

func (c conn) Connect(continuation func(error), timeout time.Duration) {
	await(c.client.Connect(), ErrConnectionFailed, ErrConnectTimeout, continuation, timeout)
}

func (c conn) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func (c conn) publish(topic string, qos byte, retain bool, payload any, continuation func(error), timeout time.Duration) {
	await(c.client.Publish(topic, qos, retain, payload), ErrPublishFailed,
		fmt.Errorf("%w: publish %s", ErrOperationTimeout, topic), continuation, timeout)
}

func (c conn) subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	await(c.client.Subscribe(topic, qos, handler), ErrSubscribeFailed,
		fmt.Errorf("%w: subscribe %s", ErrOperationTimeout, topic), continuation, timeout)
}

func (c conn) Unsubscribe(topic string, continuation func(error), timeout time.Duration) {
	await(c.client.Unsubscribe(topic), ErrUnsubscribeFailed,
		fmt.Errorf("%w: unsubscribe %s", ErrOperationTimeout, topic), continuation, timeout)
}
