package mqtt

import (
	"errors"
	"sync"
	"time"
)

var ErrTestConnectionLost = errors.New("test connection lost")

type TestPublished struct {
	Topic   string
	Payload []byte
}

// TestBroker is an in-memory stand-in for a device broker. Every Connect
// call goes through the same broker so tests can inspect attempts across
// reconnects.
type TestBroker struct {
	mu         sync.Mutex
	transports []*TestTransport
	attempts    int
	disconnects int
	published   []TestPublished
	lastOpts   TransportOptions

	// FailConnect decides the outcome of connect attempt n (1-based). Nil means success.
	FailConnect func(attempt int) error
	// FailPublish, when set, is returned by every publish.
	FailPublish error
	// HoldConnect leaves connect attempts unanswered until their timeout
	// elapses, like a device that accepts the socket but never acks.
	HoldConnect bool
}

func (b *TestBroker) Factory() TransportFactory {
	return func(opts TransportOptions) Transport {
		b.mu.Lock()
		defer b.mu.Unlock()
		t := &TestTransport{broker: b, opts: opts, subscriptions: map[string]func(string, []byte){}}
		b.transports = append(b.transports, t)
		b.lastOpts = opts
		return t
	}
}

func (b *TestBroker) SetFailPublish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FailPublish = err
}

func (b *TestBroker) ConnectAttempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Disconnects counts Disconnect calls across every connection.
func (b *TestBroker) Disconnects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disconnects
}

func (b *TestBroker) LastOptions() TransportOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastOpts
}

func (b *TestBroker) Published() []TestPublished {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]TestPublished, len(b.published))
	copy(out, b.published)
	return out
}

func (b *TestBroker) current() *TestTransport {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.transports) == 0 {
		return nil
	}
	return b.transports[len(b.transports)-1]
}

// Subscriptions lists the topics held by the most recent connection.
func (b *TestBroker) Subscriptions() []string {
	t := b.current()
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	topics := make([]string, 0, len(t.subscriptions))
	for topic := range t.subscriptions {
		topics = append(topics, topic)
	}
	return topics
}

// DropConnection simulates an unexpected loss on the most recent connection.
func (b *TestBroker) DropConnection() {
	t := b.current()
	if t == nil {
		return
	}
	t.mu.Lock()
	wasConnected := t.connected
	t.connected = false
	t.subscriptions = map[string]func(string, []byte){}
	t.mu.Unlock()
	if wasConnected && t.opts.OnConnectionLost != nil {
		t.opts.OnConnectionLost(ErrTestConnectionLost)
	}
}

// SignalConnectionLost fires the loss callback of the most recent connection
// even if it was already closed, like a late close signal from the transport.
func (b *TestBroker) SignalConnectionLost() {
	t := b.current()
	if t != nil && t.opts.OnConnectionLost != nil {
		t.opts.OnConnectionLost(ErrTestConnectionLost)
	}
}

// Deliver pushes a payload to the matching subscription of the most recent connection.
func (b *TestBroker) Deliver(topic string, payload []byte) bool {
	t := b.current()
	if t == nil {
		return false
	}
	t.mu.Lock()
	handler, ok := t.subscriptions[topic]
	connected := t.connected
	t.mu.Unlock()
	if !ok || !connected {
		return false
	}
	handler(topic, payload)
	return true
}

type TestTransport struct {
	mu            sync.Mutex
	broker        *TestBroker
	opts          TransportOptions
	connected     bool
	subscriptions map[string]func(string, []byte)
}

func (t *TestTransport) Connect(continuation func(error), timeout time.Duration) {
	t.broker.mu.Lock()
	t.broker.attempts++
	attempt := t.broker.attempts
	fail := t.broker.FailConnect
	hold := t.broker.HoldConnect
	t.broker.mu.Unlock()

	if hold {
		time.AfterFunc(timeout, func() { continuation(ErrConnectTimeout) })
		return
	}

	var err error
	if fail != nil {
		err = fail(attempt)
	}
	if err == nil {
		t.mu.Lock()
		t.connected = true
		t.mu.Unlock()
	}
	continuation(err)
}

func (t *TestTransport) Disconnect(_ time.Duration) {
	t.broker.mu.Lock()
	t.broker.disconnects++
	t.broker.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	t.subscriptions = map[string]func(string, []byte){}
}

func (t *TestTransport) Subscribe(topic string, handler func(topic string, payload []byte), continuation func(error), _ time.Duration) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		continuation(ErrSubscribeFailed)
		return
	}
	t.subscriptions[topic] = handler
	t.mu.Unlock()
	continuation(nil)
}

func (t *TestTransport) Unsubscribe(topic string, continuation func(error), _ time.Duration) {
	t.mu.Lock()
	delete(t.subscriptions, topic)
	t.mu.Unlock()
	continuation(nil)
}

func (t *TestTransport) Publish(topic string, payload []byte, continuation func(error), _ time.Duration) {
	t.broker.mu.Lock()
	failure := t.broker.FailPublish
	if failure == nil {
		t.broker.published = append(t.broker.published, TestPublished{Topic: topic, Payload: payload})
	}
	t.broker.mu.Unlock()
	continuation(failure)
}

var _ Transport = (*TestTransport)(nil)
