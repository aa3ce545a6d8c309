package actor

import (
	"math"
	"strings"
	"testing"
	"time"

	adactor "github.com/berfenger/dyson2mqtt/internal/adapter/actor"
	"github.com/berfenger/dyson2mqtt/internal/config"
	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/mqtt"
	"github.com/berfenger/dyson2mqtt/internal/util"
	"github.com/berfenger/dyson2mqtt/internal/util/actorutil"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionIdentity = dysonlink.DeviceIdentity{
	Serial:      "NK6-EU-MHA0000A",
	ProductType: "438",
	Name:        "Bedroom",
	Address:     "192.168.1.20",
	Credential:  "secret",
}

func testLinkProvider(cfg *config.Config, broker *mqtt.TestBroker, logger *zap.Logger) LinkProvider {
	return func(identity dysonlink.DeviceIdentity) actor.Actor {
		return adactor.NewDeviceLinkActor(identity, cfg.Link, broker.Factory(), nil, logger)
	}
}

type sessionFixture struct {
	broker  *mqtt.TestBroker
	session *Session
	events  chan domain.SessionEvent
}

func newSessionFixture(t *testing.T, identity dysonlink.DeviceIdentity, broker *mqtt.TestBroker) *sessionFixture {
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	t.Cleanup(as.Shutdown)

	cfg := util.LoadTestConfig()
	es := &eventstream.EventStream{}
	events := make(chan domain.SessionEvent, 128)
	es.Subscribe(func(evt any) {
		if e, ok := evt.(domain.SessionEvent); ok {
			events <- e
		}
	})

	return &sessionFixture{
		broker:  broker,
		session: SpawnSession(as.Root, identity, &cfg, testLinkProvider(&cfg, broker, logger), es, logger),
		events:  events,
	}
}

func waitSessionEvent[T domain.SessionEvent](t *testing.T, events <-chan domain.SessionEvent, match func(T) bool) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case evt := <-events:
			if e, ok := evt.(T); ok && (match == nil || match(e)) {
				return e
			}
		case <-timeout:
			var zero T
			t.Fatalf("timeout waiting for %T", zero)
			return zero
		}
	}
}

// requests counts the messages of the given kind sent to the device.
func requests(broker *mqtt.TestBroker, kind string) int {
	n := 0
	for _, p := range broker.Published() {
		if strings.Contains(string(p.Payload), `"msg":"`+kind+`"`) {
			n++
		}
	}
	return n
}

// stateSets returns the payloads of every command sent to the device.
func stateSets(broker *mqtt.TestBroker) []string {
	var out []string
	for _, p := range broker.Published() {
		if strings.Contains(string(p.Payload), `"msg":"STATE-SET"`) {
			out = append(out, string(p.Payload))
		}
	}
	return out
}

func TestPollInterval(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(DefaultPollInterval, PollInterval(0))
	assert.Equal(MinPollInterval, PollInterval(1))
	assert.Equal(45*time.Second, PollInterval(45))
	assert.Equal(MaxPollInterval, PollInterval(3600))
}

func TestSessionConnect(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())
	waitSessionEvent[domain.SessionConnected](t, f.events, nil)

	assert.Equal([]string{"438/NK6-EU-MHA0000A/status/current"}, f.broker.Subscriptions())
	published := f.broker.Published()
	require.NotEmpty(t, published)
	assert.Equal("438/NK6-EU-MHA0000A/command", published[0].Topic)
	assert.Contains(string(published[0].Payload), `"msg":"REQUEST-CURRENT-STATE"`)

	assert.True(f.session.IsConnected())
	assert.Equal("TP04", f.session.Product().Model)
	assert.True(f.session.GetFeatures().NightMode)

	// a second connect is answered without reconnecting
	assert.NoError(f.session.Connect())
	assert.Equal(1, f.broker.ConnectAttempts())
}

func TestSessionNoAddress(t *testing.T) {

	assert := assert.New(t)

	identity := sessionIdentity
	identity.Address = ""
	f := newSessionFixture(t, identity, &mqtt.TestBroker{})

	assert.ErrorIs(f.session.Connect(), domain.ErrNoAddress)
	assert.Equal(0, f.broker.ConnectAttempts())
	assert.False(f.session.IsConnected())
}

func TestSessionCommandErrors(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})

	assert.ErrorIs(f.session.SetNightMode(true), domain.ErrNotConnected)
	// capability is checked before connectivity
	assert.ErrorIs(f.session.SetHeatingMode(true), domain.ErrUnsupported)

	require.NoError(t, f.session.Connect())
	assert.ErrorIs(f.session.SetHumidifier(true), domain.ErrUnsupported)
	assert.ErrorIs(f.session.SetTargetTemperature(21), domain.ErrUnsupported)
	assert.Empty(stateSets(f.broker))
}

func TestSessionFanSpeedClamp(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	assert.NoError(f.session.SetFanSpeed(0))
	sets := stateSets(f.broker)
	require.Len(t, sets, 1)
	assert.Contains(sets[0], `"fnsp":"0001"`)
	assert.Contains(sets[0], `"auto":"OFF"`)
}

func TestSessionPowerOnSuppressedByModeChange(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	powerOn := make(chan error, 1)
	go func() {
		powerOn <- f.session.SetFanPower(true)
	}()
	time.Sleep(10 * time.Millisecond)
	assert.NoError(f.session.SetAutoMode(true))
	assert.NoError(<-powerOn, "the replaced power-on still succeeds")

	time.Sleep(150 * time.Millisecond)
	sets := stateSets(f.broker)
	require.Len(t, sets, 1, "only the mode change reaches the device")
	assert.Contains(sets[0], `"auto":"ON"`)
}

func TestSessionPowerOnDeferred(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	start := time.Now()
	assert.NoError(f.session.SetFanPower(true))
	assert.GreaterOrEqual(time.Since(start), 50*time.Millisecond)

	sets := stateSets(f.broker)
	require.Len(t, sets, 1)
	assert.Contains(sets[0], `"fpwr":"ON"`)

	// power-off is never deferred
	assert.NoError(f.session.SetFanPower(false))
	sets = stateSets(f.broker)
	require.Len(t, sets, 2)
	assert.Contains(sets[1], `"fpwr":"OFF"`)
}

func TestSessionPowerOffCancelsPendingPowerOn(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	powerOn := make(chan error, 1)
	go func() {
		powerOn <- f.session.SetFanPower(true)
	}()
	time.Sleep(10 * time.Millisecond)
	assert.NoError(f.session.SetFanPower(false))
	assert.NoError(<-powerOn)

	time.Sleep(150 * time.Millisecond)
	sets := stateSets(f.broker)
	require.Len(t, sets, 1)
	assert.Contains(sets[0], `"fpwr":"OFF"`)
}

func TestSessionStateUpdates(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	statusTopic := dysonlink.StatusTopic(sessionIdentity.ProductType, sessionIdentity.Serial)
	assert.True(f.broker.Deliver(statusTopic,
		[]byte(`{"msg":"CURRENT-STATE","product-state":{"fpwr":"ON","fnsp":"0005","auto":"OFF","nmod":"ON"}}`)))

	changed := waitSessionEvent(t, f.events, func(e domain.StateChanged) bool { return e.State.On })
	assert.Equal(sessionIdentity.Serial, changed.DeviceSerial())
	assert.True(changed.State.Connected)
	assert.True(changed.State.NightMode)

	state, err := f.session.GetState()
	assert.NoError(err)
	speed, ok := state.FanSpeed.Get()
	assert.True(ok)
	assert.Equal(dysonlink.FanSpeed(5), speed)

	// unknown envelopes are ignored
	assert.True(f.broker.Deliver(statusTopic, []byte(`{"msg":"LOCATION"}`)))
	state, err = f.session.GetState()
	assert.NoError(err)
	assert.True(state.On)
}

func TestSessionSensorData(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())
	assert.Eventually(func() bool {
		return requests(f.broker, dysonlink.KindRequestSensorData) >= 1
	}, time.Second, 10*time.Millisecond, "sensor data is requested on connect")

	statusTopic := dysonlink.StatusTopic(sessionIdentity.ProductType, sessionIdentity.Serial)
	assert.True(f.broker.Deliver(statusTopic,
		[]byte(`{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"tact":"2950","p25r":"0012"}}`)))

	changed := waitSessionEvent(t, f.events, func(e domain.StateChanged) bool { return e.State.PM25.IsSet() })
	assert.Equal(dysonlink.Some(2950), changed.State.Temperature)
	assert.Equal(dysonlink.Some(12), changed.State.PM25)

	assert.True(f.broker.Deliver(statusTopic,
		[]byte(`{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"tact":"OFF"}}`)))
	changed = waitSessionEvent(t, f.events, func(e domain.StateChanged) bool { return !e.State.Temperature.IsSet() })
	assert.Equal(dysonlink.Some(12), changed.State.PM25, "absent fields are kept")

	state, err := f.session.GetState()
	assert.NoError(err)
	assert.False(state.Temperature.IsSet())
}

func TestSessionRejectsNonFiniteTemperature(t *testing.T) {

	assert := assert.New(t)

	heater := sessionIdentity
	heater.ProductType = "527"
	f := newSessionFixture(t, heater, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())

	assert.ErrorIs(f.session.SetTargetTemperature(math.NaN()), domain.ErrInvalidValue)
	assert.ErrorIs(f.session.SetTargetTemperature(math.Inf(1)), domain.ErrInvalidValue)
	assert.Empty(stateSets(f.broker))

	assert.NoError(f.session.SetTargetTemperature(21))
	assert.Len(stateSets(f.broker), 1)
}

func TestSessionLinkLossAndRecovery(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())
	waitSessionEvent[domain.SessionConnected](t, f.events, nil)

	f.broker.DropConnection()
	waitSessionEvent[domain.SessionOffline](t, f.events, nil)
	waitSessionEvent[domain.SessionConnected](t, f.events, nil)

	assert.Eventually(f.session.IsConnected, time.Second, 10*time.Millisecond)
	assert.Equal(2, f.broker.ConnectAttempts())
	assert.Eventually(func() bool {
		return requests(f.broker, dysonlink.KindRequestCurrentState) >= 2
	}, time.Second, 10*time.Millisecond, "state is requested again after recovery")
}

func TestSessionDisconnect(t *testing.T) {

	assert := assert.New(t)

	f := newSessionFixture(t, sessionIdentity, &mqtt.TestBroker{})
	require.NoError(t, f.session.Connect())
	require.NoError(t, f.session.Disconnect())

	disconnected := waitSessionEvent[domain.SessionDisconnected](t, f.events, nil)
	assert.Nil(disconnected.Err)
	assert.False(f.session.IsConnected())
	assert.ErrorIs(f.session.SetNightMode(true), domain.ErrNotConnected)

	// sessions can be connected again
	assert.NoError(f.session.Connect())
	assert.Equal(2, f.broker.ConnectAttempts())
}
