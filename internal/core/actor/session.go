package actor

import (
	"fmt"
	"time"

	adactor "github.com/berfenger/dyson2mqtt/internal/adapter/actor"
	"github.com/berfenger/dyson2mqtt/internal/config"
	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/core/port"
	"github.com/berfenger/dyson2mqtt/internal/metrics"
	"github.com/berfenger/dyson2mqtt/internal/mqtt"
	. "github.com/berfenger/dyson2mqtt/internal/util/actorutil"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	MinPollInterval     = 10 * time.Second
	MaxPollInterval     = 300 * time.Second
	DefaultPollInterval = 60 * time.Second
)

// LinkProvider builds the device link actor a session spawns as its child.
type LinkProvider func(identity dysonlink.DeviceIdentity) actor.Actor

func DeviceLinkProvider(cfg *config.Config, logger *zap.Logger) LinkProvider {
	return func(identity dysonlink.DeviceIdentity) actor.Actor {
		return adactor.NewDeviceLinkActor(identity, cfg.Link, mqtt.NewDeviceTransport, nil, logger)
	}
}

// PollInterval clamps the configured poll interval. Zero selects the default.
func PollInterval(seconds uint32) time.Duration {
	if seconds == 0 {
		return DefaultPollInterval
	}
	return min(max(time.Duration(seconds)*time.Second, MinPollInterval), MaxPollInterval)
}

type SessionActor struct {
	ActorWithStates
	identity     dysonlink.DeviceIdentity
	product      dysonlink.Product
	config       *config.Config
	linkProvider LinkProvider
	eventStream  *eventstream.EventStream
	scheduler    *scheduler.TimerScheduler
	stash        *Stash
	link         *actor.PID
	state        dysonlink.DeviceState
	cancelPoll   scheduler.CancelFunc
	powerOn      powerOnDebounce
	logger       *zap.Logger
}

type powerOnPhase int

const (
	powerOnIdle powerOnPhase = iota
	powerOnPending
)

// powerOnDebounce holds at most one deferred power-on. A mode change inside
// the window replaces it, since the mode change already turns the fan on.
type powerOnDebounce struct {
	phase   powerOnPhase
	seq     uint64
	name    string
	replyTo *actor.PID
	cancel  scheduler.CancelFunc
}

type sessionPowerOnTick struct {
	seq uint64
}

type sessionPollTick struct {
}

func NewSessionActor(identity dysonlink.DeviceIdentity, cfg *config.Config, linkProvider LinkProvider,
	eventStream *eventstream.EventStream, logger *zap.Logger) *SessionActor {
	act := &SessionActor{
		identity:     identity,
		product:      dysonlink.ProductFor(identity.ProductType),
		config:       cfg,
		linkProvider: linkProvider,
		eventStream:  eventStream,
		stash:        &Stash{},
		logger:       ActorLogger(domain.ACTOR_ID_SESSION, logger).With(zap.String("serial", identity.Serial)),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.OnTransition = func(from, to string) {
		act.logger.Debug(fmt.Sprintf("session@%s become %s", from, to))
	}
	act.Become(SessionDisconnectedState{actor: act})
	return act
}

func (state *SessionActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Disconnected state

type SessionDisconnectedState struct {
	ActorState
	actor *SessionActor
}

func (state SessionDisconnectedState) Name() string {
	return "disconnected"
}

func (state SessionDisconnectedState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("session@disconnected started",
			zap.String("product", state.actor.product.Model), zap.Stringer("dialect", state.actor.product.Dialect))
		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)
	case domain.SessionConnectRequest:
		replyTo := ForRequest(msg).ReplyTo(ctx)
		if state.actor.identity.Address == "" {
			Reply(ctx, replyTo, domain.SessionConnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: fmt.Errorf("%w: %s", domain.ErrNoAddress, state.actor.identity.Serial),
			}})
			return
		}
		state.actor.logger.Debug("session@disconnected connect")
		if state.actor.link == nil {
			provider := state.actor.linkProvider
			identity := state.actor.identity
			state.actor.link = ctx.Spawn(actor.PropsFromProducer(func() actor.Actor {
				return provider(identity)
			}))
		}
		state.actor.Become(SessionConnectingState{actor: state.actor, replyTo: replyTo}.OnEnterAction(ctx))
	case domain.SessionDisconnectRequest:
		ForRequest(msg).Respond(ctx, domain.SessionDisconnectResponse{})
	default:
		state.actor.receiveCommon(ctx, state.Name(), false)
	}
}

// Connecting state: link connect, status subscription, state request.

type SessionConnectingState struct {
	ActorState
	actor   *SessionActor
	replyTo *actor.PID
}

func (state SessionConnectingState) Name() string {
	return "connecting"
}

func (state SessionConnectingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.LinkConnectResponse:
		if msg.HasResponseError() {
			state.fail(ctx, msg.GetResponseError())
			return
		}
		state.actor.logger.Debug("session@connecting link connected")
		state.actor.pipeFromLink(ctx, domain.LinkSubscribeStatusRequest{}, func(err error) any {
			return domain.LinkSubscribeResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}}
		})
	case domain.LinkSubscribeResponse:
		if msg.HasResponseError() {
			state.fail(ctx, msg.GetResponseError())
			return
		}
		state.actor.logger.Debug("session@connecting subscribed")
		state.actor.pipeFromLink(ctx, domain.LinkRequestCurrentStateRequest{}, func(err error) any {
			return domain.LinkPublishResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}}
		})
	case domain.LinkPublishResponse:
		if msg.HasResponseError() {
			state.fail(ctx, msg.GetResponseError())
			return
		}
		state.actor.logger.Info("session@connecting connected", zap.String("address", state.actor.identity.Address))
		state.actor.Become(SessionConnectedState{actor: state.actor, linkUp: true}.OnEnterAction(ctx))
		Reply(ctx, state.replyTo, domain.SessionConnectResponse{})
		state.actor.stash.UnstashAll(ctx)
	case domain.SessionConnectRequest, domain.SessionDisconnectRequest:
		state.actor.logger.Debug("session@connecting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	case domain.LinkConnected, domain.LinkDisconnected:
		// the connect outcome arrives as a response
	default:
		state.actor.receiveCommon(ctx, state.Name(), false)
	}
}

func (state SessionConnectingState) OnEnterAction(ctx actor.Context) SessionConnectingState {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.link, domain.LinkConnectRequest{}, state.actor.config.Session.ConnectTimeout()),
		func(err error) any {
			return domain.LinkConnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}}
		})
	return state
}

func (state SessionConnectingState) fail(ctx actor.Context, err error) {
	state.actor.logger.Warn("session@connecting connect failed", zap.Error(err))
	// drop whatever the link managed to set up
	ctx.Send(state.actor.link, domain.LinkDisconnectRequest{})
	state.actor.Become(SessionDisconnectedState{actor: state.actor})
	resp := domain.SessionConnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}}
	Reply(ctx, state.replyTo, resp)
	for _, stashed := range state.actor.stash.Drain() {
		if _, ok := stashed.Msg.(domain.SessionConnectRequest); ok {
			Reply(ctx, stashed.Sender, resp)
			continue
		}
		ctx.RequestWithCustomSender(ctx.Self(), stashed.Msg, stashed.Sender)
	}
}

// Connected state. linkUp is false while the link reconnects.

type SessionConnectedState struct {
	ActorState
	actor  *SessionActor
	linkUp bool
}

func (state SessionConnectedState) Name() string {
	return "connected"
}

func (state SessionConnectedState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SessionConnectRequest:
		if state.linkUp {
			ForRequest(msg).Respond(ctx, domain.SessionConnectResponse{})
			return
		}
		// reconnecting: ask the link to try now
		replyTo := ForRequest(msg).ReplyTo(ctx)
		future := ctx.RequestFuture(state.actor.link, domain.LinkConnectRequest{}, state.actor.config.Session.ConnectTimeout())
		ctx.ReenterAfter(future, func(res any, err error) {
			Reply(ctx, replyTo, domain.SessionConnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: domain.ResponseOf(res, err),
			}})
		})
	case domain.SessionDisconnectRequest:
		state.actor.logger.Info("session@connected disconnect")
		state.actor.stopTimers(ctx)
		replyTo := ForRequest(msg).ReplyTo(ctx)
		future := ctx.RequestFuture(state.actor.link, domain.LinkDisconnectRequest{}, state.actor.config.Link.RequestTimeout())
		state.actor.Become(SessionDisconnectedState{actor: state.actor})
		state.actor.setConnected(false)
		state.actor.emit(domain.SessionDisconnected{SessionEventMixIn: state.actor.eventMixIn()})
		ctx.ReenterAfter(future, func(res any, err error) {
			Reply(ctx, replyTo, domain.SessionDisconnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: domain.ResponseOf(res, err),
			}})
		})
	case domain.SessionIntentRequest:
		state.actor.handleIntent(ctx, msg, state.linkUp)
	case sessionPowerOnTick:
		state.actor.firePowerOn(ctx, msg.seq)
	case sessionPollTick:
		if state.linkUp {
			state.actor.refresh(ctx)
		}
	case domain.LinkConnected:
		state.actor.logger.Info("session@connected link restored")
		state.linkUp = true
		state.actor.Become(state)
		state.actor.setConnected(true)
		state.actor.emit(domain.SessionConnected{SessionEventMixIn: state.actor.eventMixIn()})
		state.actor.refresh(ctx)
	case domain.LinkDisconnected:
		state.actor.logger.Warn("session@connected link lost", zap.Error(msg.Err))
		state.linkUp = false
		state.actor.Become(state)
		state.actor.cancelPowerOn(ctx, domain.ErrNotConnected)
		state.actor.setConnected(false)
		state.actor.emit(domain.SessionDisconnected{SessionEventMixIn: state.actor.eventMixIn(), Err: msg.Err})
	case domain.LinkReconnectFailed:
		state.actor.logger.Error("session@connected link gave up reconnecting")
		state.actor.stopTimers(ctx)
		state.actor.Become(SessionDisconnectedState{actor: state.actor})
		state.actor.setConnected(false)
		state.actor.emit(domain.SessionReconnectFailed{SessionEventMixIn: state.actor.eventMixIn()})
	default:
		state.actor.receiveCommon(ctx, state.Name(), state.linkUp)
	}
}

func (state SessionConnectedState) OnEnterAction(ctx actor.Context) SessionConnectedState {
	interval := PollInterval(state.actor.config.Session.PollIntervalSeconds)
	state.actor.cancelPoll = state.actor.scheduler.RequestRepeatedly(interval, interval, ctx.Self(), sessionPollTick{})
	state.actor.setConnected(true)
	state.actor.emit(domain.SessionConnected{SessionEventMixIn: state.actor.eventMixIn()})
	if state.actor.hasSensors() {
		state.actor.bestEffort(ctx, domain.LinkRequestSensorDataRequest{})
	}
	return state
}

// Other actor function helpers

func (state *SessionActor) receiveCommon(ctx actor.Context, stateName string, linkUp bool) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ForRequest(msg).Respond(ctx, domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SESSION,
			Healthy: true,
			State:   stateName,
		})
	case domain.SessionStateRequest:
		ForRequest(msg).Respond(ctx, domain.SessionStateResponse{
			Identity:  state.identity,
			Product:   state.product,
			Connected: linkUp,
			State:     state.state,
		})
	case domain.SessionIntentRequest:
		state.handleIntent(ctx, msg, false)
	case domain.LinkMessage:
		state.route(msg)
	case domain.LinkError:
		state.emit(domain.SessionError{SessionEventMixIn: state.eventMixIn(), Err: msg.Err})
	case domain.LinkOffline:
		state.emit(domain.SessionOffline{SessionEventMixIn: state.eventMixIn()})
	case domain.LinkReconnecting:
		state.emit(domain.SessionReconnecting{SessionEventMixIn: state.eventMixIn(), Attempt: msg.Attempt})
	case *actor.Stopping:
		state.stopTimers(ctx)
	case *actor.Started, *actor.Stopped, *actor.Restarting:
	case sessionPowerOnTick, sessionPollTick:
	default:
		state.logger.Debug(fmt.Sprintf("session@%s recv", stateName), zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// handleIntent checks capability before connectivity, so an unsupported
// command fails the same way whether or not the device is reachable.
func (state *SessionActor) handleIntent(ctx actor.Context, msg domain.SessionIntentRequest, linkUp bool) {
	replyTo := ForRequest(msg).ReplyTo(ctx)
	if msg.Intent == nil || !state.product.Capabilities.Supports(msg.Intent) {
		err := fmt.Errorf("%w: %s on %s", domain.ErrUnsupported, msg.Name, state.product.Model)
		metrics.Command(state.identity.Serial, msg.Name, err)
		state.replyIntent(ctx, replyTo, err)
		return
	}
	if !linkUp {
		metrics.Command(state.identity.Serial, msg.Name, domain.ErrNotConnected)
		state.replyIntent(ctx, replyTo, domain.ErrNotConnected)
		return
	}
	state.logger.Debug("session@connected "+msg.Name, zap.String("intent", fmt.Sprintf("%+v", msg.Intent)))
	switch in := msg.Intent.(type) {
	case dysonlink.PowerIntent:
		if in.On {
			state.deferPowerOn(ctx, msg.Name, replyTo)
			return
		}
		state.cancelPowerOn(ctx, nil)
	case dysonlink.AutoModeIntent, dysonlink.FanSpeedIntent:
		state.cancelPowerOn(ctx, nil)
	}
	state.send(ctx, msg.Name, msg.Intent, replyTo)
}

func (state *SessionActor) deferPowerOn(ctx actor.Context, name string, replyTo *actor.PID) {
	window := state.config.Session.PowerOnDebounce()
	// only the latest power-on is kept
	state.cancelPowerOn(ctx, nil)
	if window <= 0 {
		state.send(ctx, name, dysonlink.PowerIntent{On: true, Auto: state.state.AutoMode}, replyTo)
		return
	}
	state.powerOn.seq++
	state.powerOn.phase = powerOnPending
	state.powerOn.name = name
	state.powerOn.replyTo = replyTo
	state.powerOn.cancel = state.scheduler.RequestOnce(window, ctx.Self(), sessionPowerOnTick{seq: state.powerOn.seq})
}

func (state *SessionActor) firePowerOn(ctx actor.Context, seq uint64) {
	if state.powerOn.phase != powerOnPending || state.powerOn.seq != seq {
		return
	}
	state.powerOn.phase = powerOnIdle
	state.send(ctx, state.powerOn.name, dysonlink.PowerIntent{On: true, Auto: state.state.AutoMode}, state.powerOn.replyTo)
	state.powerOn.replyTo = nil
}

// cancelPowerOn drops a pending power-on and answers its caller with err.
func (state *SessionActor) cancelPowerOn(ctx actor.Context, err error) {
	if state.powerOn.phase != powerOnPending {
		return
	}
	state.logger.Debug("session power-on suppressed")
	state.powerOn.cancel()
	state.powerOn.phase = powerOnIdle
	state.replyIntent(ctx, state.powerOn.replyTo, err)
	state.powerOn.replyTo = nil
}

func (state *SessionActor) send(ctx actor.Context, name string, intent dysonlink.Intent, replyTo *actor.PID) {
	cmd, err := dysonlink.EncodeCommand(state.product.Dialect, intent, time.Now())
	if err != nil {
		state.replyIntent(ctx, replyTo, fmt.Errorf("%w: %w", domain.ErrInvalidValue, err))
		return
	}
	serial := state.identity.Serial
	future := ctx.RequestFuture(state.link, domain.LinkPublishCommandRequest{Command: cmd}, state.config.Link.RequestTimeout())
	ctx.ReenterAfter(future, func(res any, err error) {
		err = domain.ResponseOf(res, err)
		metrics.Command(serial, name, err)
		if err != nil {
			state.logger.Warn("session command failed", zap.String("command", name), zap.Error(err))
		}
		state.replyIntent(ctx, replyTo, err)
	})
}

func (state *SessionActor) route(msg domain.LinkMessage) {
	if msg.Object == nil {
		return
	}
	m, err := dysonlink.MessageFromObject(msg.Object)
	if err != nil {
		state.logger.Debug("session dropped message", zap.Error(err))
		return
	}
	var delta dysonlink.StateDelta
	switch m.Kind {
	case dysonlink.KindCurrentState, dysonlink.KindStateChange:
		delta = dysonlink.DecodeState(m)
	case dysonlink.KindSensorData:
		delta = dysonlink.DecodeSensorData(m)
	default:
		return
	}
	if delta.IsEmpty() {
		return
	}
	state.state = state.state.Merge(delta)
	state.emit(domain.StateChanged{SessionEventMixIn: state.eventMixIn(), State: state.state})
}

// refresh re-requests the device state. Failures only cost freshness.
func (state *SessionActor) refresh(ctx actor.Context) {
	state.bestEffort(ctx, domain.LinkRequestCurrentStateRequest{})
	if state.hasSensors() {
		state.bestEffort(ctx, domain.LinkRequestSensorDataRequest{})
	}
}

func (state *SessionActor) bestEffort(ctx actor.Context, msg any) {
	future := ctx.RequestFuture(state.link, msg, state.config.Link.RequestTimeout())
	ctx.ReenterAfter(future, func(res any, err error) {
		if err := domain.ResponseOf(res, err); err != nil {
			state.logger.Debug("session refresh failed", zap.String("type", fmt.Sprintf("%T", msg)), zap.Error(err))
		}
	})
}

func (state *SessionActor) pipeFromLink(ctx actor.Context, msg any, mapFn func(error) any) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.link, msg, state.config.Link.RequestTimeout()), mapFn)
}

func (state *SessionActor) stopTimers(ctx actor.Context) {
	if state.cancelPoll != nil {
		state.cancelPoll()
		state.cancelPoll = nil
	}
	state.cancelPowerOn(ctx, domain.ErrNotConnected)
}

func (state *SessionActor) hasSensors() bool {
	caps := state.product.Capabilities
	return caps.TemperatureSensor || caps.HumiditySensor || caps.AirQualitySensor
}

func (state *SessionActor) setConnected(connected bool) {
	if state.state.Connected == connected {
		return
	}
	state.state.Connected = connected
	state.emit(domain.StateChanged{SessionEventMixIn: state.eventMixIn(), State: state.state})
}

func (state *SessionActor) replyIntent(ctx actor.Context, replyTo *actor.PID, err error) {
	Reply(ctx, replyTo, domain.SessionIntentResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}})
}

func (state *SessionActor) emit(event domain.SessionEvent) {
	if state.eventStream != nil {
		state.eventStream.Publish(event)
	}
}

func (state *SessionActor) eventMixIn() domain.SessionEventMixIn {
	return domain.SessionEventMixIn{Serial: state.identity.Serial}
}

// Session is the blocking client of a SessionActor.
type Session struct {
	root     *actor.RootContext
	pid      *actor.PID
	identity dysonlink.DeviceIdentity
	product  dysonlink.Product
	timeout  time.Duration
	connect  time.Duration
}

func NewSession(root *actor.RootContext, pid *actor.PID, identity dysonlink.DeviceIdentity, cfg *config.Config) *Session {
	return &Session{
		root:     root,
		pid:      pid,
		identity: identity,
		product:  dysonlink.ProductFor(identity.ProductType),
		timeout:  cfg.Link.RequestTimeout() + cfg.Session.PowerOnDebounce(),
		connect:  cfg.Session.ConnectTimeout() + 2*cfg.Link.RequestTimeout(),
	}
}

// SpawnSession starts a session actor under root and returns its client.
func SpawnSession(root *actor.RootContext, identity dysonlink.DeviceIdentity, cfg *config.Config, linkProvider LinkProvider,
	eventStream *eventstream.EventStream, logger *zap.Logger) *Session {
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSessionActor(identity, cfg, linkProvider, eventStream, logger)
	})
	return NewSession(root, root.Spawn(props), identity, cfg)
}

// SessionFactory spawns sessions under root for the orchestrator.
func SessionFactory(root *actor.RootContext, cfg *config.Config, linkProvider LinkProvider,
	eventStream *eventstream.EventStream, logger *zap.Logger) port.SessionFactory {
	return func(identity dysonlink.DeviceIdentity) port.DeviceSession {
		return SpawnSession(root, identity, cfg, linkProvider, eventStream, logger)
	}
}

func (s *Session) PID() *actor.PID {
	return s.pid
}

func (s *Session) Connect() error {
	return domain.ResponseOf(s.root.RequestFuture(s.pid, domain.SessionConnectRequest{}, s.connect).Result())
}

func (s *Session) Disconnect() error {
	return domain.ResponseOf(s.root.RequestFuture(s.pid, domain.SessionDisconnectRequest{}, s.timeout).Result())
}

func (s *Session) Stop() {
	s.root.Stop(s.pid)
}

func (s *Session) GetSerial() string {
	return s.identity.Serial
}

func (s *Session) Identity() dysonlink.DeviceIdentity {
	return s.identity
}

func (s *Session) Product() dysonlink.Product {
	return s.product
}

func (s *Session) GetFeatures() dysonlink.Capabilities {
	return s.product.Capabilities
}

func (s *Session) IsConnected() bool {
	snapshot, err := s.Snapshot()
	return err == nil && snapshot.Connected
}

func (s *Session) GetState() (dysonlink.DeviceState, error) {
	snapshot, err := s.Snapshot()
	return snapshot.State, err
}

func (s *Session) Snapshot() (domain.SessionStateResponse, error) {
	result, err := s.root.RequestFuture(s.pid, domain.SessionStateRequest{}, s.timeout).Result()
	if err != nil {
		return domain.SessionStateResponse{}, err
	}
	resp, ok := result.(domain.SessionStateResponse)
	if !ok {
		return domain.SessionStateResponse{}, fmt.Errorf("unexpected response %T", result)
	}
	return resp, nil
}

// SetFanPower turns the fan on in the mode it was last in, or off.
func (s *Session) SetFanPower(on bool) error {
	return s.Apply("set_fan_power", dysonlink.PowerIntent{On: on})
}

// SetFanSpeed selects a manual speed. Speeds below 1 are raised to 1.
func (s *Session) SetFanSpeed(speed dysonlink.FanSpeed) error {
	if !speed.IsAuto() && speed < dysonlink.MinFanSpeed {
		speed = dysonlink.MinFanSpeed
	}
	return s.Apply("set_fan_speed", dysonlink.FanSpeedIntent{Speed: speed})
}

func (s *Session) SetAutoMode(on bool) error {
	return s.Apply("set_auto_mode", dysonlink.AutoModeIntent{On: on})
}

func (s *Session) SetOscillation(on bool) error {
	return s.Apply("set_oscillation", dysonlink.OscillationIntent{On: on})
}

func (s *Session) SetOscillationAngles(lower, upper int) error {
	return s.Apply("set_oscillation_angles", dysonlink.OscillationAnglesIntent{Lower: lower, Upper: upper})
}

func (s *Session) SetNightMode(on bool) error {
	return s.Apply("set_night_mode", dysonlink.NightModeIntent{On: on})
}

func (s *Session) SetContinuousMonitoring(on bool) error {
	return s.Apply("set_continuous_monitoring", dysonlink.ContinuousMonitoringIntent{On: on})
}

func (s *Session) SetJetFocus(on bool) error {
	return s.Apply("set_jet_focus", dysonlink.FrontAirflowIntent{On: on})
}

func (s *Session) SetHeatingMode(on bool) error {
	return s.Apply("set_heating_mode", dysonlink.HeatingIntent{On: on})
}

func (s *Session) SetTargetTemperature(celsius float64) error {
	return s.Apply("set_target_temperature", dysonlink.TargetTemperatureIntent{Celsius: celsius})
}

func (s *Session) SetHumidifier(on bool) error {
	return s.Apply("set_humidifier", dysonlink.HumidifierIntent{On: on})
}

func (s *Session) SetHumidifierAuto(on bool) error {
	return s.Apply("set_humidifier_auto", dysonlink.HumidifierAutoIntent{On: on})
}

func (s *Session) SetTargetHumidity(percent int) error {
	return s.Apply("set_target_humidity", dysonlink.TargetHumidityIntent{Percent: percent})
}

// Apply sends an already built intent. name labels it in logs and metrics.
func (s *Session) Apply(name string, intent dysonlink.Intent) error {
	return domain.ResponseOf(s.root.RequestFuture(s.pid, domain.SessionIntentRequest{Name: name, Intent: intent}, s.timeout).Result())
}
