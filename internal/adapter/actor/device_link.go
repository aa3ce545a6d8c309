package actor

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/berfenger/dyson2mqtt/internal/config"
	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/metrics"
	"github.com/berfenger/dyson2mqtt/internal/mqtt"
	. "github.com/berfenger/dyson2mqtt/internal/util/actorutil"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// DeviceLinkActor owns the message bus connection to one device. Every
// transport is tagged with a generation, and callbacks from an older
// generation are dropped, so nothing fires after an explicit disconnect.
type DeviceLinkActor struct {
	ActorWithStates
	identity      dysonlink.DeviceIdentity
	config        config.LinkConfig
	factory       mqtt.TransportFactory
	eventStream   *eventstream.EventStream
	scheduler     *scheduler.TimerScheduler
	stash         *Stash
	transport     mqtt.Transport
	generation    uint64
	subscriptions []string
	logger        *zap.Logger
}

type linkConnectResult struct {
	generation uint64
	err        error
}

type linkConnectionLost struct {
	generation uint64
	err        error
}

type linkInbound struct {
	generation uint64
	topic      string
	payload    []byte
}

type linkReconnectTick struct {
	generation uint64
}

type linkOpResult struct {
	generation uint64
	op         linkOp
	topic      string
	replyTo    *actor.PID
	err        error
}

type linkOp int

const (
	opSubscribe linkOp = iota
	opUnsubscribe
	opPublish
	opResubscribe
)

func NewDeviceLinkActor(identity dysonlink.DeviceIdentity, cfg config.LinkConfig, factory mqtt.TransportFactory,
	eventStream *eventstream.EventStream, logger *zap.Logger) *DeviceLinkActor {
	if factory == nil {
		factory = mqtt.NewDeviceTransport
	}
	act := &DeviceLinkActor{
		identity:    identity,
		config:      cfg,
		factory:     factory,
		eventStream: eventStream,
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_LINK, logger).With(zap.String("serial", identity.Serial)),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.OnTransition = func(from, to string) {
		act.logger.Debug(fmt.Sprintf("link@%s become %s", from, to))
	}
	act.Become(LinkDisconnectedState{actor: act})
	return act
}

func (state *DeviceLinkActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Backoff returns min(max, base * 2^attempt).
func Backoff(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt && delay < max; i++ {
		delay *= 2
	}
	return min(delay, max)
}

// Disconnected state

type LinkDisconnectedState struct {
	ActorState
	actor *DeviceLinkActor
}

func (state LinkDisconnectedState) Name() string {
	return "disconnected"
}

func (state LinkDisconnectedState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("link@disconnected started")
		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)
		metrics.LinkState(state.actor.identity.Serial, int(dysonlink.Disconnected))
	case *actor.Stopping:
		state.actor.teardown()
	case domain.LinkConnectRequest:
		state.actor.logger.Debug("link@disconnected LinkConnectRequest")
		state.actor.Become(NewLinkConnectingState(state.actor, ForRequest(msg).ReplyTo(ctx), -1).OnEnterAction(ctx))
	case domain.LinkDisconnectRequest:
		state.actor.subscriptions = nil
		ForRequest(msg).Respond(ctx, domain.LinkDisconnectResponse{})
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

// Connecting state

func NewLinkConnectingState(fromActor *DeviceLinkActor, replyTo *actor.PID, attempt int) LinkConnectingState {
	return LinkConnectingState{
		actor:   fromActor,
		replyTo: replyTo,
		attempt: attempt,
	}
}

type LinkConnectingState struct {
	ActorState
	actor   *DeviceLinkActor
	replyTo *actor.PID
	// attempt is the zero-based reconnect attempt, or -1 for a caller driven connect
	attempt int
}

func (state LinkConnectingState) Name() string {
	return "connecting"
}

func (state LinkConnectingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Stopping:
		state.actor.teardown()
	case linkConnectResult:
		if msg.generation != state.actor.generation {
			return
		}
		if msg.err != nil {
			state.onFailure(ctx, msg.err)
			return
		}
		state.actor.logger.Info("link@connecting connected", zap.String("address", state.actor.identity.Address))
		state.actor.Become(LinkConnectedState{actor: state.actor}.OnEnterAction(ctx))
		if state.replyTo != nil {
			ctx.Send(state.replyTo, domain.LinkConnectResponse{})
		}
		state.actor.stash.UnstashAll(ctx)
	case domain.LinkConnectRequest:
		// one outcome for every caller waiting on this attempt
		state.actor.logger.Debug("link@connecting LinkConnectRequest: stash")
		state.actor.stash.Stash(ctx, msg)
	case domain.LinkDisconnectRequest:
		state.actor.logger.Debug("link@connecting LinkDisconnectRequest")
		state.actor.teardown()
		state.actor.subscriptions = nil
		err := fmt.Errorf("%w: connect aborted", domain.ErrNotConnected)
		state.respondAll(ctx, err)
		state.actor.Become(LinkDisconnectedState{actor: state.actor})
		state.actor.setState(dysonlink.Disconnected)
		ForRequest(msg).Respond(ctx, domain.LinkDisconnectResponse{})
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

func (state LinkConnectingState) OnEnterAction(ctx actor.Context) LinkConnectingState {
	if state.attempt < 0 {
		state.actor.setState(dysonlink.Connecting)
	}
	state.actor.open(ctx)
	return state
}

func (state LinkConnectingState) onFailure(ctx actor.Context, err error) {
	state.actor.logger.Warn("link@connecting connect failed", zap.Error(err), zap.Int("attempt", state.attempt))
	state.actor.teardown()
	state.actor.emit(ctx, domain.LinkError{LinkEventMixIn: state.actor.eventMixIn(), Err: err})
	state.respondAll(ctx, err)
	if state.attempt >= 0 {
		state.actor.scheduleReconnect(ctx, state.attempt+1)
		return
	}
	state.actor.Become(LinkDisconnectedState{actor: state.actor})
	state.actor.setState(dysonlink.Disconnected)
}

func (state LinkConnectingState) respondAll(ctx actor.Context, err error) {
	resp := domain.LinkConnectResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}}
	if state.replyTo != nil {
		ctx.Send(state.replyTo, resp)
	}
	for _, stashed := range state.actor.stash.Drain() {
		replyTo := stashed.Sender
		if req, ok := stashed.Msg.(domain.ActorRequest); ok && req.ReplyTo() != nil {
			replyTo = (*actor.PID)(req.ReplyTo())
		}
		if replyTo != nil {
			ctx.Send(replyTo, resp)
		}
	}
}

// Connected state

type LinkConnectedState struct {
	ActorState
	actor *DeviceLinkActor
}

func (state LinkConnectedState) Name() string {
	return "connected"
}

func (state LinkConnectedState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Stopping:
		state.actor.teardown()
	case domain.LinkConnectRequest:
		ForRequest(msg).Respond(ctx, domain.LinkConnectResponse{})
	case domain.LinkDisconnectRequest:
		state.actor.logger.Info("link@connected disconnect")
		state.actor.teardown()
		state.actor.subscriptions = nil
		state.actor.Become(LinkDisconnectedState{actor: state.actor})
		state.actor.setState(dysonlink.Disconnected)
		state.actor.emit(ctx, domain.LinkDisconnected{LinkEventMixIn: state.actor.eventMixIn()})
		ForRequest(msg).Respond(ctx, domain.LinkDisconnectResponse{})
	case domain.LinkSubscribeRequest:
		state.actor.subscribe(ctx, msg.Topic, opSubscribe, ForRequest(msg).ReplyTo(ctx))
	case domain.LinkSubscribeStatusRequest:
		state.actor.subscribe(ctx, state.actor.statusTopic(), opSubscribe, ForRequest(msg).ReplyTo(ctx))
	case domain.LinkUnsubscribeRequest:
		state.actor.unsubscribe(ctx, msg.Topic, ForRequest(msg).ReplyTo(ctx))
	case domain.LinkPublishRequest:
		state.actor.publish(ctx, msg.Topic, msg.Payload, ForRequest(msg).ReplyTo(ctx))
	case domain.LinkPublishCommandRequest:
		state.actor.publishCommand(ctx, msg.Command, ForRequest(msg).ReplyTo(ctx))
	case domain.LinkRequestCurrentStateRequest:
		state.actor.publishCommand(ctx, dysonlink.RequestCurrentState(time.Now()), ForRequest(msg).ReplyTo(ctx))
	case domain.LinkRequestSensorDataRequest:
		state.actor.publishCommand(ctx, dysonlink.RequestSensorData(time.Now()), ForRequest(msg).ReplyTo(ctx))
	case linkOpResult:
		state.actor.onOpResult(ctx, msg)
	case linkInbound:
		if msg.generation != state.actor.generation {
			return
		}
		state.actor.onInbound(ctx, msg.topic, msg.payload)
	case linkConnectionLost:
		if msg.generation != state.actor.generation {
			return
		}
		state.actor.logger.Warn("link@connected connection lost", zap.Error(msg.err))
		state.actor.generation++
		state.actor.transport = nil
		state.actor.emit(ctx, domain.LinkDisconnected{LinkEventMixIn: state.actor.eventMixIn(), Err: msg.err})
		state.actor.emit(ctx, domain.LinkOffline{LinkEventMixIn: state.actor.eventMixIn()})
		if state.actor.config.AutoReconnect {
			state.actor.scheduleReconnect(ctx, 0)
		} else {
			state.actor.Become(LinkDisconnectedState{actor: state.actor})
			state.actor.setState(dysonlink.Disconnected)
		}
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

func (state LinkConnectedState) OnEnterAction(ctx actor.Context) LinkConnectedState {
	state.actor.setState(dysonlink.Connected)
	state.actor.emit(ctx, domain.LinkConnected{LinkEventMixIn: state.actor.eventMixIn()})
	// restore the caller's subscriptions after a reconnect
	for _, topic := range state.actor.subscriptions {
		state.actor.subscribe(ctx, topic, opResubscribe, nil)
	}
	return state
}

// Reconnecting state

type LinkReconnectingState struct {
	ActorState
	actor   *DeviceLinkActor
	attempt int
	cancel  scheduler.CancelFunc
}

func (state LinkReconnectingState) Name() string {
	return "reconnecting"
}

func (state LinkReconnectingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Stopping:
		state.cancel()
		state.actor.teardown()
	case linkReconnectTick:
		if msg.generation != state.actor.generation {
			return
		}
		state.actor.logger.Debug("link@reconnecting attempt", zap.Int("attempt", state.attempt+1))
		metrics.ReconnectAttempt(state.actor.identity.Serial)
		state.actor.Become(NewLinkConnectingState(state.actor, nil, state.attempt).OnEnterAction(ctx))
	case domain.LinkConnectRequest:
		state.actor.logger.Debug("link@reconnecting LinkConnectRequest")
		state.cancel()
		metrics.ReconnectAttempt(state.actor.identity.Serial)
		state.actor.Become(NewLinkConnectingState(state.actor, ForRequest(msg).ReplyTo(ctx), state.attempt).OnEnterAction(ctx))
	case domain.LinkDisconnectRequest:
		state.actor.logger.Info("link@reconnecting disconnect")
		state.cancel()
		state.actor.teardown()
		state.actor.subscriptions = nil
		state.actor.Become(LinkDisconnectedState{actor: state.actor})
		state.actor.setState(dysonlink.Disconnected)
		ForRequest(msg).Respond(ctx, domain.LinkDisconnectResponse{})
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

// Other actor function helpers

// receiveCommon answers what every state answers the same way. Operations that
// need a connection are rejected here, so only the connected state overrides them.
func (state *DeviceLinkActor) receiveCommon(ctx actor.Context, stateName string) {
	notConnected := domain.ActorResponseMixIn{ResponseError: domain.ErrNotConnected}
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ForRequest(msg).Respond(ctx, domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_LINK,
			Healthy: true,
			State:   stateName,
		})
	case domain.LinkStateRequest:
		ForRequest(msg).Respond(ctx, domain.LinkStateResponse{
			State:         state.connectionState(stateName),
			Subscriptions: slices.Clone(state.subscriptions),
		})
	case domain.LinkSubscribeRequest:
		ForRequest(msg).Respond(ctx, domain.LinkSubscribeResponse{ActorResponseMixIn: notConnected})
	case domain.LinkSubscribeStatusRequest:
		ForRequest(msg).Respond(ctx, domain.LinkSubscribeResponse{ActorResponseMixIn: notConnected})
	case domain.LinkUnsubscribeRequest:
		ForRequest(msg).Respond(ctx, domain.LinkUnsubscribeResponse{ActorResponseMixIn: notConnected})
	case domain.LinkPublishRequest:
		ForRequest(msg).Respond(ctx, domain.LinkPublishResponse{ActorResponseMixIn: notConnected})
	case domain.LinkPublishCommandRequest:
		ForRequest(msg).Respond(ctx, domain.LinkPublishResponse{ActorResponseMixIn: notConnected})
	case domain.LinkRequestCurrentStateRequest:
		ForRequest(msg).Respond(ctx, domain.LinkPublishResponse{ActorResponseMixIn: notConnected})
	case domain.LinkRequestSensorDataRequest:
		ForRequest(msg).Respond(ctx, domain.LinkPublishResponse{ActorResponseMixIn: notConnected})
	case linkOpResult:
		// the connection went away before the transport answered
		state.onOpResult(ctx, msg)
	case linkConnectResult, linkConnectionLost, linkInbound, linkReconnectTick:
	case *actor.Started, *actor.Stopped, *actor.Restarting:
	default:
		state.logger.Debug(fmt.Sprintf("link@%s recv", stateName), zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DeviceLinkActor) connectionState(stateName string) dysonlink.ConnectionState {
	switch stateName {
	case "connecting":
		return dysonlink.Connecting
	case "connected":
		return dysonlink.Connected
	case "reconnecting":
		return dysonlink.Reconnecting
	default:
		return dysonlink.Disconnected
	}
}

func (state *DeviceLinkActor) open(ctx actor.Context) {
	state.generation++
	generation := state.generation
	root := ctx.ActorSystem().Root
	self := ctx.Self()

	state.transport = state.factory(mqtt.TransportOptions{
		Address:        state.identity.Address,
		Port:           state.config.Port,
		Username:       state.identity.Serial,
		Password:       state.identity.Credential,
		ClientId:       mqtt.NewClientId(),
		ConnectTimeout: state.config.ConnectTimeout(),
		KeepAlive:      state.config.KeepAlive(),
		OnConnectionLost: func(err error) {
			root.Send(self, linkConnectionLost{generation: generation, err: err})
		},
	})
	state.transport.Connect(func(err error) {
		root.Send(self, linkConnectResult{generation: generation, err: err})
	}, state.config.ConnectTimeout())
}

// teardown closes the current transport and invalidates its pending callbacks.
func (state *DeviceLinkActor) teardown() {
	state.generation++
	if state.transport != nil {
		state.transport.Disconnect(state.config.RequestTimeout())
		state.transport = nil
	}
}

func (state *DeviceLinkActor) scheduleReconnect(ctx actor.Context, attempt int) {
	if attempt >= int(state.config.MaxReconnectAttempts) {
		state.logger.Error("link@reconnecting giving up", zap.Int("attempts", attempt))
		state.Become(LinkDisconnectedState{actor: state})
		state.setState(dysonlink.Disconnected)
		state.emit(ctx, domain.LinkReconnectFailed{LinkEventMixIn: state.eventMixIn()})
		return
	}
	delay := Backoff(state.config.ReconnectBaseDelay(), state.config.ReconnectMaxDelay(), attempt)
	state.logger.Info("link@reconnecting scheduled", zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
	cancel := state.scheduler.RequestOnce(delay, ctx.Self(), linkReconnectTick{generation: state.generation})
	state.Become(LinkReconnectingState{
		actor:   state,
		attempt: attempt,
		cancel:  cancel,
	})
	state.setState(dysonlink.Reconnecting)
	state.emit(ctx, domain.LinkReconnecting{LinkEventMixIn: state.eventMixIn(), Attempt: attempt + 1})
}

func (state *DeviceLinkActor) subscribe(ctx actor.Context, topic string, op linkOp, replyTo *actor.PID) {
	generation := state.generation
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.transport.Subscribe(topic, func(topic string, payload []byte) {
		root.Send(self, linkInbound{generation: generation, topic: topic, payload: payload})
	}, func(err error) {
		root.Send(self, linkOpResult{generation: generation, op: op, topic: topic, replyTo: replyTo, err: err})
	}, state.config.RequestTimeout())
}

func (state *DeviceLinkActor) unsubscribe(ctx actor.Context, topic string, replyTo *actor.PID) {
	generation := state.generation
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.transport.Unsubscribe(topic, func(err error) {
		root.Send(self, linkOpResult{generation: generation, op: opUnsubscribe, topic: topic, replyTo: replyTo, err: err})
	}, state.config.RequestTimeout())
}

func (state *DeviceLinkActor) publish(ctx actor.Context, topic string, payload []byte, replyTo *actor.PID) {
	generation := state.generation
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.transport.Publish(topic, payload, func(err error) {
		root.Send(self, linkOpResult{generation: generation, op: opPublish, topic: topic, replyTo: replyTo, err: err})
	}, state.config.RequestTimeout())
}

func (state *DeviceLinkActor) publishCommand(ctx actor.Context, command dysonlink.WireCommand, replyTo *actor.PID) {
	payload, err := command.Payload()
	if err != nil {
		if replyTo != nil {
			ctx.Send(replyTo, domain.LinkPublishResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}})
		}
		return
	}
	state.logger.Debug("link@connected publish command", zap.String("kind", command.Kind))
	state.publish(ctx, state.commandTopic(), payload, replyTo)
}

func (state *DeviceLinkActor) onOpResult(ctx actor.Context, msg linkOpResult) {
	err := msg.err
	if err == nil && msg.generation != state.generation {
		err = domain.ErrNotConnected
	}
	switch msg.op {
	case opSubscribe:
		if err == nil && !slices.Contains(state.subscriptions, msg.topic) {
			state.subscriptions = append(state.subscriptions, msg.topic)
		}
		Reply(ctx, msg.replyTo, domain.LinkSubscribeResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}})
	case opUnsubscribe:
		if err == nil {
			state.subscriptions = slices.DeleteFunc(state.subscriptions, func(t string) bool { return t == msg.topic })
		}
		Reply(ctx, msg.replyTo, domain.LinkUnsubscribeResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}})
	case opPublish:
		if err != nil {
			state.logger.Warn("link publish failed", zap.String("topic", msg.topic), zap.Error(err))
		}
		Reply(ctx, msg.replyTo, domain.LinkPublishResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err}})
	case opResubscribe:
		if msg.err != nil && msg.generation == state.generation {
			state.logger.Warn("link resubscribe failed", zap.String("topic", msg.topic), zap.Error(msg.err))
			state.emit(ctx, domain.LinkError{LinkEventMixIn: state.eventMixIn(), Err: msg.err})
		}
	}
}

func (state *DeviceLinkActor) onInbound(ctx actor.Context, topic string, payload []byte) {
	event := domain.LinkMessage{
		LinkEventMixIn: state.eventMixIn(),
		Topic:          topic,
		Payload:        payload,
	}
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err == nil {
		event.Object = obj
	} else {
		state.logger.Debug("link@connected malformed payload", zap.String("topic", topic), zap.Error(err))
	}
	metrics.InboundMessage(state.identity.Serial, event.Object != nil)
	state.emit(ctx, event)
}

func (state *DeviceLinkActor) emit(ctx actor.Context, event domain.LinkEvent) {
	if parent := ctx.Parent(); parent != nil {
		ctx.Send(parent, event)
	}
	if state.eventStream != nil {
		state.eventStream.Publish(event)
	}
}

func (state *DeviceLinkActor) setState(s dysonlink.ConnectionState) {
	metrics.LinkState(state.identity.Serial, int(s))
}

func (state *DeviceLinkActor) eventMixIn() domain.LinkEventMixIn {
	return domain.LinkEventMixIn{Serial: state.identity.Serial}
}

func (state *DeviceLinkActor) statusTopic() string {
	return dysonlink.StatusTopic(state.identity.ProductType, state.identity.Serial)
}

func (state *DeviceLinkActor) commandTopic() string {
	return dysonlink.CommandTopic(state.identity.ProductType, state.identity.Serial)
}

// DeviceLink is a blocking handle on a DeviceLinkActor for callers outside
// the actor system.
type DeviceLink struct {
	root    *actor.RootContext
	pid     *actor.PID
	config  config.LinkConfig
	timeout time.Duration
}

func NewDeviceLink(root *actor.RootContext, pid *actor.PID, cfg config.LinkConfig) *DeviceLink {
	return &DeviceLink{
		root:    root,
		pid:     pid,
		config:  cfg,
		timeout: cfg.RequestTimeout(),
	}
}

func (l *DeviceLink) PID() *actor.PID {
	return l.pid
}

func (l *DeviceLink) Connect() error {
	return domain.ResponseOf(l.root.RequestFuture(l.pid, domain.LinkConnectRequest{}, l.config.ConnectTimeout()+l.timeout).Result())
}

func (l *DeviceLink) Disconnect() error {
	return l.request(domain.LinkDisconnectRequest{})
}

func (l *DeviceLink) Subscribe(topic string) error {
	return l.request(domain.LinkSubscribeRequest{Topic: topic})
}

func (l *DeviceLink) Unsubscribe(topic string) error {
	return l.request(domain.LinkUnsubscribeRequest{Topic: topic})
}

func (l *DeviceLink) Publish(topic string, payload []byte) error {
	return l.request(domain.LinkPublishRequest{Topic: topic, Payload: payload})
}

func (l *DeviceLink) SubscribeStatus() error {
	return l.request(domain.LinkSubscribeStatusRequest{})
}

func (l *DeviceLink) RequestCurrentState() error {
	return l.request(domain.LinkRequestCurrentStateRequest{})
}

func (l *DeviceLink) PublishCommand(command dysonlink.WireCommand) error {
	return l.request(domain.LinkPublishCommandRequest{Command: command})
}

func (l *DeviceLink) State() (domain.LinkStateResponse, error) {
	result, err := l.root.RequestFuture(l.pid, domain.LinkStateRequest{}, l.timeout).Result()
	if err != nil {
		return domain.LinkStateResponse{}, err
	}
	resp, ok := result.(domain.LinkStateResponse)
	if !ok {
		return domain.LinkStateResponse{}, fmt.Errorf("unexpected response %T", result)
	}
	return resp, nil
}

func (l *DeviceLink) request(msg any) error {
	return domain.ResponseOf(l.root.RequestFuture(l.pid, msg, l.timeout).Result())
}
