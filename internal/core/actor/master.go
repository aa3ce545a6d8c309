package actor

import (
	"context"
	"fmt"
	"time"

	adactor "github.com/berfenger/dyson2mqtt/internal/adapter/actor"
	"github.com/berfenger/dyson2mqtt/internal/config"
	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/core/service"
	. "github.com/berfenger/dyson2mqtt/internal/util/actorutil"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"go.uber.org/zap"
)

type MQTTActorProvider func() *adactor.MQTTActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	subscription       *eventstream.Subscription
	orchestrator       *service.Orchestrator
	mqttActor          *actor.PID
	haDiscoveryActor   *actor.PID
	mqttActorProvider  MQTTActorProvider
	bridge             domain.Device
	baseLogger         *zap.Logger
	logger             *zap.Logger
}

type healthCheckResult struct {
	mqttActorHealthy bool
	sessionsHealthy  int
	checksExpected   int
	checksReceived   int
	respondTo        *actor.PID
}

// discoveryFinished carries the outcome of one orchestrator run.
type discoveryFinished struct {
	result domain.ConnectResult
	err    error
}

type sessionHealthResponse struct {
	healthy bool
}

func NewMasterOfPuppetsActor(config config.Config, orchestrator *service.Orchestrator, eventStream *eventstream.EventStream,
	mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		baseLogger:        logger,
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       eventStream,
		orchestrator:      orchestrator,
		mqttActorProvider: mqttActorProvider,
		bridge:            domain.BridgeDevice(config.MQTT.BaseTopic, versioninfo.Short()),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(ctx actor.Context) {
	state.behavior.Receive(ctx)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// forward session events into the mailbox
		root := ctx.ActorSystem().Root
		self := ctx.Self()
		state.subscription = state.eventStream.Subscribe(func(evt any) {
			if e, ok := evt.(domain.SessionEvent); ok {
				root.Send(self, e)
			}
		})

		if state.config.MQTT.HADiscoveryEnable {
			haDiscoveryProps := actor.PropsFromProducer(func() actor.Actor {
				return NewHADiscoveryActor(state.bridge, state.mqttActor, state.baseLogger)
			})
			state.haDiscoveryActor, err = ctx.SpawnNamed(haDiscoveryProps, domain.ACTOR_ID_HA_DISCOVERY)
			if err != nil {
				panic(err)
			}
		}

		state.startDiscovery(ctx)

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		sessions := state.orchestrator.List()
		state.currentHealthCheck.reset(1 + len(sessions))
		state.currentHealthCheck.respondTo = ForRequest(msg).ReplyTo(ctx)
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// Session Actor Requests
		for _, session := range sessions {
			future := ctx.RequestFuture(session.PID(), domain.ActorHealthRequest{}, 500*time.Millisecond)
			ctx.ReenterAfter(future, func(res any, err error) {
				resp, ok := res.(domain.ActorHealthResponse)
				ctx.Send(ctx.Self(), sessionHealthResponse{healthy: err == nil && ok && resp.Healthy})
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case discoveryFinished:
		state.onDiscoveryFinished(ctx, msg)
	case adactor.ParsedCommand:
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			state.routeCommand(ctx, msg)
		}
	case domain.StateChanged:
		state.publishDeviceUpdate(ctx, domain.DeviceStateUpdateEvent{
			DeviceUpdateEventMixIn: domain.DeviceUpdateEventMixIn{Serial: msg.Serial},
			Payload:                domain.PresentState(msg.State),
		})
	case domain.SessionConnected:
		state.logger.Info("master@default device online", zap.String("serial", msg.Serial))
		state.publishAvailability(ctx, msg.Serial, true)
	case domain.SessionDisconnected:
		state.logger.Info("master@default device offline", zap.String("serial", msg.Serial), zap.Error(msg.Err))
		state.publishAvailability(ctx, msg.Serial, false)
	case domain.SessionReconnectFailed:
		state.logger.Error("master@default device gave up reconnecting", zap.String("serial", msg.Serial))
		state.publishAvailability(ctx, msg.Serial, false)
	case domain.SessionError:
		state.logger.Warn("master@default device error", zap.String("serial", msg.Serial), zap.Error(msg.Err))
	case domain.SessionOffline, domain.SessionReconnecting:
	case domain.PublishDeviceUpdateResponse:
		if msg.HasResponseError() {
			state.logger.Warn("master@default device update not published", zap.Error(msg.GetResponseError()))
		}
	case *actor.Stopping:
		if state.subscription != nil {
			state.eventStream.Unsubscribe(state.subscription)
		}
	case *actor.Started, *actor.Stopped, *actor.Restarting:
	default:
		state.logger.Debug("master@default ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		ctx.CancelReceiveTimeout()
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy && msg.Id == domain.ACTOR_ID_MQTT {
			state.currentHealthCheck.mqttActorHealthy = true
		}
		state.checkHealthDone(ctx)
	case sessionHealthResponse:
		state.currentHealthCheck.checksReceived++
		if msg.healthy {
			state.currentHealthCheck.sessionsHealthy++
		}
		state.checkHealthDone(ctx)
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) checkHealthDone(ctx actor.Context) {
	if state.currentHealthCheck.allReceived() {
		state.currentHealthCheck.respond(ctx)
		ctx.CancelReceiveTimeout()
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	}
}

func (state *MasterOfPuppetsActor) startDiscovery(ctx actor.Context) {
	credentials := state.cloudCredentials()
	manual := manualDevices(state.config.Devices)
	orchestrator := state.orchestrator
	NewBackgroundTask(ctx, func() (*discoveryFinished, error) {
		result := orchestrator.ConnectAll(context.Background(), credentials, manual)
		return &discoveryFinished{result: result}, nil
	}).Recover(func(err error) discoveryFinished {
		return discoveryFinished{err: err}
	}).PipeTo(ctx.Self())
}

func (state *MasterOfPuppetsActor) onDiscoveryFinished(ctx actor.Context, msg discoveryFinished) {
	if msg.err != nil {
		state.logger.Error("master@default discovery failed", zap.Error(msg.err))
		return
	}
	result := msg.result
	state.logger.Info("master@default discovery finished",
		zap.Strings("connected", result.Connected),
		zap.Int("unsupported", len(result.Unsupported)),
		zap.Int("failed", len(result.Failed)))
	announce := announceDevices{}
	for _, serial := range result.Connected {
		session, ok := state.orchestrator.Get(serial)
		if !ok {
			continue
		}
		announce.devices = append(announce.devices, announcedDevice{identity: session.Identity(), product: session.Product()})
		state.publishAvailability(ctx, serial, true)
	}
	if state.haDiscoveryActor != nil {
		ctx.Send(state.haDiscoveryActor, announce)
	}
}

func (state *MasterOfPuppetsActor) routeCommand(ctx actor.Context, msg adactor.ParsedCommand) {
	cmd := msg.Command
	session, ok := state.orchestrator.Get(cmd.Serial)
	if !ok {
		state.logger.Warn("master@default command for unknown device", zap.String("serial", cmd.Serial))
		return
	}
	name, intent, err := domain.ParseIntent(cmd.Command, cmd.Payload)
	if err != nil {
		state.logger.Warn("master@default invalid command", zap.String("serial", cmd.Serial), zap.Error(err))
		return
	}
	future := ctx.RequestFuture(session.PID(), domain.SessionIntentRequest{Name: name, Intent: intent},
		state.config.Link.RequestTimeout()+state.config.Session.PowerOnDebounce())
	ctx.ReenterAfter(future, func(res any, err error) {
		if err := domain.ResponseOf(res, err); err != nil {
			state.logger.Warn("master@default command failed",
				zap.String("serial", cmd.Serial), zap.String("command", cmd.Command), zap.Error(err))
		}
	})
}

func (state *MasterOfPuppetsActor) publishAvailability(ctx actor.Context, serial string, online bool) {
	state.publishDeviceUpdate(ctx, domain.DeviceAvailabilityUpdateEvent{
		DeviceUpdateEventMixIn: domain.DeviceUpdateEventMixIn{Serial: serial},
		Online:                 online,
	})
}

func (state *MasterOfPuppetsActor) publishDeviceUpdate(ctx actor.Context, event domain.DeviceUpdateEvent) {
	ctx.Request(state.mqttActor, domain.PublishDeviceUpdateRequest{Event: event, Retain: true})
}

func (state *MasterOfPuppetsActor) cloudCredentials() *domain.CloudCredentials {
	if !state.config.Cloud.Enable {
		return nil
	}
	return &domain.CloudCredentials{
		Email:   state.config.Cloud.Email,
		Token:   state.config.Cloud.Token,
		Country: state.config.Cloud.Country,
	}
}

func manualDevices(devices []config.DeviceConfig) []dysonlink.DeviceIdentity {
	out := make([]dysonlink.DeviceIdentity, 0, len(devices))
	for _, d := range devices {
		out = append(out, dysonlink.DeviceIdentity{
			Serial:      d.Serial,
			ProductType: d.ProductType,
			Name:        d.Name,
			Credential:  d.Credential,
			Address:     d.Address,
		})
	}
	return out
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset(expected int) {
	state.mqttActorHealthy = false
	state.sessionsHealthy = 0
	state.checksExpected = expected
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived >= state.checksExpected
}

func (state *healthCheckResult) allHealthy() bool {
	return state.mqttActorHealthy && state.sessionsHealthy == state.checksExpected-1
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
		State:   fmt.Sprintf("%d/%d sessions healthy", state.sessionsHealthy, state.checksExpected-1),
	}
	Reply(ctx, state.respondTo, resp)
}
