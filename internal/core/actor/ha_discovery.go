package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/util/actorutil"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type announcedDevice struct {
	identity dysonlink.DeviceIdentity
	product  dysonlink.Product
}

// announceDevices asks the discovery actor to describe connected devices.
type announceDevices struct {
	devices []announcedDevice
}

type HADiscoveryActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	mqttActor *actor.PID
	bridge    domain.Device
	announced map[string]struct{}

	logger *zap.Logger
}

func NewHADiscoveryActor(bridge domain.Device, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		mqttActor: mqttActor,
		bridge:    bridge,
		announced: make(map[string]struct{}),
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(ctx actor.Context) {
	state.behavior.Receive(ctx)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		if !msg.Healthy {
			panic(errors.New("MQTT Actor is not healthy"))
		}
		ctx.Request(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors: domain.BridgeSensors(state.bridge),
		})
		state.behavior.Become(state.ReadyReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) ReadyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case announceDevices:
		var fans []domain.GenericFan
		var sensors []domain.GenericSensor
		var switches []domain.GenericSwitch
		var inputNumbers []domain.GenericInputNumber

		for _, d := range msg.devices {
			if _, ok := state.announced[d.identity.Serial]; ok {
				continue
			}
			state.announced[d.identity.Serial] = struct{}{}
			f, s, sw, n := domain.DeviceEntities(d.identity, d.product, state.bridge.Id)
			fans = append(fans, f...)
			sensors = append(sensors, s...)
			switches = append(switches, sw...)
			inputNumbers = append(inputNumbers, n...)
		}
		if len(fans) == 0 {
			return
		}
		state.logger.Info("hadiscovery@ready announcing devices", zap.Int("fans", len(fans)))
		ctx.Request(state.mqttActor, domain.PublishDiscoveryRequest{
			Fans:         fans,
			Sensors:      sensors,
			Switches:     switches,
			InputNumbers: inputNumbers,
		})
	case domain.PublishDiscoveryResponse:
		if msg.HasResponseError() {
			state.logger.Error("hadiscovery@ready publish failed", zap.Error(msg.GetResponseError()))
		}
	default:
		state.logger.Debug("hadiscovery@ready: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
