package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

// Session lifecycle

type SessionConnectRequest struct {
	ActorRequestMixIn
}

type SessionConnectResponse struct {
	ActorResponseMixIn
}

type SessionDisconnectRequest struct {
	ActorRequestMixIn
}

type SessionDisconnectResponse struct {
	ActorResponseMixIn
}

// SessionIntentRequest asks a session to apply one intent. Name identifies
// the calling operation in logs and metrics.
type SessionIntentRequest struct {
	ActorRequestMixIn
	Name   string
	Intent dysonlink.Intent
}

type SessionIntentResponse struct {
	ActorResponseMixIn
}

// Session queries

type SessionStateRequest struct {
	ActorRequestMixIn
}

type SessionStateResponse struct {
	ActorResponseMixIn
	Identity  dysonlink.DeviceIdentity
	Product   dysonlink.Product
	Connected bool
	State     dysonlink.DeviceState
}

func (r SessionStateResponse) Summary() DeviceSummary {
	return DeviceSummary{
		Serial:       r.Identity.Serial,
		ProductType:  r.Identity.ProductType,
		Model:        r.Product.Model,
		Name:         r.Identity.Name,
		Connected:    r.Connected,
		Capabilities: r.Product.Capabilities,
		State:        r.State,
	}
}

// ParseIntent maps a platform command and its payload onto a session intent.
// The returned name labels the intent in logs and metrics.
func ParseIntent(command, payload string) (string, dysonlink.Intent, error) {
	payload = strings.TrimSpace(payload)
	switch command {
	case COMMAND_POWER:
		on, err := parseOnOff(payload)
		return "set_fan_power", dysonlink.PowerIntent{On: on}, err
	case COMMAND_PERCENTAGE:
		percent, err := strconv.Atoi(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: percentage %q", ErrInvalidValue, payload)
		}
		if percent <= 0 {
			return "set_fan_power", dysonlink.PowerIntent{On: false}, nil
		}
		return "set_fan_speed", dysonlink.FanSpeedIntent{Speed: dysonlink.PercentToSpeed(percent)}, nil
	case COMMAND_PRESET:
		switch strings.ToLower(payload) {
		case PRESET_AUTO:
			return "set_auto_mode", dysonlink.AutoModeIntent{On: true}, nil
		case PRESET_MANUAL:
			return "set_auto_mode", dysonlink.AutoModeIntent{On: false}, nil
		}
		return "", nil, fmt.Errorf("%w: preset %q", ErrInvalidValue, payload)
	case COMMAND_OSCILLATION:
		on, err := parseOnOff(payload)
		return "set_oscillation", dysonlink.OscillationIntent{On: on}, err
	case COMMAND_NIGHT_MODE:
		on, err := parseOnOff(payload)
		return "set_night_mode", dysonlink.NightModeIntent{On: on}, err
	case COMMAND_JET_FOCUS:
		on, err := parseOnOff(payload)
		return "set_jet_focus", dysonlink.FrontAirflowIntent{On: on}, err
	case COMMAND_MONITORING:
		on, err := parseOnOff(payload)
		return "set_continuous_monitoring", dysonlink.ContinuousMonitoringIntent{On: on}, err
	case COMMAND_HEATING:
		on, err := parseOnOff(payload)
		return "set_heating_mode", dysonlink.HeatingIntent{On: on}, err
	case COMMAND_TARGET_TEMPERATURE:
		celsius, err := parseFinite(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: temperature %q", ErrInvalidValue, payload)
		}
		return "set_target_temperature", dysonlink.TargetTemperatureIntent{Celsius: celsius}, nil
	case COMMAND_HUMIDIFIER:
		on, err := parseOnOff(payload)
		return "set_humidifier", dysonlink.HumidifierIntent{On: on}, err
	case COMMAND_HUMIDIFIER_AUTO:
		on, err := parseOnOff(payload)
		return "set_humidifier_auto", dysonlink.HumidifierAutoIntent{On: on}, err
	case COMMAND_TARGET_HUMIDITY:
		percent, err := parseFinite(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: humidity %q", ErrInvalidValue, payload)
		}
		percent = math.Max(0, math.Min(100, percent))
		return "set_target_humidity", dysonlink.TargetHumidityIntent{Percent: int(math.Round(percent))}, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown command %q", ErrInvalidValue, command)
	}
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(payload string) (float64, error) {
	v, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, dysonlink.ErrNotFinite
	}
	return v, nil
}

func parseOnOff(payload string) (bool, error) {
	switch strings.ToLower(payload) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not on/off", ErrInvalidValue, payload)
}
