package dysonlink

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrNotFinite     = errors.New("value is not a finite number")
)

// Intent is the closed set of high level changes a device accepts.
type Intent interface {
	intent()
}

type PowerIntent struct {
	On bool
	// Auto selects auto or manual mode when turning on.
	Auto bool
}

type FanSpeedIntent struct {
	Speed FanSpeed
}

type AutoModeIntent struct{ On bool }
type OscillationIntent struct{ On bool }

type OscillationAnglesIntent struct {
	Lower int
	Upper int
}

type NightModeIntent struct{ On bool }
type ContinuousMonitoringIntent struct{ On bool }
type FrontAirflowIntent struct{ On bool }
type HeatingIntent struct{ On bool }

type TargetTemperatureIntent struct {
	Celsius float64
}

type HumidifierIntent struct{ On bool }
type HumidifierAutoIntent struct{ On bool }

type TargetHumidityIntent struct {
	Percent int
}

func (PowerIntent) intent()                {}
func (FanSpeedIntent) intent()             {}
func (AutoModeIntent) intent()             {}
func (OscillationIntent) intent()          {}
func (OscillationAnglesIntent) intent()    {}
func (NightModeIntent) intent()            {}
func (ContinuousMonitoringIntent) intent() {}
func (FrontAirflowIntent) intent()         {}
func (HeatingIntent) intent()              {}
func (TargetTemperatureIntent) intent()    {}
func (HumidifierIntent) intent()           {}
func (HumidifierAutoIntent) intent()       {}
func (TargetHumidityIntent) intent()       {}

// Supports reports whether a device with these capabilities accepts the intent.
func (c Capabilities) Supports(intent Intent) bool {
	switch intent.(type) {
	case PowerIntent, FanSpeedIntent:
		return c.Fan
	case AutoModeIntent:
		return c.AutoMode
	case OscillationIntent, OscillationAnglesIntent:
		return c.Oscillation
	case NightModeIntent:
		return c.NightMode
	case ContinuousMonitoringIntent:
		return c.ContinuousMonitoring
	case FrontAirflowIntent:
		return c.FrontAirflow
	case HeatingIntent, TargetTemperatureIntent:
		return c.Heating
	case HumidifierIntent, HumidifierAutoIntent, TargetHumidityIntent:
		return c.Humidifier
	default:
		return false
	}
}

type fields = map[string]string

// dialectEncoding holds everything that differs between the two dialects.
type dialectEncoding struct {
	power        func(on, auto bool) fields
	speed        func(speed FanSpeed) fields
	autoMode     func(on bool) fields
	frontAirflow string
}

var dialects = map[Dialect]dialectEncoding{
	DialectPowerFlags: {
		power: func(on, auto bool) fields {
			if !on {
				return fields{"fpwr": "OFF"}
			}
			return fields{"fpwr": "ON", "auto": onOff(auto)}
		},
		speed: func(speed FanSpeed) fields {
			if speed.IsAuto() {
				return fields{"fpwr": "ON", "auto": "ON", "fnsp": "AUTO"}
			}
			return fields{"fpwr": "ON", "auto": "OFF", "fnsp": padSpeed(speed)}
		},
		autoMode: func(on bool) fields {
			return fields{"fpwr": "ON", "auto": onOff(on)}
		},
		frontAirflow: "fdir",
	},
	DialectFanMode: {
		power: func(on, auto bool) fields {
			switch {
			case !on:
				return fields{"fmod": "OFF"}
			case auto:
				return fields{"fmod": "AUTO"}
			default:
				return fields{"fmod": "FAN"}
			}
		},
		speed: func(speed FanSpeed) fields {
			if speed.IsAuto() {
				return fields{"fmod": "AUTO", "fnsp": "AUTO"}
			}
			return fields{"fmod": "FAN", "fnsp": padSpeed(speed)}
		},
		autoMode: func(on bool) fields {
			if on {
				return fields{"fmod": "AUTO"}
			}
			return fields{"fmod": "FAN"}
		},
		frontAirflow: "ffoc",
	},
}

// EncodeCommand translates an intent into a STATE-SET command for the given dialect.
func EncodeCommand(dialect Dialect, intent Intent, now time.Time) (WireCommand, error) {
	enc, ok := dialects[dialect]
	if !ok {
		return WireCommand{}, fmt.Errorf("unsupported dialect %d", dialect)
	}

	var data fields
	switch in := intent.(type) {
	case PowerIntent:
		data = enc.power(in.On, in.Auto)
	case FanSpeedIntent:
		speed := in.Speed
		if !speed.IsAuto() {
			speed = clampSpeed(speed)
		}
		data = enc.speed(speed)
	case AutoModeIntent:
		data = enc.autoMode(in.On)
	case OscillationIntent:
		data = fields{"oson": onOff(in.On)}
	case OscillationAnglesIntent:
		lower := clamp(in.Lower, MinOscillationAngle, MaxOscillationAngle)
		upper := clamp(in.Upper, MinOscillationAngle, MaxOscillationAngle)
		if lower > upper {
			lower, upper = upper, lower
		}
		data = fields{"oson": "ON", "osal": pad4(lower), "osau": pad4(upper)}
	case NightModeIntent:
		data = fields{"nmod": onOff(in.On)}
	case ContinuousMonitoringIntent:
		data = fields{"rhtm": onOff(in.On)}
	case FrontAirflowIntent:
		data = fields{enc.frontAirflow: onOff(in.On)}
	case HeatingIntent:
		if in.On {
			data = fields{"hmod": "HEAT"}
		} else {
			data = fields{"hmod": "OFF"}
		}
	case TargetTemperatureIntent:
		celsius := in.Celsius
		if math.IsNaN(celsius) || math.IsInf(celsius, 0) {
			return WireCommand{}, fmt.Errorf("%w: target temperature %v", ErrNotFinite, celsius)
		}
		if celsius < MinTargetCelsius {
			celsius = MinTargetCelsius
		} else if celsius > MaxTargetCelsius {
			celsius = MaxTargetCelsius
		}
		data = fields{"hmod": "HEAT", "hmax": pad4(CelsiusToDeciKelvin(celsius))}
	case HumidifierIntent:
		if in.On {
			data = fields{"hume": "HUMD"}
		} else {
			data = fields{"hume": "OFF"}
		}
	case HumidifierAutoIntent:
		data = fields{"haut": onOff(in.On)}
		if in.On {
			data["hume"] = "HUMD"
		}
	case TargetHumidityIntent:
		data = fields{"hume": "HUMD", "haut": "OFF", "humt": pad4(clamp(in.Percent, 0, 100))}
	default:
		return WireCommand{}, fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
	}

	return WireCommand{
		Kind:       KindStateSet,
		Time:       now,
		ModeReason: ModeReason,
		Fields:     data,
	}, nil
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func pad4(v int) string {
	return fmt.Sprintf("%04d", v)
}

func padSpeed(s FanSpeed) string {
	return pad4(int(s))
}
