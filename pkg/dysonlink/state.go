package dysonlink

import (
	"encoding/json"
)

// FanSpeed is a manual speed in 1..10 or FanSpeedAuto.
type FanSpeed int

// FanSpeedAuto means the device picks the speed and the actual value is unknown.
const FanSpeedAuto FanSpeed = -1

const (
	MinFanSpeed FanSpeed = 1
	MaxFanSpeed FanSpeed = 10
)

func (s FanSpeed) IsAuto() bool {
	return s == FanSpeedAuto
}

// Opt holds an optional value. The zero value is absent.
type Opt[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

func None[T any]() Opt[T] {
	return Opt[T]{}
}

func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Opt[T]) IsSet() bool {
	return o.ok
}

func (o Opt[T]) OrElse(v T) T {
	if o.ok {
		return o.value
	}
	return v
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

type patchOp uint8

const (
	patchKeep patchOp = iota
	patchSet
	patchClear
)

// Patch is one field of a StateDelta: keep the current value, replace it, or
// clear it back to unknown.
type Patch[T any] struct {
	op    patchOp
	value T
}

func Set[T any](v T) Patch[T] {
	return Patch[T]{op: patchSet, value: v}
}

func Clear[T any]() Patch[T] {
	return Patch[T]{op: patchClear}
}

func (p Patch[T]) IsKeep() bool {
	return p.op == patchKeep
}

func (p Patch[T]) IsClear() bool {
	return p.op == patchClear
}

func (p Patch[T]) Value() (T, bool) {
	return p.value, p.op == patchSet
}

func (p Patch[T]) apply(current Opt[T]) Opt[T] {
	switch p.op {
	case patchSet:
		return Some(p.value)
	case patchClear:
		return None[T]()
	default:
		return current
	}
}

func (p Patch[T]) applyValue(current T) T {
	switch p.op {
	case patchSet:
		return p.value
	case patchClear:
		var zero T
		return zero
	default:
		return current
	}
}

// DeviceState is the normalized view of one device. It holds no references,
// so every copy is an independent snapshot. Absent optionals mean unknown.
type DeviceState struct {
	Connected            bool          `json:"connected"`
	On                   bool          `json:"on"`
	FanSpeed             Opt[FanSpeed] `json:"fan_speed"`
	Oscillation          bool          `json:"oscillation"`
	OscillationLower     Opt[int]      `json:"oscillation_lower"`
	OscillationUpper     Opt[int]      `json:"oscillation_upper"`
	AutoMode             bool          `json:"auto_mode"`
	NightMode            bool          `json:"night_mode"`
	ContinuousMonitoring bool          `json:"continuous_monitoring"`
	FrontAirflow         bool          `json:"front_airflow"`
	// Temperature and TargetTemperature are tenths of Kelvin.
	Temperature       Opt[int] `json:"temperature"`
	Humidity          Opt[int] `json:"humidity"`
	PM25              Opt[int] `json:"pm25"`
	PM10              Opt[int] `json:"pm10"`
	VOC               Opt[int] `json:"voc"`
	NO2               Opt[int] `json:"no2"`
	HEPAFilterHours   Opt[int] `json:"hepa_filter_hours"`
	CarbonFilterHours Opt[int] `json:"carbon_filter_hours"`
	HeatingEnabled    bool     `json:"heating_enabled"`
	TargetTemperature Opt[int] `json:"target_temperature"`
	HumidifierEnabled bool     `json:"humidifier_enabled"`
	HumidifierAuto    bool     `json:"humidifier_auto"`
	TargetHumidity    Opt[int] `json:"target_humidity"`
	WaterTankEmpty    bool     `json:"water_tank_empty"`
}

// StateDelta is the partial update produced by one decoded message.
type StateDelta struct {
	Connected            Patch[bool]
	On                   Patch[bool]
	FanSpeed             Patch[FanSpeed]
	Oscillation          Patch[bool]
	OscillationLower     Patch[int]
	OscillationUpper     Patch[int]
	AutoMode             Patch[bool]
	NightMode            Patch[bool]
	ContinuousMonitoring Patch[bool]
	FrontAirflow         Patch[bool]
	Temperature          Patch[int]
	Humidity             Patch[int]
	PM25                 Patch[int]
	PM10                 Patch[int]
	VOC                  Patch[int]
	NO2                  Patch[int]
	HEPAFilterHours      Patch[int]
	CarbonFilterHours    Patch[int]
	HeatingEnabled       Patch[bool]
	TargetTemperature    Patch[int]
	HumidifierEnabled    Patch[bool]
	HumidifierAuto       Patch[bool]
	TargetHumidity       Patch[int]
	WaterTankEmpty       Patch[bool]
}

func (d StateDelta) IsEmpty() bool {
	return d == StateDelta{}
}

// Merge returns a new state with the delta applied. The receiver is untouched.
func (s DeviceState) Merge(d StateDelta) DeviceState {
	return DeviceState{
		Connected:            d.Connected.applyValue(s.Connected),
		On:                   d.On.applyValue(s.On),
		FanSpeed:             d.FanSpeed.apply(s.FanSpeed),
		Oscillation:          d.Oscillation.applyValue(s.Oscillation),
		OscillationLower:     d.OscillationLower.apply(s.OscillationLower),
		OscillationUpper:     d.OscillationUpper.apply(s.OscillationUpper),
		AutoMode:             d.AutoMode.applyValue(s.AutoMode),
		NightMode:            d.NightMode.applyValue(s.NightMode),
		ContinuousMonitoring: d.ContinuousMonitoring.applyValue(s.ContinuousMonitoring),
		FrontAirflow:         d.FrontAirflow.applyValue(s.FrontAirflow),
		Temperature:          d.Temperature.apply(s.Temperature),
		Humidity:             d.Humidity.apply(s.Humidity),
		PM25:                 d.PM25.apply(s.PM25),
		PM10:                 d.PM10.apply(s.PM10),
		VOC:                  d.VOC.apply(s.VOC),
		NO2:                  d.NO2.apply(s.NO2),
		HEPAFilterHours:      d.HEPAFilterHours.apply(s.HEPAFilterHours),
		CarbonFilterHours:    d.CarbonFilterHours.apply(s.CarbonFilterHours),
		HeatingEnabled:       d.HeatingEnabled.applyValue(s.HeatingEnabled),
		TargetTemperature:    d.TargetTemperature.apply(s.TargetTemperature),
		HumidifierEnabled:    d.HumidifierEnabled.applyValue(s.HumidifierEnabled),
		HumidifierAuto:       d.HumidifierAuto.applyValue(s.HumidifierAuto),
		TargetHumidity:       d.TargetHumidity.apply(s.TargetHumidity),
		WaterTankEmpty:       d.WaterTankEmpty.applyValue(s.WaterTankEmpty),
	}
}

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
