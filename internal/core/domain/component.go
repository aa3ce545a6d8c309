package domain

import (
	"fmt"
	"strings"

	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

const (
	SENSOR_TYPE_SENSOR = "sensor"
	SENSOR_TYPE_BINARY = "binary_sensor"

	SENSOR_ID_BRIDGE_STATE = "bridge_state"

	COMMAND_POWER              = "power"
	COMMAND_PERCENTAGE         = "percentage"
	COMMAND_PRESET             = "preset"
	COMMAND_OSCILLATION        = "oscillation"
	COMMAND_NIGHT_MODE         = "night_mode"
	COMMAND_JET_FOCUS          = "jet_focus"
	COMMAND_MONITORING         = "continuous_monitoring"
	COMMAND_HEATING            = "heating"
	COMMAND_TARGET_TEMPERATURE = "target_temperature"
	COMMAND_HUMIDIFIER         = "humidifier"
	COMMAND_HUMIDIFIER_AUTO    = "humidifier_auto"
	COMMAND_TARGET_HUMIDITY    = "target_humidity"
)

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Serial            string // empty for bridge level sensors
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, duration, total_increasing
	DeviceClass       string // temperature, humidity, pm25, ...
	EntityCategory    string // diagnostic, config, nil
	ValueTemplate     string
	EnabledByDefault  *bool
	Icon              string
}

type GenericSwitch struct {
	Device        Device
	Serial        string
	Id            string
	Name          string
	UniqueId      string
	ValueTemplate string
	Icon          string
}

type GenericInputNumber struct {
	Device        Device
	Serial        string
	Id            string
	Name          string
	UniqueId      string
	ValueTemplate string
	Icon          string
	Max           float64
	Min           float64
	Step          float64
	Mode          string
	Unit          string
}

type GenericFan struct {
	Device      Device
	Serial      string
	Id          string
	Name        string
	UniqueId    string
	Oscillation bool
	PresetModes []string
}

func BridgeDevice(baseTopic, version string) Device {
	return Device{
		Id:           fmt.Sprintf("%s_bridge", baseTopic),
		Name:         "dyson2mqtt bridge",
		Model:        "dyson2mqtt",
		Manufacturer: "dyson2mqtt",
		Version:      version,
	}
}

func BridgeSensors(bridge Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:         bridge,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Connection state",
			UniqueId:       fmt.Sprintf("%s_%s", bridge.Id, SENSOR_ID_BRIDGE_STATE),
			DeviceClass:    "connectivity",
			EntityCategory: "diagnostic",
		},
	}
}

func DeviceOf(identity dysonlink.DeviceIdentity, product dysonlink.Product, viaDevice string) Device {
	name := identity.Name
	if name == "" {
		name = identity.Serial
	}
	return Device{
		Id:           entityId(identity.Serial),
		Name:         name,
		Model:        fmt.Sprintf("%s (%s)", product.Name, product.Model),
		Manufacturer: "Dyson",
		ViaDevice:    viaDevice,
	}
}

func entityId(serial string) string {
	return strings.ToLower(strings.ReplaceAll(serial, "-", "_"))
}

func jsonField(field string) string {
	return fmt.Sprintf("{{ value_json.%s }}", field)
}

type sensorSpec struct {
	id, name, unit, deviceClass, stateClass, category string
	enabled                                            func(dysonlink.Capabilities) bool
}

var deviceSensorSpecs = []sensorSpec{
	{"temperature", "Temperature", "°C", "temperature", "measurement", "", func(c dysonlink.Capabilities) bool { return c.TemperatureSensor }},
	{"humidity", "Humidity", "%", "humidity", "measurement", "", func(c dysonlink.Capabilities) bool { return c.HumiditySensor }},
	{"pm25", "PM 2.5", "µg/m³", "pm25", "measurement", "", func(c dysonlink.Capabilities) bool { return c.AirQualitySensor }},
	{"pm10", "PM 10", "µg/m³", "pm10", "measurement", "", func(c dysonlink.Capabilities) bool { return c.AirQualitySensor && c.NO2Sensor }},
	{"voc", "VOC index", "", "", "measurement", "", func(c dysonlink.Capabilities) bool { return c.AirQualitySensor }},
	{"no2", "NO2 index", "", "", "measurement", "", func(c dysonlink.Capabilities) bool { return c.NO2Sensor }},
	{"hepa_filter_hours", "HEPA filter life", "h", "duration", "measurement", "diagnostic", func(c dysonlink.Capabilities) bool { return c.HEPAFilter }},
	{"carbon_filter_hours", "Carbon filter life", "h", "duration", "measurement", "diagnostic", func(c dysonlink.Capabilities) bool { return c.CarbonFilter }},
}

type switchSpec struct {
	command, name, icon string
	enabled             func(dysonlink.Capabilities) bool
}

var deviceSwitchSpecs = []switchSpec{
	{COMMAND_NIGHT_MODE, "Night mode", "mdi:weather-night", func(c dysonlink.Capabilities) bool { return c.NightMode }},
	{COMMAND_JET_FOCUS, "Jet focus", "mdi:target", func(c dysonlink.Capabilities) bool { return c.FrontAirflow }},
	{COMMAND_MONITORING, "Continuous monitoring", "mdi:eye", func(c dysonlink.Capabilities) bool { return c.ContinuousMonitoring }},
	{COMMAND_HEATING, "Heating", "mdi:radiator", func(c dysonlink.Capabilities) bool { return c.Heating }},
	{COMMAND_HUMIDIFIER, "Humidifier", "mdi:air-humidifier", func(c dysonlink.Capabilities) bool { return c.Humidifier }},
	{COMMAND_HUMIDIFIER_AUTO, "Humidifier auto", "mdi:water-percent", func(c dysonlink.Capabilities) bool { return c.Humidifier }},
}

// DeviceEntities builds the platform entities for one device from its capabilities.
func DeviceEntities(identity dysonlink.DeviceIdentity, product dysonlink.Product, viaDevice string) ([]GenericFan, []GenericSensor, []GenericSwitch, []GenericInputNumber) {
	device := DeviceOf(identity, product, viaDevice)
	caps := product.Capabilities
	serial := identity.Serial

	fan := GenericFan{
		Device:      device,
		Serial:      serial,
		Id:          "fan",
		Name:        device.Name,
		UniqueId:    fmt.Sprintf("%s_fan", device.Id),
		Oscillation: caps.Oscillation,
	}
	if caps.AutoMode {
		fan.PresetModes = []string{PRESET_AUTO, PRESET_MANUAL}
	}

	var sensors []GenericSensor
	for _, spec := range deviceSensorSpecs {
		if !spec.enabled(caps) {
			continue
		}
		sensors = append(sensors, GenericSensor{
			Device:            device,
			Serial:            serial,
			Id:                spec.id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              spec.name,
			UniqueId:          fmt.Sprintf("%s_%s", device.Id, spec.id),
			UnitOfMeasurement: spec.unit,
			DeviceClass:       spec.deviceClass,
			StateClass:        spec.stateClass,
			EntityCategory:    spec.category,
			ValueTemplate:     jsonField(spec.id),
		})
	}
	if caps.Humidifier {
		sensors = append(sensors, GenericSensor{
			Device:        device,
			Serial:        serial,
			Id:            "water_tank_empty",
			SensorType:    SENSOR_TYPE_BINARY,
			Name:          "Water tank empty",
			UniqueId:      fmt.Sprintf("%s_water_tank_empty", device.Id),
			DeviceClass:   "problem",
			ValueTemplate: jsonField("water_tank_empty"),
		})
	}

	var switches []GenericSwitch
	for _, spec := range deviceSwitchSpecs {
		if !spec.enabled(caps) {
			continue
		}
		switches = append(switches, GenericSwitch{
			Device:        device,
			Serial:        serial,
			Id:            spec.command,
			Name:          spec.name,
			UniqueId:      fmt.Sprintf("%s_%s", device.Id, spec.command),
			ValueTemplate: jsonField(spec.command),
			Icon:          spec.icon,
		})
	}

	var numbers []GenericInputNumber
	if caps.Heating {
		numbers = append(numbers, GenericInputNumber{
			Device:        device,
			Serial:        serial,
			Id:            COMMAND_TARGET_TEMPERATURE,
			Name:          "Target temperature",
			UniqueId:      fmt.Sprintf("%s_%s", device.Id, COMMAND_TARGET_TEMPERATURE),
			ValueTemplate: jsonField(COMMAND_TARGET_TEMPERATURE),
			Icon:          "mdi:thermometer",
			Min:           dysonlink.MinTargetCelsius,
			Max:           dysonlink.MaxTargetCelsius,
			Step:          1,
			Mode:          "box",
			Unit:          "°C",
		})
	}
	if caps.Humidifier {
		numbers = append(numbers, GenericInputNumber{
			Device:        device,
			Serial:        serial,
			Id:            COMMAND_TARGET_HUMIDITY,
			Name:          "Target humidity",
			UniqueId:      fmt.Sprintf("%s_%s", device.Id, COMMAND_TARGET_HUMIDITY),
			ValueTemplate: jsonField(COMMAND_TARGET_HUMIDITY),
			Icon:          "mdi:water-percent",
			Min:           30,
			Max:           70,
			Step:          10,
			Mode:          "slider",
			Unit:          "%",
		})
	}

	return []GenericFan{fan}, sensors, switches, numbers
}
