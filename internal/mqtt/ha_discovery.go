package mqtt

import (
	"fmt"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	ValueTemplate     string            `json:"value_template,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`
	Min               float64           `json:"min,omitempty"`
	Max               float64           `json:"max,omitempty"`
	Step              float64           `json:"step,omitempty"`
	Mode              string            `json:"mode,omitempty"`

	// fan platform
	StateValueTemplate       string   `json:"state_value_template,omitempty"`
	PercentageStateTopic     string   `json:"percentage_state_topic,omitempty"`
	PercentageCommandTopic   string   `json:"percentage_command_topic,omitempty"`
	PercentageValueTemplate  string   `json:"percentage_value_template,omitempty"`
	PresetModeStateTopic     string   `json:"preset_mode_state_topic,omitempty"`
	PresetModeCommandTopic   string   `json:"preset_mode_command_topic,omitempty"`
	PresetModeValueTemplate  string   `json:"preset_mode_value_template,omitempty"`
	PresetModes              []string `json:"preset_modes,omitempty"`
	OscillationStateTopic    string   `json:"oscillation_state_topic,omitempty"`
	OscillationCommandTopic  string   `json:"oscillation_command_topic,omitempty"`
	OscillationValueTemplate string   `json:"oscillation_value_template,omitempty"`
	PayloadOscillationOn     string   `json:"payload_oscillation_on,omitempty"`
	PayloadOscillationOff    string   `json:"payload_oscillation_off,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func HADiscoverySensorTopic(prefix string, sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", prefix, sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func HADiscoverySwitchTopic(prefix string, sensor domain.GenericSwitch) string {
	return fmt.Sprintf("%s/switch/%s/%s/config", prefix, sensor.Device.Id, sensor.Id)
}

func HADiscoveryInputNumberTopic(prefix string, sensor domain.GenericInputNumber) string {
	return fmt.Sprintf("%s/number/%s/%s/config", prefix, sensor.Device.Id, sensor.Id)
}

func HADiscoveryFanTopic(prefix string, fan domain.GenericFan) string {
	return fmt.Sprintf("%s/fan/%s/%s/config", prefix, fan.Device.Id, fan.Id)
}

func (c *MQTTClient) availabilityTopic(serial string) string {
	if serial == "" {
		return c.BridgeStateTopic()
	}
	return c.DeviceAvailabilityTopic(serial)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	topic := client.BridgeStateTopic()
	if sensor.Serial != "" {
		topic = client.DeviceStateTopic(sensor.Serial)
	}
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		ValueTemplate:     sensor.ValueTemplate,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		AvTopic:           client.availabilityTopic(sensor.Serial),
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.Id == domain.SENSOR_ID_BRIDGE_STATE {
		disConfig.AvTopic = ""
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	} else if sensor.SensorType == domain.SENSOR_TYPE_BINARY {
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func GenericSwitchToHADiscoveryMessage(client *MQTTClient, _switch domain.GenericSwitch) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:        device(_switch.Device),
		StateTopic:    client.DeviceStateTopic(_switch.Serial),
		CommandTopic:  client.DeviceCommandTopic(_switch.Serial, _switch.Id),
		ValueTemplate: _switch.ValueTemplate,
		AvTopic:       client.availabilityTopic(_switch.Serial),
		Name:          _switch.Name,
		UniqueId:      _switch.UniqueId,
		Icon:          _switch.Icon,
		Platform:      "mqtt",
		PayloadOn:     MQTT_PAYLOAD_ON,
		PayloadOff:    MQTT_PAYLOAD_OFF,
	}
}

func GenericInputNumberToHADiscoveryMessage(client *MQTTClient, inputNumber domain.GenericInputNumber) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:            device(inputNumber.Device),
		StateTopic:        client.DeviceStateTopic(inputNumber.Serial),
		CommandTopic:      client.DeviceCommandTopic(inputNumber.Serial, inputNumber.Id),
		ValueTemplate:     inputNumber.ValueTemplate,
		AvTopic:           client.availabilityTopic(inputNumber.Serial),
		Name:              inputNumber.Name,
		UniqueId:          inputNumber.UniqueId,
		Icon:              inputNumber.Icon,
		Platform:          "mqtt",
		Min:               inputNumber.Min,
		Max:               inputNumber.Max,
		Step:              inputNumber.Step,
		Mode:              inputNumber.Mode,
		UnitOfMeasurement: inputNumber.Unit,
	}
}

func GenericFanToHADiscoveryMessage(client *MQTTClient, fan domain.GenericFan) HADiscoveryConfig {
	stateTopic := client.DeviceStateTopic(fan.Serial)
	disConfig := HADiscoveryConfig{
		Device:                  device(fan.Device),
		StateTopic:              stateTopic,
		StateValueTemplate:      "{{ value_json.state }}",
		CommandTopic:            client.DeviceCommandTopic(fan.Serial, domain.COMMAND_POWER),
		AvTopic:                 client.availabilityTopic(fan.Serial),
		Name:                    fan.Name,
		UniqueId:                fan.UniqueId,
		Platform:                "mqtt",
		PayloadOn:               MQTT_PAYLOAD_ON,
		PayloadOff:              MQTT_PAYLOAD_OFF,
		PercentageStateTopic:    stateTopic,
		PercentageCommandTopic:  client.DeviceCommandTopic(fan.Serial, domain.COMMAND_PERCENTAGE),
		PercentageValueTemplate: "{{ value_json.percentage }}",
	}
	if len(fan.PresetModes) > 0 {
		disConfig.PresetModes = fan.PresetModes
		disConfig.PresetModeStateTopic = stateTopic
		disConfig.PresetModeCommandTopic = client.DeviceCommandTopic(fan.Serial, domain.COMMAND_PRESET)
		disConfig.PresetModeValueTemplate = "{{ value_json.preset_mode }}"
	}
	if fan.Oscillation {
		disConfig.OscillationStateTopic = stateTopic
		disConfig.OscillationCommandTopic = client.DeviceCommandTopic(fan.Serial, domain.COMMAND_OSCILLATION)
		disConfig.OscillationValueTemplate = "{{ value_json.oscillation }}"
		disConfig.PayloadOscillationOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOscillationOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
