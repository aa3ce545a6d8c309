package domain

import (
	"testing"

	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {

	assert := assert.New(t)

	cases := []struct {
		command, payload string
		name             string
		intent           dysonlink.Intent
	}{
		{COMMAND_POWER, "on", "set_fan_power", dysonlink.PowerIntent{On: true}},
		{COMMAND_POWER, "OFF", "set_fan_power", dysonlink.PowerIntent{On: false}},
		{COMMAND_PERCENTAGE, "47", "set_fan_speed", dysonlink.FanSpeedIntent{Speed: 5}},
		{COMMAND_PERCENTAGE, "0", "set_fan_power", dysonlink.PowerIntent{On: false}},
		{COMMAND_PRESET, "auto", "set_auto_mode", dysonlink.AutoModeIntent{On: true}},
		{COMMAND_PRESET, "manual", "set_auto_mode", dysonlink.AutoModeIntent{On: false}},
		{COMMAND_OSCILLATION, "on", "set_oscillation", dysonlink.OscillationIntent{On: true}},
		{COMMAND_NIGHT_MODE, "true", "set_night_mode", dysonlink.NightModeIntent{On: true}},
		{COMMAND_JET_FOCUS, "off", "set_jet_focus", dysonlink.FrontAirflowIntent{On: false}},
		{COMMAND_MONITORING, "on", "set_continuous_monitoring", dysonlink.ContinuousMonitoringIntent{On: true}},
		{COMMAND_HEATING, "on", "set_heating_mode", dysonlink.HeatingIntent{On: true}},
		{COMMAND_TARGET_TEMPERATURE, "21.5", "set_target_temperature", dysonlink.TargetTemperatureIntent{Celsius: 21.5}},
		{COMMAND_HUMIDIFIER, "on", "set_humidifier", dysonlink.HumidifierIntent{On: true}},
		{COMMAND_HUMIDIFIER_AUTO, "off", "set_humidifier_auto", dysonlink.HumidifierAutoIntent{On: false}},
		{COMMAND_TARGET_HUMIDITY, "50.0", "set_target_humidity", dysonlink.TargetHumidityIntent{Percent: 50}},
		{COMMAND_TARGET_HUMIDITY, "1e300", "set_target_humidity", dysonlink.TargetHumidityIntent{Percent: 100}},
	}

	for _, c := range cases {
		name, intent, err := ParseIntent(c.command, c.payload)
		assert.NoError(err, "%s %s", c.command, c.payload)
		assert.Equal(c.name, name)
		assert.Equal(c.intent, intent)
	}
}

func TestParseIntentInvalid(t *testing.T) {

	assert := assert.New(t)

	for _, c := range [][2]string{
		{COMMAND_POWER, "maybe"},
		{COMMAND_PERCENTAGE, "fast"},
		{COMMAND_PRESET, "turbo"},
		{COMMAND_TARGET_TEMPERATURE, "warm"},
		{COMMAND_TARGET_TEMPERATURE, "NaN"},
		{COMMAND_TARGET_TEMPERATURE, "Inf"},
		{COMMAND_TARGET_TEMPERATURE, "-Inf"},
		{COMMAND_TARGET_HUMIDITY, "NaN"},
		{COMMAND_TARGET_HUMIDITY, "+Inf"},
		{COMMAND_TARGET_HUMIDITY, "damp"},
		{"self_destruct", "on"},
	} {
		_, _, err := ParseIntent(c[0], c[1])
		assert.ErrorIs(err, ErrInvalidValue, "%s %s", c[0], c[1])
	}
}
