package dysonlink

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC)

func encode(t *testing.T, dialect Dialect, intent Intent) map[string]string {
	cmd, err := EncodeCommand(dialect, intent, testNow)
	require.NoError(t, err)
	assert.Equal(t, KindStateSet, cmd.Kind)
	assert.Equal(t, ModeReason, cmd.ModeReason)
	assert.Equal(t, testNow, cmd.Time)
	return cmd.Fields
}

func TestEncodePowerByDialect(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"fpwr": "ON", "auto": "OFF"}, encode(t, DialectPowerFlags, PowerIntent{On: true}))
	assert.Equal(map[string]string{"fpwr": "ON", "auto": "ON"}, encode(t, DialectPowerFlags, PowerIntent{On: true, Auto: true}))
	assert.Equal(map[string]string{"fpwr": "OFF"}, encode(t, DialectPowerFlags, PowerIntent{On: false}))

	assert.Equal(map[string]string{"fmod": "FAN"}, encode(t, DialectFanMode, PowerIntent{On: true}))
	assert.Equal(map[string]string{"fmod": "AUTO"}, encode(t, DialectFanMode, PowerIntent{On: true, Auto: true}))
	assert.Equal(map[string]string{"fmod": "OFF"}, encode(t, DialectFanMode, PowerIntent{On: false, Auto: true}))
}

func TestEncodeFanSpeed(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"fpwr": "ON", "auto": "OFF", "fnsp": "0005"}, encode(t, DialectPowerFlags, FanSpeedIntent{Speed: 5}))
	assert.Equal(map[string]string{"fmod": "FAN", "fnsp": "0010"}, encode(t, DialectFanMode, FanSpeedIntent{Speed: 10}))
	assert.Equal(map[string]string{"fpwr": "ON", "auto": "ON", "fnsp": "AUTO"}, encode(t, DialectPowerFlags, FanSpeedIntent{Speed: FanSpeedAuto}))
	assert.Equal(map[string]string{"fmod": "AUTO", "fnsp": "AUTO"}, encode(t, DialectFanMode, FanSpeedIntent{Speed: FanSpeedAuto}))

	assert.Equal("0001", encode(t, DialectPowerFlags, FanSpeedIntent{Speed: 0})["fnsp"], "0 clamps to 1")
	assert.Equal("0010", encode(t, DialectPowerFlags, FanSpeedIntent{Speed: 42})["fnsp"], "clamps to 10")
}

func TestFanSpeedRoundTrip(t *testing.T) {

	assert := assert.New(t)

	for _, dialect := range []Dialect{DialectPowerFlags, DialectFanMode} {
		for s := MinFanSpeed; s <= MaxFanSpeed; s++ {
			delta := DecodeState(Message{Kind: KindStateChange, Fields: encode(t, dialect, FanSpeedIntent{Speed: s})})
			speed, ok := delta.FanSpeed.Value()
			assert.True(ok)
			assert.Equal(s, speed, "dialect %s speed %d", dialect, s)
			on, _ := delta.On.Value()
			assert.True(on)
			auto, _ := delta.AutoMode.Value()
			assert.False(auto)
		}
	}
}

func TestEncodeAutoMode(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"fpwr": "ON", "auto": "ON"}, encode(t, DialectPowerFlags, AutoModeIntent{On: true}))
	assert.Equal(map[string]string{"fpwr": "ON", "auto": "OFF"}, encode(t, DialectPowerFlags, AutoModeIntent{On: false}))
	assert.Equal(map[string]string{"fmod": "AUTO"}, encode(t, DialectFanMode, AutoModeIntent{On: true}))
	assert.Equal(map[string]string{"fmod": "FAN"}, encode(t, DialectFanMode, AutoModeIntent{On: false}))
}

func TestEncodeOscillationAngles(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"oson": "ON", "osal": "0090", "osau": "0180"}, encode(t, DialectPowerFlags, OscillationAnglesIntent{Lower: 90, Upper: 180}))
	assert.Equal(map[string]string{"oson": "ON", "osal": "0045", "osau": "0355"}, encode(t, DialectPowerFlags, OscillationAnglesIntent{Lower: 0, Upper: 400}), "clamped")
	assert.Equal(map[string]string{"oson": "ON", "osal": "0100", "osau": "0200"}, encode(t, DialectPowerFlags, OscillationAnglesIntent{Lower: 200, Upper: 100}), "ordered")
	assert.Equal(map[string]string{"oson": "OFF"}, encode(t, DialectFanMode, OscillationIntent{On: false}))
}

func TestEncodeToggles(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"nmod": "ON"}, encode(t, DialectPowerFlags, NightModeIntent{On: true}))
	assert.Equal(map[string]string{"rhtm": "OFF"}, encode(t, DialectPowerFlags, ContinuousMonitoringIntent{On: false}))
	assert.Equal(map[string]string{"fdir": "ON"}, encode(t, DialectPowerFlags, FrontAirflowIntent{On: true}))
	assert.Equal(map[string]string{"ffoc": "ON"}, encode(t, DialectFanMode, FrontAirflowIntent{On: true}))
	assert.Equal(map[string]string{"hmod": "HEAT"}, encode(t, DialectPowerFlags, HeatingIntent{On: true}))
	assert.Equal(map[string]string{"hmod": "OFF"}, encode(t, DialectFanMode, HeatingIntent{On: false}))
	assert.Equal(map[string]string{"hume": "HUMD"}, encode(t, DialectPowerFlags, HumidifierIntent{On: true}))
	assert.Equal(map[string]string{"haut": "ON", "hume": "HUMD"}, encode(t, DialectPowerFlags, HumidifierAutoIntent{On: true}))
	assert.Equal(map[string]string{"haut": "OFF"}, encode(t, DialectPowerFlags, HumidifierAutoIntent{On: false}))
}

func TestEncodeTargetTemperature(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("2952", encode(t, DialectPowerFlags, TargetTemperatureIntent{Celsius: 22})["hmax"])
	assert.Equal("2742", encode(t, DialectFanMode, TargetTemperatureIntent{Celsius: -5})["hmax"], "clamped to 1 C")
	assert.Equal("3102", encode(t, DialectPowerFlags, TargetTemperatureIntent{Celsius: 80})["hmax"], "clamped to 37 C")

	for _, c := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := EncodeCommand(DialectPowerFlags, TargetTemperatureIntent{Celsius: c}, testNow)
		assert.ErrorIs(err, ErrNotFinite, "%v", c)
	}
}

func TestEncodeTargetHumidity(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(map[string]string{"hume": "HUMD", "haut": "OFF", "humt": "0050"}, encode(t, DialectPowerFlags, TargetHumidityIntent{Percent: 50}))
	assert.Equal("0100", encode(t, DialectPowerFlags, TargetHumidityIntent{Percent: 130})["humt"])
	assert.Equal("0000", encode(t, DialectPowerFlags, TargetHumidityIntent{Percent: -3})["humt"])
}

func TestWireCommandJSON(t *testing.T) {

	assert := assert.New(t)

	cmd, err := EncodeCommand(DialectPowerFlags, NightModeIntent{On: true}, testNow)
	require.NoError(t, err)
	payload, err := cmd.Payload()
	require.NoError(t, err)
	assert.JSONEq(`{"msg":"STATE-SET","time":"2024-03-09T18:04:05Z","mode-reason":"LAPP","data":{"nmod":"ON"}}`, string(payload))

	payload, err = json.Marshal(RequestCurrentState(testNow))
	require.NoError(t, err)
	assert.JSONEq(`{"msg":"REQUEST-CURRENT-STATE","time":"2024-03-09T18:04:05Z"}`, string(payload))
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("438/NN2-EU-KFA0532A/status/current", StatusTopic("438", "NN2-EU-KFA0532A"))
	assert.Equal("438/NN2-EU-KFA0532A/command", CommandTopic("438", "NN2-EU-KFA0532A"))
}

type unknownIntent struct{ PowerIntent }

func TestEncodeErrors(t *testing.T) {

	assert := assert.New(t)

	_, err := EncodeCommand(Dialect(9), PowerIntent{On: true}, testNow)
	assert.Error(err)

	_, err = EncodeCommand(DialectPowerFlags, unknownIntent{}, testNow)
	assert.ErrorIs(err, ErrUnknownIntent)
}
