package dysonlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, payload string) Message {
	msg, err := ParseMessage([]byte(payload))
	require.NoError(t, err)
	return msg
}

func TestParseMessageShapes(t *testing.T) {

	assert := assert.New(t)

	flat := parse(t, `{"msg":"CURRENT-STATE","time":"2024-03-09T18:04:05.000Z","product-state":{"fpwr":"ON","fnsp":"0004","oson":"OFF"}}`)
	assert.Equal(KindCurrentState, flat.Kind)
	assert.Equal("2024-03-09T18:04:05.000Z", flat.Time)
	assert.Equal(map[string]string{"fpwr": "ON", "fnsp": "0004", "oson": "OFF"}, flat.Fields)

	pairs := parse(t, `{"msg":"STATE-CHANGE","product-state":{"fpwr":["OFF","ON"],"fnsp":["0002","0004"],"oson":["ON","OFF"]}}`)
	assert.Equal(flat.Fields, pairs.Fields, "second element of a pair wins")

	legacy := parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"tact":"2950","hact":45,"pact":["0001"],"vact":{"x":1}}}`)
	assert.Equal(map[string]string{"tact": "2950", "hact": "45"}, legacy.Fields, "garbled fields skipped")
}

func TestParseMessageErrors(t *testing.T) {

	assert := assert.New(t)

	_, err := ParseMessage([]byte("not json"))
	assert.ErrorIs(err, ErrMalformedMessage)

	_, err = ParseMessage([]byte(`{"product-state":{}}`))
	assert.ErrorIs(err, ErrMalformedMessage)

	msg, err := ParseMessage([]byte(`{"msg":"HELLO"}`))
	assert.NoError(err)
	assert.Empty(msg.Fields)
}

func TestDecodeFlatAndPairShapesAgree(t *testing.T) {

	assert := assert.New(t)

	flat := parse(t, `{"msg":"CURRENT-STATE","product-state":{"fpwr":"ON","auto":"OFF","fnsp":"0007","oson":"ON","osal":"0090","osau":"0270","nmod":"ON","rhtm":"OFF","fdir":"ON","hflr":"0050","cflr":"0100","hmod":"HEAT","hmax":"2952"}}`)
	pairs := parse(t, `{"msg":"STATE-CHANGE","product-state":{"fpwr":["OFF","ON"],"auto":["ON","OFF"],"fnsp":["0001","0007"],"oson":["OFF","ON"],"osal":["0045","0090"],"osau":["0355","0270"],"nmod":["OFF","ON"],"rhtm":["ON","OFF"],"fdir":["OFF","ON"],"hflr":["0051","0050"],"cflr":["0100","0100"],"hmod":["OFF","HEAT"],"hmax":["2900","2952"]}}`)

	assert.Equal(DecodeState(flat), DecodeState(pairs))

	state := DeviceState{}.Merge(DecodeState(flat))
	assert.True(state.On)
	assert.False(state.AutoMode)
	assert.Equal(Some(FanSpeed(7)), state.FanSpeed)
	assert.True(state.Oscillation)
	assert.Equal(Some(90), state.OscillationLower)
	assert.Equal(Some(270), state.OscillationUpper)
	assert.True(state.NightMode)
	assert.False(state.ContinuousMonitoring)
	assert.True(state.FrontAirflow)
	assert.Equal(Some(2150), state.HEPAFilterHours)
	assert.Equal(Some(4300), state.CarbonFilterHours)
	assert.True(state.HeatingEnabled)
	assert.Equal(Some(2952), state.TargetTemperature)
}

func TestDecodeIsIdempotent(t *testing.T) {

	assert := assert.New(t)

	msg := parse(t, `{"msg":"CURRENT-STATE","product-state":{"fmod":"FAN","fnsp":"0003","oson":"ON","filf":"2087","ffoc":"OFF"}}`)
	base := DeviceState{Connected: true}

	once := base.Merge(DecodeState(msg))
	twice := once.Merge(DecodeState(msg))
	assert.Equal(once, twice)
	assert.Equal(once, base.Merge(DecodeState(msg)))
	assert.Equal(Some(2087), once.HEPAFilterHours)
	assert.False(once.FrontAirflow)
}

func TestDecodeFanModeDialect(t *testing.T) {

	assert := assert.New(t)

	off := DeviceState{}.Merge(DecodeState(parse(t, `{"msg":"CURRENT-STATE","product-state":{"fmod":"OFF","fnsp":"0004"}}`)))
	assert.False(off.On)
	assert.False(off.AutoMode)

	auto := DeviceState{}.Merge(DecodeState(parse(t, `{"msg":"CURRENT-STATE","product-state":{"fmod":"AUTO","fnsp":"0004"}}`)))
	assert.True(auto.On)
	assert.True(auto.AutoMode)
	assert.Equal(Some(FanSpeed(4)), auto.FanSpeed)

	fan := DeviceState{}.Merge(DecodeState(parse(t, `{"msg":"CURRENT-STATE","product-state":{"fmod":"FAN"}}`)))
	assert.True(fan.On)
	assert.False(fan.AutoMode)
}

func TestDecodeAutoSpeedWithoutMode(t *testing.T) {

	assert := assert.New(t)

	delta := DecodeState(parse(t, `{"msg":"CURRENT-STATE","product-state":{"fnsp":"AUTO","oson":"OFF"}}`))
	state := DeviceState{}.Merge(delta)

	assert.True(state.AutoMode)
	assert.Equal(Some(FanSpeedAuto), state.FanSpeed)
	assert.True(state.On)
	assert.Equal(0, SpeedToPercent(state.FanSpeed.OrElse(MinFanSpeed)))
}

func TestDecodeAutoFlag(t *testing.T) {

	assert := assert.New(t)

	state := DeviceState{}.Merge(DecodeState(parse(t, `{"msg":"STATE-CHANGE","product-state":{"fpwr":["ON","OFF"],"auto":["OFF","ON"]}}`)))
	assert.False(state.On)
	assert.True(state.AutoMode)
}

func TestDecodeSkipsGarbledFields(t *testing.T) {

	assert := assert.New(t)

	before := DeviceState{On: true, FanSpeed: Some(FanSpeed(3)), NightMode: true}
	delta := DecodeState(parse(t, `{"msg":"STATE-CHANGE","product-state":{"fpwr":"MAYBE","fnsp":"00x4","nmod":"OFF","hmax":"warm","humt":"0140"}}`))
	after := before.Merge(delta)

	assert.True(after.On, "unreadable power kept")
	assert.Equal(Some(FanSpeed(3)), after.FanSpeed, "unreadable speed kept")
	assert.False(after.NightMode, "valid field still applied")
	assert.False(after.TargetTemperature.IsSet())
	assert.False(after.TargetHumidity.IsSet())
}

func TestDecodeHumidifier(t *testing.T) {

	assert := assert.New(t)

	state := DeviceState{}.Merge(DecodeState(parse(t, `{"msg":"CURRENT-STATE","product-state":{"hume":"HUMD","haut":"OFF","humt":"0060","tnke":"ON"}}`)))
	assert.True(state.HumidifierEnabled)
	assert.False(state.HumidifierAuto)
	assert.Equal(Some(60), state.TargetHumidity)
	assert.True(state.WaterTankEmpty)
}

func TestDecodeSensorOlderFieldFallback(t *testing.T) {

	assert := assert.New(t)

	state := DeviceState{}.Merge(DecodeSensorData(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"pact":"0042","vact":"0003","tact":"2963","hact":"0040"}}`)))
	assert.Equal(Some(42), state.PM25)
	assert.Equal(Some(3), state.VOC)
	assert.Equal(Some(2963), state.Temperature)
	assert.Equal(Some(40), state.Humidity)
	assert.False(state.PM10.IsSet())
	assert.False(state.NO2.IsSet())
}

func TestDecodeSensorNewerFieldWins(t *testing.T) {

	assert := assert.New(t)

	state := DeviceState{}.Merge(DecodeSensorData(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"pact":"0042","p25r":"0007","vact":"0003","va10":"0012","p10r":"0009","noxl":"0004"}}`)))
	assert.Equal(Some(7), state.PM25)
	assert.Equal(Some(12), state.VOC)
	assert.Equal(Some(9), state.PM10)
	assert.Equal(Some(4), state.NO2)
}

func TestDecodeSensorSentinels(t *testing.T) {

	assert := assert.New(t)

	before := DeviceState{Temperature: Some(2950), Humidity: Some(40), PM25: Some(8), VOC: Some(2)}
	after := before.Merge(DecodeSensorData(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"tact":"OFF","hact":"INIT","p25r":"INIT","vact":"bogus"}}`)))

	assert.False(after.Temperature.IsSet(), "OFF means no reading")
	assert.False(after.Humidity.IsSet(), "INIT means no reading")
	assert.False(after.PM25.IsSet())
	assert.Equal(Some(2), after.VOC, "garbled reading keeps the old value")
}

func TestDecodeSensorFallsBackToOlderCode(t *testing.T) {

	assert := assert.New(t)

	state := DeviceState{}.Merge(DecodeSensorData(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"p25r":"abc","pact":"0012","va10":"-1","vact":"0004"}}`)))
	assert.Equal(Some(12), state.PM25)
	assert.Equal(Some(4), state.VOC)

	state = state.Merge(DecodeSensorData(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"p25r":"OFF","pact":"0012"}}`)))
	assert.False(state.PM25.IsSet(), "newer code sentinel wins")
}

func TestMergeDoesNotMutate(t *testing.T) {

	assert := assert.New(t)

	before := DeviceState{FanSpeed: Some(FanSpeed(2))}
	after := before.Merge(StateDelta{FanSpeed: Set(FanSpeed(9)), On: Set(true)})

	assert.Equal(Some(FanSpeed(2)), before.FanSpeed)
	assert.False(before.On)
	assert.Equal(Some(FanSpeed(9)), after.FanSpeed)
	assert.True(StateDelta{}.IsEmpty())
}
