package dysonlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupProduct(t *testing.T) {

	assert := assert.New(t)

	hp02, ok := LookupProduct("455")
	assert.True(ok)
	assert.Equal(DialectFanMode, hp02.Dialect)
	assert.True(hp02.Capabilities.Heating)

	hp04, ok := LookupProduct("527")
	assert.True(ok)
	assert.Equal(DialectPowerFlags, hp04.Dialect)
	assert.True(hp04.Capabilities.Heating)
	assert.False(hp04.Capabilities.Humidifier)

	ph01, ok := LookupProduct("358")
	assert.True(ok)
	assert.True(ph01.Capabilities.Humidifier)
	assert.False(ph01.Capabilities.Heating)

	_, ok = LookupProduct("999")
	assert.False(ok)
}

func TestProductForUnknownFallsBackToFanOnly(t *testing.T) {

	assert := assert.New(t)

	p := ProductFor("N/A")
	assert.Equal("N/A", p.Code)
	assert.Equal(FanOnly, p.Capabilities)
	assert.False(p.Capabilities.Oscillation)
	assert.False(p.Capabilities.Heating)
}

func TestEveryProductIsAFan(t *testing.T) {

	assert := assert.New(t)

	codes := ProductCodes()
	assert.Len(codes, 20)
	for _, code := range codes {
		p := ProductFor(code)
		assert.True(p.Capabilities.Fan, code)
		assert.Equal(code, p.Code)
	}
}

func TestValidSerial(t *testing.T) {

	assert := assert.New(t)

	assert.True(ValidSerial("NN2-EU-KFA0532A"))
	assert.True(ValidSerial("A1B-US-12345678"))
	assert.False(ValidSerial("nn2-eu-kfa0532a"))
	assert.False(ValidSerial("NN2-EU-KFA0532"))
	assert.False(ValidSerial(""))
}

func TestCapabilitiesSupports(t *testing.T) {

	assert := assert.New(t)

	tp04 := ProductFor("438").Capabilities
	assert.True(tp04.Supports(FanSpeedIntent{Speed: 3}))
	assert.True(tp04.Supports(OscillationAnglesIntent{Lower: 45, Upper: 355}))
	assert.False(tp04.Supports(HeatingIntent{On: true}))
	assert.False(tp04.Supports(TargetHumidityIntent{Percent: 50}))

	hp04 := ProductFor("527").Capabilities
	assert.True(hp04.Supports(TargetTemperatureIntent{Celsius: 22}))

	fanOnly := ProductFor("N/A").Capabilities
	assert.True(fanOnly.Supports(PowerIntent{On: true}))
	assert.False(fanOnly.Supports(OscillationIntent{On: true}))
	assert.False(fanOnly.Supports(nil))
}
