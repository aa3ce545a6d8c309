package dysonlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentToSpeed(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(FanSpeed(1), PercentToSpeed(0), "never below 1")
	assert.Equal(FanSpeed(1), PercentToSpeed(4))
	assert.Equal(FanSpeed(1), PercentToSpeed(14))
	assert.Equal(FanSpeed(2), PercentToSpeed(15), "half rounds up")
	assert.Equal(FanSpeed(5), PercentToSpeed(50))
	assert.Equal(FanSpeed(10), PercentToSpeed(100))
	assert.Equal(FanSpeed(10), PercentToSpeed(250), "clamped above")
	assert.Equal(FanSpeed(1), PercentToSpeed(-20), "clamped below")
}

func TestSpeedPercentRoundTrip(t *testing.T) {

	assert := assert.New(t)

	for s := MinFanSpeed; s <= MaxFanSpeed; s++ {
		assert.Equal(s, PercentToSpeed(SpeedToPercent(s)), "speed %d", s)
	}
	for p := 0; p <= 100; p++ {
		assert.InDelta(p, SpeedToPercent(PercentToSpeed(p)), 10, "percent %d", p)
	}
	assert.Equal(0, SpeedToPercent(FanSpeedAuto), "auto reads as 0%")
}

func TestCelsiusToDeciKelvin(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(2952, CelsiusToDeciKelvin(22))
	assert.Equal(2732, CelsiusToDeciKelvin(0))
	assert.Equal(2742, CelsiusToDeciKelvin(1))
	assert.Equal(3102, CelsiusToDeciKelvin(37))
	assert.Equal(2727, CelsiusToDeciKelvin(-0.45))
}

func TestTemperatureRoundTrip(t *testing.T) {

	assert := assert.New(t)

	for c := MinTargetCelsius; c <= MaxTargetCelsius; c++ {
		decoded := DeciKelvinToCelsius(CelsiusToDeciKelvin(float64(c)))
		assert.InDelta(float64(c), decoded, 0.1+1e-9, "celsius %d", c)
	}
	assert.Equal(22.1, DeciKelvinToCelsius(2952))
	assert.Equal(-273.2, DeciKelvinToCelsius(0))
}

func TestFilterPercentToHours(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(4300, filterPercentToHours(100))
	assert.Equal(2150, filterPercentToHours(50))
	assert.Equal(0, filterPercentToHours(0))
	assert.Equal(43, filterPercentToHours(1))
}
