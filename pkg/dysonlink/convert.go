package dysonlink

import (
	"math"
)

const (
	// FilterLifeMaxHours is the rated life a percentage filter reading refers to.
	FilterLifeMaxHours = 4300

	MinTargetCelsius = 1
	MaxTargetCelsius = 37

	MinOscillationAngle = 45
	MaxOscillationAngle = 355
)

// PercentToSpeed maps 0..100 onto 1..10.
func PercentToSpeed(percent int) FanSpeed {
	percent = clamp(percent, 0, 100)
	speed := FanSpeed((percent + 5) / 10)
	if speed < MinFanSpeed {
		return MinFanSpeed
	}
	return speed
}

// SpeedToPercent maps 1..10 onto 10..100. Auto maps to 0 since the real speed is unknown.
func SpeedToPercent(speed FanSpeed) int {
	if speed.IsAuto() {
		return 0
	}
	return int(clampSpeed(speed)) * 10
}

// CelsiusToDeciKelvin computes round((c + 273.15) * 10), half away from zero.
// The arithmetic runs on hundredths so 22 °C yields 2952 without float drift.
func CelsiusToDeciKelvin(celsius float64) int {
	hundredths := int64(math.Round(celsius*100)) + 27315
	return int(divRound(hundredths, 10))
}

// DeciKelvinToCelsius returns degrees Celsius rounded to one decimal, half away from zero.
func DeciKelvinToCelsius(deciKelvin int) float64 {
	hundredths := int64(deciKelvin)*10 - 27315
	return float64(divRound(hundredths, 10)) / 10
}

func divRound(n, d int64) int64 {
	if n >= 0 {
		return (n + d/2) / d
	}
	return (n - d/2) / d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampSpeed(s FanSpeed) FanSpeed {
	return FanSpeed(clamp(int(s), int(MinFanSpeed), int(MaxFanSpeed)))
}

func filterPercentToHours(percent int) int {
	percent = clamp(percent, 0, 100)
	return int(divRound(int64(percent)*FilterLifeMaxHours, 100))
}
