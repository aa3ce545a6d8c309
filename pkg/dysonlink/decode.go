package dysonlink

import (
	"strconv"
)

// DecodeState turns a CURRENT-STATE or STATE-CHANGE message into a delta.
// Fields that are missing or cannot be read leave the state untouched.
func DecodeState(m Message) StateDelta {
	var d StateDelta

	fpwr, hasPower := onOffField(m, "fpwr")
	fmod, hasMode := m.Field("fmod")
	switch {
	case hasPower:
		d.On = Set(fpwr)
	case hasMode:
		d.On = Set(fmod != "OFF")
	}

	autoSet := false
	auto := false
	if hasMode {
		auto, autoSet = fmod == "AUTO", true
	}
	if v, ok := onOffField(m, "auto"); ok {
		auto, autoSet = auto || v, true
	}

	if fnsp, ok := m.Field("fnsp"); ok {
		if fnsp == "AUTO" {
			d.FanSpeed = Set(FanSpeedAuto)
			auto, autoSet = true, true
			if !hasPower && !hasMode {
				d.On = Set(true)
			}
		} else if n, err := strconv.Atoi(fnsp); err == nil && n >= int(MinFanSpeed) && n <= int(MaxFanSpeed) {
			d.FanSpeed = Set(FanSpeed(n))
		}
	}
	if autoSet {
		d.AutoMode = Set(auto)
	}

	if v, ok := m.Field("oson"); ok {
		switch v {
		case "ON", "OION":
			d.Oscillation = Set(true)
		case "OFF", "OIOF":
			d.Oscillation = Set(false)
		}
	}
	if v, ok := intField(m, "osal"); ok {
		d.OscillationLower = Set(v)
	}
	if v, ok := intField(m, "osau"); ok {
		d.OscillationUpper = Set(v)
	}
	if v, ok := onOffField(m, "nmod"); ok {
		d.NightMode = Set(v)
	}
	if v, ok := onOffField(m, "rhtm"); ok {
		d.ContinuousMonitoring = Set(v)
	}
	if v, ok := onOffField(m, "fdir"); ok {
		d.FrontAirflow = Set(v)
	} else if v, ok := onOffField(m, "ffoc"); ok {
		d.FrontAirflow = Set(v)
	}

	if v, ok := intField(m, "filf"); ok {
		d.HEPAFilterHours = Set(v)
	} else if v, ok := intField(m, "hflr"); ok {
		d.HEPAFilterHours = Set(filterPercentToHours(v))
	}
	if v, ok := intField(m, "cflr"); ok {
		d.CarbonFilterHours = Set(filterPercentToHours(v))
	}

	if v, ok := m.Field("hmod"); ok {
		switch v {
		case "HEAT":
			d.HeatingEnabled = Set(true)
		case "OFF":
			d.HeatingEnabled = Set(false)
		}
	}
	if v, ok := intField(m, "hmax"); ok {
		d.TargetTemperature = Set(v)
	}

	if v, ok := m.Field("hume"); ok {
		switch v {
		case "HUMD":
			d.HumidifierEnabled = Set(true)
		case "OFF":
			d.HumidifierEnabled = Set(false)
		}
	}
	if v, ok := onOffField(m, "haut"); ok {
		d.HumidifierAuto = Set(v)
	}
	if v, ok := intField(m, "humt"); ok && v >= 0 && v <= 100 {
		d.TargetHumidity = Set(v)
	}
	if v, ok := onOffField(m, "tnke"); ok {
		d.WaterTankEmpty = Set(v)
	}

	return d
}

// DecodeSensorData turns an ENVIRONMENTAL-CURRENT-SENSOR-DATA message into a delta.
// OFF and INIT readings clear the value instead of reporting zero.
func DecodeSensorData(m Message) StateDelta {
	var d StateDelta
	d.Temperature = sensorField(m, "tact")
	d.Humidity = sensorField(m, "hact")
	d.PM25 = newerSensorField(m, "p25r", "pact")
	d.PM10 = sensorField(m, "p10r")
	d.VOC = newerSensorField(m, "va10", "vact")
	d.NO2 = sensorField(m, "noxl")
	return d
}

// newerSensorField prefers the newer code and falls back to the older one
// when the newer value is missing or unreadable.
func newerSensorField(m Message, newer, older string) Patch[int] {
	if p := sensorField(m, newer); !p.IsKeep() {
		return p
	}
	return sensorField(m, older)
}

func sensorField(m Message, code string) Patch[int] {
	v, ok := m.Field(code)
	if !ok {
		return Patch[int]{}
	}
	switch v {
	case "OFF", "INIT":
		return Clear[int]()
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return Patch[int]{}
	}
	return Set(n)
}

func onOffField(m Message, code string) (bool, bool) {
	switch v, _ := m.Field(code); v {
	case "ON":
		return true, true
	case "OFF":
		return false, true
	default:
		return false, false
	}
}

func intField(m Message, code string) (int, bool) {
	v, ok := m.Field(code)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
