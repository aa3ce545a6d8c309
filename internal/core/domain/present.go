package domain

import (
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"
)

const (
	PRESET_AUTO   = "auto"
	PRESET_MANUAL = "manual"
)

// DeviceStatePayload is the state document published for the platform.
// Unknown readings are null rather than zero.
type DeviceStatePayload struct {
	State                string   `json:"state"`
	Percentage           int      `json:"percentage"`
	PresetMode           string   `json:"preset_mode"`
	Oscillation          string   `json:"oscillation"`
	NightMode            string   `json:"night_mode"`
	JetFocus             string   `json:"jet_focus"`
	ContinuousMonitoring string   `json:"continuous_monitoring"`
	Heating              string   `json:"heating"`
	TargetTemperature    *float64 `json:"target_temperature"`
	Humidifier           string   `json:"humidifier"`
	HumidifierAuto       string   `json:"humidifier_auto"`
	TargetHumidity       *int     `json:"target_humidity"`
	WaterTankEmpty       string   `json:"water_tank_empty"`
	Temperature          *float64 `json:"temperature"`
	Humidity             *int     `json:"humidity"`
	PM25                 *int     `json:"pm25"`
	PM10                 *int     `json:"pm10"`
	VOC                  *int     `json:"voc"`
	NO2                  *int     `json:"no2"`
	HEPAFilterHours      *int     `json:"hepa_filter_hours"`
	CarbonFilterHours    *int     `json:"carbon_filter_hours"`
}

func PresentState(s dysonlink.DeviceState) DeviceStatePayload {
	preset := PRESET_MANUAL
	if s.AutoMode {
		preset = PRESET_AUTO
	}
	percentage := 0
	if speed, ok := s.FanSpeed.Get(); ok && s.On {
		percentage = dysonlink.SpeedToPercent(speed)
	}
	return DeviceStatePayload{
		State:                onOff(s.On),
		Percentage:           percentage,
		PresetMode:           preset,
		Oscillation:          onOff(s.Oscillation),
		NightMode:            onOff(s.NightMode),
		JetFocus:             onOff(s.FrontAirflow),
		ContinuousMonitoring: onOff(s.ContinuousMonitoring),
		Heating:              onOff(s.HeatingEnabled),
		TargetTemperature:    celsius(s.TargetTemperature),
		Humidifier:           onOff(s.HumidifierEnabled),
		HumidifierAuto:       onOff(s.HumidifierAuto),
		TargetHumidity:       ptr(s.TargetHumidity),
		WaterTankEmpty:       onOff(s.WaterTankEmpty),
		Temperature:          celsius(s.Temperature),
		Humidity:             ptr(s.Humidity),
		PM25:                 ptr(s.PM25),
		PM10:                 ptr(s.PM10),
		VOC:                  ptr(s.VOC),
		NO2:                  ptr(s.NO2),
		HEPAFilterHours:      ptr(s.HEPAFilterHours),
		CarbonFilterHours:    ptr(s.CarbonFilterHours),
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func ptr[T any](o dysonlink.Opt[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

func celsius(o dysonlink.Opt[int]) *float64 {
	if v, ok := o.Get(); ok {
		c := dysonlink.DeciKelvinToCelsius(v)
		return &c
	}
	return nil
}
