package dysonlink

import (
	"regexp"
	"sort"
)

// Dialect selects how power, auto mode and fan speed are carried on the wire.
// FanMode covers the Link era models (455, 469, 475); PowerFlags covers the
// later ones (438, 520, 527, 358, 664).
type Dialect int

const (
	// DialectPowerFlags devices use a dedicated power field (fpwr), a separate
	// auto flag (auto) and the speed field (fnsp).
	DialectPowerFlags Dialect = iota
	// DialectFanMode devices fold power and auto into a single mode field
	// (fmod = OFF|FAN|AUTO) next to the speed field (fnsp).
	DialectFanMode
)

func (d Dialect) String() string {
	switch d {
	case DialectPowerFlags:
		return "power_flags"
	case DialectFanMode:
		return "fan_mode"
	default:
		return "unknown"
	}
}

type Capabilities struct {
	Fan                  bool `json:"fan"`
	Oscillation          bool `json:"oscillation"`
	AutoMode             bool `json:"auto_mode"`
	NightMode            bool `json:"night_mode"`
	ContinuousMonitoring bool `json:"continuous_monitoring"`
	FrontAirflow         bool `json:"front_airflow"`
	TemperatureSensor    bool `json:"temperature_sensor"`
	HumiditySensor       bool `json:"humidity_sensor"`
	AirQualitySensor     bool `json:"air_quality_sensor"`
	NO2Sensor            bool `json:"no2_sensor"`
	Heating              bool `json:"heating"`
	Humidifier           bool `json:"humidifier"`
	HEPAFilter           bool `json:"hepa_filter"`
	CarbonFilter         bool `json:"carbon_filter"`
}

type Product struct {
	Code         string
	Model        string
	Name         string
	Dialect      Dialect
	Capabilities Capabilities
}

// FanOnly is the capability set assumed for product types missing from the table.
var FanOnly = Capabilities{Fan: true}

var linkPurifier = Capabilities{
	Fan:                  true,
	Oscillation:          true,
	AutoMode:             true,
	NightMode:            true,
	ContinuousMonitoring: true,
	TemperatureSensor:    true,
	HumiditySensor:       true,
	AirQualitySensor:     true,
	HEPAFilter:           true,
}

var purifier = Capabilities{
	Fan:                  true,
	Oscillation:          true,
	AutoMode:             true,
	NightMode:            true,
	ContinuousMonitoring: true,
	FrontAirflow:         true,
	TemperatureSensor:    true,
	HumiditySensor:       true,
	AirQualitySensor:     true,
	NO2Sensor:            true,
	HEPAFilter:           true,
	CarbonFilter:         true,
}

func with(c Capabilities, fn func(*Capabilities)) Capabilities {
	fn(&c)
	return c
}

var (
	linkHeater = with(linkPurifier, func(c *Capabilities) {
		c.Heating = true
		c.FrontAirflow = true
	})
	heater = with(purifier, func(c *Capabilities) {
		c.Heating = true
	})
	humidifier = with(purifier, func(c *Capabilities) {
		c.Humidifier = true
		c.FrontAirflow = false
	})
	bigQuiet = with(purifier, func(c *Capabilities) {
		c.FrontAirflow = false
		c.TemperatureSensor = false
		c.HumiditySensor = false
	})
)

var products = map[string]Product{
	"455":  {Code: "455", Model: "HP02", Name: "Pure Hot+Cool Link", Dialect: DialectFanMode, Capabilities: linkHeater},
	"455A": {Code: "455A", Model: "HP02", Name: "Pure Hot+Cool Link", Dialect: DialectFanMode, Capabilities: linkHeater},
	"469":  {Code: "469", Model: "DP01", Name: "Pure Cool Link Desk", Dialect: DialectFanMode, Capabilities: linkPurifier},
	"475":  {Code: "475", Model: "TP02", Name: "Pure Cool Link", Dialect: DialectFanMode, Capabilities: linkPurifier},
	"438":  {Code: "438", Model: "TP04", Name: "Pure Cool", Dialect: DialectPowerFlags, Capabilities: purifier},
	"438E": {Code: "438E", Model: "TP07", Name: "Purifier Cool", Dialect: DialectPowerFlags, Capabilities: purifier},
	"438K": {Code: "438K", Model: "TP09", Name: "Purifier Cool Formaldehyde", Dialect: DialectPowerFlags, Capabilities: purifier},
	"438M": {Code: "438M", Model: "TP11", Name: "Purifier Cool", Dialect: DialectPowerFlags, Capabilities: purifier},
	"520":  {Code: "520", Model: "DP04", Name: "Pure Cool Desk", Dialect: DialectPowerFlags, Capabilities: purifier},
	"527":  {Code: "527", Model: "HP04", Name: "Pure Hot+Cool", Dialect: DialectPowerFlags, Capabilities: heater},
	"527E": {Code: "527E", Model: "HP07", Name: "Purifier Hot+Cool", Dialect: DialectPowerFlags, Capabilities: heater},
	"527K": {Code: "527K", Model: "HP09", Name: "Purifier Hot+Cool Formaldehyde", Dialect: DialectPowerFlags, Capabilities: heater},
	"527M": {Code: "527M", Model: "HP11", Name: "Purifier Hot+Cool", Dialect: DialectPowerFlags, Capabilities: heater},
	"358":  {Code: "358", Model: "PH01", Name: "Pure Humidify+Cool", Dialect: DialectPowerFlags, Capabilities: humidifier},
	"358E": {Code: "358E", Model: "PH03", Name: "Purifier Humidify+Cool", Dialect: DialectPowerFlags, Capabilities: humidifier},
	"358K": {Code: "358K", Model: "PH04", Name: "Purifier Humidify+Cool Formaldehyde", Dialect: DialectPowerFlags, Capabilities: humidifier},
	"358M": {Code: "358M", Model: "PH05", Name: "Purifier Humidify+Cool", Dialect: DialectPowerFlags, Capabilities: humidifier},
	"664":  {Code: "664", Model: "BP02", Name: "Purifier Big+Quiet", Dialect: DialectPowerFlags, Capabilities: bigQuiet},
	"664B": {Code: "664B", Model: "BP03", Name: "Purifier Big+Quiet", Dialect: DialectPowerFlags, Capabilities: bigQuiet},
	"664E": {Code: "664E", Model: "BP04", Name: "Purifier Big+Quiet Formaldehyde", Dialect: DialectPowerFlags, Capabilities: bigQuiet},
}

// LookupProduct returns the table entry for a product-type code.
func LookupProduct(code string) (Product, bool) {
	p, ok := products[code]
	return p, ok
}

// ProductFor never fails: unknown codes get the fan-only capability set.
func ProductFor(code string) Product {
	if p, ok := products[code]; ok {
		return p
	}
	return Product{
		Code:         code,
		Model:        "unknown",
		Name:         "Fan",
		Dialect:      DialectPowerFlags,
		Capabilities: FanOnly,
	}
}

func ProductCodes() []string {
	codes := make([]string, 0, len(products))
	for code := range products {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var serialRegexp = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z]{2}-[A-Z0-9]{8}$`)

func ValidSerial(serial string) bool {
	return serialRegexp.MatchString(serial)
}

// DeviceIdentity is created at discovery time and never mutated.
type DeviceIdentity struct {
	Serial      string
	ProductType string
	Name        string
	Address     string
	Credential  string
}

func (id DeviceIdentity) WithAddress(address string) DeviceIdentity {
	id.Address = address
	return id
}
