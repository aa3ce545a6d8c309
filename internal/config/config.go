package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig        `mapstructure:"mqtt"`
	Link     LinkConfig        `mapstructure:"link"`
	Session  SessionConfig     `mapstructure:"session"`
	Cloud    CloudConfig       `mapstructure:"cloud"`
	Devices  []DeviceConfig    `mapstructure:"devices"`
	Hosts    map[string]string `mapstructure:"hosts"`
	Port     uint              `mapstructure:"port"`
	HttpLog  bool              `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// LinkConfig tunes the connection to each device's local broker.
type LinkConfig struct {
	Port                     int    `mapstructure:"port"`
	ConnectTimeoutMillis     uint32 `mapstructure:"connect_timeout_millis"`
	KeepAliveSeconds         uint32 `mapstructure:"keep_alive_seconds"`
	AutoReconnect            bool   `mapstructure:"auto_reconnect"`
	ReconnectBaseDelayMillis uint32 `mapstructure:"reconnect_base_delay_millis"`
	ReconnectMaxDelayMillis  uint32 `mapstructure:"reconnect_max_delay_millis"`
	MaxReconnectAttempts     uint32 `mapstructure:"max_reconnect_attempts"`
	RequestTimeoutMillis     uint32 `mapstructure:"request_timeout_millis"`
}

type SessionConfig struct {
	PollIntervalSeconds   uint32 `mapstructure:"poll_interval_seconds"`
	PowerOnDebounceMillis uint32 `mapstructure:"power_on_debounce_millis"`
	ConnectTimeoutMillis  uint32 `mapstructure:"connect_timeout_millis"`
}

type CloudConfig struct {
	Enable  bool
	Email   string
	Token   string
	Country string
	ApiHost string `mapstructure:"api_host"`
}

// DeviceConfig is a manually configured device, used verbatim.
type DeviceConfig struct {
	Serial      string
	ProductType string `mapstructure:"product_type"`
	Name        string
	Credential  string
	Address     string
}

func (c LinkConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMillis) * time.Millisecond
}

func (c LinkConfig) KeepAlive() time.Duration {
	return time.Duration(c.KeepAliveSeconds) * time.Second
}

func (c LinkConfig) ReconnectBaseDelay() time.Duration {
	return time.Duration(c.ReconnectBaseDelayMillis) * time.Millisecond
}

func (c LinkConfig) ReconnectMaxDelay() time.Duration {
	return time.Duration(c.ReconnectMaxDelayMillis) * time.Millisecond
}

func (c LinkConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMillis) * time.Millisecond
}

func (c SessionConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c SessionConfig) PowerOnDebounce() time.Duration {
	return time.Duration(c.PowerOnDebounceMillis) * time.Millisecond
}

func (c SessionConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMillis) * time.Millisecond
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// NormalizeHosts upper-cases serial keys, which viper lower-cases on load.
func NormalizeHosts(hosts map[string]string) map[string]string {
	out := make(map[string]string, len(hosts))
	for serial, address := range hosts {
		out[strings.ToUpper(serial)] = address
	}
	return out
}
