package util

import (
	"github.com/berfenger/dyson2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "dyson",
			HADiscoveryTopic: "homeassistant",
		},
		Link: config.LinkConfig{
			Port:                     1883,
			ConnectTimeoutMillis:     10000,
			KeepAliveSeconds:         30,
			AutoReconnect:            true,
			ReconnectBaseDelayMillis: 20,
			ReconnectMaxDelayMillis:  200,
			MaxReconnectAttempts:     3,
			RequestTimeoutMillis:     2000,
		},
		Session: config.SessionConfig{
			PollIntervalSeconds:   60,
			PowerOnDebounceMillis: 50,
			ConnectTimeoutMillis:  15000,
		},
		Hosts: map[string]string{},
		Port:  8080,
	}
}
