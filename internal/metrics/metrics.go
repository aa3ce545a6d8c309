package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	linkState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dyson_link_state",
			Help: "Connection state per device (0 disconnected, 1 connecting, 2 connected, 3 reconnecting).",
		},
		[]string{"serial"},
	)
	reconnectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyson_link_reconnect_attempts_total",
			Help: "Reconnect attempts by device.",
		},
		[]string{"serial"},
	)
	inboundMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyson_link_messages_total",
			Help: "Inbound device messages by device and parse outcome.",
		},
		[]string{"serial", "outcome"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyson_session_commands_total",
			Help: "Commands issued to devices by intent and result.",
		},
		[]string{"serial", "intent", "result"},
	)
	discovery = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dyson_discovery_devices",
			Help: "Devices per outcome of the last discovery run.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(linkState, reconnectAttempts, inboundMessages, commands, discovery)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func LinkState(serial string, state int) {
	linkState.WithLabelValues(serial).Set(float64(state))
}

func ReconnectAttempt(serial string) {
	reconnectAttempts.WithLabelValues(serial).Inc()
}

func InboundMessage(serial string, parsed bool) {
	outcome := "parsed"
	if !parsed {
		outcome = "malformed"
	}
	inboundMessages.WithLabelValues(serial, outcome).Inc()
}

func Command(serial, intent string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	commands.WithLabelValues(serial, intent, result).Inc()
}

func Discovery(connected, unsupported, failed int) {
	discovery.WithLabelValues("connected").Set(float64(connected))
	discovery.WithLabelValues("unsupported").Set(float64(unsupported))
	discovery.WithLabelValues("failed").Set(float64(failed))
}
