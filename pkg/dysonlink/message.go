package dysonlink

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	KindRequestCurrentState = "REQUEST-CURRENT-STATE"
	KindRequestSensorData   = "REQUEST-PRODUCT-ENVIRONMENT-CURRENT-SENSOR-DATA"
	KindCurrentState        = "CURRENT-STATE"
	KindStateChange         = "STATE-CHANGE"
	KindStateSet            = "STATE-SET"
	KindSensorData          = "ENVIRONMENTAL-CURRENT-SENSOR-DATA"

	// ModeReason tags every command as coming from a local app.
	ModeReason = "LAPP"

	timeLayout = "2006-01-02T15:04:05Z"
)

var ErrMalformedMessage = errors.New("malformed message")

func StatusTopic(productType, serial string) string {
	return fmt.Sprintf("%s/%s/status/current", productType, serial)
}

func CommandTopic(productType, serial string) string {
	return fmt.Sprintf("%s/%s/command", productType, serial)
}

// Message is an inbound envelope with its field map flattened to plain strings.
type Message struct {
	Kind   string
	Time   string
	Fields map[string]string
}

func (m Message) Field(code string) (string, bool) {
	v, ok := m.Fields[code]
	return v, ok
}

// ParseMessage decodes a raw payload. Only undecodable JSON or a missing
// envelope kind is an error; individual garbled fields are dropped.
func ParseMessage(payload []byte) (Message, error) {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return MessageFromObject(obj)
}

// MessageFromObject accepts state under "product-state" or the legacy "data"
// key, and both flat values and [old, new] pairs, where the new value wins.
func MessageFromObject(obj map[string]any) (Message, error) {
	kind, ok := obj["msg"].(string)
	if !ok || kind == "" {
		return Message{}, fmt.Errorf("%w: missing msg", ErrMalformedMessage)
	}
	msg := Message{
		Kind:   kind,
		Fields: map[string]string{},
	}
	msg.Time, _ = obj["time"].(string)

	raw, ok := obj["product-state"].(map[string]any)
	if !ok {
		raw, _ = obj["data"].(map[string]any)
	}
	for code, value := range raw {
		if pair, isPair := value.([]any); isPair {
			if len(pair) != 2 {
				continue
			}
			value = pair[1]
		}
		if s, ok := scalarString(value); ok {
			msg.Fields[code] = s
		}
	}
	return msg, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// WireCommand is an outbound envelope ready to publish.
type WireCommand struct {
	Kind       string
	Time       time.Time
	ModeReason string
	Fields     map[string]string
}

type wireEnvelope struct {
	Msg        string            `json:"msg"`
	Time       string            `json:"time"`
	ModeReason string            `json:"mode-reason,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

func (c WireCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{
		Msg:        c.Kind,
		Time:       c.Time.UTC().Format(timeLayout),
		ModeReason: c.ModeReason,
		Data:       c.Fields,
	})
}

func (c WireCommand) Payload() ([]byte, error) {
	return json.Marshal(c)
}

func RequestCurrentState(now time.Time) WireCommand {
	return WireCommand{Kind: KindRequestCurrentState, Time: now}
}

func RequestSensorData(now time.Time) WireCommand {
	return WireCommand{Kind: KindRequestSensorData, Time: now}
}
