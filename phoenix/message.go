package phoenix

import (
	"fmt"

	"github.com/starfederation/packwire"
	"github.com/starfederation/packwire/runtime"
)

// Message is one channel message.
type Message struct {
	Topic   string
	Event   string
	Payload packwire.Value
	Ref     string
	HasRef  bool
}

// MessageFromValue projects a decoded frame onto a Message. topic and event
// are required strings; a missing payload is null; ref may be absent, null,
// a string or an integer.
func MessageFromValue(v packwire.Value) (Message, error) {
	if v.Type != packwire.TypeMap {
		return Message{}, fmt.Errorf("phoenix: frame is %s: %w", v.Type, runtime.ErrRootNotMap)
	}
	topic, err := runtime.GetString(v, "topic")
	if err != nil {
		return Message{}, fmt.Errorf("phoenix: %w", err)
	}
	event, err := runtime.GetString(v, "event")
	if err != nil {
		return Message{}, fmt.Errorf("phoenix: %w", err)
	}
	ref, hasRef, err := runtime.GetOptionalString(v, "ref")
	if err != nil {
		return Message{}, fmt.Errorf("phoenix: %w", err)
	}
	payload, ok := v.Get("payload")
	if !ok {
		payload = packwire.Null()
	}
	return Message{
		Topic:   topic,
		Event:   event,
		Payload: payload,
		Ref:     ref,
		HasRef:  hasRef,
	}, nil
}

// Status returns the reply status carried in the payload, if any.
func (m Message) Status() string {
	if m.Payload.Type != packwire.TypeMap {
		return ""
	}
	status, _, err := runtime.GetOptionalString(m.Payload, "status")
	if err != nil {
		return ""
	}
	return status
}
