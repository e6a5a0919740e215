package packwire

import (
	stdjson "encoding/json"
	"fmt"
)

// UnmarshalValue maps a decoded value onto a Go value using JSON semantics,
// so struct fields are matched by their json tags. Bin values fill []byte
// fields; map keys are named as in ToJSON.
func UnmarshalValue(v Value, out any) error {
	if out == nil {
		return fmt.Errorf("nil target")
	}
	value, err := valueToAny(v)
	if err != nil {
		return err
	}
	data, err := stdjson.Marshal(value)
	if err != nil {
		return err
	}
	return stdjson.Unmarshal(data, out)
}

// Unmarshal decodes a raw message and maps it onto out. An empty message
// leaves out untouched.
func Unmarshal(raw []byte, out any) error {
	v, ok, err := DecodeEnvelope(raw)
	if err != nil || !ok {
		return err
	}
	return UnmarshalValue(v, out)
}
