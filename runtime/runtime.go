package runtime

import (
	"errors"
	"fmt"

	"github.com/starfederation/packwire"
)

var ErrNoData = errors.New("packwire: no data")
var ErrRootNotMap = errors.New("packwire: root is not a map")
var ErrFieldMissing = errors.New("packwire: field missing")
var ErrFieldType = errors.New("packwire: field has wrong type")

// MapRoot decodes a raw message and returns its root, which must be a map.
func MapRoot(raw []byte) (packwire.Value, error) {
	root, ok, err := packwire.DecodeEnvelope(raw)
	if err != nil {
		return packwire.Value{}, err
	}
	if !ok {
		return packwire.Value{}, ErrNoData
	}
	if root.Type != packwire.TypeMap {
		return packwire.Value{}, ErrRootNotMap
	}
	return root, nil
}

// GetField returns the value stored under a string key of a map value.
func GetField(root packwire.Value, key string) (packwire.Value, error) {
	if root.Type != packwire.TypeMap {
		return packwire.Value{}, ErrRootNotMap
	}
	v, ok := root.Get(key)
	if !ok {
		return packwire.Value{}, fmt.Errorf("%w: %q", ErrFieldMissing, key)
	}
	return v, nil
}

// GetString returns a required string field.
func GetString(root packwire.Value, key string) (string, error) {
	v, err := GetField(root, key)
	if err != nil {
		return "", err
	}
	if v.Type != packwire.TypeStr {
		return "", fmt.Errorf("%w: %q is %s, want str", ErrFieldType, key, v.Type)
	}
	return v.Str, nil
}

// GetOptionalString returns a string field, or "" and false when the field
// is absent or null. Integer fields are formatted in base 10.
func GetOptionalString(root packwire.Value, key string) (string, bool, error) {
	v, err := GetField(root, key)
	if errors.Is(err, ErrFieldMissing) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	switch v.Type {
	case packwire.TypeNull:
		return "", false, nil
	case packwire.TypeStr, packwire.TypeInt, packwire.TypeUint:
		s, _ := v.AsString()
		return s, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q is %s, want str", ErrFieldType, key, v.Type)
	}
}

// GetInt returns a required integer field. Floats are truncated and numeric
// strings are parsed; bools count as 0 or 1.
func GetInt(root packwire.Value, key string) (int64, error) {
	v, err := GetField(root, key)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt64()
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, want int", ErrFieldType, key, v.Type)
	}
	return i, nil
}

// GetFloat returns a required numeric field as float64.
func GetFloat(root packwire.Value, key string) (float64, error) {
	v, err := GetField(root, key)
	if err != nil {
		return 0, err
	}
	f, ok := v.AsFloat64()
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, want float", ErrFieldType, key, v.Type)
	}
	return f, nil
}

// GetBytes returns a required bin field. Scalars come back in their string
// form.
func GetBytes(root packwire.Value, key string) ([]byte, error) {
	v, err := GetField(root, key)
	if err != nil {
		return nil, err
	}
	b, ok := v.AsBytes()
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, want bin", ErrFieldType, key, v.Type)
	}
	return b, nil
}
