package packwire

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsInt64 returns the value as int64 when it can be reasonably converted.
// Floats are truncated toward zero; text is parsed as an integer or a float.
func (v Value) AsInt64() (int64, bool) {
	switch v.Type {
	case TypeInt:
		return v.Int, true
	case TypeFloat:
		return floatToInt64(v.Float)
	case TypeStr:
		s := strings.TrimSpace(v.Str)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, ok := parseFloat64(s)
		if !ok {
			return 0, false
		}
		return floatToInt64(f)
	case TypeBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		// TypeUint only holds values above math.MaxInt64.
		return 0, false
	}
}

// AsUint64 returns the value as uint64 when it is a non-negative integer.
func (v Value) AsUint64() (uint64, bool) {
	switch v.Type {
	case TypeUint:
		return v.Uint, true
	case TypeInt:
		if v.Int < 0 {
			return 0, false
		}
		return uint64(v.Int), true
	default:
		return 0, false
	}
}

// AsFloat64 returns the value as float64. Integers wider than 53 bits lose
// precision.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Type {
	case TypeFloat:
		return v.Float, true
	case TypeInt:
		return float64(v.Int), true
	case TypeUint:
		return float64(v.Uint), true
	case TypeStr:
		return parseFloat64(v.Str)
	case TypeBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsString returns the value as string when it can be reasonably converted.
// Numeric and boolean values are formatted as their scalar representations.
func (v Value) AsString() (string, bool) {
	switch v.Type {
	case TypeStr:
		return v.Str, true
	case TypeBin:
		return string(v.Bytes), true
	case TypeInt:
		return strconv.FormatInt(v.Int, 10), true
	case TypeUint:
		return strconv.FormatUint(v.Uint, 10), true
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case TypeBool:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}

// AsBytes returns bin payloads as is and the AsString form of other scalars.
func (v Value) AsBytes() ([]byte, bool) {
	if v.Type == TypeBin {
		return v.Bytes, true
	}
	s, ok := v.AsString()
	if !ok {
		return nil, false
	}
	return []byte(s), true
}

// AsObject converts a TypeMap value into a map[string]any. Keys are named
// the way ToJSON names them.
func (v Value) AsObject() (map[string]any, error) {
	if v.Type != TypeMap {
		return nil, fmt.Errorf("value is %s, not map", v.Type)
	}
	return valueMapToAny(v)
}

// Interface converts v into plain Go values: nil, bool, int64, uint64,
// float64, string, []byte, []any and map[any]any. Map keys that are
// arrays, maps or binary blobs are not comparable in Go and are rendered
// with fmt.Sprint instead.
func (v Value) Interface() any {
	switch v.Type {
	case TypeNull:
		return nil
	case TypeBool:
		return v.Bool
	case TypeInt:
		return v.Int
	case TypeUint:
		return v.Uint
	case TypeFloat:
		return v.Float
	case TypeStr:
		return v.Str
	case TypeBin:
		return v.Bytes
	case TypeArray:
		out := make([]any, len(v.Array))
		for i := range v.Array {
			out[i] = v.Array[i].Interface()
		}
		return out
	case TypeMap:
		out := make(map[any]any, len(v.Map))
		for _, e := range v.Map {
			out[mapKeyInterface(e.Key)] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

func mapKeyInterface(k Value) any {
	switch k.Type {
	case TypeArray, TypeMap, TypeBin:
		return fmt.Sprint(k.Interface())
	default:
		return k.Interface()
	}
}

// valueToAny is Interface with JSON-shaped maps: keys become strings so the
// result can go through encoding/json, and bin stays []byte so it encodes as
// plain base64.
func valueToAny(v Value) (any, error) {
	switch v.Type {
	case TypeArray:
		out := make([]any, len(v.Array))
		for i := range v.Array {
			item, err := valueToAny(v.Array[i])
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case TypeMap:
		return valueMapToAny(v)
	case TypeNull, TypeBool, TypeInt, TypeUint, TypeFloat, TypeStr, TypeBin:
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("unknown value type %d", v.Type)
	}
}

func valueMapToAny(v Value) (map[string]any, error) {
	out := make(map[string]any, len(v.Map))
	for _, e := range v.Map {
		key, err := jsonKey(e.Key)
		if err != nil {
			return nil, err
		}
		item, err := valueToAny(e.Value)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseFloat64(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
