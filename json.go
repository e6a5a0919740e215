package packwire

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToJSON renders v as JSON. Binary values become "b64:"-prefixed base64
// strings. Map keys that are not strings are rendered as JSON text and
// then quoted, so Int(1) becomes the key "1".
func ToJSON(v Value) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteJSON appends JSON for v to sb.
func WriteJSON(sb *strings.Builder, v Value) error {
	return writeJSONValue(sb, v)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	s, err := ToJSON(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func writeJSONValue(sb *strings.Builder, v Value) error {
	switch v.Type {
	case TypeNull:
		sb.WriteString("null")
	case TypeBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case TypeInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case TypeUint:
		sb.WriteString(strconv.FormatUint(v.Uint, 10))
	case TypeFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return fmt.Errorf("json: unsupported float %v", v.Float)
		}
		sb.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case TypeStr:
		writeJSONString(sb, v.Str)
	case TypeBin:
		sb.WriteByte('"')
		sb.WriteString("b64:")
		sb.WriteString(base64.StdEncoding.EncodeToString(v.Bytes))
		sb.WriteByte('"')
	case TypeArray:
		sb.WriteByte('[')
		for i := range v.Array {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSONValue(sb, v.Array[i]); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case TypeMap:
		sb.WriteByte('{')
		for i := range v.Map {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSONKey(sb, v.Map[i].Key); err != nil {
				return err
			}
			sb.WriteByte(':')
			if err := writeJSONValue(sb, v.Map[i].Value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("unknown value type %d", v.Type)
	}
	return nil
}

func writeJSONKey(sb *strings.Builder, k Value) error {
	key, err := jsonKey(k)
	if err != nil {
		return err
	}
	writeJSONString(sb, key)
	return nil
}

// jsonKey names a map key in JSON output: strings as they are, everything
// else as its JSON text.
func jsonKey(k Value) (string, error) {
	if k.Type == TypeStr {
		return k.Str, nil
	}
	var sb strings.Builder
	if err := writeJSONValue(&sb, k); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// CollidingJSONKeys reports the JSON key names that more than one key of
// the same map renders to, such as Int(1) and Str("1"), anywhere in v.
// JSON output keeps every such entry, and most JSON readers keep only the
// last one.
func CollidingJSONKeys(v Value) []string {
	var out []string
	collectCollidingKeys(v, &out)
	return out
}

func collectCollidingKeys(v Value, out *[]string) {
	switch v.Type {
	case TypeArray:
		for i := range v.Array {
			collectCollidingKeys(v.Array[i], out)
		}
	case TypeMap:
		seen := make(map[string]int, len(v.Map))
		for _, e := range v.Map {
			collectCollidingKeys(e.Key, out)
			collectCollidingKeys(e.Value, out)
			key, err := jsonKey(e.Key)
			if err != nil {
				continue
			}
			seen[key]++
			if seen[key] == 2 {
				*out = append(*out, key)
			}
		}
	}
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
