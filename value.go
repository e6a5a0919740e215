package packwire

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// ValueType is the variant tag of a decoded Value.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeStr
	TypeBin
	TypeArray
	TypeMap
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeBin:
		return "bin"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Value is one decoded item. Only the field matching Type is meaningful.
//
// Integers that fit in int64 are always TypeInt, whatever their wire
// width or signedness. TypeUint is reserved for unsigned values above
// math.MaxInt64.
type Value struct {
	Type  ValueType
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Bytes []byte
	Array []Value
	Map   []MapEntry
}

// MapEntry is a single key/value pair of a map value.
type MapEntry struct {
	Key   Value
	Value Value
}

func Null() Value            { return Value{Type: TypeNull} }
func Bool(b bool) Value      { return Value{Type: TypeBool, Bool: b} }
func Int(i int64) Value      { return Value{Type: TypeInt, Int: i} }
func Float(f float64) Value  { return Value{Type: TypeFloat, Float: f} }
func Str(s string) Value     { return Value{Type: TypeStr, Str: s} }
func Bin(b []byte) Value     { return Value{Type: TypeBin, Bytes: b} }
func Array(v ...Value) Value { return Value{Type: TypeArray, Array: v} }

// Map builds a map value from alternating keys and values.
// It panics when given an odd number of arguments.
func Map(kv ...Value) Value {
	if len(kv)%2 != 0 {
		panic("packwire: Map needs an even number of arguments")
	}
	entries := make([]MapEntry, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, MapEntry{Key: kv[i], Value: kv[i+1]})
	}
	return Value{Type: TypeMap, Map: entries}
}

// Uint returns an integer value, normalised to TypeInt when u fits in int64.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Value{Type: TypeInt, Int: int64(u)}
	}
	return Value{Type: TypeUint, Uint: u}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// Len returns the number of elements of an array or entries of a map,
// the byte length of str and bin values, and 0 otherwise.
func (v Value) Len() int {
	switch v.Type {
	case TypeArray:
		return len(v.Array)
	case TypeMap:
		return len(v.Map)
	case TypeStr:
		return len(v.Str)
	case TypeBin:
		return len(v.Bytes)
	default:
		return 0
	}
}

// Lookup returns the value stored under key in a map value. Keys are
// matched with Equal, so Int(1) and Str("1") are different keys.
func (v Value) Lookup(key Value) (Value, bool) {
	if v.Type != TypeMap {
		return Value{}, false
	}
	for i := range v.Map {
		if Equal(v.Map[i].Key, key) {
			return v.Map[i].Value, true
		}
	}
	return Value{}, false
}

// Get returns the value stored under the string key in a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.Type != TypeMap {
		return Value{}, false
	}
	for i := range v.Map {
		k := v.Map[i].Key
		if k.Type == TypeStr && k.Str == key {
			return v.Map[i].Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.Type != TypeArray || i < 0 || i >= len(v.Array) {
		return Value{}, false
	}
	return v.Array[i], true
}

// Equal reports whether a and b are structurally equal. Floats compare by
// bit pattern, and maps compare as unordered sets of entries.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull:
		return true
	case TypeBool:
		return a.Bool == b.Bool
	case TypeInt:
		return a.Int == b.Int
	case TypeUint:
		return a.Uint == b.Uint
	case TypeFloat:
		return math.Float64bits(a.Float) == math.Float64bits(b.Float)
	case TypeStr:
		return a.Str == b.Str
	case TypeBin:
		return bytes.Equal(a.Bytes, b.Bytes)
	case TypeArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		return mapsEqual(a.Map, b.Map)
	default:
		return false
	}
}

func mapsEqual(a, b []MapEntry) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for i := range a {
		found := false
		for j := range b {
			if used[j] || !Equal(a[i].Key, b[j].Key) {
				continue
			}
			if !Equal(a[i].Value, b[j].Value) {
				return false
			}
			used[j] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// String renders v for diagnostics. It is not a stable serialisation; use
// ToJSON for that.
func (v Value) String() string {
	var sb strings.Builder
	writeDebug(&sb, v)
	return sb.String()
}

func writeDebug(sb *strings.Builder, v Value) {
	switch v.Type {
	case TypeNull:
		sb.WriteString("null")
	case TypeBool:
		fmt.Fprintf(sb, "%t", v.Bool)
	case TypeInt:
		fmt.Fprintf(sb, "%d", v.Int)
	case TypeUint:
		fmt.Fprintf(sb, "%d", v.Uint)
	case TypeFloat:
		fmt.Fprintf(sb, "%g", v.Float)
	case TypeStr:
		fmt.Fprintf(sb, "%q", v.Str)
	case TypeBin:
		fmt.Fprintf(sb, "bin(%x)", v.Bytes)
	case TypeArray:
		sb.WriteByte('[')
		for i, e := range v.Array {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDebug(sb, e)
		}
		sb.WriteByte(']')
	case TypeMap:
		sb.WriteByte('{')
		for i, e := range v.Map {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDebug(sb, e.Key)
			sb.WriteString(": ")
			writeDebug(sb, e.Value)
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "<%s>", v.Type)
	}
}
