package packwire

import (
	"fmt"
	"math"
)

// DefaultMaxDepth is the container nesting limit used when Decoder.MaxDepth is zero.
const DefaultMaxDepth = 1024

// Decoder walks an encoded buffer in a single recursive-descent pass.
//
// A Decoder holds configuration only. It is safe for concurrent use, and
// the zero value is ready to use.
type Decoder struct {
	// MaxDepth bounds how many containers may be nested inside each other.
	MaxDepth int

	// CopyBinary makes bin values own their bytes. When false they are
	// views into the decoded buffer and stay valid only while it is not
	// modified.
	CopyBinary bool
}

// Cursor is the result of one decode step: the decoded value and the
// offset just past its last byte.
type Cursor struct {
	Pos   int
	Value Value
}

var defaultDecoder Decoder

// DecodeValue decodes the item at the start of b and returns the value and bytes read.
func DecodeValue(b []byte) (Value, int, error) {
	c, err := defaultDecoder.DecodeAt(b, 0)
	if err != nil {
		return Value{}, 0, err
	}
	return c.Value, c.Pos, nil
}

// Unpack decodes b, which must hold exactly one item.
func Unpack(b []byte) (Value, error) {
	return defaultDecoder.Unpack(b)
}

// Unpack decodes b, which must hold exactly one item.
func (d *Decoder) Unpack(b []byte) (Value, error) {
	c, err := d.DecodeAt(b, 0)
	if err != nil {
		return Value{}, err
	}
	if c.Pos != len(b) {
		return Value{}, fmt.Errorf("%w: %d of %d bytes consumed", ErrTrailingBytes, c.Pos, len(b))
	}
	return c.Value, nil
}

// DecodeAt decodes the item starting at pos.
func (d *Decoder) DecodeAt(buf []byte, pos int) (Cursor, error) {
	if pos < 0 || pos > len(buf) {
		return Cursor{}, fmt.Errorf("%w: offset %d outside buffer of %d bytes", ErrTruncatedInput, pos, len(buf))
	}
	return d.decode(buf, pos, 0)
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}

func (d *Decoder) decode(buf []byte, pos int, depth int) (Cursor, error) {
	if pos >= len(buf) {
		return Cursor{}, fmt.Errorf("%w: format byte missing at offset %d", ErrTruncatedInput, pos)
	}
	code := buf[pos]
	format := FormatOf(code)
	pos++

	switch format {
	case FormatPositiveFixInt:
		return Cursor{Pos: pos, Value: Int(int64(code))}, nil
	case FormatNegativeFixInt:
		return Cursor{Pos: pos, Value: Int(-int64(0xff-code) - 1)}, nil
	case FormatNil:
		return Cursor{Pos: pos, Value: Null()}, nil
	case FormatFalse:
		return Cursor{Pos: pos, Value: Bool(false)}, nil
	case FormatTrue:
		return Cursor{Pos: pos, Value: Bool(true)}, nil
	case FormatFixMap:
		return d.readMap(buf, pos, uint64(code-CodeFixMapLow), depth)
	case FormatFixArray:
		return d.readArray(buf, pos, uint64(code-CodeFixArrayLow), depth)
	case FormatFixStr:
		return readString(buf, pos, uint64(code-CodeFixStrLow))
	case FormatUint8, FormatUint16, FormatUint32, FormatUint64:
		u, next, err := readUint(buf, pos, format.headerWidth())
		if err != nil {
			return Cursor{}, err
		}
		return Cursor{Pos: next, Value: Uint(u)}, nil
	case FormatInt8, FormatInt16, FormatInt32, FormatInt64:
		i, next, err := readInt(buf, pos, format.headerWidth())
		if err != nil {
			return Cursor{}, err
		}
		return Cursor{Pos: next, Value: Int(i)}, nil
	case FormatFloat32, FormatFloat64:
		f, next, err := readFloat(buf, pos, format.headerWidth())
		if err != nil {
			return Cursor{}, err
		}
		return Cursor{Pos: next, Value: Float(f)}, nil
	}

	// Everything left carries a length header.
	width := format.headerWidth()
	if width == 0 {
		return Cursor{}, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnsupportedFormat, code, pos-1)
	}
	n, next, err := readUint(buf, pos, width)
	if err != nil {
		return Cursor{}, err
	}
	switch format {
	case FormatBin8, FormatBin16, FormatBin32:
		return d.readBin(buf, next, n)
	case FormatStr8, FormatStr16, FormatStr32:
		return readString(buf, next, n)
	case FormatArray16, FormatArray32:
		return d.readArray(buf, next, n, depth)
	case FormatMap16, FormatMap32:
		return d.readMap(buf, next, n, depth)
	default:
		return Cursor{}, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnsupportedFormat, code, pos-1)
	}
}

// readUint reads a big-endian unsigned header of width bits at pos.
// Accumulation happens in uint64 so the full 64-bit range is exact.
func readUint(buf []byte, pos int, width uint) (uint64, int, error) {
	size := int(width / 8)
	if len(buf)-pos < size {
		return 0, 0, fmt.Errorf("%w: need %d header bytes at offset %d, have %d", ErrTruncatedInput, size, pos, len(buf)-pos)
	}
	var u uint64
	for i := 0; i < size; i++ {
		u = u<<8 | uint64(buf[pos+i])
	}
	return u, pos + size, nil
}

// readInt reads a two's-complement integer of width bits and sign-extends it.
func readInt(buf []byte, pos int, width uint) (int64, int, error) {
	u, next, err := readUint(buf, pos, width)
	if err != nil {
		return 0, 0, err
	}
	shift := 64 - width
	return int64(u<<shift) >> shift, next, nil
}

func readFloat(buf []byte, pos int, width uint) (float64, int, error) {
	u, next, err := readUint(buf, pos, width)
	if err != nil {
		return 0, 0, err
	}
	if width == 32 {
		return float64(math.Float32frombits(uint32(u))), next, nil
	}
	return math.Float64frombits(u), next, nil
}

// payload returns the n bytes at pos, capped so appends cannot reach past them.
func payload(buf []byte, pos int, n uint64) ([]byte, error) {
	if n > uint64(len(buf)-pos) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, pos, len(buf)-pos)
	}
	end := pos + int(n)
	return buf[pos:end:end], nil
}

func (d *Decoder) readBin(buf []byte, pos int, n uint64) (Cursor, error) {
	b, err := payload(buf, pos, n)
	if err != nil {
		return Cursor{}, err
	}
	if d.CopyBinary {
		b = append([]byte(nil), b...)
	}
	return Cursor{Pos: pos + len(b), Value: Bin(b)}, nil
}

func readString(buf []byte, pos int, n uint64) (Cursor, error) {
	b, err := payload(buf, pos, n)
	if err != nil {
		return Cursor{}, err
	}
	s, err := decodeUTF8(b, pos)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{Pos: pos + len(b), Value: Str(s)}, nil
}

func (d *Decoder) enter(pos int, depth int) error {
	if depth >= d.maxDepth() {
		return fmt.Errorf("%w: more than %d levels at offset %d", ErrNestingTooDeep, d.maxDepth(), pos)
	}
	return nil
}

func (d *Decoder) readArray(buf []byte, pos int, count uint64, depth int) (Cursor, error) {
	if err := d.enter(pos, depth); err != nil {
		return Cursor{}, err
	}
	// Every element takes at least one byte.
	if count > uint64(len(buf)-pos) {
		return Cursor{}, fmt.Errorf("%w: array of %d elements at offset %d, %d bytes left", ErrTruncatedInput, count, pos, len(buf)-pos)
	}
	items := make([]Value, 0, int(count))
	for i := uint64(0); i < count; i++ {
		c, err := d.decode(buf, pos, depth+1)
		if err != nil {
			return Cursor{}, err
		}
		pos = c.Pos
		items = append(items, c.Value)
	}
	return Cursor{Pos: pos, Value: Value{Type: TypeArray, Array: items}}, nil
}

func (d *Decoder) readMap(buf []byte, pos int, count uint64, depth int) (Cursor, error) {
	if err := d.enter(pos, depth); err != nil {
		return Cursor{}, err
	}
	// Every entry takes at least a key byte and a value byte.
	if count*2 > uint64(len(buf)-pos) {
		return Cursor{}, fmt.Errorf("%w: map of %d entries at offset %d, %d bytes left", ErrTruncatedInput, count, pos, len(buf)-pos)
	}
	entries := make([]MapEntry, 0, int(count))
	for i := uint64(0); i < count; i++ {
		k, err := d.decode(buf, pos, depth+1)
		if err != nil {
			return Cursor{}, err
		}
		v, err := d.decode(buf, k.Pos, depth+1)
		if err != nil {
			return Cursor{}, err
		}
		pos = v.Pos
		entries = append(entries, MapEntry{Key: k.Value, Value: v.Value})
	}
	return Cursor{Pos: pos, Value: Value{Type: TypeMap, Map: entries}}, nil
}
