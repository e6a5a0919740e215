package packwire

import "fmt"

// Format identifies the family a format byte belongs to.
type Format uint8

const (
	FormatUnsupported Format = iota
	FormatPositiveFixInt
	FormatFixMap
	FormatFixArray
	FormatFixStr
	FormatNil
	FormatFalse
	FormatTrue
	FormatBin8
	FormatBin16
	FormatBin32
	FormatFloat32
	FormatFloat64
	FormatUint8
	FormatUint16
	FormatUint32
	FormatUint64
	FormatInt8
	FormatInt16
	FormatInt32
	FormatInt64
	FormatStr8
	FormatStr16
	FormatStr32
	FormatArray16
	FormatArray32
	FormatMap16
	FormatMap32
	FormatNegativeFixInt
)

// Wire values of the single-byte formats and the bounds of the fixed ranges.
const (
	CodePositiveFixIntMax byte = 0x7f
	CodeFixMapLow         byte = 0x80
	CodeFixMapHigh        byte = 0x8f
	CodeFixArrayLow       byte = 0x90
	CodeFixArrayHigh      byte = 0x9f
	CodeFixStrLow         byte = 0xa0
	CodeFixStrHigh        byte = 0xbf
	CodeNil               byte = 0xc0
	CodeNeverUsed         byte = 0xc1
	CodeFalse             byte = 0xc2
	CodeTrue              byte = 0xc3
	CodeBin8              byte = 0xc4
	CodeBin16             byte = 0xc5
	CodeBin32             byte = 0xc6
	CodeExt8              byte = 0xc7
	CodeExt16             byte = 0xc8
	CodeExt32             byte = 0xc9
	CodeFloat32           byte = 0xca
	CodeFloat64           byte = 0xcb
	CodeUint8             byte = 0xcc
	CodeUint16            byte = 0xcd
	CodeUint32            byte = 0xce
	CodeUint64            byte = 0xcf
	CodeInt8              byte = 0xd0
	CodeInt16             byte = 0xd1
	CodeInt32             byte = 0xd2
	CodeInt64             byte = 0xd3
	CodeFixExt1           byte = 0xd4
	CodeFixExt16          byte = 0xd8
	CodeStr8              byte = 0xd9
	CodeStr16             byte = 0xda
	CodeStr32             byte = 0xdb
	CodeArray16           byte = 0xdc
	CodeArray32           byte = 0xdd
	CodeMap16             byte = 0xde
	CodeMap32             byte = 0xdf
	CodeNegativeFixIntMin byte = 0xe0
)

// fixedFormats maps every byte of the 0xc0-0xdf block to its format.
// Ext types and 0xc1 are left as FormatUnsupported.
var fixedFormats = [32]Format{
	CodeNil - CodeNil:     FormatNil,
	CodeFalse - CodeNil:   FormatFalse,
	CodeTrue - CodeNil:    FormatTrue,
	CodeBin8 - CodeNil:    FormatBin8,
	CodeBin16 - CodeNil:   FormatBin16,
	CodeBin32 - CodeNil:   FormatBin32,
	CodeFloat32 - CodeNil: FormatFloat32,
	CodeFloat64 - CodeNil: FormatFloat64,
	CodeUint8 - CodeNil:   FormatUint8,
	CodeUint16 - CodeNil:  FormatUint16,
	CodeUint32 - CodeNil:  FormatUint32,
	CodeUint64 - CodeNil:  FormatUint64,
	CodeInt8 - CodeNil:    FormatInt8,
	CodeInt16 - CodeNil:   FormatInt16,
	CodeInt32 - CodeNil:   FormatInt32,
	CodeInt64 - CodeNil:   FormatInt64,
	CodeStr8 - CodeNil:    FormatStr8,
	CodeStr16 - CodeNil:   FormatStr16,
	CodeStr32 - CodeNil:   FormatStr32,
	CodeArray16 - CodeNil: FormatArray16,
	CodeArray32 - CodeNil: FormatArray32,
	CodeMap16 - CodeNil:   FormatMap16,
	CodeMap32 - CodeNil:   FormatMap32,
}

// FormatOf classifies a format byte. Every byte value maps to exactly one Format.
func FormatOf(code byte) Format {
	switch {
	case code <= CodePositiveFixIntMax:
		return FormatPositiveFixInt
	case code <= CodeFixMapHigh:
		return FormatFixMap
	case code <= CodeFixArrayHigh:
		return FormatFixArray
	case code <= CodeFixStrHigh:
		return FormatFixStr
	case code >= CodeNegativeFixIntMin:
		return FormatNegativeFixInt
	default:
		return fixedFormats[code-CodeNil]
	}
}

// headerWidth returns the size in bits of the length or value header that
// follows the format byte, or 0 when the format carries none.
func (f Format) headerWidth() uint {
	switch f {
	case FormatBin8, FormatUint8, FormatInt8, FormatStr8:
		return 8
	case FormatBin16, FormatUint16, FormatInt16, FormatStr16, FormatArray16, FormatMap16:
		return 16
	case FormatBin32, FormatUint32, FormatInt32, FormatStr32, FormatArray32, FormatMap32, FormatFloat32:
		return 32
	case FormatUint64, FormatInt64, FormatFloat64:
		return 64
	default:
		return 0
	}
}

var formatNames = [...]string{
	FormatUnsupported:    "unsupported",
	FormatPositiveFixInt: "positive fixint",
	FormatFixMap:         "fixmap",
	FormatFixArray:       "fixarray",
	FormatFixStr:         "fixstr",
	FormatNil:            "nil",
	FormatFalse:          "false",
	FormatTrue:           "true",
	FormatBin8:           "bin8",
	FormatBin16:          "bin16",
	FormatBin32:          "bin32",
	FormatFloat32:        "float32",
	FormatFloat64:        "float64",
	FormatUint8:          "uint8",
	FormatUint16:         "uint16",
	FormatUint32:         "uint32",
	FormatUint64:         "uint64",
	FormatInt8:           "int8",
	FormatInt16:          "int16",
	FormatInt32:          "int32",
	FormatInt64:          "int64",
	FormatStr8:           "str8",
	FormatStr16:          "str16",
	FormatStr32:          "str32",
	FormatArray16:        "array16",
	FormatArray32:        "array32",
	FormatMap16:          "map16",
	FormatMap32:          "map32",
	FormatNegativeFixInt: "negative fixint",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}
