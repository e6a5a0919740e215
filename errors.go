package packwire

import "errors"

// Decode failures. Every error returned by the decoders wraps exactly one of
// these, so callers can classify a failure with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("packwire: unsupported format")
	ErrTruncatedInput    = errors.New("packwire: truncated input")
	ErrInvalidUTF8       = errors.New("packwire: invalid utf-8")
	ErrNestingTooDeep    = errors.New("packwire: nesting too deep")
	ErrDecompression     = errors.New("packwire: decompression failed")
	ErrTrailingBytes     = errors.New("packwire: trailing bytes after value")
)
