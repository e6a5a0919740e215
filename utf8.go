package packwire

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// decodeUTF8 turns a str payload into a Go string. A leading byte-order
// mark is dropped. Sequences of one to four bytes are accepted; a sequence
// cut short by the end of the payload, or any malformed byte, fails with
// ErrInvalidUTF8. offset is the payload's position in the source buffer
// and is used for error messages only.
func decodeUTF8(b []byte, offset int) (string, error) {
	if bytes.HasPrefix(b, utf8BOM) {
		b = b[len(utf8BOM):]
		offset += len(utf8BOM)
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	for i := 0; i < len(b); {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return "", fmt.Errorf("%w: sequence truncated at offset %d", ErrInvalidUTF8, offset+i)
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return "", fmt.Errorf("%w: byte 0x%02x at offset %d", ErrInvalidUTF8, b[i], offset+i)
		}
		i += size
	}
	// Not reached: the scan rejects everything utf8.Valid rejects.
	return "", fmt.Errorf("%w: at offset %d", ErrInvalidUTF8, offset)
}
