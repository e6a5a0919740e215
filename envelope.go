package packwire

import (
	"fmt"
)

// GzipMagic prefixes a compressed envelope.
var GzipMagic = [2]byte{0x1f, 0x8b}

// EnvelopeKind describes the outer wrapping of a raw message.
type EnvelopeKind uint8

const (
	EnvelopeEmpty EnvelopeKind = iota
	EnvelopePlain
	EnvelopeGzip
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeEmpty:
		return "empty"
	case EnvelopePlain:
		return "plain"
	case EnvelopeGzip:
		return "gzip"
	default:
		return fmt.Sprintf("envelope(%d)", uint8(k))
	}
}

// DetectEnvelope inspects the leading bytes of raw. A buffer must be longer
// than the magic itself to count as compressed.
func DetectEnvelope(raw []byte) EnvelopeKind {
	switch {
	case len(raw) == 0:
		return EnvelopeEmpty
	case len(raw) > len(GzipMagic) && raw[0] == GzipMagic[0] && raw[1] == GzipMagic[1]:
		return EnvelopeGzip
	default:
		return EnvelopePlain
	}
}

// Decompressor inflates a compressed envelope into the plain encoding.
type Decompressor interface {
	Decompress(compressed []byte) ([]byte, error)
}

// DecompressorFunc adapts a function to the Decompressor interface.
type DecompressorFunc func(compressed []byte) ([]byte, error)

func (f DecompressorFunc) Decompress(compressed []byte) ([]byte, error) {
	return f(compressed)
}

// Envelope decodes raw transport messages: it sniffs for compression,
// inflates when needed and decodes the single value inside.
type Envelope struct {
	// Decompressor inflates gzip envelopes. Nil means a GzipDecompressor
	// with default limits.
	Decompressor Decompressor

	// Decoder decodes the plain buffer.
	Decoder Decoder

	// Strict rejects plain buffers with bytes left after the value.
	Strict bool
}

var defaultEnvelope Envelope

// DecodeEnvelope decodes raw with the default Envelope.
func DecodeEnvelope(raw []byte) (Value, bool, error) {
	return defaultEnvelope.Decode(raw)
}

// Decode returns the value carried by raw. An empty raw yields ok == false
// and a nil error: there is no message to process, which is different from
// a message holding null. Decompression failures wrap ErrDecompression and
// are returned as is, without retry.
func (e *Envelope) Decode(raw []byte) (Value, bool, error) {
	plain, kind, err := e.Unwrap(raw)
	if err != nil {
		return Value{}, false, err
	}
	if kind == EnvelopeEmpty {
		return Value{}, false, nil
	}
	v, err := e.DecodePlain(plain)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// DecodePlain decodes a buffer that has already been unwrapped.
func (e *Envelope) DecodePlain(plain []byte) (Value, error) {
	if e.Strict {
		return e.Decoder.Unpack(plain)
	}
	c, err := e.Decoder.DecodeAt(plain, 0)
	if err != nil {
		return Value{}, err
	}
	return c.Value, nil
}

// Unwrap returns the plain encoding held by raw and the envelope it came in.
func (e *Envelope) Unwrap(raw []byte) ([]byte, EnvelopeKind, error) {
	kind := DetectEnvelope(raw)
	switch kind {
	case EnvelopeEmpty:
		return nil, kind, nil
	case EnvelopeGzip:
		plain, err := e.decompressor().Decompress(raw)
		if err != nil {
			return nil, kind, fmt.Errorf("%w: %w", ErrDecompression, err)
		}
		return plain, kind, nil
	default:
		return raw, kind, nil
	}
}

func (e *Envelope) decompressor() Decompressor {
	if e.Decompressor != nil {
		return e.Decompressor
	}
	return &defaultGzip
}
