package packwire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func gzipBytes(t testing.TB, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestDetectEnvelope(t *testing.T) {
	cases := []struct {
		in   []byte
		want EnvelopeKind
	}{
		{nil, EnvelopeEmpty},
		{[]byte{}, EnvelopeEmpty},
		{[]byte{0x1f}, EnvelopePlain},
		{[]byte{0x1f, 0x8b}, EnvelopePlain},
		{[]byte{0x1f, 0x8b, 0x08}, EnvelopeGzip},
		{[]byte{0x8b, 0x1f, 0x08}, EnvelopePlain},
		{[]byte{0xc0}, EnvelopePlain},
	}
	for _, tc := range cases {
		if got := DetectEnvelope(tc.in); got != tc.want {
			t.Fatalf("% x: got %s want %s", tc.in, got, tc.want)
		}
	}
}

func TestDecodeEnvelopePlainAndGzip(t *testing.T) {
	plain := mustMarshal(t, map[string]any{"topic": "test:lobby", "event": "large_reply", "payload": bytes.Repeat([]byte("z"), 4096)})
	want := mustDecode(t, plain)

	got, ok, err := DecodeEnvelope(plain)
	if err != nil || !ok {
		t.Fatalf("plain: ok=%v err=%v", ok, err)
	}
	if !Equal(got, want) {
		t.Fatalf("plain: got %v", got)
	}

	compressed := gzipBytes(t, plain)
	if DetectEnvelope(compressed) != EnvelopeGzip {
		t.Fatalf("gzip output not detected")
	}
	got, ok, err = DecodeEnvelope(compressed)
	if err != nil || !ok {
		t.Fatalf("gzip: ok=%v err=%v", ok, err)
	}
	if !Equal(got, want) {
		t.Fatalf("gzip: got %v", got)
	}
}

func TestDecodeEnvelopeNoMessage(t *testing.T) {
	for _, raw := range [][]byte{nil, {}} {
		v, ok, err := DecodeEnvelope(raw)
		if err != nil {
			t.Fatalf("empty: %v", err)
		}
		if ok {
			t.Fatalf("empty input reported a message: %v", v)
		}
	}
	v, ok, err := DecodeEnvelope([]byte{0xc0})
	if err != nil || !ok || !v.IsNull() {
		t.Fatalf("null message: %v %v %v", v, ok, err)
	}
}

func TestDecodeEnvelopeShortMagicIsPlain(t *testing.T) {
	calls := 0
	e := Envelope{Decompressor: DecompressorFunc(func(b []byte) ([]byte, error) {
		calls++
		return b, nil
	})}
	v, ok, err := e.Decode([]byte{0x1f, 0x8b})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !Equal(v, Int(31)) {
		t.Fatalf("got %v", v)
	}
	if calls != 0 {
		t.Fatalf("decompressor called for a two byte buffer")
	}
}

func TestDecodeEnvelopeUsesDecompressor(t *testing.T) {
	var seen []byte
	e := Envelope{Decompressor: DecompressorFunc(func(b []byte) ([]byte, error) {
		seen = b
		return []byte{0xa2, 'o', 'k'}, nil
	})}
	raw := []byte{0x1f, 0x8b, 0x00, 0x01}
	v, ok, err := e.Decode(raw)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(seen, raw) {
		t.Fatalf("decompressor got % x", seen)
	}
	if !Equal(v, Str("ok")) {
		t.Fatalf("got %v", v)
	}
}

func TestDecodeEnvelopeDecompressionError(t *testing.T) {
	errCorrupt := errors.New("corrupt stream")
	calls := 0
	e := Envelope{Decompressor: DecompressorFunc(func([]byte) ([]byte, error) {
		calls++
		return nil, errCorrupt
	})}
	_, ok, err := e.Decode([]byte{0x1f, 0x8b, 0x08, 0x00})
	if ok {
		t.Fatalf("failed decompression reported a message")
	}
	if !errors.Is(err, ErrDecompression) || !errors.Is(err, errCorrupt) {
		t.Fatalf("got %v", err)
	}
	if calls != 1 {
		t.Fatalf("decompressor called %d times", calls)
	}

	_, _, err = DecodeEnvelope([]byte{0x1f, 0x8b, 0x08, 0x00, 0xde, 0xad, 0xbe, 0xef})
	if !errors.Is(err, ErrDecompression) {
		t.Fatalf("corrupt gzip: %v", err)
	}

	compressed := gzipBytes(t, mustMarshal(t, "hello"))
	compressed[len(compressed)-5] ^= 0xff // crc32 trailer
	if _, _, err := DecodeEnvelope(compressed); !errors.Is(err, ErrDecompression) {
		t.Fatalf("bad trailer: %v", err)
	}
}

func TestGzipDecompressorMaxSize(t *testing.T) {
	plain := mustMarshal(t, bytes.Repeat([]byte{1}, 1024))
	compressed := gzipBytes(t, plain)

	g := &GzipDecompressor{MaxSize: 100}
	if _, err := g.Decompress(compressed); err == nil {
		t.Fatalf("oversized output accepted")
	}
	e := Envelope{Decompressor: g}
	if _, _, err := e.Decode(compressed); !errors.Is(err, ErrDecompression) {
		t.Fatalf("envelope: %v", err)
	}

	g.MaxSize = int64(len(plain))
	out, err := g.Decompress(compressed)
	if err != nil {
		t.Fatalf("exact limit: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("inflated bytes differ")
	}
}

func TestGzipDecompressorReuse(t *testing.T) {
	var g GzipDecompressor
	for i := 0; i < 10; i++ {
		plain := mustMarshal(t, []any{i, "x"})
		out, err := g.Decompress(gzipBytes(t, plain))
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if !bytes.Equal(out, plain) {
			t.Fatalf("round %d: got % x", i, out)
		}
	}
}

func TestEnvelopeStrict(t *testing.T) {
	e := Envelope{Strict: true}
	if _, _, err := e.Decode([]byte{0x01, 0x02}); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("strict: %v", err)
	}
	v, ok, err := DecodeEnvelope([]byte{0x01, 0x02})
	if err != nil || !ok || !Equal(v, Int(1)) {
		t.Fatalf("lenient: %v %v %v", v, ok, err)
	}
}

func TestEnvelopeDecoderSettings(t *testing.T) {
	e := Envelope{Decoder: Decoder{MaxDepth: 2}}
	raw := gzipBytes(t, nestedArrays(3))
	if _, _, err := e.Decode(raw); !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("got %v", err)
	}
}
