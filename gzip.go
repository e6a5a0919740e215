package packwire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/delaneyj/toolbelt"
	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/klauspost/compress/gzip"
)

// DefaultMaxDecompressedSize caps inflated envelopes when GzipDecompressor.MaxSize is zero.
const DefaultMaxDecompressedSize int64 = 64 << 20

var gzipReaderPool = toolbelt.New(func() *gzip.Reader { return new(gzip.Reader) })

var defaultGzip GzipDecompressor

// GzipDecompressor inflates gzip envelopes.
type GzipDecompressor struct {
	// MaxSize bounds the inflated size in bytes.
	MaxSize int64
}

func (g *GzipDecompressor) maxSize() int64 {
	if g.MaxSize > 0 {
		return g.MaxSize
	}
	return DefaultMaxDecompressedSize
}

// Decompress inflates compressed and returns a freshly allocated buffer,
// so bin values decoded from it may alias it safely.
func (g *GzipDecompressor) Decompress(compressed []byte) ([]byte, error) {
	zr := gzipReaderPool.Get()
	defer gzipReaderPool.Put(zr)

	if err := zr.Reset(bytes.NewReader(compressed)); err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	limit := g.maxSize()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	n, err := io.Copy(buf, io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("gzip inflate: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("gzip inflate: output exceeds %d bytes", limit)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
