package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/starfederation/packwire"
)

type settings struct {
	MaxDepth   int
	MaxSize    int64
	CopyBinary bool
	Strict     bool
	Compact    bool
}

func defaultSettings() settings {
	return settings{
		MaxDepth: packwire.DefaultMaxDepth,
		MaxSize:  packwire.DefaultMaxDecompressedSize,
	}
}

type fileConfig struct {
	MaxDepth   int   `toml:"max_depth"`
	MaxSize    int64 `toml:"max_decompressed_size"`
	CopyBinary bool  `toml:"copy_binary"`
	Strict     bool  `toml:"strict"`
	Compact    bool  `toml:"compact"`
}

// loadSettings overlays the keys present in the TOML file at path on the
// defaults. An empty path returns the defaults.
func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return settings{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth <= 0 {
			return settings{}, fmt.Errorf("max_depth must be positive, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("max_decompressed_size") {
		if raw.MaxSize <= 0 {
			return settings{}, fmt.Errorf("max_decompressed_size must be positive, got %d", raw.MaxSize)
		}
		cfg.MaxSize = raw.MaxSize
	}
	if meta.IsDefined("copy_binary") {
		cfg.CopyBinary = raw.CopyBinary
	}
	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}
	if meta.IsDefined("compact") {
		cfg.Compact = raw.Compact
	}
	return cfg, nil
}

func (s settings) envelope() packwire.Envelope {
	return packwire.Envelope{
		Decompressor: &packwire.GzipDecompressor{MaxSize: s.MaxSize},
		Decoder: packwire.Decoder{
			MaxDepth:   s.MaxDepth,
			CopyBinary: s.CopyBinary,
		},
		Strict: s.Strict,
	}
}
