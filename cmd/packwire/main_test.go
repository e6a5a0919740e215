package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/starfederation/packwire"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packwire.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != defaultSettings() {
		t.Fatalf("got %+v", s)
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	path := writeConfig(t, `
max_depth = 16
max_decompressed_size = 4096
copy_binary = true
compact = true
`)
	s, err := loadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaxDepth != 16 || s.MaxSize != 4096 || !s.CopyBinary || !s.Compact {
		t.Fatalf("got %+v", s)
	}
	if s.Strict {
		t.Fatalf("strict set without key")
	}
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		"max_depth = 0",
		"max_decompressed_size = -1",
		"unknown_key = 1",
		"max_depth = ",
	} {
		if _, err := loadSettings(writeConfig(t, body)); err == nil {
			t.Fatalf("accepted %q", body)
		}
	}
	if _, err := loadSettings(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestApplyFlags(t *testing.T) {
	on := true
	c := decodeCmd{MaxDepth: 4, Strict: &on}
	s := c.apply(defaultSettings())
	if s.MaxDepth != 4 || !s.Strict || s.MaxSize != packwire.DefaultMaxDecompressedSize {
		t.Fatalf("got %+v", s)
	}
}

func TestNegatedFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, `
strict = true
copy_binary = true
compact = true
`)
	fromFile, err := loadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var args cli
	parser, err := kong.New(&args, kong.Name("packwire"))
	if err != nil {
		t.Fatalf("kong: %v", err)
	}
	if _, err := parser.Parse([]string{"decode", "--no-strict", "--no-copy-binary", "frame.bin"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := args.Decode.apply(fromFile)
	if s.Strict || s.CopyBinary {
		t.Fatalf("negated flags ignored: %+v", s)
	}
	if !s.Compact {
		t.Fatalf("unset flag cleared file setting: %+v", s)
	}

	args = cli{}
	parser, err = kong.New(&args, kong.Name("packwire"))
	if err != nil {
		t.Fatalf("kong: %v", err)
	}
	if _, err := parser.Parse([]string{"decode", "--strict"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if args.Decode.CopyBinary != nil || args.Decode.Strict == nil || !*args.Decode.Strict {
		t.Fatalf("got %+v", args.Decode)
	}
}

func TestDecodePayload(t *testing.T) {
	raw, err := msgpack.Marshal(map[any]any{1: "a", "b": []any{true, 2.5}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(raw)
	zw.Close()

	for name, input := range map[string][]byte{"plain": raw, "gzip": gz.Bytes()} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			s := defaultSettings()
			if err := decodePayload(bytes.NewReader(input), &out, s, zerolog.Nop()); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(out.String(), "\n  ") {
				t.Fatalf("output not indented: %s", out.String())
			}
			var got map[string]any
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if got["1"] != "a" {
				t.Fatalf("got %v", got)
			}
		})
	}

	var out bytes.Buffer
	s := defaultSettings()
	s.Compact = true
	if err := decodePayload(bytes.NewReader([]byte{0x92, 0x01, 0xc0}), &out, s, zerolog.Nop()); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if out.String() != "[1,null]\n" {
		t.Fatalf("compact output %q", out.String())
	}
}

func TestDecodePayloadEmptyAndErrors(t *testing.T) {
	var out bytes.Buffer
	if err := decodePayload(bytes.NewReader(nil), &out, defaultSettings(), zerolog.Nop()); err != nil {
		t.Fatalf("empty: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("empty input printed %q", out.String())
	}

	err := decodePayload(bytes.NewReader([]byte{0xc1}), &out, defaultSettings(), zerolog.Nop())
	if !errors.Is(err, packwire.ErrUnsupportedFormat) {
		t.Fatalf("unsupported: %v", err)
	}

	s := defaultSettings()
	s.Strict = true
	err = decodePayload(bytes.NewReader([]byte{0x01, 0x02}), &out, s, zerolog.Nop())
	if !errors.Is(err, packwire.ErrTrailingBytes) {
		t.Fatalf("strict: %v", err)
	}

	s = defaultSettings()
	s.MaxDepth = 1
	err = decodePayload(bytes.NewReader([]byte{0x91, 0x91, 0xc0}), &out, s, zerolog.Nop())
	if !errors.Is(err, packwire.ErrNestingTooDeep) {
		t.Fatalf("depth: %v", err)
	}
}

func TestDecodeCmdRunReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bin")
	if err := os.WriteFile(path, []byte{0xa2, 'o', 'k'}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	env := &environment{logger: zerolog.Nop(), stdin: strings.NewReader(""), stdout: &out}
	compact := true
	c := &decodeCmd{File: path, Compact: &compact}
	if err := c.Run(env); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "\"ok\"\n" {
		t.Fatalf("got %q", out.String())
	}

	out.Reset()
	env.stdin = bytes.NewReader([]byte{0x05})
	c = &decodeCmd{File: "-"}
	if err := c.Run(env); err != nil {
		t.Fatalf("run stdin: %v", err)
	}
	if out.String() != "5\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestDecodePayloadLogsCollidingKeys(t *testing.T) {
	raw, err := msgpack.Marshal(map[any]any{int8(1): "number", "1": "text"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var logs, out bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	if err := decodePayload(bytes.NewReader(raw), &out, defaultSettings(), logger); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(logs.String(), "map keys collide in JSON output") || !strings.Contains(logs.String(), `"keys":["1"]`) {
		t.Fatalf("logs %s", logs.String())
	}

	logs.Reset()
	if err := decodePayload(bytes.NewReader([]byte{0x81, 0x01, 0xc0}), &out, defaultSettings(), logger); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(logs.String(), "collide") {
		t.Fatalf("logs %s", logs.String())
	}
}
