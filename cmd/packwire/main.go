package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/starfederation/packwire"
)

type cli struct {
	Config  string `help:"TOML file with decoder settings." type:"path"`
	Verbose bool   `short:"v" help:"Log at debug level."`

	Decode decodeCmd `cmd:"" default:"withargs" help:"Decode a payload and print it as JSON."`
}

type decodeCmd struct {
	File       string `arg:"" optional:"" default:"-" help:"Payload file, or - for stdin."`
	Compact    *bool  `short:"c" negatable:"" help:"Print JSON on a single line."`
	MaxDepth   int    `help:"Maximum container nesting."`
	MaxSize    int64  `help:"Maximum inflated size of a gzip envelope in bytes."`
	CopyBinary *bool  `negatable:"" help:"Copy binary values out of the payload buffer."`
	Strict     *bool  `negatable:"" help:"Reject bytes after the decoded value."`
}

type environment struct {
	configPath string
	logger     zerolog.Logger
	stdin      io.Reader
	stdout     io.Writer
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("packwire"),
		kong.Description("Decode binary socket payloads, optionally gzip-wrapped, into JSON."),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if args.Verbose {
		level = zerolog.DebugLevel
	}
	env := &environment{
		configPath: args.Config,
		logger:     newLogger(level),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
	if err := ctx.Run(env); err != nil {
		env.logger.Error().Err(err).Msg("packwire failed")
		os.Exit(1)
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "packwire").Logger()
}

func (c *decodeCmd) Run(env *environment) error {
	s, err := loadSettings(env.configPath)
	if err != nil {
		return err
	}
	s = c.apply(s)

	var in io.Reader = env.stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return decodePayload(in, env.stdout, s, env.logger)
}

// apply overrides s with the flags that were set. Boolean flags are nil
// unless given, so --no-strict can turn off a strict = true from the file.
func (c *decodeCmd) apply(s settings) settings {
	if c.MaxDepth > 0 {
		s.MaxDepth = c.MaxDepth
	}
	if c.MaxSize > 0 {
		s.MaxSize = c.MaxSize
	}
	if c.CopyBinary != nil {
		s.CopyBinary = *c.CopyBinary
	}
	if c.Strict != nil {
		s.Strict = *c.Strict
	}
	if c.Compact != nil {
		s.Compact = *c.Compact
	}
	return s
}

func decodePayload(r io.Reader, w io.Writer, s settings, logger zerolog.Logger) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	envelope := s.envelope()
	v, ok, err := envelope.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", packwire.DetectEnvelope(raw), err)
	}
	if !ok {
		logger.Info().Msg("empty input, no message")
		return nil
	}
	logger.Debug().
		Stringer("envelope", packwire.DetectEnvelope(raw)).
		Int("bytes", len(raw)).
		Stringer("root", v.Type).
		Msg("decoded")
	if keys := packwire.CollidingJSONKeys(v); len(keys) > 0 {
		logger.Debug().Strs("keys", keys).Msg("map keys collide in JSON output")
	}

	out, err := packwire.ToJSON(v)
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	if !s.Compact {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(out), "", "  "); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		out = buf.String()
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
