package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type LogOpts struct {
	Verbose  bool
	Color    string
	Encoding string
	// DefaultLevels sets per-logger levels (eg. "engine": debug). Overridden entirely by the LOG_LEVEL
	// environment variable, which uses the form `name=level,name=level`.
	DefaultLevels map[string]zapcore.Level
	// Tracker, if set, records whether warnings or errors were logged.
	Tracker *Tracker
}

func (opts LogOpts) useColor() bool {
	switch opts.Color {
	case "always", "on":
		return true
	case "never", "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

func (opts LogOpts) Encoder() (zapcore.Encoder, error) {
	switch opts.Encoding {
	case "json":
		if opts.Verbose {
			return zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), nil
		}
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil

	case "console", "":
		cfg := zap.NewDevelopmentEncoderConfig()
		useColor := opts.useColor()
		cfg.EncodeTime = TimeOffsetFormatter(time.Now(), useColor)
		if useColor {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		if !opts.Verbose {
			cfg.CallerKey = zapcore.OmitKey
		}
		return zapcore.NewConsoleEncoder(cfg), nil

	default:
		return nil, fmt.Errorf("unknown encoding %q", opts.Encoding)
	}
}

func (opts LogOpts) EntryLeveller(core zapcore.Core) zapcore.Core {
	levels := opts.DefaultLevels
	if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
		levels = ParseLevels(levelEnv)
	}

	if len(levels) > 0 {
		core = NewEntryLeveller(core, levels)
	}
	return core
}

// ParseLevels parses `name=level,name=level`, skipping malformed entries.
func ParseLevels(s string) map[string]zapcore.Level {
	values := strings.Split(s, ",")
	levels := make(map[string]zapcore.Level, len(values))
	for _, v := range values {
		k, v, ok := strings.Cut(strings.TrimSpace(v), "=")
		if !ok {
			continue
		}
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			continue
		}
		levels[k] = lvl
	}
	return levels
}

func (opts LogOpts) NewCore(w zapcore.WriteSyncer) (zapcore.Core, error) {
	enc, err := opts.Encoder()
	if err != nil {
		return nil, err
	}

	leveller := zap.NewAtomicLevel()
	if opts.Verbose {
		leveller.SetLevel(zap.DebugLevel)
	} else {
		leveller.SetLevel(zap.InfoLevel)
	}

	core := zapcore.NewCore(enc, w, leveller)
	core = opts.EntryLeveller(core)
	if opts.Tracker != nil {
		core = opts.Tracker.Wrap(core)
	}
	return core, nil
}

func (opts LogOpts) NewLogger() (*zap.Logger, error) {
	core, err := opts.NewCore(zapcore.Lock(os.Stderr))
	if err != nil {
		return nil, err
	}
	return zap.New(core), nil
}

// TimeOffsetFormatter returns a time encoder that formats the time as an offset from the start time.
// This is mostly useful for CLI logging not long-standing services as times beyond a few minutes will
// be less readable.
func TimeOffsetFormatter(start time.Time, color bool) zapcore.TimeEncoder {
	var colStart = "\x1b[90m"
	var colEnd = "\x1b[0m"
	if !color {
		colStart = ""
		colEnd = ""
	}
	return func(t time.Time, e zapcore.PrimitiveArrayEncoder) {
		diff := t.Sub(start)
		if diff < time.Second {
			e.AppendString(fmt.Sprintf(" %s%3dms%s", colStart, diff.Milliseconds(), colEnd))
		} else if diff < 5*time.Minute {
			e.AppendString(fmt.Sprintf("%s%5.1fs%s", colStart, diff.Seconds(), colEnd))
		} else {
			e.AppendString(fmt.Sprintf("%s%5.1fm%s", colStart, diff.Minutes(), colEnd))
		}
	}
}
