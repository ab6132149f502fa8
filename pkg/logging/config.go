package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/bibsync/pkg/constants"
)

// Config describes where and how logs are written.
type Config struct {
	// Level is trace, debug, info, warn, error or off.
	Level string
	// Format is auto, json or console. Auto picks console on a terminal.
	Format string
	// Output is stderr, stdout, discard or a file path to append to.
	Output string
	// TimeFormat is kitchen, rfc3339 or unix.
	TimeFormat string
	NoColor    bool
	// AddCaller adds file:line. Debug and trace always add it.
	AddCaller bool
	// Fields are attached to every event.
	Fields map[string]any
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_TIME_FORMAT and
// NO_COLOR. DEBUG set with no LOG_LEVEL means debug.
func FromEnv() *Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	return &Config{
		Level:      level,
		Format:     os.Getenv("LOG_FORMAT"),
		Output:     os.Getenv("LOG_OUTPUT"),
		TimeFormat: os.Getenv("LOG_TIME_FORMAT"),
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig builds a logger. A nil cfg means info level on
// stderr. The zerolog global level is set to match.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}

	level := cfg.level()
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	for k, v := range cfg.Fields {
		ctx = addField(ctx, k, v)
	}
	return ctx.Logger()
}

func (c *Config) level() zerolog.Level {
	switch s := strings.ToLower(strings.TrimSpace(c.Level)); s {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(s); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

func (c *Config) writer() io.Writer {
	var out io.Writer
	switch strings.ToLower(c.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		out = io.Discard
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	switch strings.ToLower(c.Format) {
	case "json":
		return out
	case "console", "pretty", "text":
	default:
		if !isTerminal(out) {
			return out
		}
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: c.timeFormat(),
		NoColor:    c.NoColor,
	}
}

func (c *Config) timeFormat() string {
	switch strings.ToLower(c.TimeFormat) {
	case "rfc3339":
		return time.RFC3339
	case "unix":
		return zerolog.TimeFormatUnix
	case "", "kitchen":
		return time.Kitchen
	default:
		return c.TimeFormat
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
