package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats understood by Setup.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Options configures the sinks of a SlogManager.
type Options struct {
	Level  string
	Format string

	// Console receives human readable output. Defaults to os.Stdout.
	Console io.Writer
	// File receives the same records in the same format, without colors.
	File io.Writer
	// Graylog receives JSON records, one per write. Optional.
	Graylog io.Writer
	// Context adds dynamic attributes to every record. Optional.
	Context ContextProvider
}

// SlogManager manages slog-based logging with a zerolog twin for the storage layer.
type SlogManager struct {
	logger *slog.Logger
	zl     zerolog.Logger
	ready  bool
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{zl: zerolog.Nop()}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// zerologLevel maps a slog level onto zerolog.
func zerologLevel(lvl slog.Level) zerolog.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return zerolog.DebugLevel
	case lvl <= slog.LevelInfo:
		return zerolog.InfoLevel
	case lvl <= slog.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// handlerOptions renders times as RFC3339 UTC. In pretty mode the keys are
// renamed to what zerolog.ConsoleWriter parses.
func handlerOptions(lvl slog.Level, pretty bool) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			case slog.MessageKey:
				if pretty {
					a.Key = zerolog.MessageFieldName
				}
			case slog.LevelKey:
				if pretty {
					a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
				}
			}
			return a
		},
	}
}

func newHandler(w io.Writer, format string, lvl slog.Level, noColor bool) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, handlerOptions(lvl, false))
	case FormatPretty:
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: noColor}
		return slog.NewJSONHandler(cw, handlerOptions(lvl, true))
	default:
		return slog.NewTextHandler(w, handlerOptions(lvl, false))
	}
}

// Setup initializes the logging system. Calling it again replaces every sink.
func (m *SlogManager) Setup(opts Options) {
	lvl := parseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	var handlers []slog.Handler
	handlers = append(handlers, newHandler(console, opts.Format, lvl, false))
	if opts.File != nil {
		handlers = append(handlers, newHandler(opts.File, opts.Format, lvl, true))
	}
	if opts.Graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.Graylog, handlerOptions(lvl, false)))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if opts.Context != nil {
		handler = NewContextHandler(handler, opts.Context)
	}
	m.logger = slog.New(handler)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}
	if opts.File != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.File, TimeFormat: time.RFC3339, NoColor: true})
	}
	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(zerologLevel(lvl)).With().Timestamp().Logger()
	if opts.Context != nil {
		zl = zl.Hook(contextHook(opts.Context))
	}
	m.zl = zl
	m.ready = true

	m.logger.Info("Logging initialized", "level", opts.Level, "format", opts.Format)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Zerolog returns a zerolog.Logger writing to the console and file sinks,
// tagged with the given component. It discards everything before Setup.
func (m *SlogManager) Zerolog(component string) zerolog.Logger {
	if !m.ready {
		return zerolog.Nop()
	}
	return m.zl.With().Str("component", component).Logger()
}

// contextHook copies the provider's attributes onto every zerolog event.
func contextHook(provider ContextProvider) zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, msg string) {
		for _, a := range provider() {
			e.Interface(a.Key, a.Value.Any())
		}
	}
}
