// Package logging configures the process-wide slog logger.
//
// The terminal belongs to the story renderer, so records go to a rotating
// file unless the console format is requested with no file set.
// Values can be provided directly or via environment variables:
//   - TALES_LOG_LEVEL=debug|info|warn|error
//   - TALES_LOG_FORMAT=text|json|console
//   - TALES_LOG_FILE=<path>
//   - TALES_LOG_SOURCE=true|false
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFile is used when neither options nor environment name a log file
const DefaultFile = "tales.log"

// Options controls logger initialization
type Options struct {
	Level     string
	Format    string // "text", "json" or "console"
	AddSource bool
	File      string
}

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	closers []io.Closer
)

// L returns the application logger, initializing from env if needed
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	l = logger
	mu.RUnlock()
	return l
}

// Init configures the global logger and sets slog.Default as well.
// Calling it again closes the previous file sink.
func Init(opts Options) {
	h, c := newHandler(opts)
	l := slog.New(h).With(slog.String("app", "tales"))

	mu.Lock()
	old := closers
	logger = l
	closers = nil
	if c != nil {
		closers = append(closers, c)
	}
	mu.Unlock()

	for _, c := range old {
		c.Close()
	}
	slog.SetDefault(l)
}

// Close flushes and closes the file sink, if any
func Close() error {
	mu.Lock()
	cs := closers
	closers = nil
	mu.Unlock()

	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newHandler picks the sink and encoding for opts
func newHandler(opts Options) (slog.Handler, io.Closer) {
	ho := &slog.HandlerOptions{Level: parseLevel(opts.Level), AddSource: opts.AddSource}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	file := strings.TrimSpace(opts.File)

	var w io.Writer
	var c io.Closer
	switch {
	case file != "":
		rot := &lj.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		w, c = rot, rot
	case format == "console":
		w = os.Stderr
	default:
		// Nowhere to write without corrupting the rendered story
		w = io.Discard
	}

	if format == "json" {
		return slog.NewJSONHandler(w, ho), c
	}
	return slog.NewTextHandler(w, ho), c
}

// FromEnv builds Options from environment variables
func FromEnv() Options {
	return Options{
		Level:     getenv("TALES_LOG_LEVEL", "info"),
		Format:    getenv("TALES_LOG_FORMAT", "text"),
		AddSource: strings.EqualFold(getenv("TALES_LOG_SOURCE", "false"), "true"),
		File:      getenv("TALES_LOG_FILE", DefaultFile),
	}
}

// Merge overlays non-empty environment values onto opts
func Merge(opts Options) Options {
	if v := os.Getenv("TALES_LOG_LEVEL"); v != "" {
		opts.Level = v
	}
	if v := os.Getenv("TALES_LOG_FORMAT"); v != "" {
		opts.Format = v
	}
	if v := os.Getenv("TALES_LOG_FILE"); v != "" {
		opts.File = v
	}
	if v := os.Getenv("TALES_LOG_SOURCE"); v != "" {
		opts.AddSource = strings.EqualFold(v, "true")
	}
	return opts
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set
func WithComponent(name string) *slog.Logger {
	return L().With(slog.String("component", name))
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
