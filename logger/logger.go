package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// VerboseLevel sits between debug and info. It is used for progress
// chatter that is too noisy for info but useful when following a run.
const VerboseLevel = log.Level(-2)

// Logger is the logging surface used across the module.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Verbose(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
	With(keyvals ...any) Logger
}

type charmLogger struct {
	l *log.Logger
}

// Wrap adapts a charm logger to Logger.
func Wrap(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg any, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Verbose(msg any, keyvals ...any) {
	c.l.Log(VerboseLevel, msg, keyvals...)
}
func (c *charmLogger) Info(msg any, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg any, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg any, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) Logger {
	return Wrap(log.FromContext(ctx))
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return Wrap(log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel}))
}

type Options struct {
	Level string
	// File, when set, receives a copy of every record without colors.
	File      string
	Timestamp bool
	Prefix    string
}

// ParseLevel accepts the charm level names plus "verbose".
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "verb":
		return VerboseLevel, nil
	case "":
		return log.InfoLevel, nil
	}
	return log.ParseLevel(s)
}

// New builds the console logger. The returned closer releases the log file,
// if any; it is never nil.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = f
	}
	l := log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamp,
		TimeFormat:      time.DateTime,
	})
	l.SetStyles(styles())
	return l, closer, nil
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[VerboseLevel] = lipgloss.NewStyle().
		SetString("VERB").
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color("14"))
	return s
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
