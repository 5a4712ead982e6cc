// Package logging provides the slog handler used for run logs. Records are
// written as "[YYYY-MM-DD HH:MM:SS] [LEVEL] message key=value" to the console
// and appended to a daily log file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TimestampLayout formats record times.
const TimestampLayout = "2006-01-02 15:04:05"

// FileName returns the daily log file name for t.
func FileName(t time.Time) string {
	return "git_summary_log_" + t.Format("20060102") + ".log"
}

// Options configures a Handler.
type Options struct {
	// Console receives records at or above ConsoleLevel. Nil disables it.
	Console io.Writer

	// ConsoleLevel is the minimum level printed to Console.
	ConsoleLevel slog.Level

	// FilePath receives records at or above FileLevel. Empty disables it.
	FilePath string

	// FileLevel is the minimum level appended to FilePath.
	FileLevel slog.Level

	// Location converts record times. Nil keeps them unchanged.
	Location *time.Location

	// Warn receives log-file write failures. Defaults to os.Stderr.
	Warn io.Writer
}

// Handler is a slog.Handler with two sinks. The file sink opens, appends
// and closes the file for every record.
type Handler struct {
	opts   Options
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	if opts.Warn == nil {
		opts.Warn = os.Stderr
	}
	return &Handler{opts: opts, mu: &sync.Mutex{}}
}

// New creates a logger backed by a Handler.
func New(opts Options) *slog.Logger {
	return slog.New(NewHandler(opts))
}

// Enabled reports whether any sink accepts level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.consoleEnabled(level) || h.fileEnabled(level)
}

func (h *Handler) consoleEnabled(level slog.Level) bool {
	return h.opts.Console != nil && level >= h.opts.ConsoleLevel
}

func (h *Handler) fileEnabled(level slog.Level) bool {
	return h.opts.FilePath != "" && level >= h.opts.FileLevel
}

// Handle formats r and writes it to the enabled sinks. Sink failures are
// reported on the Warn writer and never returned.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	line := h.format(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.consoleEnabled(r.Level) {
		io.WriteString(h.opts.Console, line)
	}
	if h.fileEnabled(r.Level) {
		if err := AppendFile(h.opts.FilePath, line); err != nil {
			fmt.Fprintf(h.opts.Warn, "Warning: Could not write to log file: %v\n", err)
		}
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &h2
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func (h *Handler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *Handler) format(r slog.Record) string {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	if h.opts.Location != nil {
		t = t.In(h.opts.Location)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", t.Format(TimestampLayout), LevelName(r.Level), r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	var extra []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		extra = append(extra, a)
		return true
	})
	for _, a := range h.qualify(extra) {
		writeAttr(&b, a)
	}

	b.WriteByte('\n')
	return b.String()
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			writeAttr(b, slog.Attr{Key: a.Key + "." + g.Key, Value: g.Value})
		}
		return
	}

	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(v)
}

// LevelName returns the label printed for level.
func LevelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// AppendFile appends line to path, creating the file if needed.
func AppendFile(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
