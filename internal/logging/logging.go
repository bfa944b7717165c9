package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandler writes "LEVEL: message key=value ..." lines with the level
// coloured. Groups are flattened into dotted keys.
type PrettyHandler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	group  string
	colors bool
}

// NewPrettyHandler creates a handler writing to out
func NewPrettyHandler(out io.Writer, level slog.Leveler, colors bool) *PrettyHandler {
	return &PrettyHandler{
		level:  level,
		out:    out,
		mu:     &sync.Mutex{},
		colors: colors,
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	if h.colors {
		switch {
		case r.Level >= slog.LevelError:
			level = color.RedString(level)
		case r.Level >= slog.LevelWarn:
			level = color.YellowString(level)
		case r.Level >= slog.LevelInfo:
			level = color.BlueString(level)
		default:
			level = color.MagentaString(level)
		}
	}

	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}

	fmt.Fprintf(b, " %s=%v", key, a.Value.Any())
}

// ParseLevel maps a settings level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Setup installs a PrettyHandler as the default slog logger
func Setup(out io.Writer, level slog.Level, colors bool) *slog.Logger {
	logger := slog.New(NewPrettyHandler(out, level, colors))
	slog.SetDefault(logger)
	return logger
}
