//go:build !tinygo

package telemetry

import (
	"context"
	"io"
	"log/slog"
)

// SlogHandler mirrors slog.go's tinygo implementation for the host toolchain
// so session tests and cmd/flashctl share one logging bridge with the device
// firmware.
type SlogHandler struct {
	textHandler slog.Handler
	level       slog.Leveler
	attrs       []slog.Attr
	group       string
}

func NewSlogHandler(w io.Writer, opts *slog.HandlerOptions) *SlogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &SlogHandler{
		textHandler: slog.NewTextHandler(w, opts),
		level:       opts.Level,
	}
}

func (h *SlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.textHandler.Enabled(ctx, level)
}

func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.textHandler.Handle(ctx, r)
	if r.Level >= slog.LevelInfo {
		msg := buildLogMessage(h.group, r)
		Log(slogLevelToSeverity(r.Level), msg)
	}
	return err
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &SlogHandler{
		textHandler: h.textHandler.WithAttrs(attrs),
		level:       h.level,
		attrs:       newAttrs,
		group:       h.group,
	}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	newGroup := name
	if h.group != "" {
		newGroup = h.group + "." + name
	}
	return &SlogHandler{
		textHandler: h.textHandler.WithGroup(name),
		level:       h.level,
		attrs:       h.attrs,
		group:       newGroup,
	}
}

func slogLevelToSeverity(level slog.Level) uint8 {
	switch {
	case level >= slog.LevelError:
		return SeverityError
	case level >= slog.LevelWarn:
		return SeverityWarn
	case level >= slog.LevelInfo:
		return SeverityInfo
	default:
		return SeverityDebug
	}
}

// buildLogMessage builds a compact "msg key=val ..." string, same format as
// the tinygo bridge, using normal string builders instead of the fixed-size
// byte-buffer helpers that matter only under tinygo's allocator.
func buildLogMessage(group string, r slog.Record) string {
	msg := r.Message
	if group != "" {
		msg = group + ":" + msg
	}
	n := 0
	r.Attrs(func(a slog.Attr) bool {
		if n >= 4 {
			return false
		}
		msg += " " + a.Key + "=" + a.Value.String()
		n++
		return true
	})
	if len(msg) > 128 {
		msg = msg[:128]
	}
	return msg
}
