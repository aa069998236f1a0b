//go:build tinygo

package telemetry

import (
	"context"
	"io"
	"log/slog"
)

// SlogHandler bridges log/slog to the console (via TextHandler) and to the
// local diagnostic ring buffer, so a host-side UART terminal and
// GetLogQueue see the same events.
type SlogHandler struct {
	textHandler slog.Handler
	level       slog.Leveler
	attrs       []slog.Attr
	group       string
}

// NewSlogHandler wraps w (typically machine.Serial) in a TextHandler and
// also queues Info-and-above records to the ring buffer.
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

// Handle always writes to the console; records at Info or above are also
// queued, Debug stays console-only to save ring-buffer space.
func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.textHandler.Handle(ctx, r)
	if r.Level >= slog.LevelInfo {
		Log(slogLevelToSeverity(r.Level), buildLogMessage(h.group, r))
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

// buildLogMessage renders "group:msg key=val ..." into a fixed buffer
// instead of string concatenation, since this runs on every queued record
// under tinygo's allocator.
func buildLogMessage(group string, r slog.Record) string {
	var buf [128]byte
	pos := 0

	if group != "" {
		pos = copyToBuffer(buf[:], pos, group)
		if pos < len(buf) {
			buf[pos] = ':'
			pos++
		}
	}

	pos = copyToBuffer(buf[:], pos, r.Message)

	attrCount := 0
	r.Attrs(func(a slog.Attr) bool {
		if attrCount >= 4 || pos >= len(buf)-10 {
			return false
		}
		if pos < len(buf) {
			buf[pos] = ' '
			pos++
		}
		pos = copyToBuffer(buf[:], pos, a.Key)
		if pos < len(buf) {
			buf[pos] = '='
			pos++
		}
		pos = copyAttrValue(buf[:], pos, a.Value)
		attrCount++
		return true
	})

	return string(buf[:pos])
}

func copyToBuffer(buf []byte, pos int, s string) int {
	for i := 0; i < len(s) && pos < len(buf); i++ {
		buf[pos] = s[i]
		pos++
	}
	return pos
}

func copyAttrValue(buf []byte, pos int, v slog.Value) int {
	switch v.Kind() {
	case slog.KindString:
		return copyToBuffer(buf, pos, v.String())
	case slog.KindInt64:
		return copyInt64ToBuffer(buf, pos, v.Int64())
	case slog.KindUint64:
		return copyUint64ToBuffer(buf, pos, v.Uint64())
	case slog.KindBool:
		if v.Bool() {
			return copyToBuffer(buf, pos, "true")
		}
		return copyToBuffer(buf, pos, "false")
	case slog.KindDuration:
		return copyDurationToBuffer(buf, pos, int64(v.Duration()))
	case slog.KindFloat64:
		return copyInt64ToBuffer(buf, pos, int64(v.Float64()))
	default:
		return copyToBuffer(buf, pos, "?")
	}
}

func copyInt64ToBuffer(buf []byte, pos int, n int64) int {
	if n == 0 {
		if pos < len(buf) {
			buf[pos] = '0'
			return pos + 1
		}
		return pos
	}
	if n < 0 {
		if pos < len(buf) {
			buf[pos] = '-'
			pos++
		}
		n = -n
	}
	return copyUint64ToBuffer(buf, pos, uint64(n))
}

func copyUint64ToBuffer(buf []byte, pos int, n uint64) int {
	if n == 0 {
		if pos < len(buf) {
			buf[pos] = '0'
			return pos + 1
		}
		return pos
	}

	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	for j := i; j < len(digits) && pos < len(buf); j++ {
		buf[pos] = digits[j]
		pos++
	}
	return pos
}

// copyDurationToBuffer picks the coarsest unit that keeps the value >= 1.
func copyDurationToBuffer(buf []byte, pos int, d int64) int {
	if d == 0 {
		return copyToBuffer(buf, pos, "0s")
	}
	switch {
	case d >= 1e9:
		pos = copyInt64ToBuffer(buf, pos, d/1e9)
		return copyToBuffer(buf, pos, "s")
	case d >= 1e6:
		pos = copyInt64ToBuffer(buf, pos, d/1e6)
		return copyToBuffer(buf, pos, "ms")
	case d >= 1e3:
		pos = copyInt64ToBuffer(buf, pos, d/1e3)
		return copyToBuffer(buf, pos, "us")
	default:
		pos = copyInt64ToBuffer(buf, pos, d)
		return copyToBuffer(buf, pos, "ns")
	}
}
