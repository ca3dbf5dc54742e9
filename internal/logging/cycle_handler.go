package logging

import (
	"context"
	"log/slog"
)

// cycleIDHandler stamps a cycle_id attribute on every record.
type cycleIDHandler struct {
	base    slog.Handler
	cycleID string
}

func newCycleIDHandler(base slog.Handler, cycleID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &cycleIDHandler{base: base, cycleID: cycleID}
}

func (h *cycleIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *cycleIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldCycleID, h.cycleID))
	return h.base.Handle(ctx, record)
}

func (h *cycleIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cycleIDHandler{base: h.base.WithAttrs(attrs), cycleID: h.cycleID}
}

func (h *cycleIDHandler) WithGroup(name string) slog.Handler {
	return &cycleIDHandler{base: h.base.WithGroup(name), cycleID: h.cycleID}
}

// CycleLogger tees base into file, stamping cycle_id on the file copy.
func CycleLogger(base *slog.Logger, file slog.Handler, cycleID string) *slog.Logger {
	return TeeLogger(base, newCycleIDHandler(file, cycleID))
}
