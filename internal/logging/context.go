package logging

import (
	"context"
	"log/slog"

	"audiopilot/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCycleID is the standardized structured logging key for autopilot cycle identifiers.
	FieldCycleID = "cycle_id"
	// FieldLibraryID is the standardized structured logging key for library identifiers.
	FieldLibraryID = "library_id"
	// FieldRoomID is the standardized structured logging key for room identifiers.
	FieldRoomID = "room_id"
	// FieldStage is the standardized structured logging key for cycle stage names.
	FieldStage = "stage"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldDecisionType names the kind of decision being logged.
	FieldDecisionType = "decision_type"
	// FieldErrorHint carries the suggested next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.CycleIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCycleID, id))
	}
	if id, ok := services.LibraryIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLibraryID, id))
	}
	if id, ok := services.RoomIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRoomID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
