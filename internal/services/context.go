package services

import "context"

type contextKey string

const (
	cycleIDKey   contextKey = "cycle_id"
	libraryIDKey contextKey = "library_id"
	roomIDKey    contextKey = "room_id"
	stageKey     contextKey = "stage"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCycleID annotates context with the autopilot cycle identifier.
func WithCycleID(ctx context.Context, id string) context.Context {
	return withString(ctx, cycleIDKey, id)
}

// CycleIDFromContext extracts the cycle identifier if present.
func CycleIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, cycleIDKey)
}

// WithLibraryID annotates context with the library identifier.
func WithLibraryID(ctx context.Context, id string) context.Context {
	return withString(ctx, libraryIDKey, id)
}

// LibraryIDFromContext returns the library identifier if present.
func LibraryIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, libraryIDKey)
}

// WithRoomID annotates context with the room being processed.
func WithRoomID(ctx context.Context, roomID string) context.Context {
	return withString(ctx, roomIDKey, roomID)
}

// RoomIDFromContext returns the room identifier if present.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, roomIDKey)
}

// WithStage annotates context with the cycle stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}
