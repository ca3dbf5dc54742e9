// Package logging assembles structured slog loggers and formatting helpers used
// across audiopilot.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so cycle code can automatically
// tag log lines with cycle IDs, rooms, and stages. Runner code tees a cycle's
// records into a per-cycle JSON file; old cycle logs are pruned by retention.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
