// Package services defines the error markers and context helpers shared by
// the outer layers of audiopilot.
//
// Key responsibilities:
//   - Context helpers that stamp cycle IDs, library IDs, room IDs, and stage
//     names for structured logging.
//   - Structured error markers plus the Wrap helper so the CLI can tell bad
//     input from broken configuration and transient storage trouble.
//
// The classification core never returns these errors; it reports data
// problems as results. Loaders, the store, and the runner do.
package services
