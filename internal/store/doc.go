// Package store persists autopilot state in SQLite.
//
// The Store keeps one status pointer per library, the trimmed cycle history,
// the lifecycle ledger, and the governance review queue. CommitCycle writes
// all four in a single transaction once a cycle has been fully computed, so
// an interrupted cycle never leaves partial state behind.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package store
