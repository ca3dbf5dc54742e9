// Package matcher resolves orphan audio files to the room entry they most
// likely belong to.
//
// Strategies run in a fixed order and the first qualifying one wins:
// numeric token index resolution, exact canonical match, slug similarity,
// index extraction, and a Levenshtein fallback over canonical names. When no
// strategy qualifies the best guess is returned flagged for human review.
// All thresholds live in Policy so callers can tune them without globals.
package matcher
