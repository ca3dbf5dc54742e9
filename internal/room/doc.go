// Package room models the rooms and entries fed into a cycle.
//
// Entries arrive in loosely shaped files: a slug may be missing, ids may be
// numbers or strings, and audio references may be a bare string or an
// {en, vi} object. Resolve turns each entry into a single Identity exactly
// once so downstream packages never repeat the slug, id, index fallback.
package room
