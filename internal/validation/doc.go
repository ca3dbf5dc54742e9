// Package validation checks observed audio filenames.
//
// Validate applies structural rules that need no room knowledge.
// ValidateWithRoomContext layers the room prefix, entry membership, and
// duplicate rules on top and produces a 0-100 confidence score.
// CheckCanonical compares a filename against the exact canonical name of a
// known entry and reports whether an automatic rename is safe.
package validation
