// Package ledger keeps the per-file lifecycle audit trail: where each
// canonical audio file came from and when it was last verified, fixed, or
// regenerated.
//
// Ledger is a value. Every mutating method returns a new Ledger and leaves
// the receiver untouched, so a cycle can compute its updates against the
// snapshot it started with and hand the result to the store in one commit.
package ledger
