// Package governance decides which planned repairs may be applied without a
// human.
//
// Engine is the single source of Decisions. Each operation is gated by its
// confidence, then checked against the room it would write into, the EN/VI
// parity of the state it would leave behind, the library integrity floor,
// and the lifecycle ledger. Decisions only ever move toward more review;
// nothing in this package upgrades a tier.
package governance
