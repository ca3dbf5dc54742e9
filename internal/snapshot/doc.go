// Package snapshot reads the inputs of one autopilot cycle: room metadata
// files, the storage listing, and the lifecycle ledger.
//
// Room files may be JSON or YAML and carry their id under either "id" or
// "roomId". A file that cannot be parsed fails the load with a validation
// error naming the path; a file that parses but fails struct validation is
// skipped and reported as an Issue so the rest of the library still runs.
package snapshot
