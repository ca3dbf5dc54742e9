// Package preflight provides readiness checks for the filesystem paths and
// state database that audiopilot depends on.
//
// The CLI "audiopilot doctor" command runs RunAll and renders each Result.
// Checks never modify the library; the cycle lock probe releases the lock
// immediately after taking it.
package preflight
