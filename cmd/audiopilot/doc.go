// Package main hosts the audiopilot CLI entrypoint and command graph.
//
// The Cobra-based command tree runs autopilot cycles, inspects the integrity
// map and lifecycle ledger, works the governance review queue, and scaffolds
// configuration. It centralizes configuration resolution and logging setup
// so subcommands can focus on rendering.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
