package preflight

import (
	"context"

	"audiopilot/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every applicable check for the given config. The storage
// check targets the manifest when one is configured, else the audio
// directory.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
		CheckReadableDirectory("Rooms directory", cfg.Paths.RoomsDir),
	}
	if cfg.Paths.ManifestFile != "" {
		results = append(results, CheckReadableFile("Storage manifest", cfg.Paths.ManifestFile))
	} else {
		results = append(results, CheckReadableDirectory("Audio directory", cfg.Paths.AudioDir))
	}
	results = append(results,
		CheckDirectoryAccess("Lock directory", cfg.LockDir()),
		CheckCycleLock(cfg.LockPath()),
		CheckDatabase(ctx, cfg),
	)
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
