package autopilot

import (
	"fmt"
	"regexp"

	"audiopilot/internal/config"
	"audiopilot/internal/governance"
	"audiopilot/internal/integrity"
	"audiopilot/internal/matcher"
	"audiopilot/internal/validation"
)

// Policies bundles the thresholds of every classifier the cycle uses.
type Policies struct {
	Matcher    matcher.Policy
	Validation validation.Policy
	Integrity  integrity.Policy
	Governance governance.Policy
}

// DefaultPolicies returns each package's default policy.
func DefaultPolicies() Policies {
	return Policies{
		Matcher:    matcher.DefaultPolicy(),
		Validation: validation.DefaultPolicy(),
		Integrity:  integrity.DefaultPolicy(),
		Governance: governance.DefaultPolicy(),
	}
}

// PoliciesFromConfig maps configuration sections onto classifier policies.
func PoliciesFromConfig(cfg *config.Config) Policies {
	if cfg == nil {
		return DefaultPolicies()
	}
	return Policies{
		Matcher: matcher.Policy{
			MinAutoFix:           cfg.Matcher.MinAutoFix,
			SlugThreshold:        cfg.Matcher.SlugThreshold,
			IndexThreshold:       cfg.Matcher.IndexThreshold,
			AutoRepairConfidence: cfg.Matcher.AutoRepairConfidence,
		},
		Validation: validation.Policy{
			SuggestThreshold:    cfg.Validation.SuggestThreshold,
			AutoRepairThreshold: cfg.Validation.AutoRepairThreshold,
		},
		Integrity: integrity.Policy{DriftThreshold: cfg.Integrity.DriftThreshold},
		Governance: governance.Policy{
			AutoApprove:        cfg.Governance.AutoApprove,
			GovernanceApprove:  cfg.Governance.GovernanceApprove,
			IntegrityThreshold: cfg.Governance.IntegrityThreshold,
		},
	}
}

// Options tune one cycle.
type Options struct {
	Mode    Mode
	WithTTS bool
	// MaxOperations caps the plan, keeping the highest priorities. Zero
	// means unlimited.
	MaxOperations int
	// RoomFilter restricts the cycle to matching room ids.
	RoomFilter *regexp.Regexp
	// MaxRooms caps the number of rooms in scope after filtering. Zero
	// means unlimited.
	MaxRooms int
	// IntegrityThreshold overrides the governance policy when positive.
	IntegrityThreshold int
	// HistoryLimit is the capacity of the status history ring.
	HistoryLimit int
}

// OptionsFromConfig builds dry-run options from the [autopilot] section.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{Mode: ModeDryRun, HistoryLimit: DefaultHistoryCapacity}
	if cfg == nil {
		return opts, nil
	}
	opts.WithTTS = cfg.Autopilot.WithTTS
	opts.MaxOperations = cfg.Autopilot.MaxOperations
	opts.MaxRooms = cfg.Autopilot.MaxRooms
	opts.IntegrityThreshold = cfg.Governance.IntegrityThreshold
	if cfg.Autopilot.HistoryLimit > 0 {
		opts.HistoryLimit = cfg.Autopilot.HistoryLimit
	}
	if cfg.Autopilot.RoomFilter != "" {
		re, err := regexp.Compile(cfg.Autopilot.RoomFilter)
		if err != nil {
			return opts, fmt.Errorf("autopilot.room_filter: %w", err)
		}
		opts.RoomFilter = re
	}
	return opts, nil
}
