package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var libraryIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateLibrary,
		c.validatePaths,
		c.validateThresholds,
		c.validateGovernance,
		c.validateAutopilot,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if !libraryIDPattern.MatchString(c.Library.ID) {
		return fmt.Errorf("library.id must match %s, got %q", libraryIDPattern, c.Library.ID)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.RoomsDir == "" {
		return errors.New("paths.rooms_dir must be set")
	}
	if c.Paths.AudioDir == "" && c.Paths.ManifestFile == "" {
		return errors.New("paths.audio_dir or paths.manifest_file must be set")
	}
	return nil
}

func fraction(name string, value float64) error {
	if value <= 0 || value > 1 {
		return fmt.Errorf("%s must be greater than 0 and at most 1", name)
	}
	return nil
}

func (c *Config) validateThresholds() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"matcher.min_auto_fix", c.Matcher.MinAutoFix},
		{"matcher.slug_threshold", c.Matcher.SlugThreshold},
		{"matcher.index_threshold", c.Matcher.IndexThreshold},
		{"validation.suggest_threshold", c.Validation.SuggestThreshold},
		{"validation.auto_repair_threshold", c.Validation.AutoRepairThreshold},
		{"integrity.drift_threshold", c.Integrity.DriftThreshold},
	}
	for _, check := range checks {
		if err := fraction(check.name, check.value); err != nil {
			return err
		}
	}
	if c.Matcher.AutoRepairConfidence < 0 || c.Matcher.AutoRepairConfidence > 100 {
		return errors.New("matcher.auto_repair_confidence must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateGovernance() error {
	if err := fraction("governance.auto_approve", c.Governance.AutoApprove); err != nil {
		return err
	}
	if err := fraction("governance.governance_approve", c.Governance.GovernanceApprove); err != nil {
		return err
	}
	if c.Governance.GovernanceApprove > c.Governance.AutoApprove {
		return errors.New("governance.governance_approve must not exceed governance.auto_approve")
	}
	if c.Governance.IntegrityThreshold < 0 || c.Governance.IntegrityThreshold > 100 {
		return errors.New("governance.integrity_threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateAutopilot() error {
	if c.Autopilot.MaxOperations < 0 {
		return errors.New("autopilot.max_operations must be zero (unlimited) or positive")
	}
	if c.Autopilot.MaxRooms < 0 {
		return errors.New("autopilot.max_rooms must be zero (unlimited) or positive")
	}
	if c.Autopilot.HistoryLimit < 1 || c.Autopilot.HistoryLimit > 100 {
		return errors.New("autopilot.history_limit must be between 1 and 100")
	}
	if c.Autopilot.RegenerationThreshold < 1 || c.Autopilot.RegenerationThreshold > 100 {
		return errors.New("autopilot.regeneration_threshold must be between 1 and 100")
	}
	if c.Autopilot.RoomFilter != "" {
		if _, err := regexp.Compile(c.Autopilot.RoomFilter); err != nil {
			return fmt.Errorf("autopilot.room_filter must be a valid regular expression: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero (keep forever) or positive")
	}
	return nil
}

// Summary returns the effective configuration as TOML for display.
func (c *Config) Summary() (string, error) {
	var b strings.Builder
	if err := encodeTOML(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}
