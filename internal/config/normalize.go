package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLibrary()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAutopilot()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLibrary() {
	if value, ok := os.LookupEnv("AUDIOPILOT_LIBRARY"); ok && strings.TrimSpace(value) != "" {
		c.Library.ID = value
	}
	c.Library.ID = strings.ToLower(strings.TrimSpace(c.Library.ID))
	if c.Library.ID == "" {
		c.Library.ID = defaultLibraryID
	}
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("AUDIOPILOT_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = value
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.RoomsDir, err = expandPath(strings.TrimSpace(c.Paths.RoomsDir)); err != nil {
		return fmt.Errorf("paths.rooms_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(strings.TrimSpace(c.Paths.AudioDir)); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.ManifestFile, err = expandPath(strings.TrimSpace(c.Paths.ManifestFile)); err != nil {
		return fmt.Errorf("paths.manifest_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = filepath.Join(c.Paths.StateDir, "reports")
	}
	if c.Paths.ReportDir, err = expandPath(strings.TrimSpace(c.Paths.ReportDir)); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAutopilot() {
	c.Autopilot.RoomFilter = strings.TrimSpace(c.Autopilot.RoomFilter)
	if c.Autopilot.HistoryLimit == 0 {
		c.Autopilot.HistoryLimit = defaultHistoryLimit
	}
	if c.Autopilot.RegenerationThreshold == 0 {
		c.Autopilot.RegenerationThreshold = defaultRegenerationThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
