package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ConfigEnv names the environment variable that points at a config file.
const ConfigEnv = "AUDIOPILOT_CONFIG"

// Library identifies the audio library a cycle runs against.
type Library struct {
	ID string `toml:"id"`
}

// Paths contains input and state locations.
type Paths struct {
	StateDir     string `toml:"state_dir"`
	RoomsDir     string `toml:"rooms_dir"`
	AudioDir     string `toml:"audio_dir"`
	ManifestFile string `toml:"manifest_file"`
	ReportDir    string `toml:"report_dir"`
}

// Matcher contains semantic matching thresholds.
type Matcher struct {
	MinAutoFix           float64 `toml:"min_auto_fix"`
	SlugThreshold        float64 `toml:"slug_threshold"`
	IndexThreshold       float64 `toml:"index_threshold"`
	AutoRepairConfidence int     `toml:"auto_repair_confidence"`
}

// Validation contains room-context validation thresholds.
type Validation struct {
	SuggestThreshold    float64 `toml:"suggest_threshold"`
	AutoRepairThreshold float64 `toml:"auto_repair_threshold"`
}

// Integrity contains integrity map tuning.
type Integrity struct {
	DriftThreshold float64 `toml:"drift_threshold"`
}

// Governance contains approval floors.
type Governance struct {
	AutoApprove        float64 `toml:"auto_approve"`
	GovernanceApprove  float64 `toml:"governance_approve"`
	IntegrityThreshold int     `toml:"integrity_threshold"`
}

// Autopilot contains cycle limits.
type Autopilot struct {
	MaxOperations         int    `toml:"max_operations"`
	MaxRooms              int    `toml:"max_rooms"`
	RoomFilter            string `toml:"room_filter"`
	WithTTS               bool   `toml:"with_tts"`
	HistoryLimit          int    `toml:"history_limit"`
	RegenerationThreshold int    `toml:"regeneration_threshold"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for audiopilot.
//
// Configuration sections by subsystem:
//   - Library: the library id used for locks and persisted state
//   - Paths: room metadata, audio storage, state and report locations
//   - Matcher, Validation, Integrity: classification thresholds
//   - Governance: approval floors and the integrity gate
//   - Autopilot: cycle limits and defaults
//   - Logging: log format, level, and artifact retention
type Config struct {
	Library    Library    `toml:"library"`
	Paths      Paths      `toml:"paths"`
	Matcher    Matcher    `toml:"matcher"`
	Validation Validation `toml:"validation"`
	Integrity  Integrity  `toml:"integrity"`
	Governance Governance `toml:"governance"`
	Autopilot  Autopilot  `toml:"autopilot"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// resolveConfigPath honours an explicit path, then $AUDIOPILOT_CONFIG, then
// the default location, then ./audiopilot.toml.
func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("audiopilot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, lock, log, and report directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.LockDir(), c.CycleLogDir(), c.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "audiopilot.db")
}

// LockDir returns the directory holding per-library cycle locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// LockPath returns the cycle lock file for the configured library.
func (c *Config) LockPath() string {
	return filepath.Join(c.LockDir(), c.Library.ID+".lock")
}

// CycleLogDir returns the directory holding per-cycle JSON logs.
func (c *Config) CycleLogDir() string {
	return filepath.Join(c.Paths.StateDir, "logs")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func encodeTOML(w io.Writer, c *Config) error {
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
