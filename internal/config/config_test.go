package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"audiopilot/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.ConfigEnv, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "audiopilot", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}

	wantState := filepath.Join(tempHome, ".local", "share", "audiopilot")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.ReportDir != filepath.Join(wantState, "reports") {
		t.Fatalf("unexpected report dir: %q", cfg.Paths.ReportDir)
	}
	if cfg.LockPath() != filepath.Join(wantState, "locks", "default.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Governance.IntegrityThreshold != 60 {
		t.Fatalf("unexpected integrity threshold: %d", cfg.Governance.IntegrityThreshold)
	}
	if cfg.Autopilot.HistoryLimit != 20 {
		t.Fatalf("unexpected history limit: %d", cfg.Autopilot.HistoryLimit)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadHonoursEnvironmentConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[library]
id = "Museum-East"

[paths]
state_dir = "` + filepath.ToSlash(filepath.Join(dir, "state")) + `"
rooms_dir = "` + filepath.ToSlash(filepath.Join(dir, "rooms")) + `"
audio_dir = "` + filepath.ToSlash(filepath.Join(dir, "audio")) + `"

[governance]
integrity_threshold = 75

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.ConfigEnv, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected env config %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Library.ID != "museum-east" {
		t.Fatalf("expected lowercased library id, got %q", cfg.Library.ID)
	}
	if cfg.Governance.IntegrityThreshold != 75 {
		t.Fatalf("unexpected integrity threshold: %d", cfg.Governance.IntegrityThreshold)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized format, got %q", cfg.Logging.Format)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "state", "audiopilot.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matcher]\nunknown_key = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"library id", func(c *config.Config) { c.Library.ID = "bad id" }, "library.id must"},
		{"rooms dir", func(c *config.Config) { c.Paths.RoomsDir = "" }, "paths.rooms_dir must be set"},
		{"storage", func(c *config.Config) { c.Paths.AudioDir = ""; c.Paths.ManifestFile = "" }, "paths.audio_dir or paths.manifest_file"},
		{"min auto fix", func(c *config.Config) { c.Matcher.MinAutoFix = 1.5 }, "matcher.min_auto_fix must"},
		{"drift", func(c *config.Config) { c.Integrity.DriftThreshold = 0 }, "integrity.drift_threshold must"},
		{"floors", func(c *config.Config) { c.Governance.GovernanceApprove = 0.9 }, "governance.governance_approve must not exceed"},
		{"integrity threshold", func(c *config.Config) { c.Governance.IntegrityThreshold = 101 }, "governance.integrity_threshold must"},
		{"max operations", func(c *config.Config) { c.Autopilot.MaxOperations = -1 }, "autopilot.max_operations must"},
		{"room filter", func(c *config.Config) { c.Autopilot.RoomFilter = "([" }, "autopilot.room_filter must"},
		{"history", func(c *config.Config) { c.Autopilot.HistoryLimit = 0 }, "autopilot.history_limit must"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format must"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level must"},
		{"retention", func(c *config.Config) { c.Logging.RetentionDays = -1 }, "logging.retention_days must"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.StateDir = "/tmp/state"
			cfg.Paths.RoomsDir = "/tmp/rooms"
			cfg.Paths.AudioDir = "/tmp/audio"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSampleConfigParsesIntoConfig(t *testing.T) {
	var cfg config.Config
	decoder := toml.NewDecoder(strings.NewReader(config.SampleConfig())).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Governance.AutoApprove != 0.85 {
		t.Fatalf("unexpected sample auto_approve: %v", cfg.Governance.AutoApprove)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[governance]") {
		t.Fatal("sample missing governance section")
	}
}
