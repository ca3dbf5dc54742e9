package testsupport

import (
	"path/filepath"
	"testing"

	"audiopilot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Library.ID = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.RoomsDir = filepath.Join(base, "rooms")
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.ReportDir = filepath.Join(base, "state", "reports")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithLibrary sets the library id on the test config.
func WithLibrary(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.ID = id
	}
}

// WithManifest points the storage listing at a manifest file inside the
// test base directory.
func WithManifest(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.ManifestFile = filepath.Join(b.baseDir, name)
	}
}

// WithTTS enables generation stubs for missing files.
func WithTTS() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Autopilot.WithTTS = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
