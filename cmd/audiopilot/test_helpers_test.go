package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audiopilot/internal/config"
	"audiopilot/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(config.ConfigEnv, "")
	t.Setenv("AUDIOPILOT_STATE_DIR", "")

	testsupport.WriteRoomFile(t, cfg.Paths.RoomsDir, "lobby.json", map[string]any{
		"id":      "lobby",
		"entries": []map[string]any{{"slug": "welcome"}},
	})
	testsupport.WriteAudioFiles(t, cfg.Paths.AudioDir, "lobby-welcome-en.mp3")

	configPath := filepath.Join(homeDir, ".config", "audiopilot", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[library]\nid = %q\n\n[paths]\nstate_dir = %q\nrooms_dir = %q\naudio_dir = %q\nreport_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Library.ID,
		cfg.Paths.StateDir,
		cfg.Paths.RoomsDir,
		cfg.Paths.AudioDir,
		cfg.Paths.ReportDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
