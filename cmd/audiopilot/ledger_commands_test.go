package main

import (
	"encoding/json"
	"errors"
	"testing"

	"audiopilot/internal/services"
)

func TestLedgerCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ledger", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "No ledger entries")

	if _, _, err := runCLI(t, []string{"run", "--apply", "--with-tts"}, env.configPath); err != nil {
		t.Fatalf("run --apply: %v", err)
	}

	out, _, err = runCLI(t, []string{"ledger", "list", "--room", "lobby"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list --room: %v", err)
	}
	requireContains(t, out, "lobby-welcome-en.mp3")
	requireContains(t, out, "lobby-welcome-vi.mp3")

	out, _, err = runCLI(t, []string{"ledger", "list", "--since", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list --since: %v", err)
	}
	requireContains(t, out, "lobby-welcome-vi.mp3")

	out, _, err = runCLI(t, []string{"ledger", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger stats: %v", err)
	}
	var stats struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Total != 2 {
		t.Fatalf("ledger total = %d, want 2", stats.Total)
	}

	out, _, err = runCLI(t, []string{"ledger", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger stats: %v", err)
	}
	requireContains(t, out, "Lifecycle Ledger")
	requireContains(t, out, "Needs regeneration")

	out, _, err = runCLI(t, []string{"ledger", "remove", "lobby-welcome-vi.mp3"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger remove: %v", err)
	}
	requireContains(t, out, "Removed lobby-welcome-vi.mp3")

	_, _, err = runCLI(t, []string{"ledger", "remove", "lobby-welcome-vi.mp3"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
