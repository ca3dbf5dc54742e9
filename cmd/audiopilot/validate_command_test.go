package main

import (
	"errors"
	"testing"

	"audiopilot/internal/services"
)

func TestValidateFilenames(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"validate", "lobby-welcome-en.mp3", "lobby-welcome-vi.mp3"}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "2 files: 2 valid")

	out, _, err = runCLI(t, []string{"validate", "lobby-welcome-en.mp3", "Lobby Welcome.wav"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, out, "Lobby Welcome.wav")
}

func TestMatchAgainstRoom(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"match", "lobby-welcome-vi.mp3", "--room", "lobby"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "lobby-welcome-vi.mp3")
	requireContains(t, out, "welcome")

	_, _, err = runCLI(t, []string{"match", "lobby-welcome-vi.mp3", "--room", "attic"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"match", "lobby-welcome-vi.mp3"}, env.configPath); err == nil {
		t.Fatal("expected --room to be required")
	}
}

func TestIntegrityCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"integrity"}, env.configPath)
	if err != nil {
		t.Fatalf("integrity: %v", err)
	}
	requireContains(t, out, "Library test: average 50")
	requireContains(t, out, "lobby")

	out, _, err = runCLI(t, []string{"integrity", "--format", "csv"}, env.configPath)
	if err != nil {
		t.Fatalf("integrity csv: %v", err)
	}
	requireContains(t, out, "lobby")

	out, _, err = runCLI(t, []string{"integrity", "--issue", "orphans"}, env.configPath)
	if err != nil {
		t.Fatalf("integrity --issue: %v", err)
	}
	requireContains(t, out, "No matching rooms")

	_, _, err = runCLI(t, []string{"integrity", "--format", "xml"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateAgainstEntry(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"validate", "--room", "lobby", "--entry", "welcome", "lobby-welcome-en.mp3"}, env.configPath)
	if err != nil {
		t.Fatalf("validate --entry: %v", err)
	}
	requireContains(t, out, "100%")

	out, _, err = runCLI(t, []string{"validate", "--room", "lobby", "--entry", "welcome", "Lobby_Welcome-en.mp3"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, out, "must be all lowercase")
	requireContains(t, out, "lobby-welcome-en.mp3")

	if _, _, err := runCLI(t, []string{"validate", "--entry", "welcome", "lobby-welcome-en.mp3"}, env.configPath); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("--entry without --room should fail validation, got %v", err)
	}
}

func TestValidateReportsDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"validate", "--duplicates", "lobby-welcome-en.mp3", "Lobby-Welcome-EN.mp3"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, out, "duplicate lobby-welcome-en.mp3")
	requireContains(t, out, "keep lobby-welcome-en.mp3")
}

func TestConsistencyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"consistency", "--room", "lobby"}, env.configPath)
	if err != nil {
		t.Fatalf("consistency: %v", err)
	}
	requireContains(t, out, "lobby-welcome-en.mp3")
	requireContains(t, out, "1 of 1")

	_, _, err = runCLI(t, []string{"consistency", "--room", "attic"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
