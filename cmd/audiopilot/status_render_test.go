package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"audiopilot/internal/autopilot"
	"audiopilot/internal/services"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Outcome", statusError, "blocked", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Outcome:", "[ERROR] blocked")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Outcome", statusOK, "repaired", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestOutcomeAndScoreKinds(t *testing.T) {
	outcomes := []struct {
		outcome autopilot.Outcome
		want    statusKind
	}{
		{autopilot.OutcomeHealthy, statusOK},
		{autopilot.OutcomeRepaired, statusOK},
		{autopilot.OutcomeNeedsReview, statusWarn},
		{autopilot.OutcomeNoRooms, statusInfo},
	}
	for _, tc := range outcomes {
		if got := outcomeKind(tc.outcome); got != tc.want {
			t.Fatalf("outcomeKind(%s) = %v, want %v", tc.outcome, got, tc.want)
		}
	}

	scores := []struct {
		score int
		want  statusKind
	}{
		{100, statusOK},
		{60, statusWarn},
		{59, statusError},
	}
	for _, tc := range scores {
		if got := scoreKind(tc.score, 60); got != tc.want {
			t.Fatalf("scoreKind(%d) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestRenderTablePlain(t *testing.T) {
	out := renderTable([]string{"Room", "Score"}, [][]string{{"lobby", "50"}}, []columnAlignment{alignLeft, alignRight}, false)
	if !strings.Contains(out, "lobby") || !strings.Contains(strings.ToLower(out), "score") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestFormatErrorAddsHint(t *testing.T) {
	err := fmt.Errorf("%w: autopilot cycle already running", services.ErrConflict)
	if got := formatError(err); !strings.Contains(got, "hint: wait for the running cycle") {
		t.Fatalf("formatError = %q", got)
	}
	if got := formatError(errors.New("plain")); got != "plain" {
		t.Fatalf("formatError = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
