package services_test

import (
	"errors"
	"strings"
	"testing"

	"audiopilot/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "snapshot", "decode room", "rooms/a.json", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"snapshot", "decode room", "rooms/a.json"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHint(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("plain"), ""},
		{services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), "config validate"},
		{services.Wrap(services.ErrConflict, "autopilot", "lock", "busy", nil), "running cycle"},
	}
	for _, tc := range cases {
		got := services.Hint(tc.err)
		if tc.want == "" && got != "" {
			t.Fatalf("Hint(%v) = %q, want empty", tc.err, got)
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Hint(%v) = %q, want it to mention %q", tc.err, got, tc.want)
		}
	}
}
