package autopilot

import (
	"encoding/json"
	"testing"

	"audiopilot/internal/governance"
	"audiopilot/internal/naming"
	"audiopilot/internal/repair"
)

func decision(op repair.Operation, tier governance.Tier) governance.Decision {
	return governance.Decision{Operation: op, Decision: tier}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	caseRename := repair.New(repair.OpRename, "hall", "Hall-a-en.mp3", "hall-a-en.mp3", naming.LangEN, 99, repair.PriorityLow, "")
	critical := repair.New(repair.OpGenerateTTS, "hall", "", "hall-a-vi.mp3", naming.LangVI, 100, repair.PriorityCritical, "")
	drift := repair.New(repair.OpRename, "hall", "hall_b-en.mp3", "hall-b-en.mp3", naming.LangEN, 88, repair.PriorityHigh, "")
	manifest := repair.New(repair.OpUpdateManifest, "hall", "", "hall", "", 100, repair.PriorityLow, "")

	cases := []struct {
		name string
		d    governance.Decision
		want Category
	}{
		{"blocked beats cosmetic", decision(caseRename, governance.Blocked), CategoryBlocked},
		{"blocked beats critical", decision(critical, governance.Blocked), CategoryBlocked},
		{"cosmetic rename", decision(caseRename, governance.RequiresReview), CategoryCosmetic},
		{"manifest", decision(manifest, governance.AutoApprove), CategoryCosmetic},
		{"critical under review", decision(critical, governance.RequiresReview), CategoryCriticalFix},
		{"auto approved", decision(drift, governance.AutoApprove), CategoryAutoFix},
		{"governance approved", decision(drift, governance.GovernanceApprove), CategoryAutoFix},
		{"low confidence", decision(drift, governance.RequiresReview), CategoryLowConfidence},
	}
	for _, tc := range cases {
		if got := Categorize(tc.d); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestNewChangesetPartitionsAndKeepsWireNames(t *testing.T) {
	drift := repair.New(repair.OpRename, "hall", "hall_b-en.mp3", "hall-b-en.mp3", naming.LangEN, 88, repair.PriorityHigh, "")
	other := repair.New(repair.OpRename, "hall", "hall_c-en.mp3", "hall-c-en.mp3", naming.LangEN, 50, repair.PriorityHigh, "")
	cs := NewChangeset(ModeApply, []governance.Decision{
		decision(drift, governance.AutoApprove),
		decision(other, governance.RequiresReview),
	})
	if cs.Len() != 2 || len(cs.AutoFixes) != 1 || len(cs.LowConfidence) != 1 {
		t.Fatalf("changeset = %+v", cs)
	}
	data, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"criticalFixes", "autoFixes", "lowConfidence", "blocked", "cosmetic", "mode"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if string(decoded["blocked"]) != "[]" {
		t.Fatalf("empty bucket encoded as %s", decoded["blocked"])
	}
	if string(decoded["mode"]) != `"apply"` {
		t.Fatalf("mode = %s", decoded["mode"])
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"apply", ModeApply, false},
		{"DRY-RUN", ModeDryRun, false},
		{"", ModeDryRun, false},
		{"force", ModeDryRun, true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, %v", tc.in, got, err)
		}
	}
}
