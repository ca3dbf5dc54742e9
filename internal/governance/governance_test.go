package governance

import (
	"slices"
	"testing"
	"time"

	"audiopilot/internal/integrity"
	"audiopilot/internal/ledger"
	"audiopilot/internal/naming"
	"audiopilot/internal/repair"
	"audiopilot/internal/room"
)

func healthy() integrity.Summary {
	return integrity.Summary{TotalRooms: 1, HealthyRooms: 1, AverageScore: 100}
}

func slugRoom(id string, slugs ...string) room.Room {
	r := room.Room{ID: id}
	for _, s := range slugs {
		r.Entries = append(r.Entries, room.Entry{Slug: room.StrPtr(s)})
	}
	return r
}

func rename(roomID, source, target string, confidence int) repair.Operation {
	lang, _ := naming.ExtractLanguage(target)
	return repair.New(repair.OpRename, roomID, source, target, lang, confidence, repair.PriorityHigh, "test")
}

func TestConfidenceGateBoundaries(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	ctx := Context{Summary: healthy()}
	cases := []struct {
		confidence int
		want       Tier
	}{
		{100, AutoApprove},
		{85, AutoApprove},
		{84, GovernanceApprove},
		{70, GovernanceApprove},
		{69, RequiresReview},
		{0, RequiresReview},
	}
	for _, tc := range cases {
		d := engine.EvaluateOperation(rename("r", "r_a-en.mp3", "r-a-en.mp3", tc.confidence), ctx)
		if d.Decision != tc.want {
			t.Fatalf("confidence %d: got %s, want %s", tc.confidence, d.Decision, tc.want)
		}
	}
}

func TestCrossRoomPollutionIsBlocked(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	rooms := []room.Room{slugRoom("room-a", "x"), slugRoom("room-a-b", "x"), slugRoom("room-b", "x")}
	ctx := Context{Summary: healthy(), Rooms: rooms}
	cases := []struct {
		name    string
		op      repair.Operation
		blocked bool
	}{
		{"other room", rename("room-a", "room-a-x_en.mp3", "room-b-x-en.mp3", 99), true},
		{"nested room", rename("room-a", "room-a-y-en.mp3", "room-a-b-x-en.mp3", 99), true},
		{"unknown room", rename("room-a", "room-a-x_en.mp3", "lobby-x-en.mp3", 99), true},
		{"same room", rename("room-a", "room-a-x_en.mp3", "room-a-x-en.mp3", 99), false},
		{"quarantine", repair.New(repair.OpDeleteOrphan, "room-a", "room-a-zz-en.mp3", repair.OrphanDir+"/room-a-zz-en.mp3", naming.LangEN, 99, repair.PriorityLow, ""), false},
		{"generation in own room", repair.New(repair.OpGenerateTTS, "room-a", "", "room-a-x-en.mp3", naming.LangEN, 99, repair.PriorityHigh, ""), false},
		{"generation into other room", repair.New(repair.OpGenerateTTS, "room-a", "", "room-b-x-en.mp3", naming.LangEN, 99, repair.PriorityHigh, ""), true},
		{"reference into other room", repair.New(repair.OpCreateReference, "room-a", "", "room-b-x-en.mp3", naming.LangEN, 99, repair.PriorityHigh, ""), true},
		{"json update into other room", repair.New(repair.OpUpdateJSON, "room-a", "room-a-x-en.mp3", "room-b-x-en.mp3", naming.LangEN, 99, repair.PriorityNormal, ""), true},
		{"json fix into other room", repair.New(repair.OpFixJSONRef, "room-a", "room-a-x-en.mp3", "room-b-x-en.mp3", naming.LangEN, 99, repair.PriorityCritical, ""), true},
		{"json update into nested room", repair.New(repair.OpUpdateJSON, "room-a", "room-a-x-en.mp3", "room-a-b-x-en.mp3", naming.LangEN, 99, repair.PriorityNormal, ""), true},
		{"json update from legacy name", repair.New(repair.OpUpdateJSON, "room-a", "x.mp3", "room-a-x-en.mp3", naming.LangEN, 99, repair.PriorityNormal, ""), false},
		{"manifest refresh", repair.New(repair.OpUpdateManifest, "room-a", "", "room-a", "", 100, repair.PriorityLow, ""), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := engine.EvaluateOperation(tc.op, ctx)
			if got := d.Decision == Blocked; got != tc.blocked {
				t.Fatalf("blocked=%v, want %v (%s: %s)", got, tc.blocked, d.Decision, d.Reason)
			}
			if tc.blocked && !slices.Contains(d.Rules, RuleCrossRoomPollution) {
				t.Fatalf("rules = %v", d.Rules)
			}
		})
	}
}

func TestForeignReferenceRepointedHomeIsAllowed(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	rooms := []room.Room{slugRoom("room-a", "x"), slugRoom("room-b", "x")}
	ctx := Context{Summary: healthy(), Rooms: rooms}
	for _, typ := range []repair.OperationType{repair.OpUpdateJSON, repair.OpFixJSONRef} {
		op := repair.New(typ, "room-a", "room-b-x-en.mp3", "room-a-x-en.mp3", naming.LangEN, 99, repair.PriorityNormal, "")
		d := engine.EvaluateOperation(op, ctx)
		if d.Decision != AutoApprove {
			t.Fatalf("%s: decision = %s (%s)", typ, d.Decision, d.Reason)
		}
		if !slices.Contains(d.Rules, RuleForeignReferenceRepoint) || slices.Contains(d.Rules, RuleCrossRoomPollution) {
			t.Fatalf("%s: rules = %v", typ, d.Rules)
		}
	}

	own := repair.New(repair.OpUpdateJSON, "room-a", "room-a-x.mp3", "room-a-x-en.mp3", naming.LangEN, 99, repair.PriorityNormal, "")
	if d := engine.EvaluateOperation(own, ctx); slices.Contains(d.Rules, RuleForeignReferenceRepoint) {
		t.Fatalf("own-room reference flagged as foreign: %v", d.Rules)
	}
}

func TestDestructiveOperationsAreCapped(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	high := repair.New(repair.OpDeleteOrphan, "r", "r-zz-en.mp3", "_orphans/r-zz-en.mp3", naming.LangEN, 99, repair.PriorityLow, "")
	if d := engine.EvaluateOperation(high, Context{}); d.Decision != GovernanceApprove {
		t.Fatalf("high confidence delete = %s", d.Decision)
	}
	low := repair.New(repair.OpDeleteOrphan, "r", "r-zz-en.mp3", "_orphans/r-zz-en.mp3", naming.LangEN, 40, repair.PriorityLow, "")
	if d := engine.EvaluateOperation(low, Context{}); d.Decision != RequiresReview {
		t.Fatalf("low confidence delete = %s", d.Decision)
	}
}

func TestParityDemotion(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	rooms := []room.Room{slugRoom("r", "a", "b")}
	ctx := Context{
		Summary: healthy(),
		Rooms:   rooms,
		Storage: []string{"r-a-en.mp3", "r-a-vi.mp3"},
	}
	op := rename("r", "r-a-vi.mp3", "r-b-vi.mp3", 90)
	eval := engine.EvaluateChangeSet([]repair.Operation{op}, ctx)
	d := eval.Decisions[0]
	if d.Decision != GovernanceApprove || !slices.Contains(d.Rules, RuleParity) {
		t.Fatalf("decision = %s rules = %v", d.Decision, d.Rules)
	}
	if !slices.Contains(eval.Flags, FlagParityBrokenPrefix+"r") {
		t.Fatalf("flags = %v", eval.Flags)
	}
}

func TestIntegrityThresholdForcesReview(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	ctx := Context{
		Summary: integrity.Summary{TotalRooms: 1, AverageScore: 59},
		Rooms:   []room.Room{slugRoom("r", "a")},
		Storage: []string{"r-a-en.mp3", "r_a-vi.mp3"},
	}
	ops := []repair.Operation{
		rename("r", "r_a-vi.mp3", "r-a-vi.mp3", 100),
		rename("r", "r-a-en.mp3", "s-a-en.mp3", 100),
	}
	eval := engine.EvaluateChangeSet(ops, ctx)
	if eval.Decisions[0].Decision != RequiresReview {
		t.Fatalf("first decision = %s", eval.Decisions[0].Decision)
	}
	if eval.Decisions[1].Decision != Blocked {
		t.Fatalf("blocked decision changed to %s", eval.Decisions[1].Decision)
	}
	want := []string{FlagCrossRoomPollution, FlagIntegrityThresholdNotMet}
	if !slices.Equal(eval.Flags, want) {
		t.Fatalf("flags = %v, want %v", eval.Flags, want)
	}

	ctx.Summary.AverageScore = 60
	if eval := engine.EvaluateChangeSet(ops[:1], ctx); eval.Decisions[0].Decision != AutoApprove {
		t.Fatalf("at the threshold decision = %s (%v)", eval.Decisions[0].Decision, eval.Decisions[0].Rules)
	}
}

func TestIntegrityGateIgnoresUnapprovedWork(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	score := func(projected []string) integrity.Summary {
		if slices.Contains(projected, "r-a-vi.mp3") {
			return integrity.Summary{TotalRooms: 1, HealthyRooms: 1, AverageScore: 100}
		}
		return integrity.Summary{TotalRooms: 1, AverageScore: 50}
	}
	ctx := Context{
		Summary: integrity.Summary{TotalRooms: 1, HealthyRooms: 1, AverageScore: 100},
		Score:   score,
		Rooms:   []room.Room{slugRoom("r", "a", "b")},
		Storage: []string{"r-a-en.mp3", "r_a-vi.mp3", "R-b-en.mp3", "r-b-vi.mp3"},
	}
	ops := []repair.Operation{
		rename("r", "r_a-vi.mp3", "r-a-vi.mp3", 60),
		rename("r", "R-b-en.mp3", "r-b-en.mp3", 100),
	}

	eval := engine.EvaluateChangeSet(ops, ctx)
	if !slices.Contains(eval.Flags, FlagIntegrityThresholdNotMet) {
		t.Fatalf("flags = %v", eval.Flags)
	}
	if d := eval.Decisions[1]; d.Decision != RequiresReview || !slices.Contains(d.Rules, RuleIntegrityThreshold) {
		t.Fatalf("decision = %s rules = %v", d.Decision, d.Rules)
	}

	ctx.Score = nil
	eval = engine.EvaluateChangeSet(ops, ctx)
	if slices.Contains(eval.Flags, FlagIntegrityThresholdNotMet) || !eval.Decisions[1].Decision.Approved() {
		t.Fatalf("without a scorer the summary should pass: flags = %v decision = %s", eval.Flags, eval.Decisions[1].Decision)
	}
}

func TestMultiPassDemotesCollidingTargets(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	ctx := Context{
		Summary: healthy(),
		Rooms:   []room.Room{slugRoom("r", "a")},
		Storage: []string{"r-a-en.mp3", "r_a-vi.mp3", "r-a_vi.mp3"},
	}
	ops := []repair.Operation{
		rename("r", "r_a-vi.mp3", "r-a-vi.mp3", 90),
		rename("r", "r-a_vi.mp3", "r-a-vi.mp3", 90),
	}
	eval := engine.EvaluateChangeSet(ops, ctx)
	for _, d := range eval.Decisions {
		if d.Decision != RequiresReview || !slices.Contains(d.Rules, RuleMultiPassValidation) {
			t.Fatalf("decision = %s rules = %v", d.Decision, d.Rules)
		}
	}
	if !slices.Contains(eval.Flags, FlagMultiPassDemoted) {
		t.Fatalf("flags = %v", eval.Flags)
	}
}

func TestMultiPassRejectsNonCanonicalTarget(t *testing.T) {
	rooms := []room.Room{slugRoom("r", "a")}
	op := repair.New(repair.OpGenerateTTS, "r", "", "r-z-en.mp3", naming.LangEN, 100, repair.PriorityHigh, "")
	decisions := []Decision{{Operation: op, Decision: AutoApprove, Rules: []string{RuleConfidence}}}
	projected := ProjectState(nil, []repair.Operation{op})
	out, demoted := RunMultiPassVerification(decisions, projected, rooms)
	if !demoted || out[0].Decision != RequiresReview {
		t.Fatalf("decision = %s demoted = %v", out[0].Decision, demoted)
	}
	if decisions[0].Decision != AutoApprove {
		t.Fatal("input decisions were mutated")
	}
}

func TestLedgerRules(t *testing.T) {
	engine := New(DefaultPolicy(), nil)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	op := rename("r", "r_a-vi.mp3", "r-a-vi.mp3", 90)

	regressed := ledger.New(func() time.Time { return now }).MarkFixed("r-a-vi.mp3", "r", 95, "op-other", "sha256:other")
	d := engine.EvaluateOperation(op, Context{Ledger: regressed})
	if d.Decision != GovernanceApprove || !slices.Contains(d.Rules, RuleLedgerRegression) {
		t.Fatalf("regression decision = %s rules = %v", d.Decision, d.Rules)
	}

	redundant := ledger.New(func() time.Time { return now }).MarkFixed("r-a-vi.mp3", "r", 80, op.ID, op.ContentHash()).MarkVerified("r-a-vi.mp3", "r")
	d = engine.EvaluateOperation(op, Context{Ledger: redundant})
	if d.Decision != RequiresReview || !slices.Contains(d.Rules, RuleRedundantRepair) {
		t.Fatalf("redundant decision = %s rules = %v", d.Decision, d.Rules)
	}

	// Attaching the same source file writes the same content under a
	// different operation id.
	attach := repair.New(repair.OpAttachOrphan, "r", "r_a-vi.mp3", "r-a-vi.mp3", naming.LangVI, 90, repair.PriorityHigh, "")
	if attach.ID == op.ID || attach.ContentHash() != op.ContentHash() {
		t.Fatalf("ids %s/%s hashes %s/%s", attach.ID, op.ID, attach.ContentHash(), op.ContentHash())
	}
	if d := engine.EvaluateOperation(attach, Context{Ledger: redundant}); !slices.Contains(d.Rules, RuleRedundantRepair) {
		t.Fatalf("same content attach rules = %v", d.Rules)
	}

	other := rename("r", "r-a_vi.mp3", "r-a-vi.mp3", 90)
	if d := engine.EvaluateOperation(other, Context{Ledger: redundant}); slices.Contains(d.Rules, RuleRedundantRepair) {
		t.Fatalf("different source flagged as redundant: %v", d.Rules)
	}
}

func TestTierNeverUpgrades(t *testing.T) {
	cases := map[Tier]Tier{
		AutoApprove:       GovernanceApprove,
		GovernanceApprove: RequiresReview,
		RequiresReview:    RequiresReview,
		Blocked:           Blocked,
	}
	for in, want := range cases {
		if got := in.demote(); got != want {
			t.Fatalf("%s.demote() = %s, want %s", in, got, want)
		}
	}
	d := Decision{Decision: Blocked}
	d.restrict(RequiresReview, RuleIntegrityThreshold, "x")
	if d.Decision != Blocked || len(d.Rules) != 0 {
		t.Fatalf("restrict upgraded a blocked decision: %+v", d)
	}
}
