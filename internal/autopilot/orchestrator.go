package autopilot

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"audiopilot/internal/governance"
	"audiopilot/internal/integrity"
	"audiopilot/internal/ledger"
	"audiopilot/internal/logging"
	"audiopilot/internal/matcher"
	"audiopilot/internal/repair"
	"audiopilot/internal/room"
	"audiopilot/internal/snapshot"
)

// StatusVersion is the schema version of the status document.
const StatusVersion = 1

// Status is the state pointer written after every cycle.
type Status struct {
	Version         int               `json:"version"`
	CycleID         string            `json:"cycleId,omitempty"`
	LibraryID       string            `json:"libraryId,omitempty"`
	LastRunAt       time.Time         `json:"lastRunAt"`
	Mode            Mode              `json:"mode"`
	BeforeIntegrity integrity.Summary `json:"beforeIntegrity"`
	AfterIntegrity  integrity.Summary `json:"afterIntegrity"`
	RoomsTouched    int               `json:"roomsTouched"`
	ChangesApplied  int               `json:"changesApplied"`
	ChangesBlocked  int               `json:"changesBlocked"`
	GovernanceFlags []string          `json:"governanceFlags"`
	LastReportPath  string            `json:"lastReportPath,omitempty"`
	Outcome         Outcome           `json:"outcome"`
	History         []HistoryRecord   `json:"history"`
}

// Record condenses the status into a history entry.
func (s Status) Record() HistoryRecord {
	return HistoryRecord{
		CycleID:        s.CycleID,
		RunAt:          s.LastRunAt,
		Mode:           s.Mode,
		Outcome:        s.Outcome,
		BeforeScore:    s.BeforeIntegrity.AverageScore,
		AfterScore:     s.AfterIntegrity.AverageScore,
		RoomsTouched:   s.RoomsTouched,
		ChangesApplied: s.ChangesApplied,
		ChangesBlocked: s.ChangesBlocked,
		Flags:          s.GovernanceFlags,
	}
}

// RoomIssue records a room the planner could not work on.
type RoomIssue struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// Result is everything a cycle computed.
type Result struct {
	Status     Status
	Changeset  Changeset
	Operations []repair.Operation
	Evaluation governance.Evaluation
	Before     integrity.Map
	// After is the integrity once the approved operations land.
	After integrity.Map
	// Ledger is the updated ledger value; the snapshot's ledger is left
	// untouched.
	Ledger ledger.Ledger
	// Reviews lists the decisions that need a human.
	Reviews []governance.Decision
	Issues  []RoomIssue
	// Truncated counts operations dropped by the MaxOperations cap.
	Truncated int
}

// Orchestrator runs cycles. It holds no state between cycles.
type Orchestrator struct {
	policies Policies
	matcher  *matcher.Matcher
	logger   *slog.Logger
	now      func() time.Time
}

// New builds an orchestrator.
func New(policies Policies, logger *slog.Logger) *Orchestrator {
	logger = logging.NewComponentLogger(logger, "autopilot")
	return &Orchestrator{
		policies: policies,
		matcher:  matcher.New(policies.Matcher, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the orchestrator clock.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	if now != nil {
		o.now = now
	}
	return o
}

// Policies returns the orchestrator policies.
func (o *Orchestrator) Policies() Policies {
	return o.policies
}

type roomPlan struct {
	room room.Room
	ids  []room.Identity
	rec  integrity.RoomIntegrity
	ops  []repair.Operation
}

// RunCycle executes every stage in order. The context is checked between
// stages; a cancelled cycle returns ctx.Err() and no result.
func (o *Orchestrator) RunCycle(ctx context.Context, snap snapshot.Snapshot, opts Options) (Result, error) {
	logger := logging.WithContext(ctx, o.logger)
	runAt := o.now()
	result := Result{Ledger: snap.Ledger}

	stage := func(name string) error {
		if err := ctx.Err(); err != nil {
			logger.Info("cycle cancelled", logging.String(logging.FieldStage, name))
			return err
		}
		logger.Debug("stage started", logging.String(logging.FieldStage, name))
		return nil
	}

	// scan
	if err := stage(StageScan); err != nil {
		return Result{}, err
	}
	selected := selectRooms(snap.Rooms, opts)
	fullBefore := integrity.BuildMap(snap.Rooms, snap.Storage, o.policies.Integrity)
	result.Before = subset(fullBefore, selected)
	before := integrity.Summarize(result.Before)
	logger.Info("integrity scanned",
		logging.String(logging.FieldStage, StageScan),
		logging.Int("rooms", len(selected)),
		logging.Int("average_score", before.AverageScore),
		logging.Int("missing", before.TotalMissing),
		logging.Int("orphans", before.TotalOrphans),
	)

	plans := make([]*roomPlan, 0, len(selected))
	for _, r := range selected {
		if len(r.Entries) == 0 {
			result.Issues = append(result.Issues, RoomIssue{RoomID: r.ID, Message: "room has no entries"})
			logging.WarnWithContext(logger, "room skipped", "room_without_entries",
				logging.String(logging.FieldRoomID, r.ID),
				logging.String(logging.FieldErrorHint, "add entries to the room metadata"),
				logging.String(logging.FieldImpact, "no repairs planned for this room"),
			)
			continue
		}
		plans = append(plans, &roomPlan{room: r, ids: r.Identities(), rec: fullBefore[r.ID]})
	}

	// build-repair-plan
	if err := stage(StageBuildRepairPlan); err != nil {
		return Result{}, err
	}
	for _, p := range plans {
		p.ops = append(p.ops, repair.PlanRoom(p.room.ID, p.ids, p.rec)...)
	}

	// fill-missing
	if err := stage(StageFillMissing); err != nil {
		return Result{}, err
	}
	for _, p := range plans {
		p.ops = append(p.ops, repair.PlanMissing(p.room.ID, p.rec, p.ops, opts.WithTTS)...)
	}

	// semantic-attach
	if err := stage(StageSemanticAttach); err != nil {
		return Result{}, err
	}
	var ops []repair.Operation
	for _, p := range plans {
		if len(p.rec.Orphans) > 0 {
			batch := o.matcher.BatchMatchOrphans(p.rec.Orphans, p.room.ID, p.ids)
			p.ops = append(p.ops, repair.PlanOrphans(p.room.ID, p.rec, batch)...)
		}
		p.ops = repair.DropSuperseded(p.ops)
		if manifest, ok := repair.ManifestUpdate(p.room.ID, p.ops); ok {
			p.ops = append(p.ops, manifest)
		}
		ops = append(ops, p.ops...)
	}
	repair.Sort(ops)
	ops, result.Truncated = capOperations(ops, opts.MaxOperations)
	if result.Truncated > 0 {
		logging.WarnWithContext(logger, "plan truncated", "plan_truncated",
			logging.Int("kept", len(ops)),
			logging.Int("dropped", result.Truncated),
			logging.String(logging.FieldErrorHint, "raise autopilot.max_operations or rerun"),
			logging.String(logging.FieldImpact, "lower priority repairs deferred to a later cycle"),
		)
	}
	result.Operations = ops

	// rebuild-integrity
	if err := stage(StageRebuildIntegrity); err != nil {
		return Result{}, err
	}
	rebuild := func(storage []string) integrity.Map {
		return subset(integrity.BuildMap(snap.Rooms, storage, o.policies.Integrity), selected)
	}
	planned := integrity.Summarize(rebuild(governance.ProjectState(snap.Storage, ops)))

	// governance
	if err := stage(StageGovernance); err != nil {
		return Result{}, err
	}
	policy := o.policies.Governance
	if opts.IntegrityThreshold > 0 {
		policy.IntegrityThreshold = opts.IntegrityThreshold
	}
	engine := governance.New(policy, logger)
	result.Evaluation = engine.EvaluateChangeSet(ops, governance.Context{
		Summary: planned,
		Score:   func(projected []string) integrity.Summary { return integrity.Summarize(rebuild(projected)) },
		Ledger:  snap.Ledger,
		Rooms:   snap.Rooms,
		Storage: snap.Storage,
	})
	result.After = rebuild(result.Evaluation.Projected)
	after := integrity.Summarize(result.After)

	// report
	if err := stage(StageReport); err != nil {
		return Result{}, err
	}
	decisions := result.Evaluation.Decisions
	result.Changeset = NewChangeset(opts.Mode, decisions)
	result.Reviews = reviews(decisions)
	result.Ledger = updateLedger(snap.Ledger, result.Before, decisions, opts.Mode)

	status := Status{
		Version:         StatusVersion,
		LastRunAt:       runAt,
		Mode:            opts.Mode,
		BeforeIntegrity: before,
		AfterIntegrity:  after,
		RoomsTouched:    roomsTouched(ops),
		GovernanceFlags: result.Evaluation.Flags,
		History:         []HistoryRecord{},
	}
	for _, d := range decisions {
		if d.Decision == governance.Blocked {
			status.ChangesBlocked++
		}
		if opts.Mode == ModeApply && d.Decision.Approved() {
			status.ChangesApplied++
		}
	}
	status.Outcome = outcome(len(selected), decisions, result.Issues)
	result.Status = status

	logger.Info("cycle computed",
		logging.String(logging.FieldStage, StageReport),
		logging.String("mode", opts.Mode.String()),
		logging.String("outcome", status.Outcome.String()),
		logging.Int("operations", len(ops)),
		logging.Int("reviews", len(result.Reviews)),
		logging.Int("blocked", status.ChangesBlocked),
		logging.Int("before_score", before.AverageScore),
		logging.Int("planned_score", planned.AverageScore),
		logging.Int("after_score", after.AverageScore),
		logging.String("flags", strings.Join(status.GovernanceFlags, ",")),
	)
	return result, nil
}

// selectRooms applies the room filter, then the room cap, in snapshot
// order.
func selectRooms(rooms []room.Room, opts Options) []room.Room {
	selected := make([]room.Room, 0, len(rooms))
	for _, r := range rooms {
		if opts.RoomFilter != nil && !opts.RoomFilter.MatchString(r.ID) {
			continue
		}
		selected = append(selected, r)
		if opts.MaxRooms > 0 && len(selected) == opts.MaxRooms {
			break
		}
	}
	return selected
}

func subset(m integrity.Map, rooms []room.Room) integrity.Map {
	out := make(integrity.Map, len(rooms))
	for _, r := range rooms {
		if rec, ok := m[r.ID]; ok {
			out[r.ID] = rec
		}
	}
	return out
}

// capOperations keeps the limit highest-priority operations, preserving
// their sorted order.
func capOperations(ops []repair.Operation, limit int) ([]repair.Operation, int) {
	if limit <= 0 || len(ops) <= limit {
		return ops, 0
	}
	ranked := slices.Clone(ops)
	slices.SortStableFunc(ranked, func(a, b repair.Operation) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	keep := make(map[string]bool, limit)
	for _, op := range ranked[:limit] {
		keep[op.ID] = true
	}
	kept := make([]repair.Operation, 0, limit)
	for _, op := range ops {
		if keep[op.ID] {
			kept = append(kept, op)
		}
	}
	return kept, len(ops) - len(kept)
}

func roomsTouched(ops []repair.Operation) int {
	rooms := make(map[string]struct{})
	for _, op := range ops {
		rooms[op.RoomID] = struct{}{}
	}
	return len(rooms)
}

func reviews(decisions []governance.Decision) []governance.Decision {
	var out []governance.Decision
	for _, d := range decisions {
		if d.Decision == governance.RequiresReview {
			out = append(out, d)
		}
	}
	return out
}

func outcome(rooms int, decisions []governance.Decision, issues []RoomIssue) Outcome {
	if rooms == 0 {
		return OutcomeNoRooms
	}
	if len(issues) > 0 {
		return OutcomeNeedsReview
	}
	for _, d := range decisions {
		if !d.Decision.Approved() {
			return OutcomeNeedsReview
		}
	}
	if len(decisions) == 0 {
		return OutcomeHealthy
	}
	return OutcomeRepaired
}

// updateLedger records verification of every found canonical file and, in
// apply mode, the effect of each approved operation. It returns a new value.
func updateLedger(l ledger.Ledger, before integrity.Map, decisions []governance.Decision, mode Mode) ledger.Ledger {
	for _, roomID := range before.RoomIDs() {
		for _, observed := range before[roomID].Found {
			l = l.MarkVerified(strings.ToLower(observed), roomID)
		}
	}
	if mode != ModeApply {
		return l
	}
	for _, d := range decisions {
		if !d.Decision.Approved() {
			continue
		}
		op := d.Operation
		switch op.Type {
		case repair.OpRename, repair.OpAttachOrphan:
			if op.Source != "" && !strings.EqualFold(op.Source, op.Target) {
				l = l.Remove(op.Source)
			}
			l = l.MarkFixed(op.Target, op.RoomID, op.Confidence, op.ID, op.ContentHash())
		case repair.OpGenerateTTS:
			l = l.MarkRegenerated(op.Target, op.RoomID, op.Confidence, op.ID, op.ContentHash())
		case repair.OpDeleteOrphan, repair.OpMoveDuplicate:
			l = l.Remove(op.Source)
		}
	}
	return l
}

// Summary renders a one-line description of the result.
func (r Result) Summary() string {
	return fmt.Sprintf("%s: %d operations, %d for review, %d blocked, integrity %d → %d",
		r.Status.Outcome, len(r.Operations), len(r.Reviews), r.Status.ChangesBlocked,
		r.Status.BeforeIntegrity.AverageScore, r.Status.AfterIntegrity.AverageScore)
}
