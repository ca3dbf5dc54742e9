package autopilot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"audiopilot/internal/config"
	"audiopilot/internal/logging"
	"audiopilot/internal/services"
	"audiopilot/internal/snapshot"
	"audiopilot/internal/store"
)

// StateStore is the persistence a runner needs.
type StateStore interface {
	snapshot.LedgerSource
	ListHistory(ctx context.Context, libraryID string) ([]store.CycleRecord, error)
	CommitCycle(ctx context.Context, commit store.Commit) error
}

// RunReport locates the artifacts of a finished cycle.
type RunReport struct {
	CycleID       string
	Result        Result
	StatusPath    string
	ChangesetPath string
	ReportPath    string
	LogPath       string
}

// Runner executes one locked, persisted cycle for the configured library.
type Runner struct {
	cfg      *config.Config
	store    StateStore
	policies Policies
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewRunner wires a runner. Policies come from cfg.
func NewRunner(cfg *config.Config, st StateStore, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("runner requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		store:    st,
		policies: PoliciesFromConfig(cfg),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Run acquires the library lock, loads a snapshot, runs the cycle, writes
// the per-cycle artifacts, commits the new state, and then replaces the
// status pointer. A failed or cancelled commit leaves the previous status
// file and store state in place.
func (r *Runner) Run(ctx context.Context, opts Options) (RunReport, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return RunReport{}, services.Wrap(services.ErrConfiguration, "runner", "ensure directories", "create state directories", err)
	}
	lock := NewCycleLock(r.cfg.LockPath())
	if err := lock.Acquire(); err != nil {
		return RunReport{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(r.logger, "failed to release cycle lock", "lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no cycle is running"),
				logging.String(logging.FieldImpact, "the next cycle may report a conflict"),
			)
		}
	}()

	cycleID := r.newID()
	libraryID := r.cfg.Library.ID
	ctx = services.WithCycleID(ctx, cycleID)
	ctx = services.WithLibraryID(ctx, libraryID)
	startedAt := r.now()

	logPath := filepath.Join(r.cfg.CycleLogDir(), cycleID+".log")
	fileHandler, closer, err := logging.NewCycleFileHandler(logPath)
	if err != nil {
		return RunReport{}, fmt.Errorf("open cycle log: %w", err)
	}
	defer closer.Close()
	logger := logging.WithContext(ctx, logging.CycleLogger(r.logger, fileHandler, cycleID))
	logger.Info("autopilot cycle started",
		logging.String("mode", opts.Mode.String()),
		logging.Bool("with_tts", opts.WithTTS),
		logging.Float64("auto_approve", r.policies.Governance.AutoApprove),
		logging.String("lock", lock.Path()),
	)

	snap, err := snapshot.NewLoader(r.cfg, r.store, logger).Load(ctx)
	if err != nil {
		return RunReport{}, err
	}
	previous, err := r.store.ListHistory(ctx, libraryID)
	if err != nil {
		return RunReport{}, services.Wrap(services.ErrTransient, "runner", "list history", "read cycle history", err)
	}

	orch := New(r.policies, logger).WithClock(r.now)
	result, err := orch.RunCycle(ctx, snap, opts)
	if err != nil {
		return RunReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return RunReport{}, err
	}

	reportDir := r.cfg.Paths.ReportDir
	report := RunReport{
		CycleID:       cycleID,
		StatusPath:    filepath.Join(reportDir, StatusFileName),
		ChangesetPath: filepath.Join(reportDir, ChangesetFileName(cycleID)),
		ReportPath:    filepath.Join(reportDir, ReportFileName(cycleID)),
		LogPath:       logPath,
	}

	result.Changeset.CycleID = cycleID
	result.Status.CycleID = cycleID
	result.Status.LibraryID = libraryID
	result.Status.LastReportPath = report.ReportPath
	history := NewHistory(opts.HistoryLimit, HistoryRecords(previous)...).Append(result.Status.Record())
	result.Status.History = history.Records()
	report.Result = result

	statusJSON, err := MarshalIndented(result.Status)
	if err != nil {
		return RunReport{}, fmt.Errorf("encode status: %w", err)
	}
	written, err := r.writeCycleArtifacts(report)
	if err != nil {
		removeArtifacts(logger, written)
		return RunReport{}, err
	}

	commit := store.Commit{
		LibraryID:    libraryID,
		Cycle:        CycleRecord(result.Status, startedAt, r.now()),
		StatusJSON:   statusJSON,
		HistoryLimit: history.Capacity(),
		Ledger:       result.Ledger,
		Reviews:      ReviewItems(libraryID, cycleID, result.Reviews),
	}
	if err := r.store.CommitCycle(ctx, commit); err != nil {
		removeArtifacts(logger, written)
		return RunReport{}, err
	}
	// The status pointer only ever describes a committed cycle.
	if err := writeFileAtomic(report.StatusPath, statusJSON, 0o644); err != nil {
		return report, services.Wrap(services.ErrTransient, "runner", "write status", StatusFileName, err)
	}

	removed := logging.CleanupOldFiles(logger, r.now(), r.cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: r.cfg.CycleLogDir(), Pattern: "*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: reportDir, Pattern: "autopilot-*-*.*", Exclude: []string{StatusFileName, report.ChangesetPath, report.ReportPath}},
	)
	logger.Info("autopilot cycle finished",
		logging.String("outcome", result.Status.Outcome.String()),
		logging.String("report", report.ReportPath),
		logging.Int("pruned_files", removed),
		logging.Duration("duration", r.now().Sub(startedAt)),
	)
	return report, nil
}

// writeCycleArtifacts writes the per-cycle changeset and report. It returns
// the paths written so far, even on error.
func (r *Runner) writeCycleArtifacts(report RunReport) ([]string, error) {
	changeset, err := MarshalIndented(report.Result.Changeset)
	if err != nil {
		return nil, fmt.Errorf("encode changeset: %w", err)
	}
	var md bytes.Buffer
	if err := RenderReport(&md, report.Result); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	writes := []struct {
		path string
		data []byte
	}{
		{report.ChangesetPath, changeset},
		{report.ReportPath, md.Bytes()},
	}
	var written []string
	for _, w := range writes {
		if err := writeFileAtomic(w.path, w.data, 0o644); err != nil {
			return written, services.Wrap(services.ErrTransient, "runner", "write report", filepath.Base(w.path), err)
		}
		written = append(written, w.path)
	}
	return written, nil
}

func removeArtifacts(logger *slog.Logger, paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Debug("failed to remove uncommitted artifact", logging.String("path", path), logging.Error(err))
		}
	}
}
