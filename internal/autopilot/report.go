package autopilot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"audiopilot/internal/governance"
	"audiopilot/internal/integrity"
	"audiopilot/internal/repair"
)

// Report artifact names inside the report directory.
const (
	StatusFileName = "autopilot-status.json"
	reportLowest   = 10
)

// ChangesetFileName returns the changeset artifact name for a cycle.
func ChangesetFileName(cycleID string) string {
	return "autopilot-changeset-" + cycleID + ".json"
}

// ReportFileName returns the markdown report name for a cycle.
func ReportFileName(cycleID string) string {
	return "autopilot-report-" + cycleID + ".md"
}

// MarshalIndented encodes v as indented JSON with a trailing newline.
func MarshalIndented(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RenderReport writes the markdown report of a cycle.
func RenderReport(w io.Writer, res Result) error {
	title := cases.Title(language.English)
	st := res.Status
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Autopilot Report\n\n")
	if st.CycleID != "" {
		fmt.Fprintf(&b, "- Cycle: `%s`\n", st.CycleID)
	}
	if st.LibraryID != "" {
		fmt.Fprintf(&b, "- Library: `%s`\n", st.LibraryID)
	}
	fmt.Fprintf(&b, "- Run at: %s\n", st.LastRunAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Mode: %s\n", st.Mode)
	fmt.Fprintf(&b, "- Outcome: **%s**\n\n", title.String(strings.ReplaceAll(st.Outcome.String(), "-", " ")))

	b.WriteString("## Integrity\n\n")
	b.WriteString("| Metric | Before | After |\n|---|---:|---:|\n")
	rows := []struct {
		label         string
		before, after int
	}{
		{"Average score", st.BeforeIntegrity.AverageScore, st.AfterIntegrity.AverageScore},
		{"Rooms", st.BeforeIntegrity.TotalRooms, st.AfterIntegrity.TotalRooms},
		{"Healthy rooms", st.BeforeIntegrity.HealthyRooms, st.AfterIntegrity.HealthyRooms},
		{"Missing files", st.BeforeIntegrity.TotalMissing, st.AfterIntegrity.TotalMissing},
		{"Orphans", st.BeforeIntegrity.TotalOrphans, st.AfterIntegrity.TotalOrphans},
		{"Duplicates", st.BeforeIntegrity.TotalDuplicates, st.AfterIntegrity.TotalDuplicates},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", row.label, row.before, row.after)
	}
	fmt.Fprintf(&b, "\nRooms touched: %d. Changes applied: %d. Changes blocked: %d.\n\n",
		st.RoomsTouched, st.ChangesApplied, st.ChangesBlocked)

	if len(st.GovernanceFlags) > 0 {
		b.WriteString("## Governance Flags\n\n")
		for _, flag := range st.GovernanceFlags {
			fmt.Fprintf(&b, "- `%s`\n", flag)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Changeset\n\n")
	if res.Changeset.Len() == 0 {
		b.WriteString("No operations proposed.\n\n")
	}
	for _, cat := range Categories() {
		decisions := res.Changeset.Bucket(cat)
		if len(decisions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d)\n\n", title.String(cat.String()), len(decisions))
		b.WriteString("| Room | Operation | Source | Target | Confidence | Decision | Reason |\n")
		b.WriteString("|---|---|---|---|---:|---|---|\n")
		for _, d := range decisions {
			writeDecisionRow(&b, d)
		}
		b.WriteString("\n")
	}

	if lowest := integrity.LowestRooms(res.Before, reportLowest); len(lowest) > 0 {
		b.WriteString("## Lowest Integrity Rooms\n\n")
		b.WriteString("| Room | Score | Missing | Orphans | Duplicates |\n|---|---:|---:|---:|---:|\n")
		for _, rec := range lowest {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n",
				rec.RoomID, rec.Score, len(rec.Missing), len(rec.Orphans), len(rec.Duplicates))
		}
		b.WriteString("\n")
	}

	if len(res.Issues) > 0 {
		b.WriteString("## Room Issues\n\n")
		for _, issue := range res.Issues {
			fmt.Fprintf(&b, "- %s: %s\n", issue.RoomID, issue.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, rec := range Recommendations(res) {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	_, err := w.Write(b.Bytes())
	return err
}

func writeDecisionRow(b *bytes.Buffer, d governance.Decision) {
	op := d.Operation
	fmt.Fprintf(b, "| %s | %s | %s | %s | %d%% | %s | %s |\n",
		op.RoomID, op.Type, cell(op.Source), cell(op.Target), op.Confidence, d.Decision, cell(d.Reason))
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// Recommendations lists next steps for an operator, most urgent first.
func Recommendations(res Result) []string {
	var out []string
	st := res.Status
	if st.Outcome == OutcomeNoRooms {
		return []string{"No rooms in scope. Check paths.rooms_dir and the room filter."}
	}
	if n := len(res.Changeset.Blocked); n > 0 {
		out = append(out, fmt.Sprintf("Investigate %d blocked operation(s); they would move files across rooms.", n))
	}
	for _, flag := range st.GovernanceFlags {
		if flag == governance.FlagIntegrityThresholdNotMet {
			out = append(out, fmt.Sprintf("Library integrity %d is below the governance threshold; restore missing files before applying repairs.",
				st.AfterIntegrity.AverageScore))
		}
	}
	if n := len(res.Reviews); n > 0 {
		out = append(out, fmt.Sprintf("Review %d pending operation(s) with `audiopilot review list`.", n))
	}
	refs := 0
	for _, op := range res.Operations {
		if op.Type == repair.OpCreateReference {
			refs++
		}
	}
	if refs > 0 {
		out = append(out, fmt.Sprintf("Run with --with-tts to generate stubs for %d missing file(s).", refs))
	}
	if res.Truncated > 0 {
		out = append(out, fmt.Sprintf("Rerun the cycle to process %d deferred operation(s).", res.Truncated))
	}
	for _, issue := range res.Issues {
		out = append(out, fmt.Sprintf("Fix room %s: %s.", issue.RoomID, issue.Message))
	}
	if len(out) == 0 {
		switch {
		case st.Outcome == OutcomeRepaired && st.Mode == ModeDryRun:
			out = append(out, "Rerun with --apply to record the approved repairs.")
		default:
			out = append(out, "No action needed.")
		}
	}
	return out
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".autopilot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
