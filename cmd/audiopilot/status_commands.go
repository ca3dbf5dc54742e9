package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audiopilot/internal/autopilot"
	"audiopilot/internal/config"
	"audiopilot/internal/logging"
	"audiopilot/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest cycle status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				raw, err := st.LoadStatus(cmd.Context(), cfg.Library.ID)
				if errors.Is(err, store.ErrNotFound) {
					if jsonOut {
						return writeJSON(cmd, nil)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "No cycles recorded for library %q. Run `audiopilot run` first.\n", cfg.Library.ID)
					return nil
				}
				if err != nil {
					return err
				}
				if jsonOut {
					_, err := cmd.OutOrStdout().Write(raw)
					return err
				}
				var status autopilot.Status
				if err := json.Unmarshal(raw, &status); err != nil {
					return fmt.Errorf("decode stored status: %w", err)
				}
				counts, err := st.ReviewCounts(cmd.Context(), cfg.Library.ID)
				if err != nil {
					return err
				}
				renderStatus(cmd, cfg, status, counts[store.ReviewPending])
				return nil
			})
		},
	}
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func renderStatus(cmd *cobra.Command, cfg *config.Config, status autopilot.Status, pending int) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	threshold := cfg.Governance.IntegrityThreshold

	writeLines(out, renderSectionHeader("Library "+cfg.Library.ID, colorize)...)
	writeLines(out,
		renderKeyValue("Last run", logging.FormatTime(status.LastRunAt)),
		renderKeyValue("Cycle", status.CycleID),
		renderKeyValue("Mode", status.Mode.String()),
		renderStatusLine("Outcome", outcomeKind(status.Outcome), status.Outcome.String(), colorize),
		renderStatusLine("Integrity before", scoreKind(status.BeforeIntegrity.AverageScore, threshold),
			fmt.Sprintf("%d (%d/%d rooms healthy)", status.BeforeIntegrity.AverageScore,
				status.BeforeIntegrity.HealthyRooms, status.BeforeIntegrity.TotalRooms), colorize),
		renderStatusLine("Integrity after", scoreKind(status.AfterIntegrity.AverageScore, threshold),
			fmt.Sprintf("%d (%d/%d rooms healthy)", status.AfterIntegrity.AverageScore,
				status.AfterIntegrity.HealthyRooms, status.AfterIntegrity.TotalRooms), colorize),
		renderKeyValue("Rooms touched", fmt.Sprintf("%d", status.RoomsTouched)),
		renderKeyValue("Changes applied", fmt.Sprintf("%d", status.ChangesApplied)),
		renderKeyValue("Changes blocked", fmt.Sprintf("%d", status.ChangesBlocked)),
	)
	flags := "none"
	kind := statusOK
	if len(status.GovernanceFlags) > 0 {
		flags = strings.Join(status.GovernanceFlags, ", ")
		kind = statusWarn
	}
	writeLines(out, renderStatusLine("Governance flags", kind, flags, colorize))
	reviewKind := statusOK
	if pending > 0 {
		reviewKind = statusWarn
	}
	writeLines(out,
		renderStatusLine("Pending reviews", reviewKind, fmt.Sprintf("%d", pending), colorize),
		renderKeyValue("Report", status.LastReportPath),
		renderKeyValue("History", fmt.Sprintf("%d cycles", len(status.History))),
	)
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent cycles, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rows, err := st.ListHistory(cmd.Context(), cfg.Library.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cycles recorded")
					return nil
				}
				view := newTableView("Cycle", "Started", "Mode", "Outcome", "Before", "After", "Rooms", "Applied", "Blocked", "Flags").
					align(alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft)
				for _, row := range rows {
					view.add(
						shortID(row.CycleID),
						logging.FormatTime(row.StartedAt),
						row.Mode,
						row.Outcome,
						fmt.Sprintf("%d", row.BeforeScore),
						fmt.Sprintf("%d", row.AfterScore),
						fmt.Sprintf("%d", row.RoomsTouched),
						fmt.Sprintf("%d", row.ChangesApplied),
						fmt.Sprintf("%d", row.ChangesBlocked),
						strings.Join(row.Flags, ","),
					)
				}
				return view.write(cmd.OutOrStdout())
			})
		},
	}
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
