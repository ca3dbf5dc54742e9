package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audiopilot/internal/autopilot"
	"audiopilot/internal/integrity"
	"audiopilot/internal/services"
)

func newIntegrityCommand(ctx *commandContext) *cobra.Command {
	var (
		lowest int
		issue  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Show the integrity map of the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			switch format {
			case "table", "json", "csv":
			default:
				return fmt.Errorf("%w: unknown format %q (table, json, csv)", services.ErrValidation, format)
			}
			var kind integrity.IssueKind
			if issue != "" {
				parsed, err := integrity.ParseIssueKind(issue)
				if err != nil {
					return fmt.Errorf("%w: %v", services.ErrValidation, err)
				}
				kind = parsed
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := ctx.loadSnapshot(cmd.Context(), nil)
			if err != nil {
				return err
			}
			full := integrity.BuildMap(snap.Rooms, snap.Storage, autopilot.PoliciesFromConfig(cfg).Integrity)

			records := make([]integrity.RoomIntegrity, 0, len(full))
			switch {
			case issue != "":
				records = integrity.RoomsWithIssues(full, kind)
				if lowest > 0 && len(records) > lowest {
					records = records[:lowest]
				}
			case lowest > 0:
				records = integrity.LowestRooms(full, lowest)
			default:
				for _, id := range full.RoomIDs() {
					records = append(records, full[id])
				}
			}
			selected := make(integrity.Map, len(records))
			for _, rec := range records {
				selected[rec.RoomID] = rec
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return integrity.WriteJSON(out, selected)
			case "csv":
				return integrity.WriteCSV(out, selected)
			}

			summary := integrity.Summarize(full)
			fmt.Fprintf(out, "Library %s: average %d, %d/%d rooms healthy, %d missing, %d orphans, %d duplicates\n",
				cfg.Library.ID, summary.AverageScore, summary.HealthyRooms, summary.TotalRooms,
				summary.TotalMissing, summary.TotalOrphans, summary.TotalDuplicates)
			if len(records) == 0 {
				fmt.Fprintln(out, "No matching rooms")
				return nil
			}
			view := newTableView("Room", "Score", "Expected", "Found", "Missing", "Orphans", "Mismatched", "Duplicates").
				align(alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight)
			for _, rec := range records {
				view.add(
					rec.RoomID,
					fmt.Sprintf("%d", rec.Score),
					fmt.Sprintf("%d", len(rec.Expected)),
					fmt.Sprintf("%d", len(rec.Found)),
					fmt.Sprintf("%d", len(rec.Missing)),
					fmt.Sprintf("%d", len(rec.Orphans)),
					fmt.Sprintf("%d", len(rec.MismatchedLang)),
					fmt.Sprintf("%d", len(rec.Duplicates)),
				)
			}
			return view.write(out)
		},
	}

	cmd.Flags().IntVar(&lowest, "lowest", 0, "Show only the N lowest-scoring rooms")
	cmd.Flags().StringVar(&issue, "issue", "", "Show only rooms with this issue (missing, orphans, mismatchedLang, duplicates, unrepairable)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, or csv")
	return cmd
}
