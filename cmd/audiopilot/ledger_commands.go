package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"audiopilot/internal/config"
	"audiopilot/internal/ledger"
	"audiopilot/internal/logging"
	"audiopilot/internal/store"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the lifecycle ledger",
	}
	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerStatsCommand(ctx))
	ledgerCmd.AddCommand(newLedgerRemoveCommand(ctx))
	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var (
		roomID  string
		regen   bool
		since   time.Duration
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				led, err := st.LoadLedger(cmd.Context(), cfg.Library.ID, nil)
				if err != nil {
					return err
				}
				var entries []ledger.Entry
				switch {
				case regen:
					entries = led.NeedingRegeneration(cfg.Autopilot.RegenerationThreshold)
				case since > 0:
					entries = led.RecentlyModified(time.Now().Add(-since))
				case strings.TrimSpace(roomID) != "":
					entries = led.ForRoom(roomID)
				default:
					entries = led.Entries()
				}
				if (regen || since > 0) && roomID != "" {
					entries = slices.DeleteFunc(entries, func(e ledger.Entry) bool { return e.RoomID != roomID })
				}
				if jsonOut {
					if entries == nil {
						entries = []ledger.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No ledger entries")
					return nil
				}
				view := newTableView("File", "Room", "Source", "Confidence", "Last verified", "Last modified").
					align(alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft)
				for _, e := range entries {
					verified := "-"
					if e.LastVerified != nil {
						verified = logging.FormatTime(*e.LastVerified)
					}
					view.add(e.Filename, e.RoomID, e.Source.String(), fmt.Sprintf("%d", e.ConfidenceScore),
						verified, logging.FormatTime(e.LastModified()))
				}
				return view.write(cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Only list entries of this room")
	cmd.Flags().BoolVar(&regen, "needs-regeneration", false, "Only list entries below the regeneration threshold")
	cmd.Flags().DurationVar(&since, "since", 0, "Only list entries modified within this duration (e.g. 24h)")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func newLedgerStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the lifecycle ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				led, err := st.LoadLedger(cmd.Context(), cfg.Library.ID, nil)
				if err != nil {
					return err
				}
				stats := led.Stats(cfg.Autopilot.RegenerationThreshold)
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				writeLines(out, renderSectionHeader("Lifecycle Ledger", colorize)...)
				writeLines(out,
					renderKeyValue("Total", fmt.Sprintf("%d", stats.Total)),
					renderKeyValue("Avg confidence", fmt.Sprintf("%.1f", stats.AvgConfidence)),
				)
				sources := make([]string, 0, len(stats.BySource))
				for source := range stats.BySource {
					sources = append(sources, source)
				}
				slices.Sort(sources)
				for _, source := range sources {
					writeLines(out, renderKeyValue("Source "+source, fmt.Sprintf("%d", stats.BySource[source])))
				}
				kind := statusOK
				if stats.NeedsRegeneration > 0 {
					kind = statusWarn
				}
				writeLines(out, renderStatusLine("Needs regeneration", kind, fmt.Sprintf("%d", stats.NeedsRegeneration), colorize))
				return nil
			})
		},
	}
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func newLedgerRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove FILE",
		Short: "Remove a file from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.RemoveLedgerEntry(cmd.Context(), cfg.Library.ID, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the ledger\n", args[0])
				return nil
			})
		},
	}
}
