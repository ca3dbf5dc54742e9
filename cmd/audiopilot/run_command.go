package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"audiopilot/internal/autopilot"
	"audiopilot/internal/config"
	"audiopilot/internal/services"
	"audiopilot/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		apply         bool
		withTTS       bool
		jsonOut       bool
		roomPattern   string
		maxRooms      int
		maxOperations int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one autopilot cycle",
		Long: "Scan the library, plan repairs, judge them under governance, and record the result.\n" +
			"Without --apply the cycle is a dry run: decisions are reported but no repair is recorded as applied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := autopilot.OptionsFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("%w: %v", services.ErrConfiguration, err)
			}
			if apply {
				opts.Mode = autopilot.ModeApply
			}
			if cmd.Flags().Changed("with-tts") {
				opts.WithTTS = withTTS
			}
			if cmd.Flags().Changed("max-rooms") {
				opts.MaxRooms = maxRooms
			}
			if cmd.Flags().Changed("max-operations") {
				opts.MaxOperations = maxOperations
			}
			if pattern := strings.TrimSpace(roomPattern); pattern != "" {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return fmt.Errorf("%w: --rooms: %v", services.ErrValidation, err)
				}
				opts.RoomFilter = re
			}
			if opts.MaxRooms < 0 || opts.MaxOperations < 0 {
				return fmt.Errorf("%w: limits must not be negative", services.ErrValidation)
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				runner, err := autopilot.NewRunner(cfg, st, logger)
				if err != nil {
					return err
				}
				report, err := runner.Run(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, report.Result.Status)
				}
				renderRunReport(cmd, report, cfg.Governance.IntegrityThreshold)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Record approved repairs as applied")
	cmd.Flags().BoolVar(&withTTS, "with-tts", false, "Request TTS generation for missing files")
	cmd.Flags().StringVar(&roomPattern, "rooms", "", "Only process rooms whose id matches this regular expression")
	cmd.Flags().IntVar(&maxRooms, "max-rooms", 0, "Process at most this many rooms (0 = unlimited)")
	cmd.Flags().IntVar(&maxOperations, "max-operations", 0, "Keep at most this many operations (0 = unlimited)")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func renderRunReport(cmd *cobra.Command, report autopilot.RunReport, threshold int) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	st := report.Result.Status
	res := report.Result

	writeLines(out, renderSectionHeader("Autopilot Cycle", colorize)...)
	writeLines(out,
		renderKeyValue("Cycle", report.CycleID),
		renderKeyValue("Mode", st.Mode.String()),
		renderStatusLine("Outcome", outcomeKind(st.Outcome), st.Outcome.String(), colorize),
		renderStatusLine("Integrity", scoreKind(st.AfterIntegrity.AverageScore, threshold),
			fmt.Sprintf("%d -> %d", st.BeforeIntegrity.AverageScore, st.AfterIntegrity.AverageScore), colorize),
		renderKeyValue("Operations", fmt.Sprintf("%d (%d critical, %d auto, %d low confidence, %d blocked, %d cosmetic)",
			res.Changeset.Len(), len(res.Changeset.CriticalFixes), len(res.Changeset.AutoFixes),
			len(res.Changeset.LowConfidence), len(res.Changeset.Blocked), len(res.Changeset.Cosmetic))),
		renderKeyValue("Rooms touched", fmt.Sprintf("%d", st.RoomsTouched)),
		renderKeyValue("Changes applied", fmt.Sprintf("%d", st.ChangesApplied)),
		renderKeyValue("Queued for review", fmt.Sprintf("%d", len(res.Reviews))),
	)
	if len(st.GovernanceFlags) > 0 {
		writeLines(out, renderStatusLine("Governance flags", statusWarn, strings.Join(st.GovernanceFlags, ", "), colorize))
	}
	if res.Truncated > 0 {
		writeLines(out, renderStatusLine("Deferred", statusWarn, fmt.Sprintf("%d operations over the cap", res.Truncated), colorize))
	}
	writeLines(out,
		renderKeyValue("Report", report.ReportPath),
		renderKeyValue("Changeset", report.ChangesetPath),
		renderKeyValue("Cycle log", report.LogPath),
	)
}
