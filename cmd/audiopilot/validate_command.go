package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audiopilot/internal/autopilot"
	"audiopilot/internal/matcher"
	"audiopilot/internal/naming"
	"audiopilot/internal/room"
	"audiopilot/internal/services"
	"audiopilot/internal/snapshot"
	"audiopilot/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		roomID     string
		entrySlug  string
		duplicates bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate filenames against the naming rules",
		Long: "Check filenames against the canonical naming rules. With --room the names are also\n" +
			"checked against the room's entries and the files already stored for it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(roomID) == "" {
				if entrySlug != "" {
					return fmt.Errorf("%w: --entry requires --room", services.ErrValidation)
				}
				batch := validation.BatchValidate(args)
				var groups []validation.DuplicateGroup
				if duplicates {
					groups = validation.DetectDuplicates(args)
				}
				if jsonOut {
					if duplicates {
						return writeJSON(cmd, map[string]any{"validation": batch, "duplicates": groups})
					}
					return writeJSON(cmd, batch)
				}
				view := newTableView("File", "Valid", "Severity", "Violations")
				for _, res := range batch.Results {
					view.add(res.Filename, yesNo(res.IsValid), res.Severity.String(), strings.Join(res.Violations, "; "))
				}
				if err := view.write(cmd.OutOrStdout()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d files: %d valid, %d warnings, %d critical\n",
					batch.Summary.Total, batch.Summary.Valid, batch.Summary.Warnings, batch.Summary.Critical)
				for _, group := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "duplicate %s: %s (keep %s)\n",
						group.Normalized, strings.Join(group.Files, ", "), group.Keep)
				}
				return validationError(batch.Summary.Total - batch.Summary.Valid)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := ctx.loadSnapshot(cmd.Context(), nil)
			if err != nil {
				return err
			}
			r, err := findRoom(snap, roomID)
			if err != nil {
				return err
			}
			slugs := make([]string, 0, len(r.Entries))
			for _, id := range r.Identities() {
				slugs = append(slugs, id.Token())
			}
			var siblings []string
			for _, f := range snap.Storage {
				if naming.HasRoomPrefix(f, r.ID) {
					siblings = append(siblings, f)
				}
			}

			policy := autopilot.PoliciesFromConfig(cfg).Validation
			if slug := strings.TrimSpace(entrySlug); slug != "" {
				return writeCanonicalChecks(cmd, args, r.ID, slug, policy, jsonOut)
			}
			results := make([]validation.RoomResult, 0, len(args))
			invalid := 0
			for _, name := range args {
				res := validation.ValidateWithRoomContext(name, r.ID, slugs, siblings, policy)
				if !res.IsValid {
					invalid++
				}
				results = append(results, res)
			}
			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
				return validationError(invalid)
			}
			view := newTableView("File", "Valid", "Confidence", "Suggestion", "Violations").
				align(alignLeft, alignLeft, alignRight, alignLeft, alignLeft)
			for _, res := range results {
				suggestion := res.ExpectedCanonicalName
				if suggestion == "" && res.SuggestedSlug != "" {
					suggestion = "slug " + res.SuggestedSlug
				}
				if res.DuplicateOf != "" {
					suggestion = "duplicate of " + res.DuplicateOf
				}
				view.add(res.Filename, yesNo(res.IsValid), fmt.Sprintf("%d%%", res.ConfidenceScore), suggestion, strings.Join(res.Violations, "; "))
			}
			if err := view.write(cmd.OutOrStdout()); err != nil {
				return err
			}
			return validationError(invalid)
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Validate in the context of this room")
	cmd.Flags().StringVar(&entrySlug, "entry", "", "Check against the canonical name of this entry (requires --room)")
	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "Also report names that normalize identically")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func writeCanonicalChecks(cmd *cobra.Command, files []string, roomID, slug string, policy validation.Policy, jsonOut bool) error {
	checks := make([]validation.CanonicalCheck, 0, len(files))
	invalid := 0
	for _, name := range files {
		check := validation.CheckCanonical(name, roomID, slug, policy)
		if !check.IsValid {
			invalid++
		}
		checks = append(checks, check)
	}
	if jsonOut {
		if err := writeJSON(cmd, checks); err != nil {
			return err
		}
		return validationError(invalid)
	}
	view := newTableView("File", "Valid", "Confidence", "Auto-repair", "Canonical", "Violations").
		align(alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft)
	for i, check := range checks {
		canonical := check.Canonical.EN
		if lang, ok := naming.ExtractLanguage(files[i]); ok {
			canonical = check.Canonical.For(lang)
		}
		view.add(files[i], yesNo(check.IsValid), fmt.Sprintf("%d%%", check.Confidence),
			yesNo(check.AutoRepairable), canonical, strings.Join(check.Violations, "; "))
	}
	if err := view.write(cmd.OutOrStdout()); err != nil {
		return err
	}
	return validationError(invalid)
}

func validationError(invalid int) error {
	if invalid == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d filename(s) failed validation", services.ErrValidation, invalid)
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		roomID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "match FILE",
		Short: "Match a filename to a room entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := ctx.loadSnapshot(cmd.Context(), nil)
			if err != nil {
				return err
			}
			r, err := findRoom(snap, roomID)
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			m := matcher.New(autopilot.PoliciesFromConfig(cfg).Matcher, logger)
			result := m.Match(args[0], r.ID, r.Identities())
			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind := statusOK
			if result.RequiresHumanReview {
				kind = statusWarn
			}
			if !result.Matched() {
				kind = statusError
			}
			lines := []string{
				renderKeyValue("File", result.Filename),
				renderKeyValue("Room", r.ID),
				renderStatusLine("Match", kind, fmt.Sprintf("%s (%d%%)", result.MatchType, result.Confidence), colorize),
			}
			if result.MatchedEntry != nil {
				lines = append(lines, renderKeyValue("Entry", fmt.Sprintf("%s (index %d)", result.MatchedEntry.Token, result.MatchedEntry.Index)))
			}
			if result.SuggestedCanonical != "" {
				lines = append(lines, renderKeyValue("Canonical", result.SuggestedCanonical))
			}
			lines = append(lines, renderKeyValue("Needs review", yesNo(result.RequiresHumanReview)))
			writeLines(out, lines...)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Room to match against (required)")
	_ = cmd.MarkFlagRequired("room")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func newConsistencyCommand(ctx *commandContext) *cobra.Command {
	var (
		roomID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Show which stored files each room entry claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := ctx.loadSnapshot(cmd.Context(), nil)
			if err != nil {
				return err
			}
			r, err := findRoom(snap, roomID)
			if err != nil {
				return err
			}
			var siblings []string
			for _, f := range snap.Storage {
				if naming.HasRoomPrefix(f, r.ID) {
					siblings = append(siblings, f)
				}
			}
			m := matcher.New(autopilot.PoliciesFromConfig(cfg).Matcher, nil)
			result := m.RoomConsistency(r.ID, r.Identities(), siblings)
			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			view := newTableView("Entry", "EN", "VI").align(alignRight, alignLeft, alignLeft)
			for _, e := range result.Entries {
				view.add(fmt.Sprintf("%d", e.Index), dashIfEmpty(e.EN), dashIfEmpty(e.VI))
			}
			if err := view.write(out); err != nil {
				return err
			}
			colorize := shouldColorize(out)
			kind := statusOK
			if len(result.MissingEntries) > 0 {
				kind = statusWarn
			}
			writeLines(out,
				renderStatusLine("Incomplete entries", kind, fmt.Sprintf("%d of %d", len(result.MissingEntries), len(result.Entries)), colorize),
				renderKeyValue("Unmatched files", fmt.Sprintf("%d", len(result.Unmatched))),
			)
			for _, f := range result.Unmatched {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Room to inspect (required)")
	_ = cmd.MarkFlagRequired("room")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func findRoom(snap snapshot.Snapshot, roomID string) (room.Room, error) {
	want := naming.NormalizeRoomID(roomID)
	for _, r := range snap.Rooms {
		if r.ID == roomID || naming.NormalizeRoomID(r.ID) == want {
			return r, nil
		}
	}
	return room.Room{}, fmt.Errorf("%w: room %q", services.ErrNotFound, roomID)
}
