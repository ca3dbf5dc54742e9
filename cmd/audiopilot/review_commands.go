package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audiopilot/internal/config"
	"audiopilot/internal/logging"
	"audiopilot/internal/services"
	"audiopilot/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Work the human review queue",
	}
	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewResolveCommand(ctx, "approve", store.ReviewApproved))
	reviewCmd.AddCommand(newReviewResolveCommand(ctx, "reject", store.ReviewRejected))
	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued review items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []store.ReviewStatus
			if value := strings.TrimSpace(statusFlag); value != "" && !strings.EqualFold(value, "all") {
				status, err := store.ParseReviewStatus(value)
				if err != nil {
					return services.Wrap(services.ErrValidation, "review", "list", err.Error(), nil)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := st.ListReviews(cmd.Context(), cfg.Library.ID, statuses...)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
					return nil
				}
				view := newTableView("ID", "Status", "Type", "Room", "Source", "Target", "Confidence", "Reason", "Queued").
					align(alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft)
				for _, item := range items {
					op := item.Operation
					view.add(op.ID, string(item.Status), op.Type.String(), op.RoomID,
						dashIfEmpty(op.Source), op.Target, fmt.Sprintf("%d", op.Confidence),
						item.Reason, logging.FormatTime(item.CreatedAt))
				}
				return view.write(cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "pending", "Filter by status: pending, approved, rejected, or all")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func newReviewResolveCommand(ctx *commandContext, verb string, status store.ReviewStatus) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   verb + " ID",
		Short: fmt.Sprintf("Mark a pending review item as %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				id, err := resolveReviewID(cmd, st, cfg.Library.ID, args[0])
				if err != nil {
					return err
				}
				item, err := st.ResolveReview(cmd.Context(), cfg.Library.ID, id, status, strings.TrimSpace(note))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Review %s %s (%s %s)\n",
					item.Operation.ID, item.Status, item.Operation.Type, item.Operation.Target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Note stored with the decision")
	return cmd
}

// resolveReviewID expands a unique id prefix to the full operation id.
func resolveReviewID(cmd *cobra.Command, st *store.Store, libraryID, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", services.Wrap(services.ErrValidation, "review", "resolve", "review id is required", nil)
	}
	items, err := st.ListReviews(cmd.Context(), libraryID)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, item := range items {
		if item.Operation.ID == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(item.Operation.ID, prefix) {
			matches = append(matches, item.Operation.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("review %q: %w", prefix, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", services.Wrap(services.ErrValidation, "review", "resolve",
			fmt.Sprintf("id prefix %q matches %d reviews", prefix, len(matches)), nil)
	}
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
