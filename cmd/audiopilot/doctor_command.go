package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiopilot/internal/preflight"
	"audiopilot/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, storage, the cycle lock, and the state database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				writeLines(out, renderSectionHeader("Preflight", colorize)...)
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					writeLines(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
			}
			if !preflight.Passed(results) {
				failed := 0
				for _, result := range results {
					if !result.Passed {
						failed++
					}
				}
				return services.Wrap(services.ErrConfiguration, "doctor", "preflight",
					fmt.Sprintf("%d check(s) failed", failed), nil)
			}
			return nil
		},
	}
	addJSONFlag(cmd, &jsonOut)
	return cmd
}
