package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonielib/internal/setup"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether first-run setup is required",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := setup.Evaluate(cmd.Context(), ctx.configPathArg())
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}

			rows := [][]string{
				{"Config file", ctx.configPathArg()},
				{"Setup required", yesNo(status.SetupRequired)},
			}
			if status.Reason != "" {
				rows = append(rows, []string{"Reason", status.Reason})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
