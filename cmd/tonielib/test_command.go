package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tonielib/internal/setup"
)

func newTestConnectionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection [url]",
		Short: "Probe a TeddyCloud server",
		Long:  "Probe a TeddyCloud server for reachability and list its Tonieboxes. Without an argument the configured URL is probed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var url string
			if len(args) == 1 {
				url = strings.TrimSpace(args[0])
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				url = cfg.TeddyCloud.URL
			}
			if url == "" {
				return errors.New("no URL given and none configured")
			}

			result := setup.Probe(cmd.Context(), url, setup.TestProbeTimeout)
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.Success {
				fmt.Fprintf(out, "Connection to %s failed: %s\n", url, result.Error)
				return nil
			}

			fmt.Fprintf(out, "Connection to %s succeeded.\n", url)
			if len(result.Boxes) == 0 {
				fmt.Fprintln(out, "No Tonieboxes registered.")
				return nil
			}
			rows := make([][]string, 0, len(result.Boxes))
			for _, box := range result.Boxes {
				rows = append(rows, []string{box.ID, box.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name"}, rows, nil))
			return nil
		},
	}
}
