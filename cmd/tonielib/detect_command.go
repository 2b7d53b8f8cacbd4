package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tonielib/internal/setup"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Inspect the mounted data volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := strings.TrimSpace(rootFlag)
			if root == "" {
				root = setup.DefaultDataRoot
			}
			detection := setup.Detector{Root: root}.Detect()
			if ctx.jsonOutput() {
				return writeJSON(cmd, detection)
			}

			rows := [][]string{
				{"Volume available", yesNo(detection.VolumeAvailable)},
				{"Volume path", detection.VolumePath},
				{"TAF files", strconv.Itoa(detection.TAFFilesFound)},
				{"Custom tonies", strconv.Itoa(detection.ToniesFound)},
				{"Image paths", strings.Join(detection.ImagePaths, "\n")},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Data volume root to inspect (defaults to /data)")
	return cmd
}
