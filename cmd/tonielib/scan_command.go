package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tonielib/internal/library"
	"tonielib/internal/logging"
	"tonielib/internal/tafcache"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the library volume for Tonie audio files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var cache *tafcache.Store
			if cfg.Advanced.CacheTAFMetadata && !noCache {
				ttl := time.Duration(cfg.Advanced.CacheTTLSeconds) * time.Second
				cachePath := filepath.Join(filepath.Dir(ctx.configPathArg()), "taf_metadata.db")
				cache, err = tafcache.Open(cachePath, ttl)
				if err != nil {
					return fmt.Errorf("open metadata cache: %w", err)
				}
				defer cache.Close()
			}

			scanner := library.NewScanner(cfg, cache, logging.NewNop())
			result, err := scanner.Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan library: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if len(result.Items) == 0 {
				fmt.Fprintf(out, "No TAF files found under %s\n", result.Root)
				return nil
			}

			rows := make([][]string, 0, len(result.Items))
			for _, item := range result.Items {
				rel, relErr := filepath.Rel(result.Root, item.Path)
				if relErr != nil {
					rel = item.Path
				}
				rows = append(rows, []string{
					rel,
					strconv.Itoa(item.TrackCount),
					item.EncodedAt.Format("2006-01-02"),
					formatSize(item.Size),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Tracks", "Encoded", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d files, %d unreadable, %d from cache\n",
				len(result.Items), result.Failed, result.CacheHits)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Parse every file even when the metadata cache is enabled")
	return cmd
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
