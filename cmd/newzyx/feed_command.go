package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"newzyx/internal/config"
	"newzyx/internal/feed"
	"newzyx/internal/fileutil"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		days       int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Export recent episodes as a podcast RSS feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver, cat, _ := ctx.services()
			episodes, err := cat.Episodes()
			if err != nil {
				return fmt.Errorf("list episodes: %w", err)
			}
			if days <= 0 {
				days = cfg.Feed.ScanDays
			}
			if len(episodes) > days {
				episodes = episodes[:days]
			}
			entries := feed.Collect(cmd.Context(), resolver, episodes, cfg.Source.ProbeConcurrency, ctx.log())
			opts := feed.Options{
				Title:       cfg.Feed.Title,
				Link:        cfg.FeedLink(),
				Description: cfg.Feed.Description,
			}

			target := strings.TrimSpace(outputPath)
			if target == "" || target == "-" {
				return feed.Write(cmd.OutOrStdout(), opts, entries)
			}
			return writeFeedFile(target, opts, entries, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the feed to this file instead of stdout")
	cmd.Flags().IntVar(&days, "days", 0, "Number of recent days to include (default feed.scan_days)")
	return cmd
}

func writeFeedFile(target string, opts feed.Options, entries []feed.Entry, out io.Writer) error {
	path, err := config.ExpandPath(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	err = fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return feed.Write(w, opts, entries)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d episode(s) to %s\n", len(entries), path)
	return nil
}
