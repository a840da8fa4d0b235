package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"newzyx/internal/api"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List the episode window, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, svc := ctx.services()
			resp, err := svc.List()
			if err != nil {
				return fmt.Errorf("list episodes: %w", err)
			}
			if limit > 0 && len(resp.Episodes) > limit {
				resp.Episodes = resp.Episodes[:limit]
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			rows := make([][]string, 0, len(resp.Episodes))
			for i, ep := range resp.Episodes {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					ep.MonthBadge + " " + ep.DayBadge,
					ep.ID,
					ep.LongDate,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{numCol("#"), col("Badge"), col("ID"), col("Date")},
				rows,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many episodes")
	return cmd
}

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Find the newest episode with a published summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, svc := ctx.services()
			resp, err := svc.Latest(cmd.Context())
			if err != nil {
				return fmt.Errorf("find latest episode: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", resp.Episode.LongDate, resp.Episode.ID)
			if !resp.Confirmed {
				fmt.Fprintln(out, "No published summary found in the recent window; showing the newest date.")
			}
			fmt.Fprintf(out, "Summary: %s\n", resp.Episode.SummaryURL)
			fmt.Fprintf(out, "Podcast: %s\n", resp.Episode.PodcastURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "read <id|latest>",
		Short: "Print an episode's news summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := api.LatestID
			if len(args) == 1 {
				id = args[0]
			}
			_, _, svc := ctx.services()
			resp, err := svc.Summary(cmd.Context(), id)
			if asJSON && resp.Episode.ID != "" {
				if encErr := writeJSON(cmd, resp); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil && resp.Episode.ID == "" {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Episode.LongDate)
			if resp.Updated != "" {
				fmt.Fprintln(out, resp.Updated)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, resp.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "probe <id|latest>",
		Short: "Check whether an episode's summary and podcast exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, svc := ctx.services()
			resp, err := svc.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{col("Resource"), col("Available"), col("URL")},
				[][]string{
					{"Summary", yesNo(resp.Summary), resp.Episode.SummaryURL},
					{"Podcast", yesNo(resp.Podcast), resp.Episode.PodcastURL},
				},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
