package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard counters and top viewed content",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.readServices(cmd.Context())
			if err != nil {
				return err
			}

			stats, _, err := svc.dashboard.Stats(cmd.Context(), operatorActor)
			if err != nil {
				return err
			}
			t := stats.Totals
			counters := [][]string{
				{"content requests", strconv.Itoa(t.TotalRequests)},
				{"pending requests", strconv.Itoa(t.PendingRequests)},
				{"content", strconv.Itoa(t.TotalContent)},
				{"featured content", strconv.Itoa(t.FeaturedContent)},
				{"bugs", strconv.Itoa(t.TotalBugs)},
				{"open bugs", strconv.Itoa(t.OpenBugs)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, counters, []columnAlignment{alignLeft, alignRight}))

			summary, _, err := svc.viewership.Stats(cmd.Context(), operatorActor)
			if err != nil {
				return err
			}
			rows := make([][]string, len(summary.TopContent))
			for i, c := range summary.TopContent {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					c.Content.Name,
					strconv.Itoa(c.Views),
					strconv.Itoa(c.WatchTime),
					strconv.FormatFloat(c.CompletionRate, 'f', 1, 64),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Content", "Views", "Watch time", "Completion %"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "total views %d, unique viewers %d\n", summary.TotalViews, summary.UniqueViewers)
			return nil
		},
	}
}
