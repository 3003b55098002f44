package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type statsResponse struct {
	Total             int     `json:"total"`
	Verified          int     `json:"verified"`
	Flagged           int     `json:"flagged"`
	Failed            int     `json:"failed"`
	Pending           int     `json:"pending"`
	SuccessRate       float64 `json:"success_rate"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show headline verification counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats statsResponse
			if err := ctx.getJSON("/api/analytics", &stats); err != nil {
				return err
			}

			rows := [][]string{
				{"Total", strconv.Itoa(stats.Total)},
				{"Verified", strconv.Itoa(stats.Verified)},
				{"Flagged", strconv.Itoa(stats.Flagged)},
				{"Failed", strconv.Itoa(stats.Failed)},
				{"Pending", strconv.Itoa(stats.Pending)},
				{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate)},
				{"Avg processing", fmt.Sprintf("%.2fs", stats.AvgProcessingTime)},
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Metric", "Value"}, rows, 1))
			return nil
		},
	}
}
