package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type insightsResponse struct {
	Stats         statsResponse `json:"stats"`
	PeakHour      int           `json:"peak_hour"`
	AvgConfidence float64       `json:"avg_confidence"`
	FlaggedRate   float64       `json:"flagged_rate"`
	ConfidenceTrend struct {
		PercentChange float64 `json:"percent_change"`
		Direction     string  `json:"direction"`
	} `json:"confidence_trend"`
	Timeline []struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	} `json:"timeline"`
	Recommendations []struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Action   string `json:"action"`
	} `json:"recommendations"`
}

func newInsightsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show analytics insights and recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ins insightsResponse
			if err := ctx.getJSON("/api/analytics/insights", &ins); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := [][]string{
				{"Avg confidence", fmt.Sprintf("%.1f", ins.AvgConfidence)},
				{"Confidence trend", fmt.Sprintf("%s (%.1f%%)", ins.ConfidenceTrend.Direction, ins.ConfidenceTrend.PercentChange)},
				{"Flagged rate", fmt.Sprintf("%.1f%%", ins.FlaggedRate)},
				{"Peak hour", fmt.Sprintf("%02d:00", ins.PeakHour)},
				{"Success rate", fmt.Sprintf("%.1f%%", ins.Stats.SuccessRate)},
			}
			fmt.Fprintln(out, renderTable([]string{"Insight", "Value"}, rows, 1))

			if len(ins.Recommendations) > 0 {
				recRows := make([][]string, 0, len(ins.Recommendations))
				for _, r := range ins.Recommendations {
					recRows = append(recRows, []string{strings.ToUpper(r.Severity), r.Message, r.Action})
				}
				fmt.Fprintln(out, renderTable([]string{"Severity", "Recommendation", "Action"}, recRows))
			}
			return nil
		},
	}
}
