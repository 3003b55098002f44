package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type recordResponse struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	ConfidenceScore    *int      `json:"confidence_score"`
	DetectedIDType     *string   `json:"detected_id_type"`
	DetectedIDNumber   *string   `json:"detected_id_number"`
	DetectedHolderName *string   `json:"detected_holder_name"`
	OCRStatus          string    `json:"ocr_status"`
	CreatedAt          time.Time `json:"created_at"`
}

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var (
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List verification records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/verifications?limit=%d", limit)
			if status != "" {
				path += "&status=" + status
			}
			var resp struct {
				Verifications []recordResponse `json:"verifications"`
				Count         int              `json:"count"`
			}
			if err := ctx.getJSON(path, &resp); err != nil {
				return err
			}

			rows := make([][]string, 0, len(resp.Verifications))
			for _, v := range resp.Verifications {
				rows = append(rows, []string{
					v.ID,
					v.CreatedAt.Local().Format("2006-01-02 15:04"),
					v.Status,
					orDash(intStr(v.ConfidenceScore)),
					orDash(strVal(v.DetectedIDType)),
					orDash(strVal(v.DetectedHolderName)),
					v.OCRStatus,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Created", "Status", "Conf", "Type", "Holder", "Recognition"},
				rows, 3,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", resp.Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to list")
	return cmd
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intStr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
