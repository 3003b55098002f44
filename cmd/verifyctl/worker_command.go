package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	worker := &cobra.Command{
		Use:   "worker",
		Short: "Control the recognition worker",
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Trigger one recognition pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res struct {
				Processed bool   `json:"processed"`
				RecordID  string `json:"record_id"`
				OCRStatus string `json:"ocr_status"`
			}
			if err := ctx.postJSON("/api/worker/run", &res); err != nil {
				return err
			}
			if !res.Processed {
				fmt.Fprintln(cmd.OutOrStdout(), "No records awaiting recognition.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %s (recognition %s)\n", res.RecordID, res.OCRStatus)
			return nil
		},
	}

	worker.AddCommand(run)
	return worker
}
