package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the verification records workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client.Get(ctx.url("/api/export"))
			if err != nil {
				return fmt.Errorf("reach verifyd at %s: %w", ctx.serverURL, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}

			if output == "" {
				output = fmt.Sprintf("verifications-%s.xlsx", time.Now().Format("2006-01-02"))
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := io.Copy(f, resp.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	return cmd
}
