// verifyctl is the operator CLI for the verification pipeline. It talks to a
// running verifyd over its HTTP API.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type commandContext struct {
	serverURL string
	client    *http.Client
}

func main() {
	ctx := &commandContext{
		client: &http.Client{Timeout: 30 * time.Second},
	}

	root := &cobra.Command{
		Use:           "verifyctl",
		Short:         "Operate the ID verification pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ctx.serverURL, "server",
		envOr("VERIFYD_URL", "http://localhost:8080"), "verifyd base URL")

	root.AddCommand(
		newStatsCommand(ctx),
		newInsightsCommand(ctx),
		newRecordsCommand(ctx),
		newWorkerCommand(ctx),
		newExportCommand(ctx),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
