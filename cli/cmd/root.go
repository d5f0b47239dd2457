/*-------------------------------------------------------------------------
 *
 * root.go
 *    Root command and global flags for loanzaar-cli
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cli/cmd/root.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vivekray898/loanzaar-server/cli/pkg/client"
)

var (
	apiURL       string
	apiToken     string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "loanzaar-cli",
	Short: "Loanzaar CLI - loan application workflow operations",
	Long: `Loanzaar CLI provides commands for reviewing and deciding loan
application status changes.

Examples:
  # List applications waiting for an admin decision
  loanzaar-cli pending

  # Approve the pending proposal on an application
  loanzaar-cli approve 4f1c9a2e-...

  # Reject the pending proposal with a reason
  loanzaar-cli reject 4f1c9a2e-... --reason "income proof missing"

  # Propose a status change as an agent
  loanzaar-cli propose 4f1c9a2e-... eligible

  # Add a remark
  loanzaar-cli remark 4f1c9a2e-... "borrower will resubmit documents"

  # Show the full transition history
  loanzaar-cli history 4f1c9a2e-...
`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnvOrDefault("LOANZAAR_URL", "http://localhost:8090"), "Loanzaar API URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", getEnvOrDefault("LOANZAAR_TOKEN", ""), "Bearer token (required)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(remarkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newClient() *client.Client {
	return client.NewClient(apiURL, apiToken)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
