/*-------------------------------------------------------------------------
 *
 * workflow.go
 *    Proposal and decision commands for loanzaar-cli
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cli/cmd/workflow.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vivekray898/loanzaar-server/cli/pkg/client"
)

var (
	pendingCmd = &cobra.Command{
		Use:   "pending",
		Short: "List applications waiting for an admin decision",
		RunE:  listPending,
	}

	approveCmd = &cobra.Command{
		Use:   "approve [application-id]",
		Short: "Approve the pending status proposal",
		Args:  cobra.ExactArgs(1),
		RunE:  approveProposal,
	}

	rejectCmd = &cobra.Command{
		Use:   "reject [application-id]",
		Short: "Reject the pending status proposal",
		Args:  cobra.ExactArgs(1),
		RunE:  rejectProposal,
	}

	proposeCmd = &cobra.Command{
		Use:   "propose [application-id] [to-status]",
		Short: "Propose a status change as an agent",
		Args:  cobra.ExactArgs(2),
		RunE:  proposeTransition,
	}

	rejectReason string
)

func init() {
	rejectCmd.Flags().StringVarP(&rejectReason, "reason", "r", "", "Reason for the rejection")
	rejectCmd.MarkFlagRequired("reason")
}

func listPending(cmd *cobra.Command, args []string) error {
	apps, err := newClient().ListPending()
	if err != nil {
		return fmt.Errorf("failed to list pending applications: %w", err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(apps)
	}

	if len(apps) == 0 {
		fmt.Println("No applications pending approval")
		return nil
	}

	fmt.Println("\nPending approval:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, app := range apps {
		proposed := "?"
		if app.ProposedStatus != nil {
			proposed = *app.ProposedStatus
		}
		fmt.Printf("  %-36s %s\n", app.ID, app.BorrowerName)
		fmt.Printf("    Loan: %s, Proposed: %s\n", app.LoanType, proposed)
	}
	return nil
}

func approveProposal(cmd *cobra.Command, args []string) error {
	app, err := newClient().Resolve(args[0], "approve", "")
	if err != nil {
		return fmt.Errorf("failed to approve proposal: %w", err)
	}
	return printApplication(app, "Approved")
}

func rejectProposal(cmd *cobra.Command, args []string) error {
	app, err := newClient().Resolve(args[0], "reject", rejectReason)
	if err != nil {
		return fmt.Errorf("failed to reject proposal: %w", err)
	}
	return printApplication(app, "Rejected")
}

func proposeTransition(cmd *cobra.Command, args []string) error {
	app, err := newClient().Propose(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to propose transition: %w", err)
	}
	return printApplication(app, "Proposal submitted")
}

func printApplication(app *client.Application, heading string) error {
	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(app)
	}

	fmt.Printf("%s: %s\n", heading, app.ID)
	fmt.Printf("  Borrower: %s\n", app.BorrowerName)
	fmt.Printf("  Status:   %s\n", app.Status)
	if app.ProposedStatus != nil {
		fmt.Printf("  Proposed: %s\n", *app.ProposedStatus)
	}
	if app.NeedsRevision && app.RejectionReason != nil {
		fmt.Printf("  Needs revision: %s\n", *app.RejectionReason)
	}
	return nil
}
