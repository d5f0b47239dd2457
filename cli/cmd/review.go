/*-------------------------------------------------------------------------
 *
 * review.go
 *    Application inspection commands for loanzaar-cli
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cli/cmd/review.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	showCmd = &cobra.Command{
		Use:   "show [application-id]",
		Short: "Show an application with its pending proposal and remarks",
		Args:  cobra.ExactArgs(1),
		RunE:  showApplication,
	}

	historyCmd = &cobra.Command{
		Use:   "history [application-id]",
		Short: "Show the full transition history",
		Args:  cobra.ExactArgs(1),
		RunE:  showHistory,
	}

	remarkCmd = &cobra.Command{
		Use:   "remark [application-id] [text]",
		Short: "Add a remark to an application",
		Args:  cobra.MinimumNArgs(2),
		RunE:  addRemark,
	}
)

func showApplication(cmd *cobra.Command, args []string) error {
	view, err := newClient().GetView(args[0])
	if err != nil {
		return fmt.Errorf("failed to get application: %w", err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(view)
	}

	app := view.Application
	fmt.Printf("Application %s\n", app.ID)
	fmt.Printf("  Borrower: %s\n", app.BorrowerName)
	fmt.Printf("  Loan:     %s\n", app.LoanType)
	fmt.Printf("  Status:   %s\n", app.Status)
	if view.PendingProposal != nil {
		fmt.Printf("  Pending proposal: %s (by %s at %s)\n",
			view.PendingProposal.ProposedStatus,
			view.PendingProposal.ProposedBy,
			view.PendingProposal.ProposedAt)
	}
	if view.RejectionBanner != nil {
		fmt.Printf("  Needs revision: %s\n", view.RejectionBanner.Reason)
	}
	if len(view.Remarks) > 0 {
		fmt.Println("  Remarks:")
		for _, remark := range view.Remarks {
			fmt.Printf("    [%s] %s: %s\n", remark.CreatedAt, remark.AuthorRole, remark.Text)
		}
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	entries, err := newClient().History(args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No transitions recorded")
		return nil
	}

	fmt.Println("\nTransition history:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, entry := range entries {
		fmt.Printf("  [%s] %s by %s: %s -> %s\n",
			entry.CreatedAt, entry.Action, entry.ActorRole, entry.FromStatus, entry.ToStatus)
		if entry.Reason != nil {
			fmt.Printf("    Reason: %s\n", *entry.Reason)
		}
	}
	return nil
}

func addRemark(cmd *cobra.Command, args []string) error {
	text := strings.Join(args[1:], " ")
	remark, err := newClient().AddRemark(args[0], text)
	if err != nil {
		return fmt.Errorf("failed to add remark: %w", err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(remark)
	}

	fmt.Printf("Remark added: %s\n", remark.ID)
	return nil
}
