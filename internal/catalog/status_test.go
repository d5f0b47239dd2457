/*-------------------------------------------------------------------------
 *
 * status_test.go
 *    Tests for the application status catalog
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/catalog/status_test.go
 *
 *-------------------------------------------------------------------------
 */

package catalog

import "testing"

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{
		StatusNew, StatusContacted, StatusDocsCollected, StatusEligible,
		StatusRejected, StatusRecommended, StatusPendingAdminApproval, StatusApproved,
	} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	for _, s := range []Status{"", "unknown", "PENDING", "Contacted"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsLegalProposal(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		to    Status
		legal bool
	}{
		{"new to contacted", StatusNew, StatusContacted, true},
		{"contacted to eligible", StatusContacted, StatusEligible, true},
		{"docs_collected to recommended", StatusDocsCollected, StatusRecommended, true},
		{"eligible to rejected", StatusEligible, StatusRejected, true},
		{"rejected back to contacted", StatusRejected, StatusContacted, true},
		{"approved to recommended", StatusApproved, StatusRecommended, true},
		{"pending meta-status is never a target", StatusNew, StatusPendingAdminApproval, false},
		{"approved is never an agent target", StatusEligible, StatusApproved, false},
		{"new is never an agent target", StatusContacted, StatusNew, false},
		{"nothing legal while pending", StatusPendingAdminApproval, StatusEligible, false},
		{"pending to pending", StatusPendingAdminApproval, StatusPendingAdminApproval, false},
		{"unknown target", StatusNew, Status("escalated"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLegalProposal(tt.from, tt.to); got != tt.legal {
				t.Errorf("IsLegalProposal(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.legal)
			}
		})
	}
}

func TestProposalTargets(t *testing.T) {
	targets := ProposalTargets()
	if len(targets) != 5 {
		t.Fatalf("expected 5 proposal targets, got %d", len(targets))
	}
	for _, s := range targets {
		if !s.IsProposalTarget() {
			t.Errorf("expected %s to be a proposal target", s)
		}
		if !IsLegalProposal(StatusNew, s) {
			t.Errorf("expected %s to be proposable from new", s)
		}
	}
}
