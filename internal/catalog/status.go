/*-------------------------------------------------------------------------
 *
 * status.go
 *    Application status catalog
 *
 * Defines the fixed vocabulary of loan application statuses and the set
 * of statuses a field agent may propose.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/catalog/status.go
 *
 *-------------------------------------------------------------------------
 */

package catalog

/* Status is a loan application review status */
type Status string

const (
	StatusNew                  Status = "new"
	StatusContacted            Status = "contacted"
	StatusDocsCollected        Status = "docs_collected"
	StatusEligible             Status = "eligible"
	StatusRejected             Status = "rejected"
	StatusRecommended          Status = "recommended"
	StatusPendingAdminApproval Status = "pending_admin_approval"
	StatusApproved             Status = "approved"
)

var validStatuses = map[Status]bool{
	StatusNew:                  true,
	StatusContacted:            true,
	StatusDocsCollected:        true,
	StatusEligible:             true,
	StatusRejected:             true,
	StatusRecommended:          true,
	StatusPendingAdminApproval: true,
	StatusApproved:             true,
}

/* agentProposalTargets lists the statuses an agent may propose.
 * pending_admin_approval is a meta-status entered only by the state
 * machine itself and is never a legal proposal target. */
var agentProposalTargets = map[Status]bool{
	StatusContacted:     true,
	StatusDocsCollected: true,
	StatusEligible:      true,
	StatusRejected:      true,
	StatusRecommended:   true,
}

/* String returns the string representation of the status */
func (s Status) String() string {
	return string(s)
}

/* IsValid returns true if the status is part of the catalog */
func (s Status) IsValid() bool {
	return validStatuses[s]
}

/* IsProposalTarget returns true if an agent may propose this status */
func (s Status) IsProposalTarget() bool {
	return agentProposalTargets[s]
}

/* IsLegalProposal reports whether an agent may propose the transition
 * from one status to another. No proposal is legal while a prior
 * proposal is awaiting admin review. */
func IsLegalProposal(from, to Status) bool {
	if from == StatusPendingAdminApproval {
		return false
	}
	return agentProposalTargets[to]
}

/* ProposalTargets returns the proposal vocabulary in stable order */
func ProposalTargets() []Status {
	return []Status{
		StatusContacted,
		StatusDocsCollected,
		StatusEligible,
		StatusRejected,
		StatusRecommended,
	}
}
