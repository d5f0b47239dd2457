/*-------------------------------------------------------------------------
 *
 * state.go
 *    Workflow state variant for loan applications
 *
 * Models the in-flight workflow state as a tagged variant instead of an
 * open metadata bag: an application is idle, awaiting admin approval of
 * a proposed status, or flagged for revision after a rejection.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/workflow/state.go
 *
 *-------------------------------------------------------------------------
 */

package workflow

import (
	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
)

/* StateKind discriminates the workflow state variant */
type StateKind string

const (
	StateIdle            StateKind = "idle"
	StatePendingApproval StateKind = "pending_approval"
	StateNeedsRevision   StateKind = "needs_revision"
)

/* State is the workflow state attached to an application.
 * ProposedStatus is set only for StatePendingApproval; Reason only for
 * StateNeedsRevision. */
type State struct {
	Kind           StateKind
	ProposedStatus catalog.Status
	Reason         string
}

/* Idle returns the idle workflow state */
func Idle() State {
	return State{Kind: StateIdle}
}

/* PendingApproval returns the state awaiting admin review of a proposal */
func PendingApproval(proposed catalog.Status) State {
	return State{Kind: StatePendingApproval, ProposedStatus: proposed}
}

/* NeedsRevision returns the state after an admin rejection */
func NeedsRevision(reason string) State {
	return State{Kind: StateNeedsRevision, Reason: reason}
}

/* StateOf derives the workflow state variant from an application record */
func StateOf(app *db.Application) State {
	switch {
	case app.Status == catalog.StatusPendingAdminApproval && app.ProposedStatus != nil:
		return PendingApproval(catalog.Status(*app.ProposedStatus))
	case app.NeedsRevision:
		reason := ""
		if app.RejectionReason != nil {
			reason = *app.RejectionReason
		}
		return NeedsRevision(reason)
	default:
		return Idle()
	}
}

/* applyTo writes the workflow state columns of an application record */
func (s State) applyTo(app *db.Application) {
	switch s.Kind {
	case StatePendingApproval:
		proposed := s.ProposedStatus.String()
		app.ProposedStatus = &proposed
		app.NeedsRevision = false
		app.RejectionReason = nil
	case StateNeedsRevision:
		reason := s.Reason
		app.ProposedStatus = nil
		app.NeedsRevision = true
		app.RejectionReason = &reason
	default:
		app.ProposedStatus = nil
		app.NeedsRevision = false
		app.RejectionReason = nil
	}
}
