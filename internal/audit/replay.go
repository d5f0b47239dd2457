/*-------------------------------------------------------------------------
 *
 * replay.go
 *    Transition log replay
 *
 * Reconstructs an application's current status and workflow state by
 * folding its append-only transition log from the initial status. The
 * log is authoritative: replay must reproduce the stored record
 * exactly, which VerifyReplay checks.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/audit/replay.go
 *
 *-------------------------------------------------------------------------
 */

package audit

import (
	"fmt"

	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

/* Replay folds a transition log, ascending by creation time, into the
 * status and workflow state it produces starting from new. */
func Replay(entries []db.StatusTransition) (catalog.Status, workflow.State, error) {
	status := catalog.StatusNew
	state := workflow.Idle()

	for i, entry := range entries {
		switch entry.Action {
		case db.ActionProposed:
			if entry.FromStatus != status {
				return "", workflow.State{}, fmt.Errorf("entry %d: proposed from %s but replayed status is %s", i, entry.FromStatus, status)
			}
			status = catalog.StatusPendingAdminApproval
			state = workflow.PendingApproval(entry.ToStatus)

		case db.ActionApproved:
			if status != catalog.StatusPendingAdminApproval {
				return "", workflow.State{}, fmt.Errorf("entry %d: approved but replayed status is %s", i, status)
			}
			status = entry.ToStatus
			state = workflow.Idle()

		case db.ActionRejected:
			if status != catalog.StatusPendingAdminApproval {
				return "", workflow.State{}, fmt.Errorf("entry %d: rejected but replayed status is %s", i, status)
			}
			reason := ""
			if entry.Reason != nil {
				reason = *entry.Reason
			}
			status = entry.ToStatus
			state = workflow.NeedsRevision(reason)

		default:
			return "", workflow.State{}, fmt.Errorf("entry %d: unknown action %q", i, entry.Action)
		}
	}

	return status, state, nil
}

/* VerifyReplay checks that replaying the transition log reproduces the
 * stored application record. */
func VerifyReplay(app *db.Application, entries []db.StatusTransition) error {
	status, state, err := Replay(entries)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if status != app.Status {
		return fmt.Errorf("replayed status %s does not match stored status %s", status, app.Status)
	}
	if got := workflow.StateOf(app); got != state {
		return fmt.Errorf("replayed workflow state %+v does not match stored state %+v", state, got)
	}
	return nil
}
