/*-------------------------------------------------------------------------
 *
 * engine.go
 *    Approval state machine for loan applications
 *
 * Validates and applies agent-proposed status transitions, holds them
 * pending admin review, and resolves them on admin decision. Every
 * successful call writes exactly one transition log entry in the same
 * atomic unit as the status change.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/workflow/engine.go
 *
 *-------------------------------------------------------------------------
 */

package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/metrics"
)

/* Decision is an admin's resolution of a pending proposal */
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

/* Store is the persistence contract the engine runs against.
 * TransitionApplication must apply the status change and append the
 * transition log entry atomically, guarded by a compare-and-set on the
 * expected current status, returning db.ErrConflict on a lost race. */
type Store interface {
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*db.Application, error)
	TransitionApplication(ctx context.Context, app *db.Application, expected catalog.Status, entry *db.StatusTransition) error
	ListTransitions(ctx context.Context, appID uuid.UUID) ([]db.StatusTransition, error)
	LatestProposedTransition(ctx context.Context, appID uuid.UUID) (*db.StatusTransition, error)
	InsertRemark(ctx context.Context, remark *db.Remark) error
	ListRemarks(ctx context.Context, appID uuid.UUID) ([]db.Remark, error)
}

/* Notifier receives a notification after every successful mutation */
type Notifier interface {
	ApplicationChanged(ctx context.Context, appID uuid.UUID)
}

/* NopNotifier discards notifications */
type NopNotifier struct{}

func (NopNotifier) ApplicationChanged(ctx context.Context, appID uuid.UUID) {}

/* Engine is the approval state machine */
type Engine struct {
	store    Store
	notifier Notifier
}

/* NewEngine creates a new approval state machine */
func NewEngine(store Store, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{store: store, notifier: notifier}
}

/* ProposeTransition records an agent's proposed status change and holds
 * it pending admin approval. Only the assigned agent may propose, the
 * target must be a legal proposal value, and no second proposal can be
 * queued while one is outstanding. */
func (e *Engine) ProposeTransition(ctx context.Context, appID uuid.UUID, actor *auth.Actor, toStatus catalog.Status) (*db.Application, error) {
	if actor == nil || actor.Role != auth.RoleAgent {
		return nil, ErrUnauthorized
	}

	app, err := e.getApplication(ctx, appID)
	if err != nil {
		return nil, err
	}

	if app.AssignedAgentID == nil || *app.AssignedAgentID != actor.ID {
		return nil, ErrUnauthorized
	}

	if app.Status == catalog.StatusPendingAdminApproval {
		return nil, ErrProposalAlreadyPending
	}
	if !catalog.IsLegalProposal(app.Status, toStatus) {
		return nil, fmt.Errorf("%w: %s is not a legal proposal target", ErrIllegalTransition, toStatus)
	}

	fromStatus := app.Status
	app.Status = catalog.StatusPendingAdminApproval
	PendingApproval(toStatus).applyTo(app)

	entry := &db.StatusTransition{
		ApplicationID: app.ID,
		ActorID:       actor.ID,
		ActorRole:     actor.Role.String(),
		Action:        db.ActionProposed,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
	}

	err = e.store.TransitionApplication(ctx, app, fromStatus, entry)
	metrics.RecordProposal(toStatus.String(), err)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrProposalAlreadyPending
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	metrics.InfoWithContext(ctx, "Status transition proposed", map[string]interface{}{
		"application_id": app.ID.String(),
		"actor_id":       actor.ID.String(),
		"from_status":    fromStatus.String(),
		"to_status":      toStatus.String(),
	})

	e.notifier.ApplicationChanged(ctx, app.ID)
	return app, nil
}

/* ResolveProposal applies an admin's decision to a pending proposal.
 * Approval promotes the application to the proposed status; rejection
 * restores the status held before the proposal and flags the
 * application for revision with the given reason. The prior status is
 * recovered from the transition log, which is authoritative. */
func (e *Engine) ResolveProposal(ctx context.Context, appID uuid.UUID, actor *auth.Actor, decision Decision, reason string) (*db.Application, error) {
	if actor == nil || actor.Role != auth.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrIllegalTransition, decision)
	}

	reason = strings.TrimSpace(reason)
	if decision == DecisionReject && reason == "" {
		return nil, ErrMissingReason
	}

	app, err := e.getApplication(ctx, appID)
	if err != nil {
		return nil, err
	}

	if app.Status != catalog.StatusPendingAdminApproval || app.ProposedStatus == nil {
		return nil, ErrNoPendingProposal
	}
	proposed := catalog.Status(*app.ProposedStatus)

	entry := &db.StatusTransition{
		ApplicationID: app.ID,
		ActorID:       actor.ID,
		ActorRole:     actor.Role.String(),
		FromStatus:    catalog.StatusPendingAdminApproval,
	}

	switch decision {
	case DecisionApprove:
		entry.Action = db.ActionApproved
		entry.ToStatus = proposed
		app.Status = proposed
		Idle().applyTo(app)

	case DecisionReject:
		priorEntry, err := e.store.LatestProposedTransition(ctx, app.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: transition log has no proposed entry", ErrNoPendingProposal)
			}
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		entry.Action = db.ActionRejected
		entry.ToStatus = priorEntry.FromStatus
		entry.Reason = &reason
		app.Status = priorEntry.FromStatus
		NeedsRevision(reason).applyTo(app)
	}

	err = e.store.TransitionApplication(ctx, app, catalog.StatusPendingAdminApproval, entry)
	metrics.RecordResolution(string(decision), err)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrNoPendingProposal
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	metrics.InfoWithContext(ctx, "Proposal resolved", map[string]interface{}{
		"application_id": app.ID.String(),
		"actor_id":       actor.ID.String(),
		"decision":       string(decision),
		"status":         app.Status.String(),
	})

	e.notifier.ApplicationChanged(ctx, app.ID)
	return app, nil
}

/* AddRemark appends a free-text note to an application. Remarks are
 * independent of the state machine and purely additive. */
func (e *Engine) AddRemark(ctx context.Context, appID uuid.UUID, actor *auth.Actor, text string) (*db.Remark, error) {
	if actor == nil || !actor.Role.IsValid() {
		return nil, ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyRemark
	}

	if _, err := e.getApplication(ctx, appID); err != nil {
		return nil, err
	}

	remark := &db.Remark{
		ApplicationID: appID,
		AuthorID:      actor.ID,
		AuthorRole:    actor.Role.String(),
		Text:          text,
	}
	if err := e.store.InsertRemark(ctx, remark); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	metrics.RecordRemark()

	e.notifier.ApplicationChanged(ctx, appID)
	return remark, nil
}

/* GetHistory returns the transition log for an application, ascending
 * by creation time */
func (e *Engine) GetHistory(ctx context.Context, appID uuid.UUID) ([]db.StatusTransition, error) {
	if _, err := e.getApplication(ctx, appID); err != nil {
		return nil, err
	}
	entries, err := e.store.ListTransitions(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

func (e *Engine) getApplication(ctx context.Context, appID uuid.UUID) (*db.Application, error) {
	app, err := e.store.GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return app, nil
}
