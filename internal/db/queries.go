/*-------------------------------------------------------------------------
 *
 * queries.go
 *    Database queries for the Loanzaar workflow server
 *
 * Provides query functions for loan applications, the status transition
 * log, and remarks. The status update plus its matching transition log
 * insert run inside one transaction with a compare-and-set guard on the
 * application status, so a record can never end up pending approval
 * without a matching proposed entry.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/db/queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Vivekray898/loanzaar-server/internal/catalog"
)

var (
	/* ErrNotFound is returned when a record does not exist */
	ErrNotFound = errors.New("record not found")

	/* ErrConflict is returned when a compare-and-set update loses a race:
	 * the application status changed between read and write. */
	ErrConflict = errors.New("concurrent status update conflict")
)

/* Application queries */
const (
	createApplicationQuery = `
		INSERT INTO loanzaar.applications
		(borrower_name, borrower_phone, loan_type, loan_amount, status, assigned_agent_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING id, created_at, updated_at`

	getApplicationByIDQuery = `SELECT * FROM loanzaar.applications WHERE id = $1`

	listApplicationsForAgentQuery = `
		SELECT * FROM loanzaar.applications
		WHERE assigned_agent_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	listPendingApprovalQuery = `
		SELECT * FROM loanzaar.applications
		WHERE status = 'pending_admin_approval'
		ORDER BY updated_at ASC
		LIMIT $1 OFFSET $2`

	assignAgentQuery = `
		UPDATE loanzaar.applications
		SET assigned_agent_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	/* Compare-and-set: the WHERE clause on status serializes concurrent
	 * propose/resolve calls against the same application. */
	transitionApplicationQuery = `
		UPDATE loanzaar.applications
		SET status = $3, proposed_status = $4, needs_revision = $5,
			rejection_reason = $6, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`
)

/* Status transition log queries */
const (
	insertTransitionQuery = `
		INSERT INTO loanzaar.status_transitions
		(application_id, actor_id, actor_role, action, from_status, to_status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	listTransitionsQuery = `
		SELECT * FROM loanzaar.status_transitions
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC`

	latestProposedTransitionQuery = `
		SELECT * FROM loanzaar.status_transitions
		WHERE application_id = $1 AND action = 'proposed'
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
)

/* Remark queries */
const (
	insertRemarkQuery = `
		INSERT INTO loanzaar.remarks
		(application_id, author_id, author_role, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	listRemarksQuery = `
		SELECT * FROM loanzaar.remarks
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC`
)

/* Queries provides database access for the workflow server */
type Queries struct {
	DB           *sqlx.DB
	connInfoFunc func() string
}

/* NewQueries creates a new Queries instance */
func NewQueries(db *sqlx.DB) *Queries {
	return &Queries{DB: db}
}

/* SetConnInfoFunc sets a function providing connection details for error messages */
func (q *Queries) SetConnInfoFunc(f func() string) {
	q.connInfoFunc = f
}

/* CreateApplication inserts a new loan application */
func (q *Queries) CreateApplication(ctx context.Context, app *Application) error {
	if app.Metadata == nil {
		app.Metadata = make(JSONBMap)
	}
	err := q.DB.QueryRowContext(ctx, createApplicationQuery,
		app.BorrowerName, app.BorrowerPhone, app.LoanType, app.LoanAmount,
		app.Status, app.AssignedAgentID, app.Metadata,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

/* GetApplicationByID gets an application by ID */
func (q *Queries) GetApplicationByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	err := q.DB.GetContext(ctx, &app, getApplicationByIDQuery, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

/* ListApplicationsForAgent lists applications assigned to an agent */
func (q *Queries) ListApplicationsForAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]Application, error) {
	var apps []Application
	err := q.DB.SelectContext(ctx, &apps, listApplicationsForAgentQuery, agentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

/* ListPendingApproval lists applications awaiting an admin decision,
 * oldest proposal first */
func (q *Queries) ListPendingApproval(ctx context.Context, limit, offset int) ([]Application, error) {
	var apps []Application
	err := q.DB.SelectContext(ctx, &apps, listPendingApprovalQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return apps, nil
}

/* AssignAgent sets the agent responsible for an application. Assignment
 * is not a workflow transition and writes no transition log entry; a
 * pending proposal survives reassignment. */
func (q *Queries) AssignAgent(ctx context.Context, appID, agentID uuid.UUID) (*Application, error) {
	var updatedAt sql.NullTime
	err := q.DB.QueryRowContext(ctx, assignAgentQuery, appID, agentID).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to assign agent: %w", err)
	}
	return q.GetApplicationByID(ctx, appID)
}

/* TransitionApplication applies a workflow state change to an application
 * and appends the matching transition log entry in one transaction. The
 * update is guarded by a compare-and-set on the expected current status;
 * ErrConflict is returned when another call won the race. */
func (q *Queries) TransitionApplication(ctx context.Context, app *Application, expected catalog.Status, entry *StatusTransition) error {
	tx, err := q.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, transitionApplicationQuery,
		app.ID, expected, app.Status, app.ProposedStatus,
		app.NeedsRevision, app.RejectionReason,
	).Scan(&app.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	err = tx.QueryRowContext(ctx, insertTransitionQuery,
		entry.ApplicationID, entry.ActorID, entry.ActorRole,
		entry.Action, entry.FromStatus, entry.ToStatus, entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append status transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}
	return nil
}

/* ListTransitions lists the transition log for an application, ascending
 * by creation time */
func (q *Queries) ListTransitions(ctx context.Context, appID uuid.UUID) ([]StatusTransition, error) {
	var entries []StatusTransition
	err := q.DB.SelectContext(ctx, &entries, listTransitionsQuery, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status transitions: %w", err)
	}
	return entries, nil
}

/* LatestProposedTransition returns the most recent proposed entry for an
 * application. The transition log is authoritative for the status held
 * before a proposal; the application record does not retain it. */
func (q *Queries) LatestProposedTransition(ctx context.Context, appID uuid.UUID) (*StatusTransition, error) {
	var entry StatusTransition
	err := q.DB.GetContext(ctx, &entry, latestProposedTransitionQuery, appID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest proposed transition: %w", err)
	}
	return &entry, nil
}

/* InsertRemark appends a remark to an application */
func (q *Queries) InsertRemark(ctx context.Context, remark *Remark) error {
	err := q.DB.QueryRowContext(ctx, insertRemarkQuery,
		remark.ApplicationID, remark.AuthorID, remark.AuthorRole, remark.Text,
	).Scan(&remark.ID, &remark.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert remark: %w", err)
	}
	return nil
}

/* ListRemarks lists remarks for an application, ascending by creation time */
func (q *Queries) ListRemarks(ctx context.Context, appID uuid.UUID) ([]Remark, error) {
	var remarks []Remark
	err := q.DB.SelectContext(ctx, &remarks, listRemarksQuery, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}
	return remarks, nil
}
