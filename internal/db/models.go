/*-------------------------------------------------------------------------
 *
 * models.go
 *    Database models for the Loanzaar workflow server
 *
 * Defines data structures for loan applications, status transition log
 * entries, and remarks.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/db/models.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/catalog"
)

/* Transition log actions */
const (
	ActionProposed = "proposed"
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

type Application struct {
	ID              uuid.UUID      `db:"id"`
	BorrowerName    string         `db:"borrower_name"`
	BorrowerPhone   *string        `db:"borrower_phone"`
	LoanType        string         `db:"loan_type"`
	LoanAmount      *int64         `db:"loan_amount"`
	Status          catalog.Status `db:"status"`
	ProposedStatus  *string        `db:"proposed_status"`
	NeedsRevision   bool           `db:"needs_revision"`
	RejectionReason *string        `db:"rejection_reason"`
	AssignedAgentID *uuid.UUID     `db:"assigned_agent_id"`
	Metadata        JSONBMap       `db:"metadata"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

/* StatusTransition is an append-only audit log entry. Entries are never
 * mutated or deleted; the sequence for an application reconstructs its
 * current status and workflow state by replay. */
type StatusTransition struct {
	ID            uuid.UUID      `db:"id"`
	ApplicationID uuid.UUID      `db:"application_id"`
	ActorID       uuid.UUID      `db:"actor_id"`
	ActorRole     string         `db:"actor_role"`
	Action        string         `db:"action"`
	FromStatus    catalog.Status `db:"from_status"`
	ToStatus      catalog.Status `db:"to_status"`
	Reason        *string        `db:"reason"`
	CreatedAt     time.Time      `db:"created_at"`
}

type Remark struct {
	ID            uuid.UUID `db:"id"`
	ApplicationID uuid.UUID `db:"application_id"`
	AuthorID      uuid.UUID `db:"author_id"`
	AuthorRole    string    `db:"author_role"`
	Text          string    `db:"text"`
	CreatedAt     time.Time `db:"created_at"`
}
