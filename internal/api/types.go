/*-------------------------------------------------------------------------
 *
 * types.go
 *    Request and response types for the Loanzaar workflow API
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/types.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/projection"
)

/* Requests */

type CreateApplicationRequest struct {
	BorrowerName  string                 `json:"borrower_name"`
	BorrowerPhone string                 `json:"borrower_phone,omitempty"`
	LoanType      string                 `json:"loan_type"`
	LoanAmount    *int64                 `json:"loan_amount,omitempty"`
	AgentID       *uuid.UUID             `json:"agent_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type AssignAgentRequest struct {
	AgentID uuid.UUID `json:"agent_id"`
}

type ProposeRequest struct {
	ToStatus string `json:"to_status"`
}

type ResolveRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type AddRemarkRequest struct {
	Text string `json:"text"`
}

/* Responses */

type ApplicationResponse struct {
	ID              uuid.UUID              `json:"id"`
	BorrowerName    string                 `json:"borrower_name"`
	BorrowerPhone   *string                `json:"borrower_phone,omitempty"`
	LoanType        string                 `json:"loan_type"`
	LoanAmount      *int64                 `json:"loan_amount,omitempty"`
	Status          string                 `json:"status"`
	ProposedStatus  *string                `json:"proposed_status,omitempty"`
	NeedsRevision   bool                   `json:"needs_revision"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	AssignedAgentID *uuid.UUID             `json:"assigned_agent_id,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type TransitionResponse struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Reason        *string   `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type RemarkResponse struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	AuthorID      uuid.UUID `json:"author_id"`
	AuthorRole    string    `json:"author_role"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

type PendingProposalResponse struct {
	ProposedStatus string    `json:"proposed_status"`
	ProposedBy     uuid.UUID `json:"proposed_by"`
	ProposedAt     time.Time `json:"proposed_at"`
}

type RejectionBannerResponse struct {
	Reason string `json:"reason"`
}

type ViewResponse struct {
	Application     ApplicationResponse      `json:"application"`
	PendingProposal *PendingProposalResponse `json:"pending_proposal,omitempty"`
	RejectionBanner *RejectionBannerResponse `json:"rejection_banner,omitempty"`
	History         []TransitionResponse     `json:"history"`
	Remarks         []RemarkResponse         `json:"remarks"`
}

type VerifyResponse struct {
	ApplicationID uuid.UUID `json:"application_id"`
	Consistent    bool      `json:"consistent"`
	Detail        string    `json:"detail,omitempty"`
}

/* Converters */

func toApplicationResponse(a *db.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		BorrowerName:    a.BorrowerName,
		BorrowerPhone:   a.BorrowerPhone,
		LoanType:        a.LoanType,
		LoanAmount:      a.LoanAmount,
		Status:          string(a.Status),
		ProposedStatus:  a.ProposedStatus,
		NeedsRevision:   a.NeedsRevision,
		RejectionReason: a.RejectionReason,
		AssignedAgentID: a.AssignedAgentID,
		Metadata:        a.Metadata.ToMap(),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toTransitionResponse(t *db.StatusTransition) TransitionResponse {
	return TransitionResponse{
		ID:            t.ID,
		ApplicationID: t.ApplicationID,
		ActorID:       t.ActorID,
		ActorRole:     t.ActorRole,
		Action:        t.Action,
		FromStatus:    string(t.FromStatus),
		ToStatus:      string(t.ToStatus),
		Reason:        t.Reason,
		CreatedAt:     t.CreatedAt,
	}
}

func toRemarkResponse(r *db.Remark) RemarkResponse {
	return RemarkResponse{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		AuthorID:      r.AuthorID,
		AuthorRole:    r.AuthorRole,
		Text:          r.Text,
		CreatedAt:     r.CreatedAt,
	}
}

func toViewResponse(v *projection.View) ViewResponse {
	resp := ViewResponse{
		Application: toApplicationResponse(v.Application),
		History:     make([]TransitionResponse, 0, len(v.History)),
		Remarks:     make([]RemarkResponse, 0, len(v.Remarks)),
	}
	if v.PendingProposal != nil {
		resp.PendingProposal = &PendingProposalResponse{
			ProposedStatus: string(v.PendingProposal.ProposedStatus),
			ProposedBy:     v.PendingProposal.ProposedBy,
			ProposedAt:     v.PendingProposal.ProposedAt,
		}
	}
	if v.RejectionBanner != nil {
		resp.RejectionBanner = &RejectionBannerResponse{Reason: v.RejectionBanner.Reason}
	}
	for i := range v.History {
		resp.History = append(resp.History, toTransitionResponse(&v.History[i]))
	}
	for i := range v.Remarks {
		resp.Remarks = append(resp.Remarks, toRemarkResponse(&v.Remarks[i]))
	}
	return resp
}
