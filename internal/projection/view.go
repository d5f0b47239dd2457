/*-------------------------------------------------------------------------
 *
 * view.go
 *    Read projection for loan applications
 *
 * Derives the visible state of an application (record, pending-proposal
 * banner, rejection banner, history, remarks) purely from the stored
 * record and its two append-only ledgers.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/projection/view.go
 *
 *-------------------------------------------------------------------------
 */

package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

/* Store is the read surface the projection runs against */
type Store interface {
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ListTransitions(ctx context.Context, appID uuid.UUID) ([]db.StatusTransition, error)
	ListRemarks(ctx context.Context, appID uuid.UUID) ([]db.Remark, error)
}

/* PendingProposal is the banner shown while a proposal awaits review */
type PendingProposal struct {
	ProposedStatus catalog.Status `json:"proposed_status"`
	ProposedBy     uuid.UUID      `json:"proposed_by"`
	ProposedAt     time.Time      `json:"proposed_at"`
}

/* RejectionBanner is the banner shown after an admin rejection */
type RejectionBanner struct {
	Reason string `json:"reason"`
}

/* View is the visible state of an application for UI consumers */
type View struct {
	Application     *db.Application       `json:"application"`
	PendingProposal *PendingProposal      `json:"pending_proposal,omitempty"`
	RejectionBanner *RejectionBanner      `json:"rejection_banner,omitempty"`
	History         []db.StatusTransition `json:"history"`
	Remarks         []db.Remark           `json:"remarks"`
}

/* BuildView derives a view from an application record, its transition
 * log ascending by creation time, and its remarks ascending by creation
 * time. Remarks are reversed to newest-first for display; that ordering
 * is a read-side concern only. */
func BuildView(app *db.Application, history []db.StatusTransition, remarks []db.Remark) *View {
	view := &View{
		Application: app,
		History:     history,
		Remarks:     reverseRemarks(remarks),
	}

	switch state := workflow.StateOf(app); state.Kind {
	case workflow.StatePendingApproval:
		banner := &PendingProposal{ProposedStatus: state.ProposedStatus}
		/* The latest proposed entry carries who proposed and when */
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Action == db.ActionProposed {
				banner.ProposedBy = history[i].ActorID
				banner.ProposedAt = history[i].CreatedAt
				break
			}
		}
		view.PendingProposal = banner

	case workflow.StateNeedsRevision:
		view.RejectionBanner = &RejectionBanner{Reason: state.Reason}
	}

	return view
}

/* Projector produces views from stored state */
type Projector struct {
	store Store
}

/* NewProjector creates a projector over a store */
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

/* GetView loads an application with its ledgers and builds its view */
func (p *Projector) GetView(ctx context.Context, appID uuid.UUID) (*View, error) {
	app, err := p.store.GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, workflow.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("%w: %v", workflow.ErrStorageUnavailable, err)
	}

	history, err := p.store.ListTransitions(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrStorageUnavailable, err)
	}

	remarks, err := p.store.ListRemarks(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrStorageUnavailable, err)
	}

	return BuildView(app, history, remarks), nil
}

func reverseRemarks(remarks []db.Remark) []db.Remark {
	reversed := make([]db.Remark, len(remarks))
	for i, r := range remarks {
		reversed[len(remarks)-1-i] = r
	}
	return reversed
}
