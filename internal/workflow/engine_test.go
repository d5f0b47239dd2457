/*-------------------------------------------------------------------------
 *
 * engine_test.go
 *    Tests for the approval state machine
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/workflow/engine_test.go
 *
 *-------------------------------------------------------------------------
 */

package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/memstore"
)

func newTestEngine(t *testing.T) (*Engine, *memstore.Store, *db.Application, *auth.Actor, *auth.Actor) {
	t.Helper()

	store := memstore.NewStore()
	agent := &auth.Actor{ID: uuid.New(), Role: auth.RoleAgent}
	admin := &auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	app := &db.Application{
		BorrowerName:    "Asha Kumar",
		LoanType:        "personal",
		Status:          catalog.StatusNew,
		AssignedAgentID: &agent.ID,
	}
	if err := store.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	return NewEngine(store, nil), store, app, agent, admin
}

func TestProposeTransition(t *testing.T) {
	engine, store, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	updated, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted)
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if updated.Status != catalog.StatusPendingAdminApproval {
		t.Errorf("expected pending_admin_approval, got %s", updated.Status)
	}
	if updated.ProposedStatus == nil || *updated.ProposedStatus != "contacted" {
		t.Errorf("expected proposed_status contacted, got %v", updated.ProposedStatus)
	}

	entries, err := store.ListTransitions(ctx, app.ID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 transition entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Action != db.ActionProposed || e.FromStatus != catalog.StatusNew || e.ToStatus != catalog.StatusContacted {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.ActorID != agent.ID || e.ActorRole != "agent" {
		t.Errorf("unexpected actor on entry: %+v", e)
	}
}

func TestProposeTransitionAuthorizationBoundary(t *testing.T) {
	engine, store, app, _, admin := newTestEngine(t)
	ctx := context.Background()

	otherAgent := &auth.Actor{ID: uuid.New(), Role: auth.RoleAgent}

	tests := []struct {
		name  string
		actor *auth.Actor
	}{
		{"unassigned agent", otherAgent},
		{"admin cannot propose", admin},
		{"nil actor", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ProposeTransition(ctx, app.ID, tt.actor, catalog.StatusContacted)
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}

	/* Zero audit entries and zero status change */
	entries, _ := store.ListTransitions(ctx, app.ID)
	if len(entries) != 0 {
		t.Errorf("expected no transition entries, got %d", len(entries))
	}
	current, _ := store.GetApplicationByID(ctx, app.ID)
	if current.Status != catalog.StatusNew {
		t.Errorf("expected status unchanged, got %s", current.Status)
	}
}

func TestProposeTransitionIllegalTarget(t *testing.T) {
	engine, _, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	for _, target := range []catalog.Status{
		catalog.StatusNew,
		catalog.StatusApproved,
		catalog.StatusPendingAdminApproval,
		catalog.Status("escalated"),
	} {
		_, err := engine.ProposeTransition(ctx, app.ID, agent, target)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("target %s: expected ErrIllegalTransition, got %v", target, err)
		}
	}
}

func TestNoDoublePending(t *testing.T) {
	engine, store, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("first propose failed: %v", err)
	}

	_, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusEligible)
	if !errors.Is(err, ErrProposalAlreadyPending) {
		t.Fatalf("expected ErrProposalAlreadyPending, got %v", err)
	}

	entries, _ := store.ListTransitions(ctx, app.ID)
	if len(entries) != 1 {
		t.Errorf("expected exactly 1 proposed entry, got %d", len(entries))
	}
	current, _ := store.GetApplicationByID(ctx, app.ID)
	if current.ProposedStatus == nil || *current.ProposedStatus != "contacted" {
		t.Errorf("expected original proposal intact, got %v", current.ProposedStatus)
	}
}

func TestConcurrentProposalsSinglePending(t *testing.T) {
	engine, store, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrProposalAlreadyPending) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful proposal, got %d", succeeded)
	}

	entries, _ := store.ListTransitions(ctx, app.ID)
	if len(entries) != 1 {
		t.Errorf("expected exactly 1 transition entry, got %d", len(entries))
	}
}

func TestApproveAppliesProposal(t *testing.T) {
	engine, store, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	/* Move to docs_collected first, then propose recommended */
	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusDocsCollected); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusRecommended); err != nil {
		t.Fatalf("second propose failed: %v", err)
	}

	resolved, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, "")
	if err != nil {
		t.Fatalf("second approve failed: %v", err)
	}
	if resolved.Status != catalog.StatusRecommended {
		t.Errorf("expected recommended, got %s", resolved.Status)
	}
	if resolved.ProposedStatus != nil || resolved.NeedsRevision || resolved.RejectionReason != nil {
		t.Errorf("expected proposal metadata cleared: %+v", resolved)
	}

	entries, _ := store.ListTransitions(ctx, app.ID)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	last := entries[3]
	if last.Action != db.ActionApproved ||
		last.FromStatus != catalog.StatusPendingAdminApproval ||
		last.ToStatus != catalog.StatusRecommended {
		t.Errorf("unexpected approve entry: %+v", last)
	}
}

func TestRejectRestoresPriorStatus(t *testing.T) {
	engine, store, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	/* Bring the application to contacted */
	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	/* Propose eligible, then reject */
	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusEligible); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	resolved, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionReject, "docs missing")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if resolved.Status != catalog.StatusContacted {
		t.Errorf("expected status restored to contacted, got %s", resolved.Status)
	}
	if !resolved.NeedsRevision {
		t.Error("expected needs_revision to be set")
	}
	if resolved.RejectionReason == nil || *resolved.RejectionReason != "docs missing" {
		t.Errorf("expected rejection reason recorded, got %v", resolved.RejectionReason)
	}
	if resolved.ProposedStatus != nil {
		t.Errorf("expected proposed status cleared, got %v", resolved.ProposedStatus)
	}

	entries, _ := store.ListTransitions(ctx, app.ID)
	last := entries[len(entries)-1]
	if last.Action != db.ActionRejected ||
		last.FromStatus != catalog.StatusPendingAdminApproval ||
		last.ToStatus != catalog.StatusContacted {
		t.Errorf("unexpected reject entry: %+v", last)
	}
	if last.Reason == nil || *last.Reason != "docs missing" {
		t.Errorf("expected reason on reject entry, got %v", last.Reason)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	engine, _, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionReject, reason)
		if !errors.Is(err, ErrMissingReason) {
			t.Errorf("reason %q: expected ErrMissingReason, got %v", reason, err)
		}
	}
}

func TestResolveRequiresAdmin(t *testing.T) {
	engine, _, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	_, err := engine.ResolveProposal(ctx, app.ID, agent, DecisionApprove, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolveWithoutPendingProposal(t *testing.T) {
	engine, _, app, _, admin := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, "")
	if !errors.Is(err, ErrNoPendingProposal) {
		t.Fatalf("expected ErrNoPendingProposal, got %v", err)
	}
}

func TestProposalSurvivesReassignment(t *testing.T) {
	engine, store, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusEligible); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	/* Reassign to a different agent while the proposal is pending */
	newAgent := uuid.New()
	if _, err := store.AssignAgent(ctx, app.ID, newAgent); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}

	resolved, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, "")
	if err != nil {
		t.Fatalf("approve after reassignment failed: %v", err)
	}
	if resolved.Status != catalog.StatusEligible {
		t.Errorf("expected eligible, got %s", resolved.Status)
	}
}

func TestAddRemark(t *testing.T) {
	engine, store, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.AddRemark(ctx, app.ID, agent, "  borrower called back  "); err != nil {
		t.Fatalf("add remark failed: %v", err)
	}
	if _, err := engine.AddRemark(ctx, app.ID, admin, "verify income proof"); err != nil {
		t.Fatalf("add remark failed: %v", err)
	}

	remarks, err := store.ListRemarks(ctx, app.ID)
	if err != nil {
		t.Fatalf("list remarks failed: %v", err)
	}
	if len(remarks) != 2 {
		t.Fatalf("expected 2 remarks, got %d", len(remarks))
	}
	if remarks[0].Text != "borrower called back" {
		t.Errorf("expected trimmed text, got %q", remarks[0].Text)
	}
	if remarks[0].AuthorRole != "agent" || remarks[1].AuthorRole != "admin" {
		t.Errorf("unexpected author roles: %q, %q", remarks[0].AuthorRole, remarks[1].AuthorRole)
	}
}

func TestAddRemarkRejectsEmptyText(t *testing.T) {
	engine, _, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := engine.AddRemark(ctx, app.ID, agent, text)
		if !errors.Is(err, ErrEmptyRemark) {
			t.Errorf("text %q: expected ErrEmptyRemark, got %v", text, err)
		}
	}
}

func TestRemarksIndependentOfStatus(t *testing.T) {
	engine, store, app, agent, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	for _, text := range []string{"first", "second", "third"} {
		if _, err := engine.AddRemark(ctx, app.ID, agent, text); err != nil {
			t.Fatalf("add remark failed: %v", err)
		}
	}

	current, _ := store.GetApplicationByID(ctx, app.ID)
	if current.Status != catalog.StatusPendingAdminApproval {
		t.Errorf("remarks must not alter status, got %s", current.Status)
	}

	remarks, _ := store.ListRemarks(ctx, app.ID)
	if len(remarks) != 3 {
		t.Fatalf("expected 3 remarks, got %d", len(remarks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if remarks[i].Text != want {
			t.Errorf("remark %d: expected %q, got %q", i, want, remarks[i].Text)
		}
	}
}

func TestGetHistory(t *testing.T) {
	engine, _, app, agent, admin := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.ResolveProposal(ctx, app.ID, admin, DecisionApprove, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	history, err := engine.GetHistory(ctx, app.ID)
	if err != nil {
		t.Fatalf("get history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Action != db.ActionProposed || history[1].Action != db.ActionApproved {
		t.Errorf("unexpected history order: %s, %s", history[0].Action, history[1].Action)
	}

	_, err = engine.GetHistory(ctx, uuid.New())
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}
