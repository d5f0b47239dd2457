/*-------------------------------------------------------------------------
 *
 * projection_test.go
 *    Tests for the read projection and change-feed
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/projection/projection_test.go
 *
 *-------------------------------------------------------------------------
 */

package projection

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/memstore"
	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

func setup(t *testing.T) (*memstore.Store, *workflow.Engine, *Feed, *db.Application, *auth.Actor, *auth.Actor) {
	t.Helper()

	store := memstore.NewStore()
	feed := NewFeed(NewProjector(store))
	engine := workflow.NewEngine(store, feed)

	agent := &auth.Actor{ID: uuid.New(), Role: auth.RoleAgent}
	admin := &auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	app := &db.Application{
		BorrowerName:    "Meena Patel",
		LoanType:        "business",
		Status:          catalog.StatusNew,
		AssignedAgentID: &agent.ID,
	}
	if err := store.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	return store, engine, feed, app, agent, admin
}

func TestGetViewPendingProposalBanner(t *testing.T) {
	_, engine, feed, app, agent, _ := setup(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusEligible); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	view, err := feed.projector.GetView(ctx, app.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if view.PendingProposal == nil {
		t.Fatal("expected pending proposal banner")
	}
	if view.PendingProposal.ProposedStatus != catalog.StatusEligible {
		t.Errorf("expected proposed status eligible, got %s", view.PendingProposal.ProposedStatus)
	}
	if view.PendingProposal.ProposedBy != agent.ID {
		t.Errorf("expected proposed_by %s, got %s", agent.ID, view.PendingProposal.ProposedBy)
	}
	if view.RejectionBanner != nil {
		t.Error("expected no rejection banner while pending")
	}
}

func TestGetViewRejectionBanner(t *testing.T) {
	_, engine, feed, app, agent, admin := setup(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusEligible); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.ResolveProposal(ctx, app.ID, admin, workflow.DecisionReject, "docs missing"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	view, err := feed.projector.GetView(ctx, app.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if view.PendingProposal != nil {
		t.Error("expected no pending banner after rejection")
	}
	if view.RejectionBanner == nil || view.RejectionBanner.Reason != "docs missing" {
		t.Errorf("expected rejection banner with reason, got %+v", view.RejectionBanner)
	}
}

func TestGetViewRemarksNewestFirst(t *testing.T) {
	_, engine, feed, app, agent, _ := setup(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := engine.AddRemark(ctx, app.ID, agent, text); err != nil {
			t.Fatalf("add remark failed: %v", err)
		}
	}

	view, err := feed.projector.GetView(ctx, app.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	for i, want := range []string{"third", "second", "first"} {
		if view.Remarks[i].Text != want {
			t.Errorf("remark %d: expected %q, got %q", i, want, view.Remarks[i].Text)
		}
	}
}

/* A view is a pure function of stored state: two successive reads with
 * no intervening writes are identical. */
func TestGetViewIsDeterministic(t *testing.T) {
	_, engine, feed, app, agent, _ := setup(t)
	ctx := context.Background()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.AddRemark(ctx, app.ID, agent, "called borrower"); err != nil {
		t.Fatalf("add remark failed: %v", err)
	}

	first, err := feed.projector.GetView(ctx, app.ID)
	if err != nil {
		t.Fatalf("first get view failed: %v", err)
	}
	second, err := feed.projector.GetView(ctx, app.ID)
	if err != nil {
		t.Fatalf("second get view failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical views with no intervening writes")
	}
}

func TestGetViewUnknownApplication(t *testing.T) {
	_, _, feed, _, _, _ := setup(t)

	_, err := feed.projector.GetView(context.Background(), uuid.New())
	if !errors.Is(err, workflow.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestFeedDeliversSnapshots(t *testing.T) {
	_, engine, feed, app, agent, admin := setup(t)
	ctx := context.Background()

	var received []*View
	unsubscribe := feed.Subscribe(app.ID, func(ctx context.Context, view *View) {
		received = append(received, view)
	})

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := engine.ResolveProposal(ctx, app.ID, admin, workflow.DecisionApprove, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := engine.AddRemark(ctx, app.ID, agent, "approved by admin"); err != nil {
		t.Fatalf("add remark failed: %v", err)
	}

	if len(received) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(received))
	}
	if received[0].Application.Status != catalog.StatusPendingAdminApproval {
		t.Errorf("first snapshot: expected pending, got %s", received[0].Application.Status)
	}
	if received[1].Application.Status != catalog.StatusContacted {
		t.Errorf("second snapshot: expected contacted, got %s", received[1].Application.Status)
	}
	if len(received[2].Remarks) != 1 {
		t.Errorf("third snapshot: expected 1 remark, got %d", len(received[2].Remarks))
	}

	/* No delivery after unsubscribe */
	unsubscribe()
	if _, err := engine.AddRemark(ctx, app.ID, agent, "after unsubscribe"); err != nil {
		t.Fatalf("add remark failed: %v", err)
	}
	if len(received) != 3 {
		t.Errorf("expected no snapshots after unsubscribe, got %d", len(received))
	}
}

func TestFeedScopesSubscriptionsPerApplication(t *testing.T) {
	store, engine, feed, app, agent, _ := setup(t)
	ctx := context.Background()

	otherAgent := uuid.New()
	other := &db.Application{
		BorrowerName:    "Suresh Rao",
		LoanType:        "vehicle",
		Status:          catalog.StatusNew,
		AssignedAgentID: &otherAgent,
	}
	if err := store.CreateApplication(ctx, other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	notified := 0
	defer feed.Subscribe(other.ID, func(ctx context.Context, view *View) { notified++ })()

	if _, err := engine.ProposeTransition(ctx, app.ID, agent, catalog.StatusContacted); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if notified != 0 {
		t.Errorf("expected no notifications for a different application, got %d", notified)
	}
}
