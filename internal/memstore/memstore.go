/*-------------------------------------------------------------------------
 *
 * memstore.go
 *    In-memory store for the approval workflow
 *
 * Implements the workflow store contract over process-local maps with
 * the same compare-and-set semantics as the Postgres layer. Used by
 * tests and by local development runs without a database.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/memstore/memstore.go
 *
 *-------------------------------------------------------------------------
 */

package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
)

/* Store is an in-memory implementation of the workflow store contract */
type Store struct {
	mu           sync.Mutex
	applications map[uuid.UUID]db.Application
	transitions  map[uuid.UUID][]db.StatusTransition
	remarks      map[uuid.UUID][]db.Remark
	clock        int64
}

/* NewStore creates an empty in-memory store */
func NewStore() *Store {
	return &Store{
		applications: make(map[uuid.UUID]db.Application),
		transitions:  make(map[uuid.UUID][]db.StatusTransition),
		remarks:      make(map[uuid.UUID][]db.Remark),
	}
}

/* now returns a strictly increasing timestamp so ordering by creation
 * time is stable even within one clock tick */
func (s *Store) now() time.Time {
	s.clock++
	return time.Now().Add(time.Duration(s.clock) * time.Nanosecond)
}

/* CreateApplication inserts a new loan application */
func (s *Store) CreateApplication(ctx context.Context, app *db.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = catalog.StatusNew
	}
	if app.Metadata == nil {
		app.Metadata = make(db.JSONBMap)
	}
	ts := s.now()
	app.CreatedAt = ts
	app.UpdatedAt = ts
	s.applications[app.ID] = *app
	return nil
}

/* GetApplicationByID gets an application by ID */
func (s *Store) GetApplicationByID(ctx context.Context, id uuid.UUID) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := app
	return &copied, nil
}

/* ListApplicationsForAgent lists applications assigned to an agent */
func (s *Store) ListApplicationsForAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []db.Application
	for _, app := range s.applications {
		if app.AssignedAgentID != nil && *app.AssignedAgentID == agentID {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return paginate(apps, limit, offset), nil
}

/* ListPendingApproval lists applications awaiting an admin decision */
func (s *Store) ListPendingApproval(ctx context.Context, limit, offset int) ([]db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []db.Application
	for _, app := range s.applications {
		if app.Status == catalog.StatusPendingAdminApproval {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].UpdatedAt.Before(apps[j].UpdatedAt) })
	return paginate(apps, limit, offset), nil
}

/* AssignAgent sets the agent responsible for an application */
func (s *Store) AssignAgent(ctx context.Context, appID, agentID uuid.UUID) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[appID]
	if !ok {
		return nil, db.ErrNotFound
	}
	agent := agentID
	app.AssignedAgentID = &agent
	app.UpdatedAt = s.now()
	s.applications[appID] = app
	copied := app
	return &copied, nil
}

/* TransitionApplication applies a workflow state change and appends the
 * matching transition log entry under one lock, guarded by a
 * compare-and-set on the expected current status. */
func (s *Store) TransitionApplication(ctx context.Context, app *db.Application, expected catalog.Status, entry *db.StatusTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.applications[app.ID]
	if !ok {
		return db.ErrNotFound
	}
	if stored.Status != expected {
		return db.ErrConflict
	}

	stored.Status = app.Status
	stored.ProposedStatus = app.ProposedStatus
	stored.NeedsRevision = app.NeedsRevision
	stored.RejectionReason = app.RejectionReason
	stored.UpdatedAt = s.now()
	s.applications[app.ID] = stored
	app.UpdatedAt = stored.UpdatedAt

	entry.ID = uuid.New()
	entry.CreatedAt = s.now()
	s.transitions[app.ID] = append(s.transitions[app.ID], *entry)
	return nil
}

/* ListTransitions lists the transition log for an application, ascending
 * by creation time */
func (s *Store) ListTransitions(ctx context.Context, appID uuid.UUID) ([]db.StatusTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]db.StatusTransition, len(s.transitions[appID]))
	copy(entries, s.transitions[appID])
	return entries, nil
}

/* LatestProposedTransition returns the most recent proposed entry */
func (s *Store) LatestProposedTransition(ctx context.Context, appID uuid.UUID) (*db.StatusTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.transitions[appID]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Action == db.ActionProposed {
			copied := entries[i]
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

/* InsertRemark appends a remark to an application */
func (s *Store) InsertRemark(ctx context.Context, remark *db.Remark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remark.ID = uuid.New()
	remark.CreatedAt = s.now()
	s.remarks[remark.ApplicationID] = append(s.remarks[remark.ApplicationID], *remark)
	return nil
}

/* ListRemarks lists remarks for an application, ascending by creation time */
func (s *Store) ListRemarks(ctx context.Context, appID uuid.UUID) ([]db.Remark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remarks := make([]db.Remark, len(s.remarks[appID]))
	copy(remarks, s.remarks[appID])
	return remarks, nil
}

func paginate(apps []db.Application, limit, offset int) []db.Application {
	if offset >= len(apps) {
		return nil
	}
	apps = apps[offset:]
	if limit > 0 && limit < len(apps) {
		apps = apps[:limit]
	}
	return apps
}
