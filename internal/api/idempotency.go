/*-------------------------------------------------------------------------
 *
 * idempotency.go
 *    Idempotency-Key dedupe for proposal submissions
 *
 * A retried propose request carrying the same Idempotency-Key returns
 * the recorded first response instead of hitting the workflow engine
 * again. Keys expire so the store stays bounded.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/idempotency.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"sync"
	"time"
)

const idempotencyKeyTTL = 24 * time.Hour

/* IdemRecord is the recorded outcome of a deduplicated request */
type IdemRecord struct {
	IdemKey    string
	StatusCode int
	Body       []byte
	StoredAt   time.Time
}

/* InMemoryIdemStore keeps idempotency records keyed by Idempotency-Key */
type InMemoryIdemStore struct {
	mu    sync.Mutex
	items map[string]IdemRecord
	now   func() time.Time
}

func NewInMemoryIdemStore() *InMemoryIdemStore {
	return &InMemoryIdemStore{
		items: make(map[string]IdemRecord),
		now:   time.Now,
	}
}

func (s *InMemoryIdemStore) Get(idemKey string) (IdemRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[idemKey]
	if ok && s.now().Sub(rec.StoredAt) > idempotencyKeyTTL {
		delete(s.items, idemKey)
		return IdemRecord{}, false
	}
	return rec, ok
}

func (s *InMemoryIdemStore) Put(record IdemRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.StoredAt = s.now()
	s.items[record.IdemKey] = record
}
