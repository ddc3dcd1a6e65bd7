package memory

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/store"
)

// ReviewLogStore is the in-memory implementation of store.ReviewLogStore.
type ReviewLogStore struct {
	store *Store
	inTx  bool
}

var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx. Atomicity for the in-memory
// store comes from the store mutex held by the TxRunner, so the same view
// is returned.
func (s *ReviewLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return s }

// Append implements store.ReviewLogStore.Append
func (s *ReviewLogStore) Append(_ context.Context, entry *domain.ReviewLog) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	defer s.store.lock(s.inTx)()

	if _, ok := s.store.cards[entry.CardID]; !ok {
		return store.ErrCardNotFound
	}

	s.store.logs[entry.CardID] = append(s.store.logs[entry.CardID], *entry)
	return nil
}

// MostRecent implements store.ReviewLogStore.MostRecent
func (s *ReviewLogStore) MostRecent(_ context.Context, cardID uuid.UUID) (*domain.ReviewLog, error) {
	defer s.store.lock(s.inTx)()

	entries := s.store.logs[cardID]
	if len(entries) == 0 {
		return nil, store.ErrReviewLogNotFound
	}

	latest := entries[0]
	for _, e := range entries[1:] {
		if !e.ReviewedAt.Before(latest.ReviewedAt) {
			latest = e
		}
	}
	return &latest, nil
}

// ListByCard implements store.ReviewLogStore.ListByCard
func (s *ReviewLogStore) ListByCard(_ context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error) {
	defer s.store.lock(s.inTx)()

	entries := s.store.logs[cardID]
	out := make([]*domain.ReviewLog, 0, len(entries))
	for i := range entries {
		e := entries[i]
		out = append(out, &e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewedAt.Before(out[j].ReviewedAt)
	})
	return out, nil
}
