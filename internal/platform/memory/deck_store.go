package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/store"
)

// DeckStore is the in-memory implementation of store.DeckStore.
type DeckStore struct {
	store *Store
	inTx  bool
}

var _ store.DeckStore = (*DeckStore)(nil)

// WithTx implements store.DeckStore.WithTx. Atomicity for the in-memory
// store comes from the store mutex held by the TxRunner, so the same view
// is returned.
func (s *DeckStore) WithTx(_ *sql.Tx) store.DeckStore { return s }

// Create implements store.DeckStore.Create
func (s *DeckStore) Create(_ context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return err
	}

	defer s.store.lock(s.inTx)()

	if _, ok := s.store.decks[deck.ID]; ok {
		return store.ErrDuplicate
	}

	s.store.decks[deck.ID] = *deck
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *DeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	defer s.store.lock(s.inTx)()

	d, ok := s.store.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	out := d
	return &out, nil
}

// List implements store.DeckStore.List
func (s *DeckStore) List(_ context.Context, asOf time.Time) ([]*domain.DeckWithCounts, error) {
	defer s.store.lock(s.inTx)()

	var decks []*domain.DeckWithCounts
	for _, d := range s.store.decks {
		total := 0
		for _, c := range s.store.cards {
			if c.DeckID == d.ID {
				total++
			}
		}
		decks = append(decks, &domain.DeckWithCounts{
			Deck:       d,
			TotalCards: total,
			DueCards:   s.store.dueCount(d.ID, asOf),
		})
	}

	sort.Slice(decks, func(i, j int) bool {
		return decks[i].Name < decks[j].Name
	})

	return decks, nil
}

// Delete implements store.DeckStore.Delete. Cards of the deck and their
// review logs are removed with it, matching the cascading schema.
func (s *DeckStore) Delete(_ context.Context, id uuid.UUID) error {
	defer s.store.lock(s.inTx)()

	if _, ok := s.store.decks[id]; !ok {
		return store.ErrDeckNotFound
	}

	delete(s.store.decks, id)
	for cardID, c := range s.store.cards {
		if c.DeckID == id {
			delete(s.store.cards, cardID)
			delete(s.store.logs, cardID)
		}
	}
	return nil
}
