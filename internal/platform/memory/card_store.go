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

// CardStore is the in-memory implementation of store.CardStore.
type CardStore struct {
	store *Store
	inTx  bool
}

var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx. Atomicity for the in-memory
// store comes from the store mutex held by the TxRunner, so the same view
// is returned.
func (s *CardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

// Create implements store.CardStore.Create
func (s *CardStore) Create(_ context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	defer s.store.lock(s.inTx)()

	if _, ok := s.store.decks[card.DeckID]; !ok {
		return store.ErrDeckNotFound
	}
	if _, ok := s.store.cards[card.ID]; ok {
		return store.ErrDuplicate
	}

	s.store.cards[card.ID] = copyCard(*card)
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	defer s.store.lock(s.inTx)()

	c, ok := s.store.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	out := copyCard(c)
	return &out, nil
}

// GetForUpdate implements store.CardStore.GetForUpdate. The in-memory store
// has no row locks; the TxRunner already serializes units of work, so this
// is equivalent to GetByID.
func (s *CardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.GetByID(ctx, id)
}

// UpdateDescription implements store.CardStore.UpdateDescription
func (s *CardStore) UpdateDescription(_ context.Context, id uuid.UUID, description string) (*domain.Card, error) {
	if description == "" {
		return nil, domain.ErrCardDescriptionEmpty
	}

	defer s.store.lock(s.inTx)()

	c, ok := s.store.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}

	c.Description = description
	c.UpdatedAt = time.Now().UTC()
	s.store.cards[id] = c

	out := copyCard(c)
	return &out, nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
func (s *CardStore) UpdateScheduling(_ context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	defer s.store.lock(s.inTx)()

	existing, ok := s.store.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}

	updated := copyCard(*card)
	updated.DeckID = existing.DeckID
	updated.Description = existing.Description
	updated.CreatedAt = existing.CreatedAt
	s.store.cards[card.ID] = updated
	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(_ context.Context, id uuid.UUID) error {
	defer s.store.lock(s.inTx)()

	if _, ok := s.store.cards[id]; !ok {
		return store.ErrCardNotFound
	}

	delete(s.store.cards, id)
	delete(s.store.logs, id)
	return nil
}

// ListDue implements store.CardStore.ListDue
func (s *CardStore) ListDue(_ context.Context, deckID uuid.UUID, asOf time.Time) ([]*domain.Card, error) {
	defer s.store.lock(s.inTx)()

	var cards []*domain.Card
	for _, c := range s.store.cards {
		if c.DeckID == deckID && !c.Due.After(asOf) {
			out := copyCard(c)
			cards = append(cards, &out)
		}
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Due.Equal(cards[j].Due) {
			return cards[i].ID.String() < cards[j].ID.String()
		}
		return cards[i].Due.Before(cards[j].Due)
	})

	return cards, nil
}
