// Package memory provides in-memory implementations of the store interfaces.
// They back service and handler tests without a database and act as a
// drop-in substitute anywhere the store interfaces are accepted. All data is
// lost on process exit.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
)

// Store holds all in-memory state shared by the per-entity store views.
// A single mutex guards every map, trading concurrency for simplicity. The
// TxRunner holds that mutex for the full span of a unit of work, so writes
// from other actors block until the unit commits or rolls back and can
// never be erased by a rollback, and no reader observes mid-transaction
// state.
type Store struct {
	mu    sync.Mutex
	decks map[uuid.UUID]domain.Deck
	cards map[uuid.UUID]domain.Card
	logs  map[uuid.UUID][]domain.ReviewLog // keyed by card ID, append order
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		decks: make(map[uuid.UUID]domain.Deck),
		cards: make(map[uuid.UUID]domain.Card),
		logs:  make(map[uuid.UUID][]domain.ReviewLog),
	}
}

// Cards returns the card store view of this store.
func (s *Store) Cards() *CardStore { return &CardStore{store: s} }

// Decks returns the deck store view of this store.
func (s *Store) Decks() *DeckStore { return &DeckStore{store: s} }

// ReviewLogs returns the review log store view of this store.
func (s *Store) ReviewLogs() *ReviewLogStore { return &ReviewLogStore{store: s} }

// lock acquires the store mutex and returns the matching unlock. Views
// bound to an open unit of work pass held=true because the TxRunner
// already holds the mutex for them.
func (s *Store) lock(held bool) func() {
	if held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// snapshot copies the full store state so a failed unit of work can be
// rolled back. Callers must hold s.mu.
func (s *Store) snapshot() (map[uuid.UUID]domain.Deck, map[uuid.UUID]domain.Card, map[uuid.UUID][]domain.ReviewLog) {
	decks := make(map[uuid.UUID]domain.Deck, len(s.decks))
	for id, d := range s.decks {
		decks[id] = d
	}
	cards := make(map[uuid.UUID]domain.Card, len(s.cards))
	for id, c := range s.cards {
		cards[id] = copyCard(c)
	}
	logs := make(map[uuid.UUID][]domain.ReviewLog, len(s.logs))
	for id, entries := range s.logs {
		logs[id] = append([]domain.ReviewLog(nil), entries...)
	}
	return decks, cards, logs
}

// restore replaces the store state with a previously taken snapshot.
// Callers must hold s.mu.
func (s *Store) restore(decks map[uuid.UUID]domain.Deck, cards map[uuid.UUID]domain.Card, logs map[uuid.UUID][]domain.ReviewLog) {
	s.decks = decks
	s.cards = cards
	s.logs = logs
}

// copyCard returns a value copy of the card with its LastReview pointer
// detached from the original.
func copyCard(c domain.Card) domain.Card {
	if c.LastReview != nil {
		t := *c.LastReview
		c.LastReview = &t
	}
	return c
}

// dueCount counts the cards of a deck with due <= asOf. Callers must hold s.mu.
func (s *Store) dueCount(deckID uuid.UUID, asOf time.Time) int {
	n := 0
	for _, c := range s.cards {
		if c.DeckID == deckID && !c.Due.After(asOf) {
			n++
		}
	}
	return n
}
