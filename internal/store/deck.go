package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// Returns validation errors if the deck data is invalid.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// List returns all decks with their total and due card counts, the due
	// count evaluated against asOf. Ordered by name ascending.
	List(ctx context.Context, asOf time.Time) ([]*domain.DeckWithCounts, error)

	// Delete removes a deck and, through the schema's cascading foreign
	// keys, all of its cards and their review logs.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DeckStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) DeckStore
}
