package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns validation errors if the card data is invalid and
	// ErrInvalidEntity if the owning deck does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card and locks its row for the duration of
	// the surrounding transaction, serializing concurrent reviews of the
	// same card without blocking reviews of other cards. Outside a
	// transaction it behaves like GetByID.
	// Returns ErrCardNotFound if the card does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// UpdateDescription modifies an existing card's user content only and
	// returns the updated card as written, so callers never need a
	// separate reload that could observe a concurrent mutation.
	// Scheduling fields are deliberately not reachable through this method.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*domain.Card, error)

	// UpdateScheduling persists the scheduling fields produced by the
	// memory model (due, stability, difficulty, elapsed/scheduled days,
	// reps, lapses, state, last review). MUST be run within a transaction
	// together with the matching review log append.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateScheduling(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID. The card's review
	// log entries are removed in the same operation via the schema's
	// cascading foreign key.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDue returns the cards of a deck with due <= asOf, ordered by due
	// ascending and then by ID ascending for determinism.
	ListDue(ctx context.Context, deckID uuid.UUID, asOf time.Time) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
