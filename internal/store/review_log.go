package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review history.
// There are no update operations; entries are removed only by the cascading
// delete triggered by card or deck removal.
type ReviewLogStore interface {
	// Append adds a new review log entry. MUST be run within a transaction
	// together with the matching card scheduling update.
	// Returns validation errors if the entry is invalid.
	Append(ctx context.Context, log *domain.ReviewLog) error

	// MostRecent returns the single latest entry for a card by review
	// timestamp. Returns ErrReviewLogNotFound if the card has never been
	// reviewed.
	MostRecent(ctx context.Context, cardID uuid.UUID) (*domain.ReviewLog, error)

	// ListByCard returns a card's full history ordered by review timestamp
	// ascending.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error)

	// WithTx returns a new ReviewLogStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ReviewLogStore
}
