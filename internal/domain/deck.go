package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)

	// ErrDeckNameEmpty is returned when a deck's name is empty.
	ErrDeckNameEmpty = fmt.Errorf("%w: deck name cannot be empty", ErrValidation)
)

// Deck groups cards for the product surface. The scheduling engine itself is
// deck-agnostic; decks exist as the container the due-card queries run
// against.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeckWithCounts is a deck annotated with its card totals for listing.
type DeckWithCounts struct {
	Deck
	TotalCards int `json:"total_cards"`
	DueCards   int `json:"due_cards"`
}

// NewDeck creates a new Deck with the given name.
// Returns an error if validation fails.
func NewDeck(name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.Name == "" {
		return ErrDeckNameEmpty
	}

	return nil
}
