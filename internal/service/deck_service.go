package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/store"
)

// DeckService provides deck-related operations.
type DeckService interface {
	// CreateDeck creates a new, empty deck with the given name.
	CreateDeck(ctx context.Context, name string) (*domain.Deck, error)

	// GetDeck retrieves a deck by its ID.
	GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error)

	// ListDecks returns all decks with their total and due card counts,
	// the due count evaluated against asOf. Ordered by name.
	ListDecks(ctx context.Context, asOf time.Time) ([]*domain.DeckWithCounts, error)

	// RemoveDeck deletes a deck together with all of its cards and their
	// review history.
	RemoveDeck(ctx context.Context, deckID uuid.UUID) error
}

// DeckServiceError wraps errors from the deck service with context.
type DeckServiceError struct {
	// Operation is the operation that failed (e.g., "create_deck", "remove_deck")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DeckServiceError.
func (e *DeckServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deck service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("deck service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DeckServiceError) Unwrap() error {
	return e.Err
}

// NewDeckServiceError creates a new DeckServiceError.
// It maps known store-level sentinels to their service-level counterparts
// and returns those directly without wrapping.
func NewDeckServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDeckNotFound) {
		return ErrDeckNotFound
	}
	if errors.Is(err, store.ErrDeckNotFound) {
		return ErrDeckNotFound
	}

	return &DeckServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// deckServiceImpl implements the DeckService interface
type deckServiceImpl struct {
	deckStore store.DeckStore
	logger    *slog.Logger
}

// NewDeckService creates a new DeckService.
// It returns an error if the deck store is nil.
func NewDeckService(deckStore store.DeckStore, logger *slog.Logger) (DeckService, error) {
	if deckStore == nil {
		return nil, &DeckServiceError{
			Operation: "create_service",
			Message:   "deckStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		deckStore: deckStore,
		logger:    logger.With("component", "deck_service"),
	}, nil
}

// CreateDeck creates a new, empty deck.
func (s *deckServiceImpl) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		s.logger.Warn("failed to create deck object", "error", err)
		return nil, NewDeckServiceError("create_deck", "failed to create deck object", err)
	}

	if err := s.deckStore.Create(ctx, deck); err != nil {
		s.logger.Error("failed to save deck",
			"error", err,
			"deck_id", deck.ID)
		return nil, NewDeckServiceError("create_deck", "failed to save deck", err)
	}

	s.logger.Info("deck created",
		"deck_id", deck.ID,
		"name", deck.Name)
	return deck, nil
}

// GetDeck retrieves a deck by its ID.
func (s *deckServiceImpl) GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if !errors.Is(err, store.ErrDeckNotFound) {
			s.logger.Error("failed to retrieve deck",
				"error", err,
				"deck_id", deckID)
		}
		return nil, NewDeckServiceError("get_deck", "failed to retrieve deck", err)
	}
	return deck, nil
}

// ListDecks returns all decks with their card counts.
func (s *deckServiceImpl) ListDecks(ctx context.Context, asOf time.Time) ([]*domain.DeckWithCounts, error) {
	decks, err := s.deckStore.List(ctx, asOf)
	if err != nil {
		s.logger.Error("failed to list decks", "error", err)
		return nil, NewDeckServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// RemoveDeck deletes a deck with all of its cards and review history.
func (s *deckServiceImpl) RemoveDeck(ctx context.Context, deckID uuid.UUID) error {
	if err := s.deckStore.Delete(ctx, deckID); err != nil {
		if !errors.Is(err, store.ErrDeckNotFound) {
			s.logger.Error("failed to delete deck",
				"error", err,
				"deck_id", deckID)
		}
		return NewDeckServiceError("remove_deck", "failed to delete deck", err)
	}

	s.logger.Info("deck deleted", "deck_id", deckID)
	return nil
}
