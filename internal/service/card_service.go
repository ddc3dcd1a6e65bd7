package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/store"
)

// reviewRetryBackoff is the pause between attempts when a review loses the
// race against a concurrent review of the same card.
const reviewRetryBackoff = 10 * time.Millisecond

// CardDetail bundles a card with its complete review history, ordered by
// review timestamp ascending.
type CardDetail struct {
	Card    *domain.Card
	History []*domain.ReviewLog
}

// CardService provides card-related operations.
type CardService interface {
	// CreateCard creates a new card in the given deck. The card starts in
	// the New state and is immediately due.
	CreateCard(ctx context.Context, deckID uuid.UUID, description string) (*domain.Card, error)

	// GetCard retrieves a card together with its full review history.
	GetCard(ctx context.Context, cardID uuid.UUID) (*CardDetail, error)

	// UpdateCardDescription changes a card's user content. Scheduling state
	// is not touched.
	UpdateCardDescription(ctx context.Context, cardID uuid.UUID, description string) (*domain.Card, error)

	// RemoveCard deletes a card and its review history.
	RemoveCard(ctx context.Context, cardID uuid.UUID) error

	// ListDueCards returns the cards of a deck due at or before asOf,
	// ordered by due date ascending.
	ListDueCards(ctx context.Context, deckID uuid.UUID, asOf time.Time) ([]*domain.Card, error)

	// ReviewCard grades a card and advances its scheduling state. The card
	// update and the review log entry are persisted atomically; concurrent
	// reviews of the same card serialize, and the losing review is retried
	// a bounded number of times before giving up with ErrReviewContention.
	ReviewCard(ctx context.Context, cardID uuid.UUID, grade domain.Grade, now time.Time) (*domain.Card, error)
}

// CardServiceError wraps errors from the card service with context.
type CardServiceError struct {
	// Operation is the operation that failed (e.g., "create_card", "review_card")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
// It maps known store-level sentinels to their service-level counterparts
// and returns those directly without wrapping.
func NewCardServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrDeckNotFound) ||
		errors.Is(err, ErrInvalidGrade) || errors.Is(err, ErrReviewContention) {
		return err
	}
	if errors.Is(err, store.ErrCardNotFound) {
		return ErrCardNotFound
	}
	if errors.Is(err, store.ErrDeckNotFound) {
		return ErrDeckNotFound
	}

	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardStore  store.CardStore
	logStore   store.ReviewLogStore
	txRunner   store.TxRunner
	scheduler  srs.Service
	maxRetries uint64
	logger     *slog.Logger
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cardStore store.CardStore,
	logStore store.ReviewLogStore,
	txRunner store.TxRunner,
	scheduler srs.Service,
	maxRetries int,
	logger *slog.Logger,
) (CardService, error) {
	if cardStore == nil {
		return nil, &CardServiceError{
			Operation: "create_service",
			Message:   "cardStore cannot be nil",
		}
	}
	if logStore == nil {
		return nil, &CardServiceError{
			Operation: "create_service",
			Message:   "logStore cannot be nil",
		}
	}
	if txRunner == nil {
		return nil, &CardServiceError{
			Operation: "create_service",
			Message:   "txRunner cannot be nil",
		}
	}
	if scheduler == nil {
		return nil, &CardServiceError{
			Operation: "create_service",
			Message:   "scheduler cannot be nil",
		}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cardStore:  cardStore,
		logStore:   logStore,
		txRunner:   txRunner,
		scheduler:  scheduler,
		maxRetries: uint64(maxRetries),
		logger:     logger.With("component", "card_service"),
	}, nil
}

// CreateCard creates a new card in the given deck.
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	deckID uuid.UUID,
	description string,
) (*domain.Card, error) {
	card, err := domain.NewCard(deckID, description)
	if err != nil {
		s.logger.Warn("failed to create card object",
			"error", err,
			"deck_id", deckID)
		return nil, NewCardServiceError("create_card", "failed to create card object", err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		s.logger.Error("failed to save card",
			"error", err,
			"card_id", card.ID,
			"deck_id", deckID)
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	s.logger.Info("card created",
		"card_id", card.ID,
		"deck_id", deckID)
	return card, nil
}

// GetCard retrieves a card together with its full review history.
func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*CardDetail, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if !errors.Is(err, store.ErrCardNotFound) {
			s.logger.Error("failed to retrieve card",
				"error", err,
				"card_id", cardID)
		}
		return nil, NewCardServiceError("get_card", "failed to retrieve card", err)
	}

	history, err := s.logStore.ListByCard(ctx, cardID)
	if err != nil {
		s.logger.Error("failed to retrieve review history",
			"error", err,
			"card_id", cardID)
		return nil, NewCardServiceError("get_card", "failed to retrieve review history", err)
	}

	return &CardDetail{Card: card, History: history}, nil
}

// UpdateCardDescription changes a card's user content. The store returns
// the updated row from the same write, so the result cannot reflect a
// concurrent mutation between an update and a reload.
func (s *cardServiceImpl) UpdateCardDescription(
	ctx context.Context,
	cardID uuid.UUID,
	description string,
) (*domain.Card, error) {
	card, err := s.cardStore.UpdateDescription(ctx, cardID, description)
	if err != nil {
		if !errors.Is(err, store.ErrCardNotFound) {
			s.logger.Error("failed to update card description",
				"error", err,
				"card_id", cardID)
		}
		return nil, NewCardServiceError(
			"update_card_description",
			"failed to update card description",
			err,
		)
	}

	s.logger.Info("card description updated", "card_id", cardID)
	return card, nil
}

// RemoveCard deletes a card and its review history.
func (s *cardServiceImpl) RemoveCard(ctx context.Context, cardID uuid.UUID) error {
	if err := s.cardStore.Delete(ctx, cardID); err != nil {
		if !errors.Is(err, store.ErrCardNotFound) {
			s.logger.Error("failed to delete card",
				"error", err,
				"card_id", cardID)
		}
		return NewCardServiceError("remove_card", "failed to delete card", err)
	}

	s.logger.Info("card deleted", "card_id", cardID)
	return nil
}

// ListDueCards returns the due cards of a deck ordered by due date.
func (s *cardServiceImpl) ListDueCards(
	ctx context.Context,
	deckID uuid.UUID,
	asOf time.Time,
) ([]*domain.Card, error) {
	cards, err := s.cardStore.ListDue(ctx, deckID, asOf)
	if err != nil {
		s.logger.Error("failed to list due cards",
			"error", err,
			"deck_id", deckID)
		return nil, NewCardServiceError("list_due_cards", "failed to list due cards", err)
	}
	return cards, nil
}

// ReviewCard grades a card and advances its scheduling state.
func (s *cardServiceImpl) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	grade domain.Grade,
	now time.Time,
) (*domain.Card, error) {
	if !grade.IsValid() {
		return nil, ErrInvalidGrade
	}

	var reviewed *domain.Card

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewConstant(reviewRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := s.txRunner.RunInTx(ctx, func(ctx context.Context, st store.TxStores) error {
			// The row lock held until commit serializes concurrent
			// reviews of this card without blocking other cards.
			card, err := st.Cards.GetForUpdate(ctx, cardID)
			if err != nil {
				return err
			}

			result, err := s.scheduler.Schedule(card, grade, now)
			if err != nil {
				return err
			}

			if err := st.Cards.UpdateScheduling(ctx, result.Card); err != nil {
				return err
			}
			if err := st.ReviewLogs.Append(ctx, result.Log); err != nil {
				return err
			}

			reviewed = result.Card
			return nil
		})
		if store.IsConflictError(txErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		if store.IsConflictError(err) {
			s.logger.Warn("review gave up after repeated conflicts",
				"card_id", cardID,
				"retries", s.maxRetries)
			return nil, ErrReviewContention
		}
		if errors.Is(err, srs.ErrInvalidGrade) {
			return nil, ErrInvalidGrade
		}
		if !errors.Is(err, store.ErrCardNotFound) {
			s.logger.Error("failed to review card",
				"error", err,
				"card_id", cardID,
				"grade", int(grade))
		}
		return nil, NewCardServiceError("review_card", "failed to review card", err)
	}

	s.logger.Info("card reviewed",
		"card_id", cardID,
		"grade", int(grade),
		"due", reviewed.Due,
		"state", string(reviewed.State))
	return reviewed, nil
}
