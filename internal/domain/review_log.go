package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewLog validation errors
var (
	// ErrReviewLogIDEmpty is returned when a review log ID is empty or nil.
	ErrReviewLogIDEmpty = fmt.Errorf("%w: review log ID cannot be empty", ErrValidation)

	// ErrReviewLogCardIDEmpty is returned when a review log's card ID is empty or nil.
	ErrReviewLogCardIDEmpty = fmt.Errorf("%w: review log card ID cannot be empty", ErrValidation)

	// ErrReviewLogRatingInvalid is returned when the recorded rating is outside 1..4.
	ErrReviewLogRatingInvalid = fmt.Errorf("%w: review log rating must be between 1 and 4", ErrValidation)

	// ErrReviewLogReviewedAtZero is returned when the review timestamp is missing.
	ErrReviewLogReviewedAtZero = fmt.Errorf("%w: review log reviewed-at timestamp cannot be zero", ErrValidation)
)

// ReviewLog is an immutable, append-only record of a single review event.
// It snapshots the card's scheduling decision so elapsed time can be
// reconstructed for the next review and past decisions can be audited.
// Entries for a card are totally ordered by ReviewedAt; the scheduler only
// ever reads the most recent entry per card.
type ReviewLog struct {
	ID              uuid.UUID `json:"id"`
	CardID          uuid.UUID `json:"card_id"`
	Due             time.Time `json:"due"`
	Stability       float64   `json:"stability"`
	Difficulty      float64   `json:"difficulty"`
	ElapsedDays     int       `json:"elapsed_days"`
	LastElapsedDays int       `json:"last_elapsed_days"`
	ScheduledDays   int       `json:"scheduled_days"`
	State           CardState `json:"state"`
	Rating          Grade     `json:"rating"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

// Validate checks if the ReviewLog has valid data.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil {
		return ErrReviewLogIDEmpty
	}

	if l.CardID == uuid.Nil {
		return ErrReviewLogCardIDEmpty
	}

	if !l.Rating.IsValid() {
		return ErrReviewLogRatingInvalid
	}

	if !l.State.IsValid() {
		return ErrCardStateInvalid
	}

	if l.ReviewedAt.IsZero() {
		return ErrReviewLogReviewedAtZero
	}

	if l.ElapsedDays < 0 || l.LastElapsedDays < 0 || l.ScheduledDays < 0 {
		return ErrCardMemoryStateInvalid
	}

	return nil
}
