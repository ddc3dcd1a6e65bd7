package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// CardState represents where a card sits in the spaced-repetition lifecycle.
type CardState string

// Possible card state values
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// Grade is the reviewer-supplied outcome of a review attempt.
type Grade int

// Possible review grades, from complete failure to effortless recall.
const (
	GradeAgain Grade = 1
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

// Difficulty bounds for a card's intrinsic hardness parameter.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = fmt.Errorf("%w: card deck ID cannot be empty", ErrValidation)

	// ErrCardDescriptionEmpty is returned when a card's description is empty.
	ErrCardDescriptionEmpty = fmt.Errorf("%w: card description cannot be empty", ErrValidation)

	// ErrCardStateInvalid is returned when a card's state is not one of the
	// closed set of lifecycle states.
	ErrCardStateInvalid = fmt.Errorf("%w: invalid card state", ErrValidation)

	// ErrCardMemoryStateInvalid is returned when a card's memory parameters
	// are negative or non-finite.
	ErrCardMemoryStateInvalid = fmt.Errorf("%w: card memory state out of range", ErrValidation)

	// ErrCardHistoryInconsistent is returned when the review counters and
	// lifecycle state disagree with the presence of a last-review timestamp.
	ErrCardHistoryInconsistent = fmt.Errorf("%w: card review history is inconsistent", ErrValidation)
)

// Card is a single flashcard owned by a deck. The scheduler treats the
// description as opaque user content; all other fields belong to the memory
// model and must only change through a review computation.
type Card struct {
	ID            uuid.UUID  `json:"id"`
	DeckID        uuid.UUID  `json:"deck_id"`
	Description   string     `json:"description"`
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         CardState  `json:"state"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewCard creates a fresh card in the New state, due immediately.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, description string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:          uuid.New(),
		DeckID:      deckID,
		Description: description,
		Due:         now,
		State:       CardStateNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.Description == "" {
		return ErrCardDescriptionEmpty
	}

	if !c.State.IsValid() {
		return ErrCardStateInvalid
	}

	if c.Stability < 0 || !isFinite(c.Stability) {
		return ErrCardMemoryStateInvalid
	}
	if !isFinite(c.Difficulty) ||
		(c.Difficulty != 0 && (c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty)) {
		return ErrCardMemoryStateInvalid
	}
	if c.ElapsedDays < 0 || c.ScheduledDays < 0 || c.Reps < 0 || c.Lapses < 0 {
		return ErrCardMemoryStateInvalid
	}

	// A card has never been reviewed exactly when its counters are zero,
	// its state is New and it carries no last-review timestamp.
	neverReviewed := c.Reps == 0 && c.Lapses == 0 && c.State == CardStateNew
	if neverReviewed != (c.LastReview == nil) {
		return ErrCardHistoryInconsistent
	}

	return nil
}

// UpdateDescription replaces the card's user content and bumps the update
// timestamp. Scheduling fields are never touched here.
func (c *Card) UpdateDescription(description string) error {
	if description == "" {
		return ErrCardDescriptionEmpty
	}
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether the state is one of the closed lifecycle set.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	default:
		return false
	}
}

// IsValid reports whether the grade is within the accepted 1..4 range.
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
