package srs

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/revisehq/revise-api/internal/domain"
)

// Common errors
var (
	// ErrNilCard is returned when a nil card is passed to the scheduler.
	ErrNilCard = errors.New("card cannot be nil")

	// ErrInvalidGrade is returned when a review grade is outside 1..4.
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrInvariantViolation is returned when the memory model produces a
	// non-finite or out-of-range value. This indicates a configuration or
	// logic bug; the result must never be clamped and persisted.
	ErrInvariantViolation = errors.New("scheduler invariant violation")
)

// Result bundles the outputs of one scheduling step: the updated card and
// the review log entry that records the decision.
type Result struct {
	Card *domain.Card
	Log  *domain.ReviewLog
}

// Service defines the interface for the scheduling algorithm. It is pure
// computation: no I/O, no persistence.
type Service interface {
	// Schedule computes the card's next memory state and due date from a
	// review grade. The input card is not mutated.
	Schedule(card *domain.Card, grade domain.Grade, now time.Time) (*Result, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params

	// rng drives interval fuzzing and is the only non-deterministic input.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDefaultService creates a scheduler with default parameters.
func NewDefaultService() Service {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a scheduler with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(
	card *domain.Card,
	grade domain.Grade,
	now time.Time,
) (*Result, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !grade.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, grade)
	}

	s.mu.Lock()
	next, log := nextCardState(card, grade, now, s.rng, s.params)
	s.mu.Unlock()

	if err := checkInvariants(next); err != nil {
		return nil, err
	}

	return &Result{Card: next, Log: log}, nil
}

// checkInvariants rejects any computed state the model should never emit.
// A failure here is a bug in the parameters or the formulas, not user error.
func checkInvariants(card *domain.Card) error {
	if math.IsNaN(card.Stability) || math.IsInf(card.Stability, 0) || card.Stability <= 0 {
		return fmt.Errorf("%w: stability %v", ErrInvariantViolation, card.Stability)
	}
	if math.IsNaN(card.Difficulty) || math.IsInf(card.Difficulty, 0) ||
		card.Difficulty < domain.MinDifficulty || card.Difficulty > domain.MaxDifficulty {
		return fmt.Errorf("%w: difficulty %v", ErrInvariantViolation, card.Difficulty)
	}
	if card.ScheduledDays < 1 {
		return fmt.Errorf("%w: scheduled days %d", ErrInvariantViolation, card.ScheduledDays)
	}
	if card.ElapsedDays < 0 {
		return fmt.Errorf("%w: elapsed days %d", ErrInvariantViolation, card.ElapsedDays)
	}
	return nil
}
