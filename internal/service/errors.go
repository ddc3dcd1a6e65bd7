// Package service provides application-level services for managing decks,
// cards, and reviews.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrCardNotFound indicates that the card does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound indicates that the deck does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrInvalidGrade indicates that the review grade is outside the
	// accepted 1..4 range. API layer should map this to HTTP 400.
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrReviewContention indicates that a review repeatedly lost the race
	// against concurrent reviews of the same card and gave up after the
	// configured number of retries. API layer should map this to HTTP 409.
	ErrReviewContention = errors.New("review aborted after repeated conflicts")
)
