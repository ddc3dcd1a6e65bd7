package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("Spanish vocabulary")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if deck.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if deck.Name != "Spanish vocabulary" {
		t.Errorf("Expected name %q, got %q", "Spanish vocabulary", deck.Name)
	}

	if deck.CreatedAt.IsZero() || deck.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Test empty name
	_, err = NewDeck("")
	if !errors.Is(err, ErrDeckNameEmpty) {
		t.Errorf("Expected error %v, got %v", ErrDeckNameEmpty, err)
	}
}

func TestDeckValidate(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("history")
	if err != nil {
		t.Fatalf("Failed to create deck: %v", err)
	}

	deck.ID = uuid.Nil
	if err := deck.Validate(); !errors.Is(err, ErrDeckIDEmpty) {
		t.Errorf("Expected %v, got %v", ErrDeckIDEmpty, err)
	}
}
