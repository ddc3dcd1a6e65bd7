package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntitySpecificNotFoundErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrCardNotFound, ErrDeckNotFound, ErrReviewLogNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("errors.Is(%v, ErrNotFound) = false, want true", err)
		}
		if !IsNotFoundError(err) {
			t.Errorf("IsNotFoundError(%v) = false, want true", err)
		}
	}
}

func TestIsNotFoundErrorWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading card: %w", ErrCardNotFound)
	if !IsNotFoundError(wrapped) {
		t.Errorf("IsNotFoundError(%v) = false, want true", wrapped)
	}

	if IsNotFoundError(errors.New("something else")) {
		t.Error("IsNotFoundError reported true for an unrelated error")
	}
	if IsNotFoundError(nil) {
		t.Error("IsNotFoundError(nil) = true, want false")
	}
}

func TestIsConflictError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("review transaction: %w", ErrConflict)
	if !IsConflictError(wrapped) {
		t.Errorf("IsConflictError(%v) = false, want true", wrapped)
	}
	if IsConflictError(ErrNotFound) {
		t.Error("IsConflictError(ErrNotFound) = true, want false")
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	base := errors.New("driver failure")
	err := NewStoreError("card", "update", "scheduling write failed", base)

	if !errors.Is(err, base) {
		t.Errorf("errors.Is(%v, base) = false, want true", err)
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("errors.As failed for %v", err)
	}
	if storeErr.Entity != "card" || storeErr.Operation != "update" {
		t.Errorf("unexpected fields: entity=%q operation=%q", storeErr.Entity, storeErr.Operation)
	}

	want := "update operation on card failed: scheduling write failed: driver failure"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noWrap := NewStoreError("deck", "delete", "gone", nil)
	if got, want := noWrap.Error(), "delete operation on deck failed: gone"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
