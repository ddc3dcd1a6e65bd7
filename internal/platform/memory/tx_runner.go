package memory

import (
	"context"

	"github.com/revisehq/revise-api/internal/store"
)

// TxRunner implements store.TxRunner for the in-memory store. A unit of
// work holds the store mutex from snapshot to commit or rollback, so all
// other store access — transactional or not — blocks until it finishes.
// Rollback therefore only ever discards the unit's own writes.
type TxRunner struct {
	store *Store
}

// NewTxRunner creates a TxRunner over the given store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

var _ store.TxRunner = (*TxRunner)(nil)

// RunInTx implements store.TxRunner.RunInTx
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, st store.TxStores) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	decks, cards, logs := r.store.snapshot()

	st := store.TxStores{
		Cards:      &CardStore{store: r.store, inTx: true},
		Decks:      &DeckStore{store: r.store, inTx: true},
		ReviewLogs: &ReviewLogStore{store: r.store, inTx: true},
	}

	if err := fn(ctx, st); err != nil {
		r.store.restore(decks, cards, logs)
		return err
	}
	return nil
}
