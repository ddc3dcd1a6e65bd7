package store

import "context"

// TxStores bundles the per-entity stores bound to one atomic unit of work.
type TxStores struct {
	Cards      CardStore
	Decks      DeckStore
	ReviewLogs ReviewLogStore
}

// TxRunner runs a function within a single atomic unit of work. All store
// operations performed through the provided TxStores either commit together
// or leave the store unchanged. Implementations return ErrConflict (possibly
// wrapped) when the unit of work lost a race with a concurrent one and may
// be retried.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, st TxStores) error) error
}
