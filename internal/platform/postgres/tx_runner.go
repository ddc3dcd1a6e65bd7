package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

// TxRunner implements store.TxRunner on top of *sql.DB transactions. Each
// RunInTx call opens a transaction and hands the callback stores bound to it,
// so every store operation inside the callback commits or rolls back as a
// unit. Contention errors from Postgres (serialization failures, deadlocks)
// surface as store.ErrConflict via MapError, so callers can retry.
type TxRunner struct {
	db         *sql.DB
	cards      *PostgresCardStore
	decks      *PostgresDeckStore
	reviewLogs *PostgresReviewLogStore
}

// NewTxRunner creates a TxRunner that derives transaction-bound stores from
// the given base stores.
func NewTxRunner(
	db *sql.DB,
	cards *PostgresCardStore,
	decks *PostgresDeckStore,
	reviewLogs *PostgresReviewLogStore,
) *TxRunner {
	if db == nil {
		panic("db cannot be nil")
	}

	return &TxRunner{
		db:         db,
		cards:      cards,
		decks:      decks,
		reviewLogs: reviewLogs,
	}
}

var _ store.TxRunner = (*TxRunner)(nil)

// RunInTx implements store.TxRunner.RunInTx
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, st store.TxStores) error) error {
	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		st := store.TxStores{
			Cards:      r.cards.WithTx(tx),
			Decks:      r.decks.WithTx(tx),
			ReviewLogs: r.reviewLogs.WithTx(tx),
		}
		return fn(ctx, st)
	})
	if err != nil {
		if IsRetryableConflict(err) {
			logger.FromContext(ctx).Debug("transaction lost a concurrency race",
				slog.String("error", err.Error()))
			return store.ErrConflict
		}
		return err
	}
	return nil
}
