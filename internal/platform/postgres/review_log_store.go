package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

const reviewLogColumns = `id, card_id, due, stability, difficulty, elapsed_days,
	last_elapsed_days, scheduled_days, state, rating, reviewed_at`

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ReviewLogStore.Append
func (s *PostgresReviewLogStore) Append(ctx context.Context, entry *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("review log validation failed during append",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID.String()))
		return err
	}

	query := `
		INSERT INTO review_logs (id, card_id, due, stability, difficulty,
			elapsed_days, last_elapsed_days, scheduled_days, state, rating,
			reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.CardID,
		entry.Due,
		entry.Stability,
		entry.Difficulty,
		entry.ElapsedDays,
		entry.LastElapsedDays,
		entry.ScheduledDays,
		entry.State,
		entry.Rating,
		entry.ReviewedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("card not found during review log append",
				slog.String("card_id", entry.CardID.String()))
			return store.ErrCardNotFound
		}

		log.Error("failed to append review log",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID.String()))
		return MapError(err)
	}

	log.Debug("review log appended",
		slog.String("card_id", entry.CardID.String()),
		slog.Int("rating", int(entry.Rating)))
	return nil
}

// MostRecent implements store.ReviewLogStore.MostRecent
func (s *PostgresReviewLogStore) MostRecent(ctx context.Context, cardID uuid.UUID) (*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + reviewLogColumns + `
		FROM review_logs
		WHERE card_id = $1
		ORDER BY reviewed_at DESC
		LIMIT 1
	`

	entry, err := scanReviewLog(s.db.QueryRowContext(ctx, query, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewLogNotFound
		}
		log.Error("failed to get most recent review log",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, MapError(err)
	}

	return entry, nil
}

// ListByCard implements store.ReviewLogStore.ListByCard
func (s *PostgresReviewLogStore) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + reviewLogColumns + `
		FROM review_logs
		WHERE card_id = $1
		ORDER BY reviewed_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, cardID)
	if err != nil {
		log.Error("failed to query review logs",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.ReviewLog
	for rows.Next() {
		entry, err := scanReviewLog(rows)
		if err != nil {
			log.Error("failed to scan review log row",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID.String()))
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating review log rows",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	return entries, nil
}

func scanReviewLog(row rowScanner) (*domain.ReviewLog, error) {
	var entry domain.ReviewLog
	var state string
	var rating int

	err := row.Scan(
		&entry.ID,
		&entry.CardID,
		&entry.Due,
		&entry.Stability,
		&entry.Difficulty,
		&entry.ElapsedDays,
		&entry.LastElapsedDays,
		&entry.ScheduledDays,
		&state,
		&rating,
		&entry.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.State = domain.CardState(state)
	entry.Rating = domain.Grade(rating)

	return &entry, nil
}
