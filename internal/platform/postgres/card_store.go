package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

// cardColumns is the canonical column list scanned into a domain.Card.
const cardColumns = `id, deck_id, description, due, stability, difficulty,
	elapsed_days, scheduled_days, reps, lapses, state, last_review,
	created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (id, deck_id, description, due, stability, difficulty,
			elapsed_days, scheduled_days, reps, lapses, state, last_review,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.Description,
		card.Due,
		card.Stability,
		card.Difficulty,
		card.ElapsedDays,
		card.ScheduledDays,
		card.Reps,
		card.Lapses,
		card.State,
		card.LastReview,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("deck not found during card creation",
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return store.ErrDeckNotFound
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.CardStore.GetForUpdate
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresCardStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// UpdateDescription implements store.CardStore.UpdateDescription
func (s *PostgresCardStore) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if description == "" {
		return nil, domain.ErrCardDescriptionEmpty
	}

	// RETURNING makes the update and the read one statement, so the
	// returned card is exactly the row this update produced.
	query := `
		UPDATE cards
		SET description = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + cardColumns + `
	`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, description, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found for description update",
				slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to update card description",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("card description updated", slog.String("card_id", id.String()))
	return card, nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
func (s *PostgresCardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during scheduling update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET due = $1, stability = $2, difficulty = $3, elapsed_days = $4,
			scheduled_days = $5, reps = $6, lapses = $7, state = $8,
			last_review = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Due,
		card.Stability,
		card.Difficulty,
		card.ElapsedDays,
		card.ScheduledDays,
		card.Reps,
		card.Lapses,
		card.State,
		card.LastReview,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		log.Error("failed to update card scheduling",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for scheduling update",
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Debug("card scheduling updated",
		slog.String("card_id", card.ID.String()),
		slog.Time("due", card.Due),
		slog.Int("scheduled_days", card.ScheduledDays))
	return nil
}

// Delete implements store.CardStore.Delete
// The card's review log entries are removed by the ON DELETE CASCADE foreign
// key on review_logs.card_id.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for delete", slog.String("card_id", id.String()))
		return err
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// ListDue implements store.CardStore.ListDue
func (s *PostgresCardStore) ListDue(
	ctx context.Context,
	deckID uuid.UUID,
	asOf time.Time,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = $1 AND due <= $2
		ORDER BY due ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, deckID, asOf)
	if err != nil {
		log.Error("failed to query due cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan due card row",
				slog.String("error", err.Error()),
				slog.String("deck_id", deckID.String()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating due card rows",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}

	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var state string
	var lastReview sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Description,
		&card.Due,
		&card.Stability,
		&card.Difficulty,
		&card.ElapsedDays,
		&card.ScheduledDays,
		&card.Reps,
		&card.Lapses,
		&state,
		&lastReview,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.State = domain.CardState(state)
	if lastReview.Valid {
		t := lastReview.Time
		card.LastReview = &t
	}

	return &card, nil
}
