package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/platform/memory"
	"github.com/revisehq/revise-api/internal/store"
)

// testEnv wires a card service against the in-memory store with fuzzing
// disabled so schedules are deterministic.
type testEnv struct {
	store       *memory.Store
	cardService CardService
	deckService DeckService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := memory.NewStore()
	scheduler := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{DisableFuzz: true}))

	cardService, err := NewCardService(
		s.Cards(),
		s.ReviewLogs(),
		memory.NewTxRunner(s),
		scheduler,
		3,
		slog.Default(),
	)
	require.NoError(t, err)

	deckService, err := NewDeckService(s.Decks(), slog.Default())
	require.NoError(t, err)

	return &testEnv{store: s, cardService: cardService, deckService: deckService}
}

func (e *testEnv) createDeck(t *testing.T) *domain.Deck {
	t.Helper()
	deck, err := e.deckService.CreateDeck(context.Background(), "test deck")
	require.NoError(t, err)
	return deck
}

func (e *testEnv) createCard(t *testing.T, deckID uuid.UUID) *domain.Card {
	t.Helper()
	card, err := e.cardService.CreateCard(context.Background(), deckID, "test card")
	require.NoError(t, err)
	return card
}

func TestNewCardServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	s := memory.NewStore()
	scheduler := srs.NewDefaultService()
	runner := memory.NewTxRunner(s)

	tests := []struct {
		name      string
		cardStore store.CardStore
		logStore  store.ReviewLogStore
		txRunner  store.TxRunner
		scheduler srs.Service
	}{
		{"nil cardStore", nil, s.ReviewLogs(), runner, scheduler},
		{"nil logStore", s.Cards(), nil, runner, scheduler},
		{"nil txRunner", s.Cards(), s.ReviewLogs(), nil, scheduler},
		{"nil scheduler", s.Cards(), s.ReviewLogs(), runner, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCardService(tt.cardStore, tt.logStore, tt.txRunner, tt.scheduler, 3, nil)
			assert.Error(t, err)
		})
	}
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)

	card, err := env.cardService.CreateCard(context.Background(), deck.ID, "What is a monad?")
	require.NoError(t, err)

	assert.Equal(t, deck.ID, card.DeckID)
	assert.Equal(t, domain.CardStateNew, card.State)
	assert.Zero(t, card.Reps)

	// Missing deck
	_, err = env.cardService.CreateCard(context.Background(), uuid.New(), "orphan")
	assert.ErrorIs(t, err, ErrDeckNotFound)

	// Empty description
	_, err = env.cardService.CreateCard(context.Background(), deck.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewCardFirstReview(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)

	now := time.Now().UTC()
	reviewed, err := env.cardService.ReviewCard(context.Background(), card.ID, domain.GradeGood, now)
	require.NoError(t, err)

	assert.Equal(t, 1, reviewed.Reps)
	assert.Equal(t, 0, reviewed.Lapses)
	assert.Equal(t, domain.CardStateReview, reviewed.State)
	assert.False(t, reviewed.Due.Before(now.AddDate(0, 0, 1)))

	// The update and the log land together.
	detail, err := env.cardService.GetCard(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Card.Reps)
	require.Len(t, detail.History, 1)
	assert.Equal(t, domain.GradeGood, detail.History[0].Rating)
	assert.Equal(t, reviewed.Stability, detail.History[0].Stability)
}

func TestReviewCardEveryReviewAppendsOneLog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)
	ctx := context.Background()

	now := time.Now().UTC()
	grades := []domain.Grade{domain.GradeGood, domain.GradeAgain, domain.GradeHard}
	for i, grade := range grades {
		_, err := env.cardService.ReviewCard(ctx, card.ID, grade, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	detail, err := env.cardService.GetCard(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, len(grades))

	// reps + lapses grows by exactly one per review.
	assert.Equal(t, len(grades), detail.Card.Reps+detail.Card.Lapses)
	assert.Equal(t, 1, detail.Card.Lapses)
}

func TestReviewCardInvalidGrade(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)

	_, err := env.cardService.ReviewCard(context.Background(), card.ID, 0, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidGrade)

	_, err = env.cardService.ReviewCard(context.Background(), card.ID, 7, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidGrade)

	// No state change, no log.
	detail, err := env.cardService.GetCard(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.Card.Reps)
	assert.Empty(t, detail.History)
}

func TestReviewCardNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.cardService.ReviewCard(context.Background(), uuid.New(), domain.GradeGood, time.Now().UTC())
	assert.ErrorIs(t, err, ErrCardNotFound)
}

// conflictTxRunner always reports contention, as if every attempt lost the
// race against a concurrent review.
type conflictTxRunner struct {
	calls int
}

func (r *conflictTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, st store.TxStores) error) error {
	r.calls++
	return store.ErrConflict
}

func TestReviewCardGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	s := memory.NewStore()
	runner := &conflictTxRunner{}

	svc, err := NewCardService(
		s.Cards(),
		s.ReviewLogs(),
		runner,
		srs.NewDefaultService(),
		3,
		slog.Default(),
	)
	require.NoError(t, err)

	_, err = svc.ReviewCard(context.Background(), uuid.New(), domain.GradeGood, time.Now().UTC())
	assert.ErrorIs(t, err, ErrReviewContention)
	assert.Equal(t, 4, runner.calls, "one initial attempt plus three retries")
}

func TestUpdateCardDescription(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)

	updated, err := env.cardService.UpdateCardDescription(context.Background(), card.ID, "new text")
	require.NoError(t, err)
	assert.Equal(t, "new text", updated.Description)
	assert.Equal(t, card.Reps, updated.Reps, "scheduling fields are untouched")
	assert.Equal(t, card.Due.Unix(), updated.Due.Unix())

	_, err = env.cardService.UpdateCardDescription(context.Background(), uuid.New(), "text")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestRemoveCard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)
	ctx := context.Background()

	_, err := env.cardService.ReviewCard(ctx, card.ID, domain.GradeGood, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, env.cardService.RemoveCard(ctx, card.ID))

	_, err = env.cardService.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)

	assert.ErrorIs(t, env.cardService.RemoveCard(ctx, card.ID), ErrCardNotFound)
}

func TestListDueCards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)
	ctx := context.Background()

	first := env.createCard(t, deck.ID)
	second := env.createCard(t, deck.ID)
	reviewedOut := env.createCard(t, deck.ID)
	now := time.Now().UTC()

	// Push one card out of the due window by reviewing it.
	_, err := env.cardService.ReviewCard(ctx, reviewedOut.ID, domain.GradeEasy, now)
	require.NoError(t, err)

	due, err := env.cardService.ListDueCards(ctx, deck.ID, now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	ids := []uuid.UUID{due[0].ID, due[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	// Empty deck yields an empty list, not an error.
	otherDeck := env.createDeck(t)
	due, err = env.cardService.ListDueCards(ctx, otherDeck.ID, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}
