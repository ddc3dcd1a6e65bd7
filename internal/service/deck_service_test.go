package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/domain"
)

func TestNewDeckServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewDeckService(nil, nil)
	assert.Error(t, err)
}

func TestCreateDeck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	deck, err := env.deckService.CreateDeck(context.Background(), "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", deck.Name)
	assert.NotEqual(t, uuid.Nil, deck.ID)

	_, err = env.deckService.CreateDeck(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetDeck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deck := env.createDeck(t)

	got, err := env.deckService.GetDeck(context.Background(), deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)

	_, err = env.deckService.GetDeck(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestListDecksWithCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck, err := env.deckService.CreateDeck(ctx, "counting deck")
	require.NoError(t, err)

	env.createCard(t, deck.ID)
	dueOut := env.createCard(t, deck.ID)
	now := time.Now().UTC()
	_, err = env.cardService.ReviewCard(ctx, dueOut.ID, domain.GradeEasy, now)
	require.NoError(t, err)

	decks, err := env.deckService.ListDecks(ctx, now)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, 2, decks[0].TotalCards)
	assert.Equal(t, 1, decks[0].DueCards)
}

func TestRemoveDeckCascades(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	deck := env.createDeck(t)
	card := env.createCard(t, deck.ID)

	require.NoError(t, env.deckService.RemoveDeck(ctx, deck.ID))

	_, err := env.deckService.GetDeck(ctx, deck.ID)
	assert.ErrorIs(t, err, ErrDeckNotFound)

	_, err = env.cardService.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)

	assert.ErrorIs(t, env.deckService.RemoveDeck(ctx, deck.ID), ErrDeckNotFound)
}
