package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/service"
)

type stubDeckService struct {
	deck  *domain.Deck
	decks []*domain.DeckWithCounts
	err   error
}

func (s *stubDeckService) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	return s.deck, s.err
}

func (s *stubDeckService) GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	return s.deck, s.err
}

func (s *stubDeckService) ListDecks(ctx context.Context, asOf time.Time) ([]*domain.DeckWithCounts, error) {
	return s.decks, s.err
}

func (s *stubDeckService) RemoveDeck(ctx context.Context, deckID uuid.UUID) error {
	return s.err
}

func newDeckRouter(svc service.DeckService) http.Handler {
	h := NewDeckHandler(svc, slog.Default())
	r := chi.NewRouter()
	r.Post("/decks", h.CreateDeck)
	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{deckID}", h.GetDeck)
	r.Delete("/decks/{deckID}", h.DeleteDeck)
	return r
}

func TestCreateDeckHandler(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Spanish Vocabulary")
	require.NoError(t, err)
	router := newDeckRouter(&stubDeckService{deck: deck})

	body := bytes.NewBufferString(`{"name": "Spanish Vocabulary"}`)
	req := httptest.NewRequest(http.MethodPost, "/decks", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp DeckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, deck.ID.String(), resp.ID)
	assert.Equal(t, "Spanish Vocabulary", resp.Name)
}

func TestCreateDeckHandlerRejectsBadInput(t *testing.T) {
	t.Parallel()

	router := newDeckRouter(&stubDeckService{})

	for _, body := range []string{"{", `{"name": ""}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/decks", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestListDecksHandler(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Capitals")
	require.NoError(t, err)
	router := newDeckRouter(&stubDeckService{decks: []*domain.DeckWithCounts{
		{Deck: *deck, TotalCards: 12, DueCards: 3},
	}})

	req := httptest.NewRequest(http.MethodGet, "/decks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []DeckWithCountsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 12, resp[0].TotalCards)
	assert.Equal(t, 3, resp[0].DueCards)
}

func TestGetDeckHandler(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Physics")
	require.NoError(t, err)
	router := newDeckRouter(&stubDeckService{deck: deck})

	req := httptest.NewRequest(http.MethodGet, "/decks/"+deck.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	router = newDeckRouter(&stubDeckService{err: service.ErrDeckNotFound})
	req = httptest.NewRequest(http.MethodGet, "/decks/"+uuid.New().String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/decks/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDeckHandler(t *testing.T) {
	t.Parallel()

	router := newDeckRouter(&stubDeckService{})

	req := httptest.NewRequest(http.MethodDelete, "/decks/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
