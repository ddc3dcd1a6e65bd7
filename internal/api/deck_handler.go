package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/redact"
	"github.com/revisehq/revise-api/internal/service"
)

// DeckResponse represents the response data for a deck
type DeckResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeckWithCountsResponse represents a deck with its card counts
type DeckWithCountsResponse struct {
	DeckResponse
	TotalCards int `json:"total_cards"`
	DueCards   int `json:"due_cards"`
}

// CreateDeckRequest represents the request body for creating a deck
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	deckService service.DeckService
	logger      *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(deckService service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		deckService: deckService,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /decks requests
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ListDecks handles GET /decks requests.
// Each deck carries its total card count and the count of cards currently due.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.ListDecks(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]DeckWithCountsResponse, 0, len(decks))
	for _, deck := range decks {
		responses = append(responses, DeckWithCountsResponse{
			DeckResponse: deckToResponse(&deck.Deck),
			TotalCards:   deck.TotalCards,
			DueCards:     deck.DueCards,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetDeck handles GET /decks/{deckID} requests
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID", "Deck")
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// DeleteDeck handles DELETE /decks/{deckID} requests.
// The deck's cards and their review history are removed with it.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, ok := parseIDParam(w, r, "deckID", "Deck")
	if !ok {
		return
	}

	if err := h.deckService.RemoveDeck(r.Context(), deckID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck deleted", slog.String("deck_id", deckID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// deckToResponse converts a domain.Deck to a DeckResponse
func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        deck.ID.String(),
		Name:      deck.Name,
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
}
