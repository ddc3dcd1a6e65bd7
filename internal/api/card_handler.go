package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/redact"
	"github.com/revisehq/revise-api/internal/service"
)

// CardResponse represents the response data for a card
type CardResponse struct {
	ID            string     `json:"id"`
	DeckID        string     `json:"deck_id"`
	Description   string     `json:"description"`
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         string     `json:"state"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ReviewLogResponse represents one entry of a card's review history
type ReviewLogResponse struct {
	ID            string    `json:"id"`
	CardID        string    `json:"card_id"`
	Rating        int       `json:"rating"`
	State         string    `json:"state"`
	Due           time.Time `json:"due"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   int       `json:"elapsed_days"`
	ScheduledDays int       `json:"scheduled_days"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}

// CardDetailResponse represents a card together with its review history
type CardDetailResponse struct {
	CardResponse
	History []ReviewLogResponse `json:"history"`
}

// CreateCardRequest represents the request body for creating a card
type CreateCardRequest struct {
	Description string `json:"description" validate:"required,min=1,max=10000"`
}

// UpdateCardRequest represents the request body for editing a card's content
type UpdateCardRequest struct {
	Description string `json:"description" validate:"required,min=1,max=10000"`
}

// ReviewCardRequest represents the request body for grading a card
type ReviewCardRequest struct {
	Grade int `json:"grade" validate:"required,min=1,max=4"`
}

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService service.CardService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /decks/{deckID}/cards requests
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, ok := parseIDParam(w, r, "deckID", "Deck")
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), deckID, req.Description)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /cards/{id} requests.
// The response includes the card's full review history.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "id", "Card")
	if !ok {
		return
	}

	detail, err := h.cardService.GetCard(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardDetailToResponse(detail))
}

// UpdateCard handles PUT /cards/{id} requests.
// Only the card's user content changes; scheduling state is untouched.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := parseIDParam(w, r, "id", "Card")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.cardService.UpdateCardDescription(r.Context(), cardID, req.Description)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /cards/{id} requests.
// The card's review history is removed with it.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := parseIDParam(w, r, "id", "Card")
	if !ok {
		return
	}

	if err := h.cardService.RemoveCard(r.Context(), cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card deleted", slog.String("card_id", cardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ListDueCards handles GET /decks/{deckID}/cards/due requests.
// Cards are ordered by due date ascending, most overdue first.
func (h *CardHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID", "Deck")
	if !ok {
		return
	}

	cards, err := h.cardService.ListDueCards(r.Context(), deckID, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// ReviewCard handles POST /cards/{id}/review requests.
// It grades the card and advances its spaced repetition schedule.
func (h *CardHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := parseIDParam(w, r, "id", "Card")
	if !ok {
		return
	}

	var req ReviewCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.cardService.ReviewCard(r.Context(), cardID, domain.Grade(req.Grade), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card reviewed",
		slog.String("card_id", cardID.String()),
		slog.Int("grade", req.Grade),
		slog.Time("due", card.Due))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// parseIDParam extracts and parses a UUID path parameter, writing a 400
// response and returning false when it is missing or malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, param, entity string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, entity+" ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}

	return id, true
}

// cardToResponse converts a domain.Card to a CardResponse
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:            card.ID.String(),
		DeckID:        card.DeckID.String(),
		Description:   card.Description,
		Due:           card.Due,
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		ElapsedDays:   card.ElapsedDays,
		ScheduledDays: card.ScheduledDays,
		Reps:          card.Reps,
		Lapses:        card.Lapses,
		State:         string(card.State),
		LastReview:    card.LastReview,
		CreatedAt:     card.CreatedAt,
		UpdatedAt:     card.UpdatedAt,
	}
}

// cardDetailToResponse converts a service.CardDetail to a CardDetailResponse
func cardDetailToResponse(detail *service.CardDetail) CardDetailResponse {
	history := make([]ReviewLogResponse, 0, len(detail.History))
	for _, entry := range detail.History {
		history = append(history, ReviewLogResponse{
			ID:            entry.ID.String(),
			CardID:        entry.CardID.String(),
			Rating:        int(entry.Rating),
			State:         string(entry.State),
			Due:           entry.Due,
			Stability:     entry.Stability,
			Difficulty:    entry.Difficulty,
			ElapsedDays:   entry.ElapsedDays,
			ScheduledDays: entry.ScheduledDays,
			ReviewedAt:    entry.ReviewedAt,
		})
	}

	return CardDetailResponse{
		CardResponse: cardToResponse(detail.Card),
		History:      history,
	}
}
