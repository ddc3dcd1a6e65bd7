package service

import (
	"context"
	"log/slog"
	"time"
)

// DueCountReporter is the periodic maintenance job run on the background
// worker pool. It logs the per-deck due and total card counts so operators
// can watch review backlogs build up without querying the database.
type DueCountReporter struct {
	decks  DeckService
	logger *slog.Logger
}

// NewDueCountReporter creates a reporter over the given deck service.
func NewDueCountReporter(decks DeckService, logger *slog.Logger) (*DueCountReporter, error) {
	if decks == nil {
		return nil, &DeckServiceError{
			Operation: "create_reporter",
			Message:   "deckService cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DueCountReporter{
		decks:  decks,
		logger: logger.With("component", "due_count_reporter"),
	}, nil
}

// Report logs the current due/total card counts for every deck. It is shaped
// as a task function so it can be enqueued on the worker pool.
func (r *DueCountReporter) Report(ctx context.Context) error {
	decks, err := r.decks.ListDecks(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	totalDue := 0
	for _, d := range decks {
		totalDue += d.DueCards
		r.logger.Info("deck review backlog",
			"deck_id", d.ID,
			"deck_name", d.Name,
			"total_cards", d.TotalCards,
			"due_cards", d.DueCards)
	}
	r.logger.Info("review backlog reported",
		"decks", len(decks),
		"due_cards", totalDue)
	return nil
}
