package srs

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revise-api/internal/domain"
)

// retrievability estimates the probability the card would be recalled right
// now, given its stability and the days elapsed since the last review. The
// power-law curve is anchored so that retrievability(s, s) equals the
// reference retention.
func retrievability(stability, elapsedDays float64, params *Params) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+params.intervalFactor()*elapsedDays/stability, -params.Decay)
}

// initialMemoryState returns the stability and difficulty for a card's very
// first review. There is no prior memory signal to decay, so both come from
// the per-grade lookup tables.
func initialMemoryState(grade domain.Grade, params *Params) (stability, difficulty float64) {
	return params.InitialStability[grade], params.InitialDifficulty[grade]
}

// nextDifficulty nudges difficulty toward harder for failed or hard answers
// and toward easier for easy answers, clamped to the domain bounds.
func nextDifficulty(difficulty float64, grade domain.Grade, params *Params) float64 {
	next := difficulty + params.DifficultyDelta[grade]

	if next < domain.MinDifficulty {
		next = domain.MinDifficulty
	}
	if next > domain.MaxDifficulty {
		next = domain.MaxDifficulty
	}

	return next
}

// stabilityOnSuccess grows stability after a successful review. The marginal
// gain shrinks for cards that are already stable, shrinks with difficulty,
// and shrinks as retrievability rises: the better-retained a card already
// was, the less a successful review teaches the model.
func stabilityOnSuccess(
	stability, difficulty, retr float64,
	grade domain.Grade,
	params *Params,
) float64 {
	gain := params.GrowthRate *
		(11 - difficulty) *
		math.Pow(stability, -params.StabilityDamping) *
		(math.Exp(params.RetrievabilityWeight*(1-retr)) - 1)

	switch grade {
	case domain.GradeHard:
		gain *= params.HardPenalty
	case domain.GradeEasy:
		gain *= params.EasyBonus
	}

	next := stability * (1 + gain)
	if next < params.MinStability {
		next = params.MinStability
	}
	return next
}

// stabilityShortTerm handles a successful repeat review on the same day as
// the previous one. Elapsed time carries no forgetting signal, so stability
// moves by a small per-grade factor and never drops below its prior value.
func stabilityShortTerm(stability float64, grade domain.Grade, params *Params) float64 {
	next := stability * math.Exp(params.ShortTermWeight*(float64(grade)-3+params.ShortTermOffset))
	if next < stability {
		next = stability
	}
	return next
}

// stabilityOnFailure shrinks stability after a lapse. The post-lapse value
// grows with the prior stability, shrinks with difficulty, shrinks as
// retrievability rises, and is always capped below the prior stability.
func stabilityOnFailure(stability, difficulty, retr float64, params *Params) float64 {
	next := params.ForgetScale *
		math.Pow(difficulty, -params.ForgetDifficultyExp) *
		(math.Pow(stability+1, params.ForgetStabilityExp) - 1) *
		math.Exp(params.ForgetRetrievabilityWeight*(1-retr))

	if next > stability {
		next = stability
	}
	if next < params.MinStability {
		next = params.MinStability
	}
	return next
}

// nextIntervalDays inverts the forgetting curve for the target retention to
// find how many days out retrievability will have decayed to the target. The
// result is floored to an integer of at least one day and capped at the
// configured maximum.
func nextIntervalDays(stability float64, params *Params) int {
	ivl := stability *
		(math.Pow(params.TargetRetention, -1/params.Decay) - 1) /
		params.intervalFactor()

	days := int(math.Floor(ivl))
	if days < 1 {
		days = 1
	}
	if days > params.MaxIntervalDays {
		days = params.MaxIntervalDays
	}
	return days
}

// fuzzedInterval perturbs an interval by a bounded random amount so cards
// reviewed together do not all land on the same due date. Very short
// intervals are left untouched; the window widens with the interval length.
func fuzzedInterval(days int, rng *rand.Rand, params *Params) int {
	if !params.FuzzEnabled || days < 3 || rng == nil {
		return days
	}

	var span int
	switch {
	case days < 7:
		span = 1
	case days < 30:
		span = int(math.Round(float64(days) * 0.05))
	default:
		span = int(math.Round(float64(days) * 0.08))
	}

	fuzzed := days + rng.Intn(2*span+1) - span
	if fuzzed < 1 {
		fuzzed = 1
	}
	if fuzzed > params.MaxIntervalDays {
		fuzzed = params.MaxIntervalDays
	}
	return fuzzed
}

// nextCardState runs one full scheduling step: it maps the card's prior
// memory state and a grade to the reviewed card and the matching review log
// entry. The input card is never mutated.
func nextCardState(
	card *domain.Card,
	grade domain.Grade,
	now time.Time,
	rng *rand.Rand,
	params *Params,
) (*domain.Card, *domain.ReviewLog) {
	next := *card

	// Elapsed days are recomputed from the last review timestamp; the
	// stored ElapsedDays field is a cache of the previous computation, not
	// an authority.
	elapsed := 0
	if card.LastReview != nil {
		elapsed = int(now.Sub(*card.LastReview).Hours() / 24)
		if elapsed < 0 {
			elapsed = 0
		}
	}

	firstReview := card.Reps == 0 && card.Lapses == 0
	if firstReview {
		// No prior memory signal to decay: seed from the lookup tables
		// regardless of how long the card sat unreviewed.
		elapsed = 0
		next.Stability, next.Difficulty = initialMemoryState(grade, params)
	} else {
		retr := retrievability(card.Stability, float64(elapsed), params)
		next.Difficulty = nextDifficulty(card.Difficulty, grade, params)

		switch {
		case grade == domain.GradeAgain:
			next.Stability = stabilityOnFailure(card.Stability, next.Difficulty, retr, params)
		case elapsed == 0:
			next.Stability = stabilityShortTerm(card.Stability, grade, params)
		default:
			next.Stability = stabilityOnSuccess(card.Stability, next.Difficulty, retr, grade, params)
		}
	}

	if grade == domain.GradeAgain {
		next.Lapses++
		next.State = domain.CardStateRelearning
	} else {
		next.Reps++
		next.State = domain.CardStateReview
	}

	scheduled := nextIntervalDays(next.Stability, params)
	scheduled = fuzzedInterval(scheduled, rng, params)

	lastReview := now
	next.LastReview = &lastReview
	next.Due = now.AddDate(0, 0, scheduled)
	next.ScheduledDays = scheduled
	next.ElapsedDays = elapsed
	next.UpdatedAt = now

	log := &domain.ReviewLog{
		ID:              uuid.New(),
		CardID:          card.ID,
		Due:             next.Due,
		Stability:       next.Stability,
		Difficulty:      next.Difficulty,
		ElapsedDays:     elapsed,
		LastElapsedDays: card.ElapsedDays,
		ScheduledDays:   scheduled,
		State:           next.State,
		Rating:          grade,
		ReviewedAt:      now,
	}

	return &next, log
}
