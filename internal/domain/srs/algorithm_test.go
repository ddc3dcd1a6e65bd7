package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/domain"
)

// deterministicParams returns the defaults with fuzzing disabled so interval
// computations are exactly reproducible.
func deterministicParams() *Params {
	p := NewDefaultParams()
	p.FuzzEnabled = false
	return p
}

func newTestCard(t *testing.T) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "test card")
	require.NoError(t, err)
	return card
}

func reviewedTestCard(t *testing.T, stability, difficulty float64, reps int, lastReview time.Time) *domain.Card {
	t.Helper()
	card := newTestCard(t)
	card.Stability = stability
	card.Difficulty = difficulty
	card.Reps = reps
	card.State = domain.CardStateReview
	card.LastReview = &lastReview
	return card
}

func TestRetrievabilityAnchor(t *testing.T) {
	t.Parallel()

	params := deterministicParams()

	// When elapsed time equals stability, retrievability must equal the
	// reference retention the curve is anchored to.
	for _, stability := range []float64{0.5, 2.4, 10, 100} {
		r := retrievability(stability, stability, params)
		assert.InDelta(t, referenceRetention, r, 1e-9)
	}

	// Retrievability decays monotonically with elapsed time.
	r1 := retrievability(10, 1, params)
	r2 := retrievability(10, 10, params)
	r3 := retrievability(10, 100, params)
	assert.Greater(t, r1, r2)
	assert.Greater(t, r2, r3)

	// A just-reviewed card is fully retained.
	assert.InDelta(t, 1.0, retrievability(10, 0, params), 1e-9)
}

func TestNextDifficultyClamped(t *testing.T) {
	t.Parallel()

	params := deterministicParams()

	assert.InDelta(t, 6.13, nextDifficulty(4.93, domain.GradeAgain, params), 1e-9)
	assert.InDelta(t, 4.93, nextDifficulty(4.93, domain.GradeGood, params), 1e-9)

	// Clamped at the bounds
	assert.InDelta(t, domain.MaxDifficulty, nextDifficulty(9.5, domain.GradeAgain, params), 1e-9)
	assert.InDelta(t, domain.MinDifficulty, nextDifficulty(1.2, domain.GradeEasy, params), 1e-9)
}

func TestStabilityOnSuccessOrdering(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	retr := retrievability(10, 10, params)

	hard := stabilityOnSuccess(10, 5, retr, domain.GradeHard, params)
	good := stabilityOnSuccess(10, 5, retr, domain.GradeGood, params)
	easy := stabilityOnSuccess(10, 5, retr, domain.GradeEasy, params)

	// Higher grades grow stability faster, and all grow it.
	assert.Greater(t, hard, 10.0)
	assert.Greater(t, good, hard)
	assert.Greater(t, easy, good)

	// Easier cards gain more than harder cards.
	easyCard := stabilityOnSuccess(10, 2, retr, domain.GradeGood, params)
	hardCard := stabilityOnSuccess(10, 9, retr, domain.GradeGood, params)
	assert.Greater(t, easyCard, hardCard)

	// The better-retained the card was, the smaller the marginal gain.
	early := stabilityOnSuccess(10, 5, retrievability(10, 2, params), domain.GradeGood, params)
	late := stabilityOnSuccess(10, 5, retrievability(10, 30, params), domain.GradeGood, params)
	assert.Greater(t, late, early)
}

func TestStabilityOnFailureCappedBelowPrior(t *testing.T) {
	t.Parallel()

	params := deterministicParams()

	for _, stability := range []float64{0.5, 2.4, 10, 365} {
		retr := retrievability(stability, stability, params)
		next := stabilityOnFailure(stability, 5, retr, params)
		assert.Less(t, next, stability, "post-lapse stability must drop, prior=%v", stability)
		assert.GreaterOrEqual(t, next, params.MinStability)
	}
}

func TestStabilityShortTermNeverShrinks(t *testing.T) {
	t.Parallel()

	params := deterministicParams()

	for _, grade := range []domain.Grade{domain.GradeHard, domain.GradeGood, domain.GradeEasy} {
		next := stabilityShortTerm(2.4, grade, params)
		assert.GreaterOrEqual(t, next, 2.4, "grade %d", grade)
	}

	// Easy grows more than good.
	good := stabilityShortTerm(2.4, domain.GradeGood, params)
	easy := stabilityShortTerm(2.4, domain.GradeEasy, params)
	assert.Greater(t, easy, good)
}

func TestNextIntervalDays(t *testing.T) {
	t.Parallel()

	params := deterministicParams()

	// With the target retention at the reference point, the interval tracks
	// stability directly.
	assert.Equal(t, 10, nextIntervalDays(10, params))

	// Tiny stability still yields at least one day.
	assert.Equal(t, 1, nextIntervalDays(0.1, params))

	// Capped at the configured maximum.
	params.MaxIntervalDays = 30
	assert.Equal(t, 30, nextIntervalDays(1000, params))

	// A higher retention target shortens the interval.
	params = deterministicParams()
	params.TargetRetention = 0.95
	assert.Less(t, nextIntervalDays(10, params), 10)
}

func TestFuzzedInterval(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	rng := rand.New(rand.NewSource(42))

	// Short intervals are never fuzzed.
	assert.Equal(t, 1, fuzzedInterval(1, rng, params))
	assert.Equal(t, 2, fuzzedInterval(2, rng, params))

	// Fuzz stays within the documented window.
	for i := 0; i < 200; i++ {
		got := fuzzedInterval(5, rng, params)
		assert.InDelta(t, 5, got, 1)

		got = fuzzedInterval(20, rng, params)
		assert.InDelta(t, 20, got, 1)

		got = fuzzedInterval(100, rng, params)
		assert.InDelta(t, 100, got, 8)
	}

	// Disabled fuzz and nil rng are both pass-through.
	params.FuzzEnabled = false
	assert.Equal(t, 100, fuzzedInterval(100, rng, params))
	params.FuzzEnabled = true
	assert.Equal(t, 100, fuzzedInterval(100, nil, params))
}

func TestFirstReviewSeedsFromTables(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()

	for grade, wantStability := range params.InitialStability {
		card := newTestCard(t)
		next, log := nextCardState(card, grade, now, nil, params)

		assert.InDelta(t, wantStability, next.Stability, 1e-9, "grade %d", grade)
		assert.InDelta(t, params.InitialDifficulty[grade], next.Difficulty, 1e-9, "grade %d", grade)
		assert.Equal(t, 0, next.ElapsedDays, "first review has no elapsed time")
		assert.Equal(t, grade, log.Rating)
	}
}

func TestFirstReviewGood(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	card := newTestCard(t)

	next, log := nextCardState(card, domain.GradeGood, now, nil, params)

	assert.Equal(t, 1, next.Reps)
	assert.Equal(t, 0, next.Lapses)
	assert.NotEqual(t, domain.CardStateNew, next.State)
	assert.Equal(t, domain.CardStateReview, next.State)
	assert.GreaterOrEqual(t, next.ScheduledDays, 1)
	assert.False(t, next.Due.Before(now.AddDate(0, 0, 1)), "due must be at least one day out")
	require.NotNil(t, next.LastReview)
	assert.Equal(t, now, *next.LastReview)

	// The log snapshots the post-review state.
	assert.Equal(t, next.Stability, log.Stability)
	assert.Equal(t, next.Difficulty, log.Difficulty)
	assert.Equal(t, next.ScheduledDays, log.ScheduledDays)
	assert.Equal(t, next.State, log.State)
	assert.Equal(t, next.Due, log.Due)
	assert.Equal(t, now, log.ReviewedAt)
	assert.Equal(t, card.ID, log.CardID)
}

func TestLapseDropsStability(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	card := reviewedTestCard(t, 10, 5, 3, now.AddDate(0, 0, -10))

	next, log := nextCardState(card, domain.GradeAgain, now, nil, params)

	assert.Equal(t, 1, next.Lapses)
	assert.Equal(t, 3, next.Reps, "a lapse does not increment reps")
	assert.Equal(t, domain.CardStateRelearning, next.State)
	assert.Less(t, next.Stability, 10.0)
	assert.Equal(t, 10, next.ElapsedDays)
	assert.Equal(t, domain.GradeAgain, log.Rating)
	assert.Equal(t, domain.CardStateRelearning, log.State)
}

func TestSameDaySuccessStillGrows(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	card := reviewedTestCard(t, 2.4, 4.93, 1, now.Add(-2*time.Hour))

	next, _ := nextCardState(card, domain.GradeGood, now, nil, params)

	assert.Equal(t, 0, next.ElapsedDays)
	assert.Greater(t, next.Stability, 2.4, "a same-day success must not shrink stability")
	assert.Equal(t, 2, next.Reps)
}

func TestElapsedRecomputedFromLastReview(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	card := reviewedTestCard(t, 10, 5, 3, now.AddDate(0, 0, -7))

	// The stored cache disagrees with the timestamp delta; the timestamp wins.
	card.ElapsedDays = 99

	next, log := nextCardState(card, domain.GradeGood, now, nil, params)

	assert.Equal(t, 7, next.ElapsedDays)
	assert.Equal(t, 7, log.ElapsedDays)
	assert.Equal(t, 99, log.LastElapsedDays, "the log keeps the previous cached value")
}

func TestNextCardStateDeterministic(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	card := reviewedTestCard(t, 4.2, 6.1, 2, now.AddDate(0, 0, -5))

	a, _ := nextCardState(card, domain.GradeHard, now, nil, params)
	b, _ := nextCardState(card, domain.GradeHard, now, nil, params)

	assert.Equal(t, a.Stability, b.Stability)
	assert.Equal(t, a.Difficulty, b.Difficulty)
	assert.Equal(t, a.ScheduledDays, b.ScheduledDays)
	assert.Equal(t, a.Due, b.Due)
}

func TestNextCardStateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	params := deterministicParams()
	now := time.Now().UTC()
	lastReview := now.AddDate(0, 0, -5)
	card := reviewedTestCard(t, 4.2, 6.1, 2, lastReview)
	before := *card

	_, _ = nextCardState(card, domain.GradeGood, now, nil, params)

	assert.Equal(t, before.Stability, card.Stability)
	assert.Equal(t, before.Reps, card.Reps)
	assert.Equal(t, before.State, card.State)
	assert.Equal(t, lastReview, *card.LastReview)
}
