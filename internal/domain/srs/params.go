package srs

import (
	"math"

	"github.com/revisehq/revise-api/internal/domain"
)

// referenceRetention anchors the forgetting curve: the interval factor is
// derived so that retrievability equals this value when elapsed time equals
// the card's stability.
const referenceRetention = 0.9

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// TargetRetention is the recall probability the scheduler aims for when
	// choosing the next interval. Must be in (0, 1).
	TargetRetention float64

	// Decay is the exponent of the power-law forgetting curve.
	Decay float64

	// MaxIntervalDays caps how far out a single review can be scheduled.
	MaxIntervalDays int

	// FuzzEnabled applies a bounded random perturbation to computed
	// intervals so cards do not cluster on identical due dates. Disable for
	// deterministic output in tests.
	FuzzEnabled bool

	// Initial memory state for the very first review, per grade. A first
	// review has no prior memory signal to decay, so stability and
	// difficulty come from these tables instead of the curve update.
	InitialStability  map[domain.Grade]float64
	InitialDifficulty map[domain.Grade]float64

	// DifficultyDelta nudges difficulty after each repeat review: positive
	// for failed or hard answers, negative for easy ones. The result is
	// clamped to the domain difficulty bounds.
	DifficultyDelta map[domain.Grade]float64

	// MinStability is the floor applied to every stability update.
	MinStability float64

	// Stability growth shape for successful reviews. The multiplicative
	// gain scales with GrowthRate, shrinks for already-stable cards via
	// StabilityDamping (S^-damping), grows as retrievability drops via
	// RetrievabilityWeight (e^(w*(1-R)) - 1), and shrinks with difficulty.
	GrowthRate           float64
	StabilityDamping     float64
	RetrievabilityWeight float64
	HardPenalty          float64
	EasyBonus            float64

	// Same-day review growth shape. A repeat review with zero elapsed days
	// carries no forgetting-curve signal, so stability moves by
	// e^(ShortTermWeight * (grade - 3 + ShortTermOffset)) instead, never
	// dropping below its prior value for a successful grade.
	ShortTermWeight float64
	ShortTermOffset float64

	// Post-lapse stability shape for failed reviews. The forgotten
	// stability grows with the prior stability (via ForgetStabilityExp),
	// shrinks with difficulty (via ForgetDifficultyExp) and shrinks as
	// retrievability rises (via ForgetRetrievabilityWeight); it is always
	// capped below the prior stability.
	ForgetScale                float64
	ForgetDifficultyExp        float64
	ForgetStabilityExp         float64
	ForgetRetrievabilityWeight float64
}

// NewDefaultParams creates a new Params instance with default values.
// The stability and difficulty constants follow the published FSRS weights.
func NewDefaultParams() *Params {
	return &Params{
		TargetRetention: 0.9,
		Decay:           0.5,
		MaxIntervalDays: 36500,
		FuzzEnabled:     true,

		InitialStability: map[domain.Grade]float64{
			domain.GradeAgain: 0.4,
			domain.GradeHard:  0.6,
			domain.GradeGood:  2.4,
			domain.GradeEasy:  5.8,
		},

		InitialDifficulty: map[domain.Grade]float64{
			domain.GradeAgain: 6.81,
			domain.GradeHard:  5.87,
			domain.GradeGood:  4.93,
			domain.GradeEasy:  3.99,
		},

		DifficultyDelta: map[domain.Grade]float64{
			domain.GradeAgain: 1.2,
			domain.GradeHard:  0.6,
			domain.GradeGood:  0.0,
			domain.GradeEasy:  -0.6,
		},

		MinStability: 0.1,

		GrowthRate:           4.69, // e^1.545
		StabilityDamping:     0.1192,
		RetrievabilityWeight: 1.0193,
		HardPenalty:          0.296,
		EasyBonus:            2.61,

		ShortTermWeight: 0.3,
		ShortTermOffset: 0.6,

		ForgetScale:                1.9395,
		ForgetDifficultyExp:        0.11,
		ForgetStabilityExp:         0.296,
		ForgetRetrievabilityWeight: 2.2698,
	}
}

// ParamsConfig allows overriding a subset of the defaults when creating a
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	TargetRetention float64
	MaxIntervalDays int
	DisableFuzz     bool
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.TargetRetention > 0 && config.TargetRetention < 1 {
		params.TargetRetention = config.TargetRetention
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.DisableFuzz {
		params.FuzzEnabled = false
	}

	return params
}

// intervalFactor derives the forgetting-curve factor from the reference
// retention so that retrievability(stability, stability) == referenceRetention.
func (p *Params) intervalFactor() float64 {
	return math.Pow(referenceRetention, -1/p.Decay) - 1
}
