package aria

// The literal constants from spec.md §6 "Configuration constants
// (enumerated)". These are the defaults; internal/config lets a deployer
// override any of them via TOML/env into a Tuning value passed to New.
const (
	shortMax  = 0.30
	mediumMax = 0.80
	decayMin  = 0.01

	reinforcementBase = 0.02
	reinforcementMax  = 1.0

	adjacencyWindow = 2

	categoryFloor        = 0.15
	minOccurrencesForCat = 2
	inertiaThreshold     = 3
)

// TierSettings holds the decay interval (in messages) and decay rate for
// one tier.
type TierSettings struct {
	Interval uint64
	Rate     float64
}

// GeneratorTuning holds the response generator's configuration (§4.7).
type GeneratorTuning struct {
	MaxWords          int
	MinWords          int
	StrengthThreshold float64
	Randomness        float64
	MaxLengthChars    int
	StartWeights      map[Category]float64
	Transitions       map[Category][]Category
}

// Tuning bundles every configurable constant the core consumes. Zero
// value is invalid; use DefaultTuning() and override selected fields.
type Tuning struct {
	ShortMax  float64
	MediumMax float64
	DecayMin  float64

	ReinforcementBase float64
	ReinforcementMax  float64

	AdjacencyWindow int

	CategoryFloor        float64
	MinOccurrencesForCat uint64
	InertiaThreshold     int

	TierIntervals map[Tier]TierSettings

	PromotionModifier map[Category]float64

	Generator GeneratorTuning

	// AgingHookIntervalMillis is the minimum real-world gap (unix millis)
	// between aging-hook sweeps, deciding the Open Question in spec.md
	// §4.6 ("optional per-tick, rate-limited").
	AgingHookIntervalMillis int64
}

// DefaultTuning returns the literal constants from spec.md.
func DefaultTuning() Tuning {
	return Tuning{
		ShortMax:  shortMax,
		MediumMax: mediumMax,
		DecayMin:  decayMin,

		ReinforcementBase: reinforcementBase,
		ReinforcementMax:  reinforcementMax,

		AdjacencyWindow: adjacencyWindow,

		CategoryFloor:        categoryFloor,
		MinOccurrencesForCat: minOccurrencesForCat,
		InertiaThreshold:     inertiaThreshold,

		TierIntervals: map[Tier]TierSettings{
			TierShort:  {Interval: 50, Rate: 0.15},
			TierMedium: {Interval: 200, Rate: 0.05},
			TierLong:   {Interval: 1000, Rate: 0.01},
		},

		PromotionModifier: map[Category]float64{
			CategoryStable:       1.5,
			CategoryStructural:   0.6,
			CategoryTransition:   1.0,
			CategoryModifier:     1.0,
			CategoryUnclassified: 0.8,
		},

		Generator: GeneratorTuning{
			MaxWords:          12,
			MinWords:          3,
			StrengthThreshold: 0.01,
			Randomness:        0.25,
			MaxLengthChars:    150,
			StartWeights: map[Category]float64{
				CategoryStable:       1.5,
				CategoryTransition:   1.0,
				CategoryModifier:     0.7,
				CategoryStructural:   0.3,
				CategoryUnclassified: 0.5,
			},
			Transitions: map[Category][]Category{
				CategoryStable:     {CategoryModifier, CategoryTransition, CategoryStructural},
				CategoryModifier:   {CategoryStable, CategoryStructural},
				CategoryTransition: {CategoryStable, CategoryModifier, CategoryStructural},
				CategoryStructural: {CategoryStable, CategoryModifier, CategoryTransition},
				// unclassified: all — handled specially in the walk scorer.
			},
		},

		AgingHookIntervalMillis: 60 * 60 * 1000, // 1 hour
	}
}

// tierOf derives a pair's tier from its strength using this Tuning's
// thresholds (I1), rather than the package-level defaults.
func (t Tuning) tierOf(strength float64) Tier {
	switch {
	case strength < t.ShortMax:
		return TierShort
	case strength < t.MediumMax:
		return TierMedium
	default:
		return TierLong
	}
}
