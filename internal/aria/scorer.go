package aria

import "context"

// clamp01 clamps x into [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// variance computes population variance (sigma^2 = mean(x^2) - mean(x)^2)
// over a slice of integer positions, per §4.4 Pass A.
func variance(positions []uint32) float64 {
	if len(positions) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, p := range positions {
		x := float64(p)
		sum += x
		sumSq += x * x
	}
	n := float64(len(positions))
	mean := sum / n
	meanSq := sumSq / n
	v := meanSq - mean*mean
	if v < 0 {
		// Guards against floating-point cancellation producing a tiny
		// negative value for near-constant position sequences.
		v = 0
	}
	return v
}

// score runs §4.4 Category Scorer over the given tokenSet, mutating each
// entry in stats with refreshed scores, category, and inertia fields. It
// returns the number of tokens whose category is not unclassified after
// this pass (used for the Categorized count in ProcessReport).
func (e *Engine) score(ctx context.Context, tokens []string, stats map[string]*TokenStat) (int, error) {
	tokenSet := dedupeOrder(tokens)

	// Pass A — variance refresh. Computed per token from at most the 100
	// most recent position samples (I6), then folded into a single global
	// max_positional_variance write before Pass B reads it.
	variances := make(map[string]float64, len(tokenSet))
	localMax := 0.0
	for _, tok := range tokenSet {
		positions, err := e.store.RecentPositions(ctx, tok, 100)
		if err != nil {
			return 0, BackendError("score.recent_positions", err)
		}
		v := variance(positions)
		variances[tok] = v
		if v > localMax {
			localMax = v
		}
	}

	global, err := e.store.GetGlobalStats(ctx)
	if err != nil {
		return 0, BackendError("score.get_global_stats", err)
	}

	if localMax > global.MaxPositionalVariance {
		nm := localMax
		if err := e.store.UpdateGlobalStats(ctx, GlobalStatsDelta{NewMaxVar: &nm}); err != nil {
			return 0, BackendError("score.update_global_stats", err)
		}
		global.MaxPositionalVariance = localMax
	}

	// Pass B — scores and category, read the (possibly updated) global
	// stats exactly once for the whole pass.
	gCtx := maxFloat(1, float64(global.TotalContextsSeen))
	gAdj := maxFloat(1, float64(global.TotalAdjWindows))
	gVar := maxFloat(1, global.MaxPositionalVariance)

	now := e.clock.Now()
	categorized := 0
	for _, tok := range tokenSet {
		s := stats[tok]
		sigma2 := variances[tok]
		s.PositionalVariance = sigma2
		s.LastScoredAt = now

		occ := maxFloat(1, float64(s.TotalOccurrences))

		s.Stability = clamp01(
			float64(s.ContextCount)/gCtx +
				float64(s.UniqueAdjacencyCount)/gAdj -
				sigma2/gVar,
		)
		s.Transition = clamp01(
			float64(s.BridgeCount)/occ +
				float64(s.TemporalAdjCount)/occ +
				sigma2/gVar,
		)
		s.Dependency = clamp01(
			float64(s.AdjacentToStable)/occ +
				float64(s.ContrastPairCount)/occ -
				float64(s.StandaloneCount)/occ,
		)
		s.Structural = clamp01(
			float64(s.TotalOccurrences)/gCtx +
				float64(s.TemporalAdjCount)/occ -
				float64(s.UniqueAdjacencyCount)/gAdj -
				float64(s.StandaloneCount)/occ -
				sigma2/gVar,
		)

		candidate := e.categoryCandidate(s)
		e.applyInertia(s, candidate)

		if s.Category != CategoryUnclassified {
			categorized++
		}
	}

	return categorized, nil
}

// categoryCandidate picks the winning category per §4.4's "Category
// assignment" rule: below the minimum occurrence count or below the
// category floor, the candidate is unclassified; otherwise it's the
// highest-scoring dimension with tie-break priority
// stable > transition > modifier > structural.
func (e *Engine) categoryCandidate(s *TokenStat) Category {
	if s.TotalOccurrences < e.tuning.MinOccurrencesForCat {
		return CategoryUnclassified
	}

	type scored struct {
		cat   Category
		score float64
	}
	// Order fixes the tie-break priority: stable > transition > modifier > structural.
	candidates := []scored{
		{CategoryStable, s.Stability},
		{CategoryTransition, s.Transition},
		{CategoryModifier, s.Dependency},
		{CategoryStructural, s.Structural},
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}

	if best.score <= e.tuning.CategoryFloor {
		return CategoryUnclassified
	}
	return best.cat
}

// applyInertia runs the three-hit confirmation protocol (§4.4 Inertia).
// Category changes are only committed after the same non-current
// candidate wins InertiaThreshold consecutive ticks in a row.
func (e *Engine) applyInertia(s *TokenStat, candidate Category) {
	switch {
	case candidate == s.Category:
		s.PendingCategory = ""
		s.PendingCount = 0
	case candidate == s.PendingCategory && s.PendingCategory != "":
		s.PendingCount++
		if s.PendingCount >= e.tuning.InertiaThreshold {
			s.Category = candidate
			s.PendingCategory = ""
			s.PendingCount = 0
		}
	default:
		s.PendingCategory = candidate
		s.PendingCount = 1
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func dedupeOrder(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
