package aria

import (
	"context"
	"log"
)

// pairTickResult tallies what happened to pairs during one message tick,
// folded into the ProcessReport.
type pairTickResult struct {
	NewPairs   int
	Reinforced int
	Promoted   int
}

// reinforcePairs implements §4.5 Pair Engine. Only adjacent pairs
// (T[i], T[i+1]) are considered, equal tokens are skipped, and both
// tokens' categories come from the caller's categories map (which
// ProcessMessage fills with the categories this tick just stored), never
// from the pair's stored category_pattern. A token missing from the map
// counts as the empty category.
func (e *Engine) reinforcePairs(ctx context.Context, tokens []string, messageIndex uint64, categories map[string]Category) (pairTickResult, error) {
	var result pairTickResult

	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if a == b {
			continue
		}

		patternKey, tokA, tokB := PatternKeyOf(a, b)
		catA := categories[tokA]
		catB := categories[tokB]
		categoryPattern := string(catA) + "->" + string(catB)

		existing, err := e.store.GetPair(ctx, patternKey)
		if err != nil {
			return result, BackendError("reinforce.get_pair", err)
		}

		if existing == nil {
			pair := &Pair{
				PatternKey:           patternKey,
				TokenA:               tokA,
				TokenB:               tokB,
				Strength:             e.tuning.ReinforcementBase,
				Tier:                 TierShort,
				Frequency:            1,
				ReinforcementCount:   1,
				DecayCount:           0,
				CategoryPattern:      categoryPattern,
				DecayAtMessage:       messageIndex + e.tuning.TierIntervals[TierShort].Interval,
				LastSeenMessageIndex: messageIndex,
			}

			insertResult, err := e.store.InsertPair(ctx, pair)
			if err != nil {
				return result, BackendError("reinforce.insert_pair", err)
			}
			if insertResult == InsertConflict {
				// A concurrent tick won the race on this pattern key; fall
				// through to the reinforce branch within this same tick
				// rather than surfacing a Conflict to the caller (§5, §7).
				log.Printf("reinforce: insert conflict on %s, falling back to reinforce", patternKey)
				if err := e.reinforceExisting(ctx, patternKey, catA, catB, categoryPattern, messageIndex); err != nil {
					return result, err
				}
				result.Reinforced++
				continue
			}

			result.NewPairs++
			continue
		}

		if existing.Tier == TierDecay {
			// §4.6: a decay-tier pair revives on its next adjacent occurrence
			// as a fresh short pair, by overwriting the row in place rather
			// than incrementally reinforcing its near-zero strength.
			if err := e.revivePair(ctx, existing, categoryPattern, messageIndex); err != nil {
				return result, err
			}
			result.NewPairs++
			continue
		}

		promoted, err := e.reinforceExistingFrom(ctx, existing, catA, catB, categoryPattern, messageIndex)
		if err != nil {
			return result, err
		}
		result.Reinforced++
		if promoted {
			result.Promoted++
		}
	}

	return result, nil
}

// revivePair overwrites a decay-tier pair's row with fresh short-tier
// values, preserving its identity (pattern key, accumulated frequency
// and decay_count history) per §4.6.
func (e *Engine) revivePair(ctx context.Context, existing *Pair, categoryPattern string, messageIndex uint64) error {
	err := e.store.UpdatePair(ctx, existing.PatternKey, func(p *Pair) {
		p.Strength = e.tuning.ReinforcementBase
		p.Tier = TierShort
		p.CategoryPattern = categoryPattern
		p.Frequency++
		p.ReinforcementCount++
		p.DecayAtMessage = messageIndex + e.tuning.TierIntervals[TierShort].Interval
		p.LastSeenMessageIndex = messageIndex
	})
	if err != nil {
		return BackendError("reinforce.revive_pair", err)
	}
	return nil
}

// reinforceExisting re-fetches a pair by key and reinforces it — used on
// the insert-conflict fallback path where we don't yet have the row in
// hand.
func (e *Engine) reinforceExisting(ctx context.Context, patternKey string, catA, catB Category, categoryPattern string, messageIndex uint64) error {
	existing, err := e.store.GetPair(ctx, patternKey)
	if err != nil {
		return BackendError("reinforce.get_pair_after_conflict", err)
	}
	if existing == nil {
		// Extremely unlikely (the conflicting writer's row should be
		// visible by now); skip this pair rather than erroring.
		log.Printf("reinforce: pattern key %s vanished after conflict, skipping", patternKey)
		return nil
	}
	_, err = e.reinforceExistingFrom(ctx, existing, catA, catB, categoryPattern, messageIndex)
	return err
}

// reinforceExistingFrom applies the §4.5 reinforcement formula to an
// already-loaded pair and persists the result. Returns whether this
// reinforcement caused a tier promotion.
func (e *Engine) reinforceExistingFrom(ctx context.Context, existing *Pair, catA, catB Category, categoryPattern string, messageIndex uint64) (bool, error) {
	modifier := maxFloat(e.tuning.PromotionModifier[catA], e.tuning.PromotionModifier[catB])
	add := e.tuning.ReinforcementBase * modifier
	newStrength := minFloat(e.tuning.ReinforcementMax, existing.Strength+add)
	newTier := e.tuning.tierOf(newStrength)
	promoted := newTier != existing.Tier

	err := e.store.UpdatePair(ctx, existing.PatternKey, func(p *Pair) {
		p.Strength = newStrength
		p.Tier = newTier
		p.CategoryPattern = categoryPattern
		p.Frequency++
		p.ReinforcementCount++
		p.DecayAtMessage = messageIndex + e.tuning.TierIntervals[newTier].Interval
		p.LastSeenMessageIndex = messageIndex
	})
	if err != nil {
		return false, BackendError("reinforce.update_pair", err)
	}
	return promoted, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
