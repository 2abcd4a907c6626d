package aria

import (
	"context"
	"log"
)

// agingBatchSize bounds how many stale token stats the aging hook touches
// in a single run, so one tick never pays for an unbounded table scan.
const agingBatchSize = 500

// agingStaleAfterMillis is how long a token can go without being touched
// by the scorer before the aging hook considers it stale (24h, per §4.6).
const agingStaleAfterMillis = 24 * 60 * 60 * 1000

// decayTickResult tallies what happened to pairs during the decay sweep,
// folded into the ProcessReport.
type decayTickResult struct {
	Decayed int
	Removed int
}

// runDecay implements §4.6 Decay Engine, run once at the end of every
// message tick against whatever pairs are due. A pair already in the
// decay tier is skipped — the pair engine is the only thing that revives
// it, by overwriting the row with a fresh strength=0.02 short pair on its
// next adjacent occurrence.
func (e *Engine) runDecay(ctx context.Context, messageIndex uint64) (decayTickResult, error) {
	var result decayTickResult

	due, err := e.store.PairsDueForDecay(ctx, messageIndex)
	if err != nil {
		return result, BackendError("decay.pairs_due", err)
	}

	for _, pair := range due {
		if pair.Tier == TierDecay {
			continue
		}

		rate := e.tuning.TierIntervals[pair.Tier].Rate
		newStrength := pair.Strength * (1 - rate)

		if newStrength < e.tuning.DecayMin {
			if err := e.store.UpdatePair(ctx, pair.PatternKey, func(p *Pair) {
				p.Strength = newStrength
				p.Tier = TierDecay
				p.DecayCount++
			}); err != nil {
				return result, BackendError("decay.update_pair_retire", err)
			}
			result.Removed++
			continue
		}

		newTier := e.tuning.tierOf(newStrength)
		if err := e.store.UpdatePair(ctx, pair.PatternKey, func(p *Pair) {
			p.Strength = newStrength
			p.Tier = newTier
			p.DecayCount++
			p.DecayAtMessage = messageIndex + e.tuning.TierIntervals[newTier].Interval
		}); err != nil {
			return result, BackendError("decay.update_pair", err)
		}
		result.Decayed++
	}

	if result.Decayed > 0 || result.Removed > 0 {
		log.Printf("decay: decayed %d pairs, retired %d pairs", result.Decayed, result.Removed)
	}

	if err := e.maybeRunAgingHook(ctx); err != nil {
		return result, err
	}

	return result, nil
}

// maybeRunAgingHook applies the optional aging hook from §4.6: tokens the
// scorer hasn't touched in 24h have their category scores nudged down by
// 1%, so a stable-looking token that's gone silent gradually loses its
// grip without waiting for a contradicting message to arrive. Rate-limited
// to once per Tuning.AgingHookIntervalMillis of wall-clock time per store
// instance — the spec leaves the exact limiting scheme open; this is the
// decision recorded in DESIGN.md.
func (e *Engine) maybeRunAgingHook(ctx context.Context) error {
	global, err := e.store.GetGlobalStats(ctx)
	if err != nil {
		return BackendError("decay.aging_hook.get_global_stats", err)
	}

	now := e.clock.Now()
	if global.AgingLastRunAt != 0 && now-global.AgingLastRunAt < e.tuning.AgingHookIntervalMillis {
		return nil
	}

	stale, err := e.store.StaleTokenStats(ctx, now-agingStaleAfterMillis, agingBatchSize)
	if err != nil {
		return BackendError("decay.aging_hook.stale_tokens", err)
	}

	for _, s := range stale {
		s.Stability *= 0.99
		s.Transition *= 0.99
		s.Dependency *= 0.99
		s.Structural *= 0.99
		if err := e.store.UpsertTokenStat(ctx, s); err != nil {
			return BackendError("decay.aging_hook.upsert", err)
		}
	}

	if err := e.store.UpdateGlobalStats(ctx, GlobalStatsDelta{NewAgingLastRunAt: &now}); err != nil {
		return BackendError("decay.aging_hook.update_global_stats", err)
	}
	if len(stale) > 0 {
		log.Printf("decay: aging hook nudged %d stale token stats", len(stale))
	}
	return nil
}
