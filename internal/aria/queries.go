package aria

import "context"

// MemoryStats implements the memory_stats() informational query.
func (e *Engine) MemoryStats(ctx context.Context) (MemoryStats, error) {
	global, err := e.store.GetGlobalStats(ctx)
	if err != nil {
		return MemoryStats{}, BackendError("query.memory_stats.global", err)
	}

	currentIndex, err := e.store.CurrentMessageIndex(ctx)
	if err != nil {
		return MemoryStats{}, BackendError("query.memory_stats.current_index", err)
	}

	tokenCount, err := e.store.CountTokenStats(ctx)
	if err != nil {
		return MemoryStats{}, BackendError("query.memory_stats.token_count", err)
	}

	byTier := make(map[Tier]int, 4)
	total := 0
	for _, tier := range []Tier{TierShort, TierMedium, TierLong, TierDecay} {
		count, err := e.store.CountPairsByTier(ctx, tier)
		if err != nil {
			return MemoryStats{}, BackendError("query.memory_stats.count_pairs", err)
		}
		byTier[tier] = count
		total += count
	}

	return MemoryStats{
		CurrentMessageIndex: currentIndex,
		TotalTokensTracked:  tokenCount,
		TotalPairsTracked:   total,
		PairsByTier:         byTier,
		TotalTokensSeen:     global.TotalTokensSeen,
	}, nil
}

// SearchByWord implements the "cluster link" legacy surface's search
// function as a thin read projection over pair queries — no separate
// storage, per the spec's deprecation note for that surface.
func (e *Engine) SearchByWord(ctx context.Context, word string) ([]PairView, error) {
	pairs, err := e.store.SearchPairsByWord(ctx, word)
	if err != nil {
		return nil, BackendError("query.search_by_word", err)
	}
	return toPairViews(pairs), nil
}

// GetTokenStats implements get_token_stats(token).
func (e *Engine) GetTokenStats(ctx context.Context, token string) (*TokenStatsView, error) {
	stat, err := e.store.GetTokenStat(ctx, token)
	if err != nil {
		return nil, BackendError("query.get_token_stats", err)
	}
	if stat == nil {
		return nil, nil
	}
	return &TokenStatsView{
		Token:            stat.Token,
		Category:         stat.Category,
		Stability:        stat.Stability,
		Transition:       stat.Transition,
		Dependency:       stat.Dependency,
		Structural:       stat.Structural,
		TotalOccurrences: stat.TotalOccurrences,
		ContextCount:     stat.ContextCount,
	}, nil
}

// GetTokensByCategory implements get_tokens_by_category(cat, limit).
func (e *Engine) GetTokensByCategory(ctx context.Context, cat Category, limit int) ([]TokenStatsView, error) {
	stats, err := e.store.TokensByCategory(ctx, cat, limit)
	if err != nil {
		return nil, BackendError("query.get_tokens_by_category", err)
	}
	views := make([]TokenStatsView, 0, len(stats))
	for _, s := range stats {
		views = append(views, TokenStatsView{
			Token:            s.Token,
			Category:         s.Category,
			Stability:        s.Stability,
			Transition:       s.Transition,
			Dependency:       s.Dependency,
			Structural:       s.Structural,
			TotalOccurrences: s.TotalOccurrences,
			ContextCount:     s.ContextCount,
		})
	}
	return views, nil
}

// GetTopPairs implements get_top_pairs({limit, tier?}).
func (e *Engine) GetTopPairs(ctx context.Context, limit int, tier *Tier) ([]PairView, error) {
	pairs, err := e.store.TopPairs(ctx, limit, tier)
	if err != nil {
		return nil, BackendError("query.get_top_pairs", err)
	}
	return toPairViews(pairs), nil
}

// GetEmergentChains implements get_emergent_chains(word, max_len), backed
// by the same DFS chain walk used internally by the generator's G1 stage.
func (e *Engine) GetEmergentChains(ctx context.Context, word string, maxLen int) ([]Chain, error) {
	chains, err := e.discoverChains(ctx, word)
	if err != nil {
		return nil, BackendError("query.get_emergent_chains", err)
	}
	out := make([]Chain, 0, len(chains))
	for _, c := range chains {
		if len(c.Tokens) <= maxLen {
			out = append(out, c)
		}
	}
	return out, nil
}

func toPairViews(pairs []Pair) []PairView {
	views := make([]PairView, 0, len(pairs))
	for _, p := range pairs {
		views = append(views, PairView{
			PatternKey:     p.PatternKey,
			TokenA:         p.TokenA,
			TokenB:         p.TokenB,
			Strength:       p.Strength,
			Tier:           p.Tier,
			Frequency:      p.Frequency,
			DecayAtMessage: p.DecayAtMessage,
		})
	}
	return views
}
