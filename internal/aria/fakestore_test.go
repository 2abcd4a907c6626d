package aria

import (
	"context"
	"sort"
)

// fakeStore is a minimal in-memory Store used only by this package's own
// tests. internal/store's real SQLite implementation can't be imported
// here without an import cycle, since it imports this package.
type fakeStore struct {
	msgIndex uint64

	tokens    map[string]*TokenStat
	positions map[string][]uint32

	global *GlobalStats

	pairs map[string]*Pair
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tokens:    make(map[string]*TokenStat),
		positions: make(map[string][]uint32),
		global:    &GlobalStats{TotalContextsSeen: 1, TotalAdjWindows: 1, MaxPositionalVariance: 1, TotalTokensSeen: 1},
		pairs:     make(map[string]*Pair),
	}
}

func cloneTokenStat(s *TokenStat) *TokenStat {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func clonePair(p *Pair) *Pair {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (f *fakeStore) NextMessageIndex(ctx context.Context) (uint64, error) {
	f.msgIndex++
	return f.msgIndex, nil
}

func (f *fakeStore) CurrentMessageIndex(ctx context.Context) (uint64, error) {
	return f.msgIndex, nil
}

func (f *fakeStore) GetTokenStat(ctx context.Context, token string) (*TokenStat, error) {
	return cloneTokenStat(f.tokens[token]), nil
}

func (f *fakeStore) UpsertTokenStat(ctx context.Context, stat *TokenStat) error {
	f.tokens[stat.Token] = cloneTokenStat(stat)
	return nil
}

func (f *fakeStore) CountTokenStats(ctx context.Context) (int, error) {
	return len(f.tokens), nil
}

func (f *fakeStore) AppendTokenPosition(ctx context.Context, token string, position uint32, messageIndex uint64) error {
	f.positions[token] = append(f.positions[token], position)
	return nil
}

func (f *fakeStore) RecentPositions(ctx context.Context, token string, limit int) ([]uint32, error) {
	all := f.positions[token]
	if len(all) <= limit {
		out := make([]uint32, len(all))
		copy(out, all)
		return out, nil
	}
	out := make([]uint32, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

func (f *fakeStore) GetManyCategories(ctx context.Context, tokens []string) (map[string]Category, error) {
	out := make(map[string]Category, len(tokens))
	for _, tok := range tokens {
		if s, ok := f.tokens[tok]; ok {
			out[tok] = s.Category
		}
	}
	return out, nil
}

func (f *fakeStore) TokensByCategory(ctx context.Context, category Category, limit int) ([]*TokenStat, error) {
	var out []*TokenStat
	for _, s := range f.tokens {
		if s.Category == category {
			out = append(out, cloneTokenStat(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) StaleTokenStats(ctx context.Context, olderThanMillis int64, limit int) ([]*TokenStat, error) {
	var out []*TokenStat
	for _, s := range f.tokens {
		if s.LastScoredAt != 0 && s.LastScoredAt < olderThanMillis {
			out = append(out, cloneTokenStat(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	c := *f.global
	return &c, nil
}

func (f *fakeStore) UpdateGlobalStats(ctx context.Context, delta GlobalStatsDelta) error {
	f.global.TotalContextsSeen += delta.Contexts
	f.global.TotalAdjWindows += delta.AdjWindows
	f.global.TotalTokensSeen += delta.TokensSeen
	if delta.NewMaxVar != nil {
		f.global.MaxPositionalVariance = *delta.NewMaxVar
	}
	if delta.NewAgingLastRunAt != nil {
		f.global.AgingLastRunAt = *delta.NewAgingLastRunAt
	}
	return nil
}

func (f *fakeStore) GetPair(ctx context.Context, patternKey string) (*Pair, error) {
	return clonePair(f.pairs[patternKey]), nil
}

func (f *fakeStore) InsertPair(ctx context.Context, pair *Pair) (InsertResult, error) {
	if _, exists := f.pairs[pair.PatternKey]; exists {
		return InsertConflict, nil
	}
	f.pairs[pair.PatternKey] = clonePair(pair)
	return InsertCreated, nil
}

func (f *fakeStore) UpdatePair(ctx context.Context, patternKey string, mutate func(*Pair)) error {
	p, ok := f.pairs[patternKey]
	if !ok {
		return NotFoundError("fake.update_pair", nil)
	}
	mutate(p)
	return nil
}

func (f *fakeStore) SearchPairsByWord(ctx context.Context, token string) ([]Pair, error) {
	var out []Pair
	for _, p := range f.pairs {
		if p.TokenA == token || p.TokenB == token {
			out = append(out, *clonePair(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out, nil
}

func (f *fakeStore) TopPairs(ctx context.Context, limit int, tier *Tier) ([]Pair, error) {
	var out []Pair
	for _, p := range f.pairs {
		if tier != nil && p.Tier != *tier {
			continue
		}
		out = append(out, *clonePair(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountPairsByTier(ctx context.Context, tier Tier) (int, error) {
	n := 0
	for _, p := range f.pairs {
		if p.Tier == tier {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) PairsDueForDecay(ctx context.Context, messageIndex uint64) ([]Pair, error) {
	var out []Pair
	for _, p := range f.pairs {
		if p.DecayAtMessage <= messageIndex {
			out = append(out, *clonePair(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatternKey < out[j].PatternKey })
	return out, nil
}

func (f *fakeStore) MovePairTier(ctx context.Context, patternKey string, newTier Tier) error {
	p, ok := f.pairs[patternKey]
	if !ok {
		return NotFoundError("fake.move_pair_tier", nil)
	}
	p.Tier = newTier
	return nil
}
