package aria

import "context"

// InsertResult reports whether a pair insert created a new row or lost a
// race to a concurrent insert under the same pattern key.
type InsertResult int

const (
	InsertCreated InsertResult = iota
	InsertConflict
)

// Store is the abstract persistence backend the core depends on (§6). The
// core never assumes anything about the backing technology beyond the
// guarantees in spec.md §5: linearizable single-row reads, atomic
// compare-and-update on primary keys, and retry-or-skip on unique-key
// collisions during pair insertion. internal/store ships the one
// concrete SQLite-backed implementation in this repo.
type Store interface {
	NextMessageIndex(ctx context.Context) (uint64, error)
	CurrentMessageIndex(ctx context.Context) (uint64, error)

	GetTokenStat(ctx context.Context, token string) (*TokenStat, error)
	UpsertTokenStat(ctx context.Context, stat *TokenStat) error
	CountTokenStats(ctx context.Context) (int, error)

	AppendTokenPosition(ctx context.Context, token string, position uint32, messageIndex uint64) error
	RecentPositions(ctx context.Context, token string, limit int) ([]uint32, error)

	GetManyCategories(ctx context.Context, tokens []string) (map[string]Category, error)
	TokensByCategory(ctx context.Context, category Category, limit int) ([]*TokenStat, error)
	StaleTokenStats(ctx context.Context, olderThanMillis int64, limit int) ([]*TokenStat, error)

	GetGlobalStats(ctx context.Context) (*GlobalStats, error)
	UpdateGlobalStats(ctx context.Context, delta GlobalStatsDelta) error

	GetPair(ctx context.Context, patternKey string) (*Pair, error)
	InsertPair(ctx context.Context, pair *Pair) (InsertResult, error)
	UpdatePair(ctx context.Context, patternKey string, mutate func(*Pair)) error

	SearchPairsByWord(ctx context.Context, token string) ([]Pair, error)
	TopPairs(ctx context.Context, limit int, tier *Tier) ([]Pair, error)
	CountPairsByTier(ctx context.Context, tier Tier) (int, error)
	PairsDueForDecay(ctx context.Context, messageIndex uint64) ([]Pair, error)
	MovePairTier(ctx context.Context, patternKey string, newTier Tier) error
}
