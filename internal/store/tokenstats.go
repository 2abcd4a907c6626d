package store

import (
	"context"

	"github.com/lazypower/aria/internal/aria"
)

func scanTokenStat(row interface{ Scan(dest ...any) error }) (*aria.TokenStat, error) {
	var s aria.TokenStat
	var category, pendingCategory string
	err := row.Scan(
		&s.Token,
		&s.TotalOccurrences, &s.ContextCount, &s.UniqueAdjacencyCount,
		&s.PositionalVariance, &s.BridgeCount, &s.TemporalAdjCount,
		&s.AdjacentToStable, &s.ContrastPairCount, &s.StandaloneCount,
		&s.Stability, &s.Transition, &s.Dependency, &s.Structural,
		&category, &pendingCategory, &s.PendingCount,
		&s.LastMessageIndex, &s.LastScoredAt,
	)
	if err != nil {
		return nil, err
	}
	s.Category = aria.Category(category)
	s.PendingCategory = aria.Category(pendingCategory)
	return &s, nil
}

const tokenStatColumns = `
	token, total_occurrences, context_count, unique_adjacency_count,
	positional_variance, bridge_count, temporal_adj_count,
	adjacent_to_stable, contrast_pair_count, standalone_count,
	stability, transition, dependency, structural,
	category, pending_category, pending_count,
	last_message_index, last_scored_at
`

// GetTokenStat returns nil, nil when the token has never been seen.
func (db *DB) GetTokenStat(ctx context.Context, token string) (*aria.TokenStat, error) {
	row := db.QueryRowContext(ctx, `SELECT `+tokenStatColumns+` FROM token_stats WHERE token = ?`, token)
	s, err := scanTokenStat(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpsertTokenStat is idempotent on the primary key token. An unset
// Category is stored as unclassified.
func (db *DB) UpsertTokenStat(ctx context.Context, s *aria.TokenStat) error {
	category := s.Category
	if category == "" {
		category = aria.CategoryUnclassified
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO token_stats (
			token, total_occurrences, context_count, unique_adjacency_count,
			positional_variance, bridge_count, temporal_adj_count,
			adjacent_to_stable, contrast_pair_count, standalone_count,
			stability, transition, dependency, structural,
			category, pending_category, pending_count,
			last_message_index, last_scored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET
			total_occurrences = excluded.total_occurrences,
			context_count = excluded.context_count,
			unique_adjacency_count = excluded.unique_adjacency_count,
			positional_variance = excluded.positional_variance,
			bridge_count = excluded.bridge_count,
			temporal_adj_count = excluded.temporal_adj_count,
			adjacent_to_stable = excluded.adjacent_to_stable,
			contrast_pair_count = excluded.contrast_pair_count,
			standalone_count = excluded.standalone_count,
			stability = excluded.stability,
			transition = excluded.transition,
			dependency = excluded.dependency,
			structural = excluded.structural,
			category = excluded.category,
			pending_category = excluded.pending_category,
			pending_count = excluded.pending_count,
			last_message_index = excluded.last_message_index,
			last_scored_at = excluded.last_scored_at
	`, s.Token, s.TotalOccurrences, s.ContextCount, s.UniqueAdjacencyCount,
		s.PositionalVariance, s.BridgeCount, s.TemporalAdjCount,
		s.AdjacentToStable, s.ContrastPairCount, s.StandaloneCount,
		s.Stability, s.Transition, s.Dependency, s.Structural,
		string(category), string(s.PendingCategory), s.PendingCount,
		s.LastMessageIndex, s.LastScoredAt)
	return err
}

// CountTokenStats returns the number of distinct tokens tracked.
func (db *DB) CountTokenStats(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_stats`).Scan(&count)
	return count, err
}

// GetManyCategories is the single-round-trip batch category fetch
// mandated for §4.5 and §4.7. Tokens absent from the result have never
// been scored.
func (db *DB) GetManyCategories(ctx context.Context, tokens []string) (map[string]aria.Category, error) {
	out := make(map[string]aria.Category, len(tokens))
	if len(tokens) == 0 {
		return out, nil
	}

	placeholders, args := inClause(tokens)
	rows, err := db.QueryContext(ctx, `SELECT token, category FROM token_stats WHERE token IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tok, cat string
		if err := rows.Scan(&tok, &cat); err != nil {
			return nil, err
		}
		out[tok] = aria.Category(cat)
	}
	return out, rows.Err()
}

// TokensByCategory implements get_tokens_by_category(cat, limit).
func (db *DB) TokensByCategory(ctx context.Context, category aria.Category, limit int) ([]*aria.TokenStat, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+tokenStatColumns+` FROM token_stats
		WHERE category = ?
		ORDER BY total_occurrences DESC
		LIMIT ?
	`, string(category), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*aria.TokenStat
	for rows.Next() {
		s, err := scanTokenStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StaleTokenStats returns up to limit tokens last scored before the
// given cutoff (unix millis), for the decay engine's aging hook.
func (db *DB) StaleTokenStats(ctx context.Context, olderThanMillis int64, limit int) ([]*aria.TokenStat, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+tokenStatColumns+` FROM token_stats
		WHERE last_scored_at < ?
		ORDER BY last_scored_at ASC
		LIMIT ?
	`, olderThanMillis, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*aria.TokenStat
	for rows.Next() {
		s, err := scanTokenStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
