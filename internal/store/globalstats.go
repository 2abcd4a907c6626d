package store

import (
	"context"

	"github.com/lazypower/aria/internal/aria"
)

// GetGlobalStats reads the global_stats singleton.
func (db *DB) GetGlobalStats(ctx context.Context) (*aria.GlobalStats, error) {
	var g aria.GlobalStats
	err := db.QueryRowContext(ctx, `
		SELECT total_contexts_seen, total_adj_windows, max_positional_variance,
		       total_tokens_seen, aging_last_run_at
		FROM global_stats WHERE id = 1
	`).Scan(&g.TotalContextsSeen, &g.TotalAdjWindows, &g.MaxPositionalVariance,
		&g.TotalTokensSeen, &g.AgingLastRunAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGlobalStats applies delta as a single atomic read-modify-write,
// retried on transient conflict per §5.
func (db *DB) UpdateGlobalStats(ctx context.Context, delta aria.GlobalStatsDelta) error {
	return withRetry(func() error {
		_, err := db.ExecContext(ctx, `
			UPDATE global_stats
			SET total_contexts_seen = total_contexts_seen + ?,
			    total_adj_windows   = total_adj_windows + ?,
			    total_tokens_seen   = total_tokens_seen + ?,
			    max_positional_variance = CASE
			        WHEN ? IS NOT NULL AND ? > max_positional_variance THEN ?
			        ELSE max_positional_variance
			    END,
			    aging_last_run_at = CASE
			        WHEN ? IS NOT NULL THEN ?
			        ELSE aging_last_run_at
			    END
			WHERE id = 1
		`, delta.Contexts, delta.AdjWindows, delta.TokensSeen,
			delta.NewMaxVar, delta.NewMaxVar, delta.NewMaxVar,
			delta.NewAgingLastRunAt, delta.NewAgingLastRunAt)
		return err
	})
}
