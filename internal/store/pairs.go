package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lazypower/aria/internal/aria"
)

const pairColumns = `
	pattern_key, token_a, token_b, frequency, strength, category_pattern,
	reinforcement_count, decay_count, tier, decay_at_message, last_seen_message_index
`

func scanPair(row interface{ Scan(dest ...any) error }) (*aria.Pair, error) {
	var p aria.Pair
	var tier string
	err := row.Scan(
		&p.PatternKey, &p.TokenA, &p.TokenB, &p.Frequency, &p.Strength, &p.CategoryPattern,
		&p.ReinforcementCount, &p.DecayCount, &tier, &p.DecayAtMessage, &p.LastSeenMessageIndex,
	)
	if err != nil {
		return nil, err
	}
	p.Tier = aria.Tier(tier)
	return &p, nil
}

// GetPair returns nil, nil if the pattern key is unknown.
func (db *DB) GetPair(ctx context.Context, patternKey string) (*aria.Pair, error) {
	row := db.QueryRowContext(ctx, `SELECT `+pairColumns+` FROM pairs WHERE pattern_key = ?`, patternKey)
	p, err := scanPair(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertPair creates a new pair row. A unique-key collision (a
// concurrent tick won the race) is reported as InsertConflict rather
// than an error, per §5.
func (db *DB) InsertPair(ctx context.Context, p *aria.Pair) (aria.InsertResult, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pairs (`+pairColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.PatternKey, p.TokenA, p.TokenB, p.Frequency, p.Strength, p.CategoryPattern,
		p.ReinforcementCount, p.DecayCount, string(p.Tier), p.DecayAtMessage, p.LastSeenMessageIndex)
	if err != nil {
		if isUniqueViolation(err) {
			return aria.InsertConflict, nil
		}
		return aria.InsertCreated, err
	}
	return aria.InsertCreated, nil
}

// UpdatePair loads the current row, applies mutate, and writes it back.
// SQLite's single-writer serialization makes this read-modify-write
// effectively atomic per row; no separate CAS loop is needed here.
func (db *DB) UpdatePair(ctx context.Context, patternKey string, mutate func(*aria.Pair)) error {
	return withRetry(func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		row := tx.QueryRowContext(ctx, `SELECT `+pairColumns+` FROM pairs WHERE pattern_key = ?`, patternKey)
		p, err := scanPair(row)
		if err != nil {
			return err
		}

		mutate(p)

		_, err = tx.ExecContext(ctx, `
			UPDATE pairs SET
				frequency = ?, strength = ?, category_pattern = ?,
				reinforcement_count = ?, decay_count = ?, tier = ?,
				decay_at_message = ?, last_seen_message_index = ?
			WHERE pattern_key = ?
		`, p.Frequency, p.Strength, p.CategoryPattern,
			p.ReinforcementCount, p.DecayCount, string(p.Tier),
			p.DecayAtMessage, p.LastSeenMessageIndex, patternKey)
		if err != nil {
			return err
		}

		return tx.Commit()
	})
}

// MovePairTier moves a pair to newTier directly, without touching its
// other fields.
func (db *DB) MovePairTier(ctx context.Context, patternKey string, newTier aria.Tier) error {
	_, err := db.ExecContext(ctx, `UPDATE pairs SET tier = ? WHERE pattern_key = ?`, string(newTier), patternKey)
	return err
}

// SearchPairsByWord returns every non-decay pair touching token, ordered
// by strength descending.
func (db *DB) SearchPairsByWord(ctx context.Context, token string) ([]aria.Pair, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+pairColumns+` FROM pairs
		WHERE (token_a = ? OR token_b = ?) AND tier != 'decay'
		ORDER BY strength DESC
	`, token, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPairRows(rows)
}

// TopPairs returns up to limit pairs ordered by strength descending,
// optionally filtered to a single tier.
func (db *DB) TopPairs(ctx context.Context, limit int, tier *aria.Tier) ([]aria.Pair, error) {
	var rows *sql.Rows
	var err error

	if tier != nil {
		rows, err = db.QueryContext(ctx, `
			SELECT `+pairColumns+` FROM pairs
			WHERE tier = ?
			ORDER BY strength DESC
			LIMIT ?
		`, string(*tier), limit)
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT `+pairColumns+` FROM pairs
			WHERE tier != 'decay'
			ORDER BY strength DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPairRows(rows)
}

// CountPairsByTier reports how many pairs currently sit in tier.
func (db *DB) CountPairsByTier(ctx context.Context, tier aria.Tier) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pairs WHERE tier = ?`, string(tier)).Scan(&count)
	return count, err
}

// PairsDueForDecay returns every non-decay pair whose decay_at_message
// has arrived.
func (db *DB) PairsDueForDecay(ctx context.Context, messageIndex uint64) ([]aria.Pair, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+pairColumns+` FROM pairs
		WHERE tier != 'decay' AND decay_at_message <= ?
	`, messageIndex)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPairRows(rows)
}

func scanPairRows(rows *sql.Rows) ([]aria.Pair, error) {
	var out []aria.Pair
	for rows.Next() {
		p, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// isUniqueViolation detects SQLite's unique-constraint error without
// importing the driver's internal error type, matching on the message
// text modernc.org/sqlite surfaces for SQLITE_CONSTRAINT_UNIQUE.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
