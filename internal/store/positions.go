package store

import "context"

// AppendTokenPosition records one occurrence. The history is append-only;
// pruning to the most recent 100 happens at read time (I6). A token with
// no token_stats row yet gets a default one first, so the foreign key
// holds for a token's first occurrence.
func (db *DB) AppendTokenPosition(ctx context.Context, token string, position uint32, messageIndex uint64) error {
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO token_stats (token) VALUES (?)`, token); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO token_positions (token, position, message_index) VALUES (?, ?, ?)
	`, token, position, messageIndex)
	return err
}

// RecentPositions returns up to limit of the most recently appended
// positions for token, oldest first.
func (db *DB) RecentPositions(ctx context.Context, token string, limit int) ([]uint32, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position FROM token_positions
		WHERE token = ?
		ORDER BY id DESC
		LIMIT ?
	`, token, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []uint32
	for rows.Next() {
		var p uint32
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order; the variance formula is
	// order-independent but callers shouldn't have to know the query
	// returned newest-first.
	for i, j := 0, len(positions)-1; i < j; i, j = i+1, j-1 {
		positions[i], positions[j] = positions[j], positions[i]
	}
	return positions, nil
}
