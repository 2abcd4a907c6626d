package store

import "context"

// NextMessageIndex atomically increments the message_counter singleton
// and returns the new value, satisfying aria.Store.
func (db *DB) NextMessageIndex(ctx context.Context) (uint64, error) {
	var next uint64
	err := withRetry(func() error {
		return db.QueryRowContext(ctx, `
			UPDATE message_counter
			SET current_index = current_index + 1
			WHERE id = 1
			RETURNING current_index
		`).Scan(&next)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// CurrentMessageIndex reads the message_counter singleton without
// advancing it.
func (db *DB) CurrentMessageIndex(ctx context.Context) (uint64, error) {
	var current uint64
	err := db.QueryRowContext(ctx, `SELECT current_index FROM message_counter WHERE id = 1`).Scan(&current)
	return current, err
}
