package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "message_counter: singleton logical clock",
		SQL: `
CREATE TABLE message_counter (
    id            INTEGER PRIMARY KEY CHECK (id = 1),
    current_index INTEGER NOT NULL DEFAULT 0
);
INSERT INTO message_counter (id, current_index) VALUES (1, 0);
`,
	},
	{
		Version:     2,
		Description: "global_stats: singleton normalization record",
		SQL: `
CREATE TABLE global_stats (
    id                      INTEGER PRIMARY KEY CHECK (id = 1),
    total_contexts_seen     INTEGER NOT NULL DEFAULT 1,
    total_adj_windows       INTEGER NOT NULL DEFAULT 1,
    max_positional_variance REAL    NOT NULL DEFAULT 1,
    total_tokens_seen       INTEGER NOT NULL DEFAULT 1,
    aging_last_run_at       INTEGER NOT NULL DEFAULT 0
);
INSERT INTO global_stats (id) VALUES (1);
`,
	},
	{
		Version:     3,
		Description: "token_stats: per-token behavioral counters and scores",
		SQL: `
CREATE TABLE token_stats (
    token                  TEXT PRIMARY KEY,
    total_occurrences      INTEGER NOT NULL DEFAULT 0,
    context_count          INTEGER NOT NULL DEFAULT 0,
    unique_adjacency_count INTEGER NOT NULL DEFAULT 0,
    positional_variance    REAL    NOT NULL DEFAULT 0,
    bridge_count           INTEGER NOT NULL DEFAULT 0,
    temporal_adj_count     INTEGER NOT NULL DEFAULT 0,
    adjacent_to_stable     INTEGER NOT NULL DEFAULT 0,
    contrast_pair_count    INTEGER NOT NULL DEFAULT 0,
    standalone_count       INTEGER NOT NULL DEFAULT 0,

    stability              REAL NOT NULL DEFAULT 0,
    transition             REAL NOT NULL DEFAULT 0,
    dependency             REAL NOT NULL DEFAULT 0,
    structural             REAL NOT NULL DEFAULT 0,

    category               TEXT NOT NULL DEFAULT 'unclassified'
        CHECK (category IN ('stable','transition','modifier','structural','unclassified')),
    pending_category       TEXT NOT NULL DEFAULT '',
    pending_count          INTEGER NOT NULL DEFAULT 0,

    last_message_index     INTEGER NOT NULL DEFAULT 0,
    last_scored_at          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_token_stats_category       ON token_stats(category);
CREATE INDEX idx_token_stats_last_scored_at ON token_stats(last_scored_at);
`,
	},
	{
		Version:     4,
		Description: "token_positions: append-only position history",
		SQL: `
CREATE TABLE token_positions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    token         TEXT NOT NULL,
    position      INTEGER NOT NULL,
    message_index INTEGER NOT NULL,
    FOREIGN KEY (token) REFERENCES token_stats(token) ON DELETE CASCADE
);

CREATE INDEX idx_token_positions_token ON token_positions(token, id DESC);
`,
	},
	{
		Version:     5,
		Description: "pairs: two-token co-occurrence edges",
		SQL: `
CREATE TABLE pairs (
    pattern_key            TEXT PRIMARY KEY,
    token_a                TEXT NOT NULL,
    token_b                TEXT NOT NULL,
    frequency               INTEGER NOT NULL DEFAULT 0,
    strength                REAL    NOT NULL DEFAULT 0,
    category_pattern        TEXT    NOT NULL DEFAULT '',
    reinforcement_count     INTEGER NOT NULL DEFAULT 0,
    decay_count             INTEGER NOT NULL DEFAULT 0,
    tier                    TEXT    NOT NULL DEFAULT 'short'
        CHECK (tier IN ('short','medium','long','decay')),
    decay_at_message        INTEGER NOT NULL DEFAULT 0,
    last_seen_message_index INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_pairs_token_a           ON pairs(token_a);
CREATE INDEX idx_pairs_token_b           ON pairs(token_b);
CREATE INDEX idx_pairs_tier_strength     ON pairs(tier, strength DESC);
CREATE INDEX idx_pairs_decay_at_message  ON pairs(decay_at_message) WHERE tier != 'decay';
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
