package cli

import (
	"fmt"

	"github.com/lazypower/aria/internal/aria"
	"github.com/lazypower/aria/internal/config"
	"github.com/lazypower/aria/internal/store"
)

// openEngine loads config (respecting --config and ARIA_-prefixed env
// vars), opens the database it names, and wraps both in an *aria.Engine.
// Callers must Close the returned *store.DB when done.
func openEngine() (*aria.Engine, *store.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	eng := aria.New(db, cfg.ToTuning())
	return eng, db, nil
}
