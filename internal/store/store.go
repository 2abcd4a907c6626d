package store

import "github.com/lazypower/aria/internal/aria"

// DB implements aria.Store.
var _ aria.Store = (*DB)(nil)
