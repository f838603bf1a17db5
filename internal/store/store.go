package store

import (
	"fmt"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
)

// Open constructs the store selected by the database config. For sqlite the
// connection is opened, pooled and migrated here; Close releases it. The
// memory and jsonfile backends have nothing to release.
func Open(cfg shared.DatabaseConfig) (catalog.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return NewMemory(), noop, nil

	case "jsonfile":
		s, err := OpenJSONFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "sqlite", "":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewSQLite(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
