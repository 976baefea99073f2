package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakif/course-marketplace/internal/config"
	"github.com/sakif/course-marketplace/internal/repository"
	"github.com/sakif/course-marketplace/internal/repository/postgres"
	sqliteRepo "github.com/sakif/course-marketplace/internal/repository/sqlite"
)

// OpenStore connects to the backend named by cfg.DBDriver. For sqlite the parent
// directory of DB_PATH is created if needed.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db, nil

	case config.DriverSQLite:
		if cfg.DBPath != ":memory:" {
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
