package repository

import (
	"context"

	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/logger"
)

// OpenCommentStore opens the configured database, seeding it when it is
// empty and seeding is enabled. When the database cannot be opened or read
// the returned store is an in-memory copy of the bootstrap corpus and
// fellBack is true; the storage error is logged, never returned.
func OpenCommentStore(ctx context.Context, cfg *config.DatabaseConfig) (store CommentStore, closeFn func() error, fellBack bool) {
	log := logger.FromContext(ctx).WithField(logger.FieldComponent, "db")
	noop := func() error { return nil }

	db, err := InitDB(cfg)
	if err != nil {
		log.WithError(err).Error("Database unavailable, serving bootstrap corpus from memory")
		return NewBootstrapMemoryStore(), noop, true
	}
	closeFn = noop
	if sqlDB, err := db.DB(); err == nil {
		closeFn = sqlDB.Close
	}

	repo := NewCommentRepository(db)
	if cfg.SeedOnEmpty {
		n, err := SeedIfEmpty(ctx, repo)
		if err != nil {
			log.WithError(err).Error("Database unreadable, serving bootstrap corpus from memory")
			_ = closeFn()
			return NewBootstrapMemoryStore(), noop, true
		}
		if n > 0 {
			log.WithField(logger.FieldCount, n).Info("Seeded bootstrap corpus")
		}
	} else if _, err := repo.Count(ctx); err != nil {
		log.WithError(err).Error("Database unreadable, serving bootstrap corpus from memory")
		_ = closeFn()
		return NewBootstrapMemoryStore(), noop, true
	}

	return repo, closeFn, false
}
