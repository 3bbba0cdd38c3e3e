package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/config"
	"github.com/noah-isme/abs-dashboard-api/pkg/database"
)

// Store is an opened document store backend.
type Store struct {
	Documents service.DocumentStore
	Ping      func(ctx context.Context) error
	Close     func(ctx context.Context) error
}

// OpenStore connects the backend selected by STORE_DRIVER and prepares its
// indexes or schema.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := repository.NewMongoDocumentRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("document store ready", zap.String("driver", cfg.Store.Driver), zap.String("database", cfg.Mongo.Database))
		return &Store{
			Documents: repo,
			Ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close:     client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.EnsureDocumentsSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure documents schema: %w", err)
		}
		logger.Info("document store ready", zap.String("driver", cfg.Store.Driver), zap.String("database", cfg.Database.Name))
		return &Store{
			Documents: repository.NewPostgresDocumentRepository(db),
			Ping:      db.PingContext,
			Close:     func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMemory:
		repo := repository.NewMemoryDocumentRepository()
		if cfg.Store.SeedDir != "" {
			n, err := repo.Seed(cfg.Store.SeedDir, models.Collections)
			if err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
			logger.Info("memory store seeded", zap.String("dir", cfg.Store.SeedDir), zap.Int("documents", n))
		}
		return &Store{
			Documents: repo,
			Ping:      func(context.Context) error { return nil },
			Close:     func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
