package service

import (
	"context"
	"fmt"

	"github.com/docmanager/docmanager/internal/config"
	"github.com/docmanager/docmanager/internal/database"
	"github.com/docmanager/docmanager/internal/document/repository"
	"github.com/docmanager/docmanager/internal/storage"
	"github.com/docmanager/docmanager/pkg/logger"
)

func noopClose() error { return nil }

// NewFromConfig builds the Service selected by cfg.Storage.Backend. When the
// backend cannot be reached the in-memory repository is used instead and a
// warning is logged. The returned func releases backend connections.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Service, func() error, error) {
	gen, err := repository.IDGeneratorFor(cfg.Storage.IDScheme)
	if err != nil {
		return nil, nil, err
	}
	opts := []repository.Option{repository.WithIDGenerator(gen)}

	repo, closer, err := openRepository(ctx, cfg, opts)
	if err != nil {
		logger.Warnf("cannot open %s storage (%v), using memory-backed repo", cfg.Storage.Backend, err)
		repo, closer = repository.NewMemoryRepo(opts...), noopClose
	}
	logger.WithField("backend", repo.Backend()).Info("document store ready")
	return New(repo), closer, nil
}

func openRepository(ctx context.Context, cfg *config.Config, opts []repository.Option) (repository.Repository, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return repository.NewMemoryRepo(opts...), noopClose, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewSQLiteRepo(db, opts...)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		closer := func() error { return client.Disconnect(context.Background()) }
		return repository.NewMongoRepo(col, opts...), closer, nil

	case config.BackendRedis:
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisRepo(client, cfg.Redis.Prefix, opts...), client.Close, nil

	case config.BackendS3:
		store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewObjectRepo(store, cfg.MinIO.Prefix, opts...), noopClose, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
