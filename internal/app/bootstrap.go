package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"mediaarchive/internal/cache"
	"mediaarchive/internal/domain/ports"
	"mediaarchive/internal/platform"
	mongorepo "mediaarchive/internal/repository/mongo"
	"mediaarchive/internal/services/filehost"
	"mediaarchive/internal/services/metadata"
	"mediaarchive/internal/services/metadata/tmdb"
	"mediaarchive/internal/storage/memory"
	"mediaarchive/internal/usecase"
)

// Runtime holds the storage backend and every usecase built on it.
type Runtime struct {
	Config     Config
	Logger     *slog.Logger
	Repo       ports.TitleRepository
	Pixeldrain *filehost.Pixeldrain
	Resolver   *filehost.Resolver
	Merge      usecase.MergeSource
	// Ingest is nil when no TMDB key is configured.
	Ingest  *usecase.IngestBatch
	Import  usecase.ImportDocuments
	Purge   usecase.PurgeCatalog
	Sources usecase.ListSources

	ping    func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

// Build connects the configured backends. The returned runtime must be
// closed even when only part of it is used.
func Build(ctx context.Context, cfg Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	if err := rt.openStorage(ctx); err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}

	rt.Pixeldrain = NewPixeldrain(cfg)
	rt.Resolver = filehost.NewResolver(rt.Pixeldrain, nil)

	rt.Merge = usecase.MergeSource{Store: rt.Repo, MaxAttempts: cfg.MergeMaxAttempts, Logger: logger}
	rt.Import = usecase.ImportDocuments{Merge: rt.Merge, DBIndex: cfg.DBIndex, Logger: logger}
	rt.Purge = usecase.PurgeCatalog{Repo: rt.Repo, Logger: logger}
	rt.Sources = usecase.ListSources{Repo: rt.Repo}

	client := tmdb.NewClient(tmdb.Config{
		APIKey:   cfg.TMDBAPIKey,
		BaseURL:  cfg.TMDBBaseURL,
		Language: cfg.TMDBLanguage,
		Cache:    rt.openCache(ctx),
		CacheTTL: cfg.CacheTTL,
	})
	if client.Enabled() {
		enricher := metadata.NewEnricher(client,
			metadata.WithLogger(logger),
			metadata.WithConcurrency(cfg.MetadataConcurrency),
		)
		rt.Ingest = &usecase.IngestBatch{
			Ingest: usecase.IngestRelease{
				Merge:      rt.Merge,
				Provider:   enricher,
				Files:      rt.Resolver,
				Classifier: platform.NewClassifier(),
				DBIndex:    cfg.DBIndex,
				Logger:     logger,
			},
			Workers: cfg.IngestWorkers,
		}
	} else {
		logger.Warn("TMDB_API_KEY not set, ingestion disabled")
	}
	return rt, nil
}

func (rt *Runtime) openStorage(ctx context.Context) error {
	cfg := rt.Config
	switch cfg.StorageBackend {
	case StorageMemory:
		rt.Repo = memory.NewStore()
		rt.ping = func(context.Context) error { return nil }
		rt.Logger.Warn("using in-memory storage, titles are lost on exit")
		return nil
	case StorageMongo, "":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongorepo.Connect(connectCtx, cfg.MongoURI, options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	rt.closers = append(rt.closers, client.Disconnect)
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	repo := mongorepo.NewTitleRepository(client, cfg.MongoDatabase, cfg.MongoMovieCollection, cfg.MongoSeriesCollection)
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		rt.Logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}
	rt.Repo = repo
	rt.ping = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	return nil
}

// openCache layers the in-process LRU over Redis when REDIS_ADDR is set and
// reachable.
func (rt *Runtime) openCache(ctx context.Context) ports.Cache {
	cfg := rt.Config
	mem := cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisAddr == "" {
		return mem
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	remote := cache.NewRedis(client)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := remote.Ping(pingCtx); err != nil {
		rt.Logger.Warn("redis unreachable, using memory cache only",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return mem
	}
	rt.closers = append(rt.closers, func(context.Context) error { return client.Close() })
	return cache.NewLayered(mem, remote)
}

// NewPixeldrain builds the pixeldrain client without touching storage.
func NewPixeldrain(cfg Config) *filehost.Pixeldrain {
	return filehost.NewPixeldrain(filehost.PixeldrainConfig{APIKey: cfg.PixeldrainAPIKey, BaseURL: cfg.PixeldrainAPIURL})
}

// Health reports whether the storage backend answers.
func (rt *Runtime) Health(ctx context.Context) error {
	if rt.ping == nil {
		return errors.New("storage not initialized")
	}
	return rt.ping(ctx)
}

func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
