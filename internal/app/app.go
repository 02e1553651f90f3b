// Package app wires configuration into the dataset store, chat components
// and HTTP server shared by the dashboard binary and the inspector tool.
package app

import (
	"context"
	"fmt"
	"time"

	"samarkand-dashboard/internal/chat"
	"samarkand-dashboard/internal/common/config"
	"samarkand-dashboard/internal/common/database"
	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/common/observability"
	"samarkand-dashboard/internal/dataset"
	"samarkand-dashboard/internal/server"
)

// App holds the assembled components and the resources to release on Close.
type App struct {
	Config    *config.Config
	Store     *dataset.Store
	Contexts  *chat.ContextCache
	Responder *chat.Responder
	Server    *server.Server

	logger  logger.Logger
	watcher *dataset.TableWatcher
	closers []func() error
	checks  []database.Check
}

// RetryPolicy controls how external connections are retried at startup.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 10, InitialDelay: 2 * time.Second}

// New connects the configured dataset source and context backend and builds
// the server. On error every resource opened so far is released.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability, retry RetryPolicy) (*App, error) {
	a := &App{Config: cfg, logger: log}

	source, err := a.openSource(ctx, retry)
	if err != nil {
		a.Close()
		return nil, err
	}
	// Only file-backed tables can be invalidated on change, so the cache is CSV-only.
	csv, isCSV := source.(*dataset.CSVSource)
	cacheTables := cfg.Datasets.CacheTables && isCSV
	if cfg.Datasets.CacheTables && !isCSV {
		log.Warn("table cache disabled: source has no change notifications", map[string]interface{}{
			"source": source.Name(),
		})
	}
	a.Store = dataset.NewStore(source, log, dataset.WithTableCache(cacheTables))

	if cacheTables {
		watcher, err := dataset.NewTableWatcher(csv, a.Store, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("dataset watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			watcher.Stop()
			a.Close()
			return nil, fmt.Errorf("dataset watcher: %w", err)
		}
		a.watcher = watcher
	}

	backend, err := a.openContextBackend(ctx, retry)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Contexts = chat.NewContextCache(backend, chat.NewBuilder(a.Store).Build, cfg.Chat.ContextTTLDuration(), log)

	client := chat.NewOpenRouterClient(cfg.Chat)
	if !client.Configured() {
		log.Warn("no completion API key configured, chat will use fallback replies", nil)
	}
	a.Responder = chat.NewResponder(client, log)

	a.Server = server.New(server.Info{Name: cfg.App.Name, Version: cfg.App.Version},
		a.Store, a.Contexts, a.Responder, obs, log, server.WithReadinessChecks(a.checks...))

	return a, nil
}

// OpenStore connects only the dataset source, for tools that do not serve HTTP.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger, retry RetryPolicy) (*App, error) {
	a := &App{Config: cfg, logger: log}
	source, err := a.openSource(ctx, retry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = dataset.NewStore(source, log)
	return a, nil
}

func (a *App) openSource(ctx context.Context, retry RetryPolicy) (dataset.Source, error) {
	ds := a.Config.Datasets

	switch ds.Source {
	case config.SourcePostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(ctx, retry, a.logger, "PostgreSQL connection", func() error {
			var err error
			pg, err = database.NewPostgres(ctx, ds.Postgres)
			return err
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		a.checks = append(a.checks, database.Check{Name: "postgres", Pinger: pg})
		a.logger.Info("PostgreSQL connected successfully", nil)
		return dataset.NewPostgresSource(pg.DB, ds.Postgres.Tables), nil

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(ds.Elasticsearch)
		if err != nil {
			return nil, err
		}
		err = retryWithBackoff(ctx, retry, a.logger, "Elasticsearch connection", func() error {
			return es.Ping(ctx)
		})
		if err != nil {
			return nil, err
		}
		a.checks = append(a.checks, database.Check{Name: "elasticsearch", Pinger: es})
		a.logger.Info("Elasticsearch connected successfully", nil)
		return dataset.NewElasticsearchSource(es.Client, ds.Elasticsearch.Indices, ds.Elasticsearch.MaxRows), nil

	default:
		return dataset.NewCSVSource(ds.DataDir, ds.Files), nil
	}
}

func (a *App) openContextBackend(ctx context.Context, retry RetryPolicy) (chat.Backend, error) {
	if a.Config.Chat.CacheBackend != config.CacheBackendRedis {
		return chat.NewMemoryBackend(), nil
	}

	var rc *database.RedisClient
	err := retryWithBackoff(ctx, retry, a.logger, "Redis connection", func() error {
		var err error
		rc, err = database.NewRedis(ctx, a.Config.Chat.Redis)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rc.Close)
	a.checks = append(a.checks, database.Check{Name: "redis", Pinger: rc})
	a.logger.Info("Redis connected successfully", nil)
	return chat.NewRedisBackend(rc.Client), nil
}

// Close stops the watcher and closes connections in reverse order.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, policy RetryPolicy, log logger.Logger, operationName string, operation func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := policy.InitialDelay

	for i := 0; i < attempts; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < attempts-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  attempts,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}
