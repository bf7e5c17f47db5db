package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/fetcher"
	"github.com/sells-group/zipafford/internal/pipeline"
	"github.com/sells-group/zipafford/internal/store"
)

// appEnv is everything a data command needs, built from cfg.
type appEnv struct {
	Fetcher  fetcher.Fetcher
	Cache    *dataset.TableCache
	Loader   *dataset.Loader
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases the store, if any.
func (e *appEnv) Close() {
	if e.Store != nil {
		e.Store.Close() //nolint:errcheck
	}
}

func newFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Data.UserAgent,
		Timeout:      time.Duration(cfg.Data.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.Data.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// newCache returns nil when caching is disabled.
func newCache() *dataset.TableCache {
	if cfg.Cache.MaxEntries <= 0 {
		return nil
	}
	return dataset.NewTableCache(cfg.Cache.MaxEntries, cfg.Cache.TTL())
}

// initEnv builds the loader and pipeline. withStore opens and migrates the
// configured store so runs are recorded.
func initEnv(ctx context.Context, withStore bool) (*appEnv, error) {
	if err := cfg.Validate("data"); err != nil {
		return nil, err
	}

	env := &appEnv{Fetcher: newFetcher(), Cache: newCache()}
	env.Loader = dataset.NewLoader(env.Fetcher, env.Cache, cfg.Data.TempDir)

	if withStore {
		st, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	env.Pipeline = pipeline.New(env.Loader, cfg.Data.Sources(), env.Store)
	return env, nil
}

// openStore opens the configured store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
