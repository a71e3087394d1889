package app

import (
	"context"
	"fmt"

	"CardOptimizer/internal/advisor"
	"CardOptimizer/internal/catalog"
	"CardOptimizer/internal/config"
	"CardOptimizer/internal/optimizer"
	"CardOptimizer/internal/recorder"

	"go.uber.org/zap"
)

// App holds the components shared by the bot and the CLI.
type App struct {
	Catalog  *catalog.Manager
	Cache    *catalog.Cache
	Recorder recorder.Recorder
	Advisor  *advisor.Advisor
	Options  optimizer.Options
}

// NewSource picks the catalog source: a URL wins over a local path.
func NewSource(cfg *config.Config) catalog.Source {
	if cfg.Catalog.URL != "" {
		return catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.Token, cfg.Proxy)
	}
	return &catalog.FileSource{Path: cfg.Catalog.Path}
}

// New wires the catalog, recorder and advisor and loads the catalog once.
// withHistory selects the SQLite recorder; a recorder that fails to open
// falls back to the noop one.
func New(ctx context.Context, cfg *config.Config, withHistory bool, log *zap.Logger) (*App, error) {
	rules, err := catalog.LoadRules(cfg.Catalog.RulesPath)
	if err != nil {
		return nil, err
	}
	cache, err := catalog.NewCache(cfg.Catalog.CacheSize)
	if err != nil {
		return nil, err
	}

	src := NewSource(cfg)
	log.Info("catalog source", zap.String("source", src.Name()))
	manager := catalog.NewManager(src, rules, cache, log)
	if _, err := manager.Refresh(ctx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("initial catalog load: %w", err)
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if withHistory && cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
		}
	}

	opts := optimizer.Options{
		ExhaustiveLimit: cfg.Optimizer.ExhaustiveLimit,
		Workers:         cfg.Optimizer.Workers,
	}
	return &App{
		Catalog:  manager,
		Cache:    cache,
		Recorder: rec,
		Advisor:  advisor.New(manager, rec, opts, log),
		Options:  opts,
	}, nil
}

// Close releases the recorder and cache.
func (a *App) Close() error {
	a.Cache.Close()
	return a.Recorder.Close()
}
