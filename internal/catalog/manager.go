package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CardOptimizer/internal/metrics"
	"CardOptimizer/internal/model"

	"go.uber.org/zap"
)

// Manager owns the current catalog rows and serves built catalogs to
// concurrent callers. A failed refresh keeps the previous rows.
type Manager struct {
	mu        sync.RWMutex
	source    Source
	rules     *Rules
	cache     *Cache
	templates []model.CardTemplate
	version   uint64
	loadedAt  time.Time
	log       *zap.Logger
}

// NewManager creates a Manager. cache may be nil, in which case every call
// to Catalog builds afresh.
func NewManager(source Source, rules *Rules, cache *Cache, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{source: source, rules: rules, cache: cache, log: log}
}

// Refresh fetches the rows from the source, attaches the card rules and
// validates that they build. On success the version counter advances.
func (m *Manager) Refresh(ctx context.Context) (uint64, error) {
	templates, err := m.load(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues(metrics.OutcomeError).Inc()
		m.log.Warn("catalog refresh failed",
			zap.String("source", m.source.Name()), zap.Error(err))
		return m.Version(), err
	}

	m.mu.Lock()
	m.templates = templates
	m.version++
	m.loadedAt = time.Now()
	version := m.version
	m.mu.Unlock()

	metrics.CatalogRefreshTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.CatalogVersion.Set(float64(version))
	m.log.Info("catalog refreshed",
		zap.String("source", m.source.Name()),
		zap.Int("cards", len(templates)),
		zap.Uint64("version", version))
	return version, nil
}

func (m *Manager) load(ctx context.Context) ([]model.CardTemplate, error) {
	raw, err := m.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := ApplyRules(raw, m.rules)
	if err != nil {
		return nil, err
	}
	if _, err := Build(templates, 1); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return templates, nil
}

// Catalog returns the current rows built for multiplier.
func (m *Manager) Catalog(multiplier float64) (*Catalog, error) {
	m.mu.RLock()
	templates, version := m.templates, m.version
	m.mu.RUnlock()
	if version == 0 {
		return nil, ErrNotLoaded
	}

	if m.cache != nil {
		if cat, ok := m.cache.Get(version, multiplier); ok {
			return cat, nil
		}
	}
	cat, err := Build(templates, multiplier)
	if err != nil {
		return nil, err
	}
	cat.Version = version
	if m.cache != nil {
		m.cache.Set(cat)
	}
	return cat, nil
}

// Templates returns a copy of the current rows and their version.
func (m *Manager) Templates() ([]model.CardTemplate, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.CardTemplate(nil), m.templates...), m.version
}

func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// LoadedAt returns the time of the last successful refresh.
func (m *Manager) LoadedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadedAt
}

// SourceName describes where the rows come from.
func (m *Manager) SourceName() string {
	return m.source.Name()
}
