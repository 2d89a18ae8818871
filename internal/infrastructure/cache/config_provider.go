package cache

import (
	"context"
	"time"

	"carrier-rate-engine/internal/domain/shipping"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const snapshotKey = "config:snapshot"

// CachedConfigProvider memoizes configuration snapshots of a slower provider
// for ttl. Invalidate drops the memoized snapshot so the next request reloads.
type CachedConfigProvider struct {
	source shipping.ConfigProvider
	store  *gocache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedConfigProvider(source shipping.ConfigProvider, ttl time.Duration, log *zap.Logger) *CachedConfigProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedConfigProvider{
		source: source,
		store:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: log,
	}
}

func (p *CachedConfigProvider) Snapshot(ctx context.Context) (*shipping.ConfigSnapshot, error) {
	if value, found := p.store.Get(snapshotKey); found {
		if snapshot, ok := value.(*shipping.ConfigSnapshot); ok {
			return snapshot, nil
		}
	}

	snapshot, err := p.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p.store.Set(snapshotKey, snapshot, p.ttl)

	p.logger.Debug("Configuration snapshot loaded",
		zap.String("event", "config_snapshot_loaded"),
		zap.Int("addons", len(snapshot.Addons)),
		zap.Int("markup_rules", len(snapshot.MarkupRules)),
		zap.Int("services", len(snapshot.Services)),
	)
	return snapshot, nil
}

func (p *CachedConfigProvider) Invalidate() {
	p.store.Delete(snapshotKey)
	p.logger.Info("Configuration cache invalidated", zap.String("event", "config_cache_invalidated"))
}
