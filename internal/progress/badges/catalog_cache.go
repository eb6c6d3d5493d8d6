package badges

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymprogress/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCatalogCacheTTL = 10 * time.Minute
	catalogCacheKey        = "badges::catalog"
)

type badgeLister interface {
	ListBadges(ctx context.Context) ([]Badge, error)
}

// CatalogCache serves the validated badge catalog, reloading it from the
// source once the cached copy expires.
type CatalogCache struct {
	source badgeLister
	cache  *freecache.Cache
	ttl    time.Duration
}

func NewCatalogCache(source badgeLister, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	// the catalog is a handful of rows, freecache minimum size is plenty
	cacheSize := 512 * 1024
	return &CatalogCache{
		source: source,
		cache:  freecache.NewCache(cacheSize),
		ttl:    ttl,
	}
}

func (c *CatalogCache) ListBadges(ctx context.Context) (_ []Badge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "badges.catalog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, err := c.cache.Get([]byte(catalogCacheKey)); err == nil {
		var catalog []Badge
		if err := json.Unmarshal(cached, &catalog); err == nil {
			return catalog, nil
		} else {
			log.Errorf("unmarshal cached badge catalog: %s", err)
		}
	}

	raw, err := c.source.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	catalog, validationErr := ValidateCatalog(raw)
	if validationErr != nil {
		log.Errorf("badge catalog has invalid entries, %d of %d usable: %s", len(catalog), len(raw), validationErr)
	}

	catalogBytes, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("marshal badge catalog: %w", err)
	}
	if err := c.cache.Set([]byte(catalogCacheKey), catalogBytes, int(c.ttl.Seconds())); err != nil {
		log.Errorf("failed to cache badge catalog: %s", err)
	}

	return catalog, nil
}

// Invalidate drops the cached catalog, the next read goes to the source.
func (c *CatalogCache) Invalidate() {
	c.cache.Del([]byte(catalogCacheKey))
}
