package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"screening-score-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a screening's catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, screeningID string) (domain.Catalog, error)
}

// CatalogRepository caches catalogs with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, screeningID string) (domain.Catalog, error) {
	if catalog, ok := r.cached(screeningID); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(screeningID, func() (interface{}, error) {
		if catalog, ok := r.cached(screeningID); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx, screeningID)
		if err != nil {
			return domain.Catalog{}, err
		}

		r.mu.Lock()
		r.cache[screeningID] = cachedCatalog{
			catalog:   catalog,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return cloneCatalog(result.(domain.Catalog)), nil
}

func (r *CatalogRepository) cached(screeningID string) (domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[screeningID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Catalog{}, false
	}
	return cloneCatalog(entry.catalog), true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCatalogLoader struct {
	catalogs map[string]domain.Catalog
}

func NewStaticCatalogLoader(catalogs map[string]domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, screeningID string) (domain.Catalog, error) {
	if catalog, ok := l.catalogs[screeningID]; ok {
		return cloneCatalog(catalog), nil
	}
	return domain.Catalog{}, domain.ErrScreeningNotFound
}

// cloneCatalog copies the question slice so callers cannot mutate a cached catalog.
func cloneCatalog(c domain.Catalog) domain.Catalog {
	out := c
	out.Questions = append([]domain.Question(nil), c.Questions...)
	if c.PassMark != nil {
		mark := *c.PassMark
		out.PassMark = &mark
	}
	return out
}
