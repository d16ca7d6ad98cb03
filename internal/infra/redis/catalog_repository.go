package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"screening-score-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a screening's catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, screeningID string) (domain.Catalog, error)
}

const (
	fieldQuestions = "questions"
	fieldPassMark  = "passMark"
)

// CatalogRepository caches catalogs in Redis (one hash per screening) and falls back to a loader on cache miss.
// Catalogs are stored as: HSET screening:{screeningID}:catalog questions {json} passMark {int}
// The question list keeps catalog order; passMark is absent when the screening uses the default.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration, log logrus.FieldLogger) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, screeningID string) (domain.Catalog, error) {
	key := r.catalogKey(screeningID)

	if catalog, ok := r.fromCache(ctx, screeningID, key); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(screeningID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.fromCache(ctx, screeningID, key); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx, screeningID)
		if err != nil {
			return domain.Catalog{}, err
		}

		questions, err := json.Marshal(catalog.Questions)
		if err != nil {
			return domain.Catalog{}, err
		}
		fields := map[string]interface{}{fieldQuestions: string(questions)}
		if catalog.PassMark != nil {
			fields[fieldPassMark] = *catalog.PassMark
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// A failed cache fill only costs the next caller a reload.
		if _, err := pipe.Exec(ctx); err != nil {
			r.log.WithError(err).WithField("screening_id", screeningID).Warn("cache catalog failed")
		}
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) fromCache(ctx context.Context, screeningID, key string) (domain.Catalog, bool) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return domain.Catalog{}, false
	}
	catalog, err := buildCatalogFromCache(screeningID, fields)
	if err != nil {
		r.log.WithError(err).WithField("screening_id", screeningID).Warn("discarding unreadable cached catalog")
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) catalogKey(screeningID string) string {
	return "screening:" + screeningID + ":catalog"
}

func buildCatalogFromCache(screeningID string, fields map[string]string) (domain.Catalog, error) {
	catalog := domain.Catalog{ScreeningID: screeningID}
	if err := json.Unmarshal([]byte(fields[fieldQuestions]), &catalog.Questions); err != nil {
		return domain.Catalog{}, err
	}
	if raw, ok := fields[fieldPassMark]; ok {
		mark, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Catalog{}, err
		}
		catalog.PassMark = &mark
	}
	return catalog, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
