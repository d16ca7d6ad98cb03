package cli

import (
	"context"
	"time"

	"screening-score-service/internal/app"
	"screening-score-service/internal/config"
	"screening-score-service/internal/domain"
	"screening-score-service/internal/infra/memory"
	"screening-score-service/internal/infra/postgres"
	"screening-score-service/internal/infra/rabbitmq"
	rediscache "screening-score-service/internal/infra/redis"
	"screening-score-service/internal/scoring"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// runtime holds the wired service and everything that must be closed with it.
type runtime struct {
	service *app.ScoringService
	db      *bun.DB
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime wires Postgres, Redis and RabbitMQ when configured and falls
// back to in-memory sample data otherwise.
func buildRuntime(ctx context.Context, cfg config.Config, log *logrus.Logger) (*runtime, error) {
	rt := &runtime{}

	var (
		store  app.ScoreStore
		loader memory.CatalogLoader
	)
	if cfg.Postgres.URL != "" {
		rt.db = postgres.OpenDB(cfg.Postgres.URL)
		rt.closers = append(rt.closers, func() { rt.db.Close() })
		if err := runMigrations(ctx, rt.db, log); err != nil {
			rt.Close()
			return nil, err
		}
		store = postgres.NewScoreStore(rt.db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		loader = postgres.NewCatalogLoader(pool)
	} else {
		log.Warn("postgres not configured, serving in-memory sample data")
		mem := memory.NewScoreStore()
		for _, c := range sampleCandidates() {
			mem.AddCandidate(c)
		}
		store = mem
		loader = memory.NewStaticCatalogLoader(sampleCatalogs())
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { client.Close() })
		catalogs = rediscache.NewCatalogRepository(client, loader, catalogTTL, log)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	opts := []app.ServiceOption{
		app.WithLogger(log),
		app.WithBatchConcurrency(cfg.Scoring.BatchConcurrency),
	}
	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, func() { pub.Close() })
		opts = append(opts, app.WithPublisher(pub))
	}

	engine := scoring.NewEngine(scoring.WithDefaultPassMark(*cfg.Scoring.PassMark))
	rt.service = app.NewScoringService(store, catalogs, engine, opts...)
	return rt, nil
}

// sampleCatalogs provides a minimal screening; point postgres.url at a seeded database in production.
func sampleCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"screening-1": {
			ScreeningID: "screening-1",
			Questions: []domain.Question{
				{ID: "q1", CorrectAnswer: "B", Marks: 2, Subject: domain.Subject{ID: "math", Name: "Mathematics"}},
				{ID: "q2", CorrectAnswer: "D", Marks: 1, Subject: domain.Subject{ID: "eng", Name: "English"}},
				{ID: "q3", CorrectAnswer: "A", Marks: 1, Subject: domain.Subject{ID: "math", Name: "Mathematics"}},
			},
		},
	}
}

func sampleCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "c1", ScreeningID: "screening-1", Name: "Alice"},
		{ID: "c2", ScreeningID: "screening-1", Name: "Bob"},
		{ID: "c3", ScreeningID: "screening-1", Name: "Chidi"},
	}
}
