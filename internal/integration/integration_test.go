package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"screening-score-service/internal/app"
	"screening-score-service/internal/domain"
	"screening-score-service/internal/infra/postgres"
	pgmigrations "screening-score-service/internal/infra/postgres/migrations"
	infraredis "screening-score-service/internal/infra/redis"
	"screening-score-service/internal/scoring"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestScoreAndReportEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := postgres.NewScoreStore(db)
	seedScreening(t, ctx, store)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewCatalogLoader(pool)
	catalog, err := loader.LoadCatalog(ctx, "screening-1")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if catalog.PassMark == nil || *catalog.PassMark != 60 || len(catalog.Questions) != 3 || catalog.Questions[2].ID != "q3" {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
	if _, err := loader.LoadCatalog(ctx, "missing"); !errors.Is(err, domain.ErrScreeningNotFound) {
		t.Fatalf("expected screening not found, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	catalogs := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute, log)
	service := app.NewScoringService(store, catalogs, scoring.NewEngine(), app.WithLogger(log))

	// Two racing saves for the same candidate settle on one winner.
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		wins, dups int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ScoreCandidate(ctx, submission("c1", "B", "D", "A"), "admin")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrDuplicateSubmission):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || dups != 1 {
		t.Fatalf("expected one save and one duplicate, got wins=%d dups=%d", wins, dups)
	}

	out := service.BatchScore(ctx, []domain.Submission{
		submission("c2", "A", "D", "A"),
		submission("nonexistent", "B"),
	}, "admin")
	if out.Summary.Successful != 1 || out.Summary.Failed != 1 {
		t.Fatalf("unexpected batch summary %+v", out.Summary)
	}

	stats, err := service.GetScreeningStatistics(ctx, "screening-1")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	// c1 4/4 passes; c2 2/4 misses the 60% mark.
	if stats.CandidateCount != 2 || stats.PassCount != 1 || stats.FailCount != 1 || stats.MeanPercentage != 75 {
		t.Fatalf("unexpected statistics %+v", stats)
	}

	report, err := service.GenerateCandidateReport(ctx, "c2")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Result.Status != domain.StatusFailed || len(report.Subjects) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Subjects[0].SubjectName != "Mathematics" || report.Subjects[0].Score != 1 || report.Subjects[0].Possible != 3 {
		t.Fatalf("unexpected math row %+v", report.Subjects[0])
	}

	audit, err := store.AuditLog(ctx, "c1")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(audit) != 1 {
		t.Fatalf("expected one audit entry for c1, got %d", len(audit))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "screening", "POSTGRES_PASSWORD": "screeningpass", "POSTGRES_DB": "screeningdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://screening:screeningpass@%s:%s/screeningdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedScreening(t *testing.T, ctx context.Context, store *postgres.ScoreStore) {
	t.Helper()
	mark := 60
	err := store.SaveCatalog(ctx, "Entrance", domain.Catalog{
		ScreeningID: "screening-1",
		PassMark:    &mark,
		Questions: []domain.Question{
			{ID: "q1", CorrectAnswer: "B", Marks: 2, Subject: domain.Subject{ID: "math", Name: "Mathematics"}},
			{ID: "q2", CorrectAnswer: "D", Marks: 1, Subject: domain.Subject{ID: "eng", Name: "English"}},
			{ID: "q3", CorrectAnswer: "A", Marks: 1, Subject: domain.Subject{ID: "math", Name: "Mathematics"}},
		},
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	for _, c := range []domain.Candidate{
		{ID: "c1", ScreeningID: "screening-1", Name: "Alice"},
		{ID: "c2", ScreeningID: "screening-1", Name: "Bob"},
	} {
		if err := store.CreateCandidate(ctx, c); err != nil {
			t.Fatalf("seed candidate: %v", err)
		}
	}
}

func submission(candidateID string, selected ...string) domain.Submission {
	ids := []string{"q1", "q2", "q3"}
	sub := domain.Submission{CandidateID: candidateID}
	for i, s := range selected {
		s := s
		sub.Answers = append(sub.Answers, domain.Answer{QuestionID: ids[i], SelectedAnswer: &s})
	}
	return sub
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
