package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"screening-score-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[string]domain.Catalog{
			"screening-1": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), "screening-1"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetCatalog(context.Background(), "screening-1"); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[string]domain.Catalog{
			"screening-1": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetCatalog(context.Background(), "screening-1"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetCatalog(context.Background(), "screening-1"); err != nil {
		t.Fatalf("get catalog after expiry: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryReturnsCopies(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(map[string]domain.Catalog{
		"screening-1": sampleCatalog(),
	}), time.Minute)

	first, err := repo.GetCatalog(context.Background(), "screening-1")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	first.Questions[0].CorrectAnswer = "tampered"

	second, err := repo.GetCatalog(context.Background(), "screening-1")
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if second.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("cached catalog was mutated: %+v", second.Questions[0])
	}
}

func TestCatalogRepositoryUnknownScreening(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	_, err := repo.GetCatalog(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, screeningID string) (domain.Catalog, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.CatalogLoader.LoadCatalog(ctx, screeningID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ScreeningID: "screening-1",
		Questions: []domain.Question{
			{ID: "q1", CorrectAnswer: "B", Marks: 2, Subject: domain.Subject{ID: "math", Name: "Mathematics"}},
			{ID: "q2", CorrectAnswer: "D", Marks: 1, Subject: domain.Subject{ID: "eng", Name: "English"}},
		},
	}
}
