package scoring

import (
	"testing"

	"screening-score-service/internal/domain"
)

func TestAggregateEmptyCohort(t *testing.T) {
	stats := Aggregate("screening-1", nil)
	if stats.CandidateCount != 0 || stats.MeanPercentage != 0 || stats.PassRate != 0 {
		t.Fatalf("expected zeroed statistics, got %+v", stats)
	}
	if stats.ScreeningID != "screening-1" {
		t.Fatalf("expected screening id to be kept, got %q", stats.ScreeningID)
	}
	if len(stats.Distribution) != 10 {
		t.Fatalf("expected 10 buckets, got %d", len(stats.Distribution))
	}
	for _, b := range stats.Distribution {
		if b.Count != 0 {
			t.Fatalf("expected empty bucket, got %+v", b)
		}
	}
}

func TestAggregateCohort(t *testing.T) {
	summaries := []domain.ScoreSummary{
		{CandidateID: "c1", TotalScore: 4, TotalPossible: 4, Percentage: 100, Status: domain.StatusPassed},
		{CandidateID: "c2", TotalScore: 2, TotalPossible: 4, Percentage: 50, Status: domain.StatusPassed},
		{CandidateID: "c3", TotalScore: 1, TotalPossible: 4, Percentage: 25, Status: domain.StatusFailed},
		{CandidateID: "c4", TotalScore: 0, TotalPossible: 4, Percentage: 0, Status: domain.StatusPending},
	}
	stats := Aggregate("screening-1", summaries)

	if stats.CandidateCount != 4 {
		t.Fatalf("expected 4 candidates, got %d", stats.CandidateCount)
	}
	if stats.PassCount != 2 || stats.FailCount != 1 || stats.PendingCount != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	// 7/4 = 1.75 -> 2; 175/4 = 43.75 -> 44; 2/4 = 50%.
	if stats.MeanScore != 2 || stats.MeanPercentage != 44 || stats.PassRate != 50 {
		t.Fatalf("unexpected means/rate %+v", stats)
	}
	if stats.HighestPercentage != 100 || stats.LowestPercentage != 0 {
		t.Fatalf("unexpected extremes %+v", stats)
	}

	want := map[string]int{"0-9": 1, "20-29": 1, "50-59": 1, "90-100": 1}
	total := 0
	for _, b := range stats.Distribution {
		total += b.Count
		if b.Count != want[b.Label] {
			t.Fatalf("bucket %s: expected %d, got %d", b.Label, want[b.Label], b.Count)
		}
	}
	if total != stats.CandidateCount {
		t.Fatalf("buckets must cover every candidate, got %d", total)
	}
}

func TestAggregateMeanRoundsHalfUp(t *testing.T) {
	stats := Aggregate("s", []domain.ScoreSummary{
		{Percentage: 50, Status: domain.StatusPassed},
		{Percentage: 51, Status: domain.StatusPassed},
	})
	if stats.MeanPercentage != 51 {
		t.Fatalf("expected 50.5 to round to 51, got %d", stats.MeanPercentage)
	}
}

func TestBucketIndexEdges(t *testing.T) {
	tests := map[int]int{0: 0, 9: 0, 10: 1, 89: 8, 90: 9, 99: 9, 100: 9}
	for percentage, want := range tests {
		if got := bucketIndex(percentage); got != want {
			t.Fatalf("bucketIndex(%d) = %d, want %d", percentage, got, want)
		}
	}
}
