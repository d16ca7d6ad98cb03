package scoring

import (
	"fmt"

	"screening-score-service/internal/domain"
)

const bucketCount = 10

// Aggregate builds cohort statistics from persisted summaries. An empty input
// yields zero counts and rates with all buckets present.
func Aggregate(screeningID string, summaries []domain.ScoreSummary) domain.CohortStatistics {
	stats := domain.CohortStatistics{
		ScreeningID:  screeningID,
		Distribution: newBuckets(),
	}
	if len(summaries) == 0 {
		return stats
	}

	totalScore, totalPercentage := 0, 0
	stats.LowestPercentage = summaries[0].Percentage
	for _, s := range summaries {
		stats.CandidateCount++
		totalScore += s.TotalScore
		totalPercentage += s.Percentage

		if s.Percentage > stats.HighestPercentage {
			stats.HighestPercentage = s.Percentage
		}
		if s.Percentage < stats.LowestPercentage {
			stats.LowestPercentage = s.Percentage
		}

		switch s.Status {
		case domain.StatusPassed:
			stats.PassCount++
		case domain.StatusFailed:
			stats.FailCount++
		default:
			stats.PendingCount++
		}
		stats.Distribution[bucketIndex(s.Percentage)].Count++
	}

	stats.MeanScore = RoundRatio(totalScore, stats.CandidateCount)
	stats.MeanPercentage = RoundRatio(totalPercentage, stats.CandidateCount)
	stats.PassRate = RoundRatio(stats.PassCount*100, stats.CandidateCount)
	return stats
}

func newBuckets() []domain.DistributionBucket {
	buckets := make([]domain.DistributionBucket, bucketCount)
	for i := range buckets {
		lo, hi := i*10, i*10+9
		if i == bucketCount-1 {
			hi = 100
		}
		buckets[i] = domain.DistributionBucket{
			Label: fmt.Sprintf("%d-%d", lo, hi),
			Min:   lo,
			Max:   hi,
		}
	}
	return buckets
}

func bucketIndex(percentage int) int {
	switch {
	case percentage <= 0:
		return 0
	case percentage >= 100:
		return bucketCount - 1
	default:
		return percentage / 10
	}
}
