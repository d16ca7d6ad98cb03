package app

import (
	"context"
	"fmt"

	"screening-score-service/internal/domain"
	"screening-score-service/internal/scoring"

	"github.com/sirupsen/logrus"
)

// ScoreStore is the durable owner of score records (in-memory, Postgres).
type ScoreStore interface {
	GetCandidate(ctx context.Context, candidateID string) (domain.Candidate, error)
	// PersistScore commits the records, the candidate's scored flag and cached
	// totals, and one audit entry as a single unit. It returns
	// domain.ErrDuplicateSubmission when the candidate is already scored.
	PersistScore(ctx context.Context, w domain.ScoreWrite) (domain.Candidate, error)
	ListScoreRecords(ctx context.Context, candidateID string) ([]domain.ScoreRecord, error)
	ListScreeningSummaries(ctx context.Context, screeningID string) ([]domain.ScoreSummary, error)
}

// CatalogRepository loads the immutable question catalog of a screening.
type CatalogRepository interface {
	GetCatalog(ctx context.Context, screeningID string) (domain.Catalog, error)
}

// EventPublisher announces committed scores to other systems.
type EventPublisher interface {
	PublishScoreSaved(ctx context.Context, event domain.ScoreSavedEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishScoreSaved(context.Context, domain.ScoreSavedEvent) error { return nil }

type ServiceOption func(*ScoringService)

func WithLogger(log logrus.FieldLogger) ServiceOption {
	return func(s *ScoringService) { s.log = log }
}

func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *ScoringService) { s.events = p }
}

// WithBatchConcurrency bounds how many submissions a batch scores at once.
func WithBatchConcurrency(n int) ServiceOption {
	return func(s *ScoringService) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// ScoringService contains the scoring use cases. It keeps no state of its own
// beyond the statistics subscribers.
type ScoringService struct {
	store      ScoreStore
	catalogs   CatalogRepository
	engine     *scoring.Engine
	events     EventPublisher
	hub        *StatisticsHub
	log        logrus.FieldLogger
	batchLimit int
}

func NewScoringService(store ScoreStore, catalogs CatalogRepository, engine *scoring.Engine, opts ...ServiceOption) *ScoringService {
	s := &ScoringService{
		store:      store,
		catalogs:   catalogs,
		engine:     engine,
		events:     noopPublisher{},
		hub:        NewStatisticsHub(),
		log:        logrus.StandardLogger(),
		batchLimit: 4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CalculateScore scores a submission without persisting it.
func (s *ScoringService) CalculateScore(ctx context.Context, sub domain.Submission) (domain.ScoreResult, error) {
	_, catalog, err := s.loadCandidateCatalog(ctx, sub.CandidateID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return s.engine.Calculate(sub.CandidateID, sub.Answers, catalog, sub.TimeTaken)
}

// ScoreCandidate scores a submission and persists the result exactly once.
func (s *ScoringService) ScoreCandidate(ctx context.Context, sub domain.Submission, scoredBy string) (domain.ScoreResult, error) {
	if scoredBy == "" {
		return domain.ScoreResult{}, domain.ErrMissingScorer
	}
	candidate, catalog, err := s.loadCandidateCatalog(ctx, sub.CandidateID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if candidate.HasWritten {
		return domain.ScoreResult{}, domain.ErrDuplicateSubmission
	}
	result, err := s.engine.Calculate(sub.CandidateID, sub.Answers, catalog, sub.TimeTaken)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if err := s.persist(ctx, candidate, catalog, result, scoredBy); err != nil {
		return domain.ScoreResult{}, err
	}
	return result, nil
}

// SaveTestScore persists an already computed result for a candidate.
func (s *ScoringService) SaveTestScore(ctx context.Context, candidateID string, result domain.ScoreResult, scoredBy string) error {
	if scoredBy == "" {
		return domain.ErrMissingScorer
	}
	candidate, catalog, err := s.loadCandidateCatalog(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate.HasWritten {
		return domain.ErrDuplicateSubmission
	}
	if err := checkResult(catalog, result); err != nil {
		return err
	}
	return s.persist(ctx, candidate, catalog, result, scoredBy)
}

// checkResult rejects a caller-supplied result that could not have come from
// grading against catalog: no breakdown, or entries for unknown or repeated questions.
func checkResult(catalog domain.Catalog, result domain.ScoreResult) error {
	if len(result.Breakdown) == 0 {
		return fmt.Errorf("%w: result has no breakdown", domain.ErrInvalidArgument)
	}
	known := make(map[string]struct{}, len(catalog.Questions))
	for _, q := range catalog.Questions {
		known[q.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(result.Breakdown))
	for _, b := range result.Breakdown {
		if _, ok := known[b.QuestionID]; !ok {
			return fmt.Errorf("%w: question %s is not in the catalog", domain.ErrInvalidArgument, b.QuestionID)
		}
		if _, dup := seen[b.QuestionID]; dup {
			return fmt.Errorf("%w: question %s appears twice in the breakdown", domain.ErrInvalidArgument, b.QuestionID)
		}
		seen[b.QuestionID] = struct{}{}
	}
	return nil
}

// GetScreeningStatistics computes cohort statistics from persisted scores.
func (s *ScoringService) GetScreeningStatistics(ctx context.Context, screeningID string) (domain.CohortStatistics, error) {
	if screeningID == "" {
		return domain.CohortStatistics{}, domain.ErrMissingScreeningID
	}
	summaries, err := s.store.ListScreeningSummaries(ctx, screeningID)
	if err != nil {
		return domain.CohortStatistics{}, fmt.Errorf("list summaries: %w", err)
	}
	return scoring.Aggregate(screeningID, summaries), nil
}

// SubscribeStatistics streams statistics for a screening, starting with the
// current snapshot. The caller must invoke the returned cancel function.
func (s *ScoringService) SubscribeStatistics(ctx context.Context, screeningID string) (<-chan domain.CohortStatistics, func(), error) {
	if screeningID == "" {
		return nil, nil, domain.ErrMissingScreeningID
	}
	ch, cancel := s.hub.subscribe(screeningID)
	stats, err := s.GetScreeningStatistics(ctx, screeningID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	s.hub.deliver(screeningID, ch, stats)
	return ch, cancel, nil
}

func (s *ScoringService) persist(ctx context.Context, candidate domain.Candidate, catalog domain.Catalog, result domain.ScoreResult, scoredBy string) error {
	possible := make(map[string]int, len(catalog.Questions))
	for _, q := range catalog.Questions {
		possible[q.ID] = q.Marks
	}

	saved, err := s.store.PersistScore(ctx, domain.ScoreWrite{
		CandidateID:   candidate.ID,
		ScreeningID:   candidate.ScreeningID,
		Result:        result,
		MarksPossible: possible,
		ScoredBy:      scoredBy,
	})
	if err != nil {
		return err
	}

	log := s.log.WithFields(logrus.Fields{
		"candidate_id": candidate.ID,
		"screening_id": candidate.ScreeningID,
		"scored_by":    scoredBy,
	})
	log.WithFields(logrus.Fields{
		"total_score": result.TotalScore,
		"percentage":  result.Percentage,
		"status":      result.Status,
	}).Info("score saved")

	event := domain.ScoreSavedEvent{
		Type:          domain.AuditActionScoreSaved,
		CandidateID:   saved.ID,
		ScreeningID:   saved.ScreeningID,
		TotalScore:    saved.TotalScore,
		TotalPossible: saved.TotalPossible,
		Percentage:    saved.Percentage,
		Status:        saved.Status,
		ScoredBy:      saved.ScoredBy,
		ScoredAt:      saved.ScoredAt,
	}
	// The score is committed; a lost event must not turn the save into a failure.
	if err := s.events.PublishScoreSaved(ctx, event); err != nil {
		log.WithError(err).Warn("publish score event failed")
	}
	s.refreshStatistics(ctx, candidate.ScreeningID)
	return nil
}

func (s *ScoringService) refreshStatistics(ctx context.Context, screeningID string) {
	if !s.hub.hasSubscribers(screeningID) {
		return
	}
	stats, err := s.GetScreeningStatistics(ctx, screeningID)
	if err != nil {
		s.log.WithError(err).WithField("screening_id", screeningID).Warn("refresh statistics failed")
		return
	}
	s.hub.broadcast(stats)
}

func (s *ScoringService) loadCandidateCatalog(ctx context.Context, candidateID string) (domain.Candidate, domain.Catalog, error) {
	if candidateID == "" {
		return domain.Candidate{}, domain.Catalog{}, domain.ErrMissingCandidateID
	}
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return domain.Candidate{}, domain.Catalog{}, err
	}
	if candidate.ScreeningID == "" {
		return domain.Candidate{}, domain.Catalog{}, domain.ErrNoScreening
	}
	catalog, err := s.catalogs.GetCatalog(ctx, candidate.ScreeningID)
	if err != nil {
		return domain.Candidate{}, domain.Catalog{}, err
	}
	return candidate, catalog, nil
}
