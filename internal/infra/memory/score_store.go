package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"screening-score-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. A single mutex
// covers the whole of PersistScore, so a save is all-or-nothing.
type ScoreStore struct {
	now func() time.Time

	mu         sync.RWMutex
	candidates map[string]domain.Candidate
	records    map[string][]domain.ScoreRecord
	audit      []domain.AuditEntry
}

func NewScoreStore() *ScoreStore {
	return NewScoreStoreWithClock(time.Now)
}

// NewScoreStoreWithClock allows deterministic timestamps in tests.
func NewScoreStoreWithClock(now func() time.Time) *ScoreStore {
	return &ScoreStore{
		now:        now,
		candidates: make(map[string]domain.Candidate),
		records:    make(map[string][]domain.ScoreRecord),
	}
}

// AddCandidate registers an unscored candidate.
func (s *ScoreStore) AddCandidate(c domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = c
}

func (s *ScoreStore) GetCandidate(_ context.Context, candidateID string) (domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[candidateID]
	if !ok {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return c, nil
}

func (s *ScoreStore) PersistScore(_ context.Context, w domain.ScoreWrite) (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[w.CandidateID]
	if !ok {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	if c.HasWritten {
		return domain.Candidate{}, domain.ErrDuplicateSubmission
	}

	// Checked before any mutation so a rejected write leaves nothing behind.
	seen := make(map[string]struct{}, len(w.Result.Breakdown))
	for _, b := range w.Result.Breakdown {
		if _, dup := seen[b.QuestionID]; dup {
			return domain.Candidate{}, fmt.Errorf("%w: duplicate score record for question %s", domain.ErrInvalidState, b.QuestionID)
		}
		seen[b.QuestionID] = struct{}{}
	}

	now := s.now()
	records := w.Records(now)

	c.HasWritten = true
	c.TotalScore = w.Result.TotalScore
	c.TotalPossible = w.Result.TotalPossible
	c.Percentage = w.Result.Percentage
	c.Status = w.Result.Status
	c.TimeTaken = w.Result.TimeTaken
	c.ScoredBy = w.ScoredBy
	c.ScoredAt = now

	s.candidates[c.ID] = c
	s.records[c.ID] = records
	s.audit = append(s.audit, w.AuditEntry(now))
	return c, nil
}

func (s *ScoreStore) ListScoreRecords(_ context.Context, candidateID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), s.records[candidateID]...), nil
}

func (s *ScoreStore) ListScreeningSummaries(_ context.Context, screeningID string) ([]domain.ScoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreSummary, 0)
	for _, c := range s.candidates {
		if c.ScreeningID != screeningID || !c.HasWritten {
			continue
		}
		out = append(out, domain.ScoreSummary{
			CandidateID:   c.ID,
			TotalScore:    c.TotalScore,
			TotalPossible: c.TotalPossible,
			Percentage:    c.Percentage,
			Status:        c.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CandidateID < out[j].CandidateID })
	return out, nil
}

// AuditLog returns a copy of the audit entries in write order.
func (s *ScoreStore) AuditLog() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditEntry(nil), s.audit...)
}
