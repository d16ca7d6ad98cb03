package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"screening-score-service/internal/domain"

	"github.com/uptrace/bun"
)

// ScoreStore persists candidates, score records and the audit log with bun.
// PersistScore claims the candidate with a conditional update, so concurrent
// saves from any number of instances settle on a single winner.
type ScoreStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewScoreStore(db *bun.DB) *ScoreStore {
	return &ScoreStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ScoreStore) GetCandidate(ctx context.Context, candidateID string) (domain.Candidate, error) {
	var m CandidateModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", candidateID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return m.toDomain(), nil
}

func (s *ScoreStore) PersistScore(ctx context.Context, w domain.ScoreWrite) (domain.Candidate, error) {
	now := s.now()
	var saved CandidateModel

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*CandidateModel)(nil)).
			Set("has_written = ?", true).
			Set("total_score = ?", w.Result.TotalScore).
			Set("total_possible = ?", w.Result.TotalPossible).
			Set("percentage = ?", w.Result.Percentage).
			Set("status = ?", string(w.Result.Status)).
			Set("time_taken = ?", w.Result.TimeTaken).
			Set("scored_by = ?", w.ScoredBy).
			Set("scored_at = ?", now).
			Where("id = ?", w.CandidateID).
			Where("has_written = ?", false).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("claim candidate: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim candidate: %w", err)
		}
		if n == 0 {
			exists, err := tx.NewSelect().Model((*CandidateModel)(nil)).Where("id = ?", w.CandidateID).Exists(ctx)
			if err != nil {
				return fmt.Errorf("check candidate: %w", err)
			}
			if !exists {
				return domain.ErrCandidateNotFound
			}
			return domain.ErrDuplicateSubmission
		}

		if records := w.Records(now); len(records) > 0 {
			models := make([]ScoreRecordModel, 0, len(records))
			for i, r := range records {
				models = append(models, ScoreRecordModel{
					ID:             r.ID,
					CandidateID:    r.CandidateID,
					ScreeningID:    r.ScreeningID,
					Position:       i,
					QuestionID:     r.QuestionID,
					SelectedAnswer: r.SelectedAnswer,
					CorrectAnswer:  r.CorrectAnswer,
					MarksAwarded:   r.MarksAwarded,
					MarksPossible:  r.MarksPossible,
					Correct:        r.Correct,
					CreatedAt:      r.CreatedAt,
				})
			}
			if _, err := tx.NewInsert().Model(&models).Exec(ctx); err != nil {
				return fmt.Errorf("insert score records: %w", err)
			}
		}

		entry := w.AuditEntry(now)
		audit := AuditLogModel{
			ID:          entry.ID,
			Actor:       entry.Actor,
			Action:      entry.Action,
			CandidateID: entry.CandidateID,
			ScreeningID: entry.ScreeningID,
			Detail:      entry.Detail,
			CreatedAt:   entry.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(&audit).Exec(ctx); err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}

		return tx.NewSelect().Model(&saved).Where("id = ?", w.CandidateID).Scan(ctx)
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return saved.toDomain(), nil
}

func (s *ScoreStore) ListScoreRecords(ctx context.Context, candidateID string) ([]domain.ScoreRecord, error) {
	var models []ScoreRecordModel
	err := s.db.NewSelect().Model(&models).
		Where("candidate_id = ?", candidateID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list score records: %w", err)
	}
	out := make([]domain.ScoreRecord, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *ScoreStore) ListScreeningSummaries(ctx context.Context, screeningID string) ([]domain.ScoreSummary, error) {
	var models []CandidateModel
	err := s.db.NewSelect().Model(&models).
		Where("screening_id = ?", screeningID).
		Where("has_written = ?", true).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	out := make([]domain.ScoreSummary, 0, len(models))
	for _, m := range models {
		out = append(out, domain.ScoreSummary{
			CandidateID:   m.ID,
			TotalScore:    m.TotalScore,
			TotalPossible: m.TotalPossible,
			Percentage:    m.Percentage,
			Status:        m.Status,
		})
	}
	return out, nil
}

// AuditLog returns the audit entries of a candidate, oldest first.
func (s *ScoreStore) AuditLog(ctx context.Context, candidateID string) ([]domain.AuditEntry, error) {
	var models []AuditLogModel
	err := s.db.NewSelect().Model(&models).
		Where("candidate_id = ?", candidateID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	out := make([]domain.AuditEntry, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// SaveCatalog upserts a screening and replaces its questions. Catalogs the
// engine would refuse to grade are rejected before anything is written.
func (s *ScoreStore) SaveCatalog(ctx context.Context, name string, catalog domain.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("save catalog %s: %w", catalog.ScreeningID, err)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		screening := ScreeningModel{
			ID:        catalog.ScreeningID,
			Name:      name,
			PassMark:  catalog.PassMark,
			CreatedAt: s.now(),
		}
		_, err := tx.NewInsert().Model(&screening).
			On("CONFLICT (id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("pass_mark = EXCLUDED.pass_mark").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert screening: %w", err)
		}

		_, err = tx.NewDelete().Model((*QuestionModel)(nil)).Where("screening_id = ?", catalog.ScreeningID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		questions := make([]QuestionModel, 0, len(catalog.Questions))
		for i, q := range catalog.Questions {
			questions = append(questions, QuestionModel{
				ID:            q.ID,
				ScreeningID:   catalog.ScreeningID,
				Position:      i,
				CorrectAnswer: q.CorrectAnswer,
				Marks:         q.Marks,
				SubjectID:     q.Subject.ID,
				SubjectName:   q.Subject.Name,
			})
		}
		if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

// CreateCandidate registers an unscored candidate; existing candidates are left untouched.
func (s *ScoreStore) CreateCandidate(ctx context.Context, c domain.Candidate) error {
	m := CandidateModel{ID: c.ID, ScreeningID: c.ScreeningID, Name: c.Name}
	if _, err := s.db.NewInsert().Model(&m).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}
