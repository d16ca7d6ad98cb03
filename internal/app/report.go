package app

import (
	"context"
	"errors"
	"fmt"

	"screening-score-service/internal/domain"
	"screening-score-service/internal/scoring"
)

const unassignedSubject = "Unassigned"

// GenerateCandidateReport joins a candidate's persisted records with the
// catalog's subject metadata.
func (s *ScoringService) GenerateCandidateReport(ctx context.Context, candidateID string) (domain.Report, error) {
	if candidateID == "" {
		return domain.Report{}, domain.ErrMissingCandidateID
	}
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return domain.Report{}, err
	}
	if !candidate.HasWritten {
		return domain.Report{}, domain.ErrScoreNotFound
	}
	records, err := s.store.ListScoreRecords(ctx, candidateID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("list score records: %w", err)
	}
	if len(records) == 0 {
		return domain.Report{}, domain.ErrScoreNotFound
	}

	var catalog domain.Catalog
	if candidate.ScreeningID != "" {
		catalog, err = s.catalogs.GetCatalog(ctx, candidate.ScreeningID)
		if err != nil && !errors.Is(err, domain.ErrScreeningNotFound) {
			return domain.Report{}, err
		}
	}

	report := domain.Report{
		CandidateID:   candidate.ID,
		CandidateName: candidate.Name,
		ScreeningID:   candidate.ScreeningID,
		Result: domain.ReportResult{
			TotalScore:     candidate.TotalScore,
			TotalPossible:  candidate.TotalPossible,
			Percentage:     candidate.Percentage,
			TotalQuestions: len(records),
			Status:         candidate.Status,
			TimeTaken:      candidate.TimeTaken,
		},
		Subjects: subjectBreakdown(catalog, records),
		ScoredBy: candidate.ScoredBy,
		ScoredAt: candidate.ScoredAt,
	}
	for _, r := range records {
		if r.SelectedAnswer != nil {
			report.Result.QuestionsAnswered++
		}
	}
	return report, nil
}

// subjectBreakdown orders subjects by first appearance in the catalog; records
// for questions the catalog no longer lists are grouped last.
func subjectBreakdown(catalog domain.Catalog, records []domain.ScoreRecord) []domain.SubjectScore {
	subjectOf := make(map[string]domain.Subject, len(catalog.Questions))
	order := make([]string, 0)
	rows := make(map[string]*domain.SubjectScore)
	for _, q := range catalog.Questions {
		subjectOf[q.ID] = q.Subject
		if _, ok := rows[q.Subject.ID]; !ok {
			rows[q.Subject.ID] = &domain.SubjectScore{SubjectID: q.Subject.ID, SubjectName: q.Subject.Name}
			order = append(order, q.Subject.ID)
		}
	}

	var unassigned *domain.SubjectScore
	used := make(map[string]bool, len(rows))
	for _, r := range records {
		subject, ok := subjectOf[r.QuestionID]
		row := rows[subject.ID]
		if !ok {
			if unassigned == nil {
				unassigned = &domain.SubjectScore{SubjectName: unassignedSubject}
			}
			row = unassigned
		} else {
			used[subject.ID] = true
		}
		row.Questions++
		row.Score += r.MarksAwarded
		row.Possible += r.MarksPossible
		if r.Correct {
			row.Correct++
		}
	}

	out := make([]domain.SubjectScore, 0, len(order)+1)
	for _, id := range order {
		if !used[id] {
			continue
		}
		row := rows[id]
		row.Percentage = scoring.RoundRatio(row.Score*100, row.Possible)
		out = append(out, *row)
	}
	if unassigned != nil {
		unassigned.Percentage = scoring.RoundRatio(unassigned.Score*100, unassigned.Possible)
		out = append(out, *unassigned)
	}
	return out
}
