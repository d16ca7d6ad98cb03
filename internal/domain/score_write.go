package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Records expands the write into one score record per breakdown entry.
func (w ScoreWrite) Records(now time.Time) []ScoreRecord {
	records := make([]ScoreRecord, 0, len(w.Result.Breakdown))
	for _, b := range w.Result.Breakdown {
		possible, ok := w.MarksPossible[b.QuestionID]
		if !ok {
			possible = b.MarksAwarded
		}
		var selected *string
		if b.SelectedAnswer != nil {
			v := *b.SelectedAnswer
			selected = &v
		}
		records = append(records, ScoreRecord{
			ID:             uuid.NewString(),
			CandidateID:    w.CandidateID,
			ScreeningID:    w.ScreeningID,
			QuestionID:     b.QuestionID,
			SelectedAnswer: selected,
			CorrectAnswer:  b.CorrectAnswer,
			MarksAwarded:   b.MarksAwarded,
			MarksPossible:  possible,
			Correct:        b.Correct,
			CreatedAt:      now,
		})
	}
	return records
}

// AuditEntry is the log line recording who scored the candidate.
func (w ScoreWrite) AuditEntry(now time.Time) AuditEntry {
	return AuditEntry{
		ID:          uuid.NewString(),
		Actor:       w.ScoredBy,
		Action:      AuditActionScoreSaved,
		CandidateID: w.CandidateID,
		ScreeningID: w.ScreeningID,
		Detail: fmt.Sprintf("score %d/%d (%d%%) %s",
			w.Result.TotalScore, w.Result.TotalPossible, w.Result.Percentage, w.Result.Status),
		CreatedAt: now,
	}
}
