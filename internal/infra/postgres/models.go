package postgres

import (
	"time"

	"screening-score-service/internal/domain"

	"github.com/uptrace/bun"
)

type ScreeningModel struct {
	bun.BaseModel `bun:"table:screenings,alias:s"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	PassMark  *int      `bun:"pass_mark"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// QuestionModel rows keep catalog order through Position.
type QuestionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            string `bun:"id,pk"`
	ScreeningID   string `bun:"screening_id,notnull"`
	Position      int    `bun:"position,notnull"`
	CorrectAnswer string `bun:"correct_answer,notnull"`
	Marks         int    `bun:"marks,notnull"`
	SubjectID     string `bun:"subject_id,notnull"`
	SubjectName   string `bun:"subject_name,notnull"`
}

type CandidateModel struct {
	bun.BaseModel `bun:"table:candidates,alias:c"`

	ID            string        `bun:"id,pk"`
	ScreeningID   string        `bun:"screening_id,notnull"`
	Name          string        `bun:"name,notnull"`
	HasWritten    bool          `bun:"has_written,notnull"`
	TotalScore    int           `bun:"total_score,notnull"`
	TotalPossible int           `bun:"total_possible,notnull"`
	Percentage    int           `bun:"percentage,notnull"`
	Status        domain.Status `bun:"status,nullzero"`
	TimeTaken     int           `bun:"time_taken,notnull"`
	ScoredBy      string        `bun:"scored_by,nullzero"`
	ScoredAt      time.Time     `bun:"scored_at,nullzero"`
}

type ScoreRecordModel struct {
	bun.BaseModel `bun:"table:score_records,alias:r"`

	ID             string    `bun:"id,pk"`
	CandidateID    string    `bun:"candidate_id,notnull"`
	ScreeningID    string    `bun:"screening_id,notnull"`
	Position       int       `bun:"position,notnull"`
	QuestionID     string    `bun:"question_id,notnull"`
	SelectedAnswer *string   `bun:"selected_answer"`
	CorrectAnswer  string    `bun:"correct_answer,notnull"`
	MarksAwarded   int       `bun:"marks_awarded,notnull"`
	MarksPossible  int       `bun:"marks_possible,notnull"`
	Correct        bool      `bun:"correct,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log,alias:a"`

	ID          string    `bun:"id,pk"`
	Actor       string    `bun:"actor,notnull"`
	Action      string    `bun:"action,notnull"`
	CandidateID string    `bun:"candidate_id,notnull"`
	ScreeningID string    `bun:"screening_id,notnull"`
	Detail      string    `bun:"detail,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (m CandidateModel) toDomain() domain.Candidate {
	return domain.Candidate{
		ID:            m.ID,
		ScreeningID:   m.ScreeningID,
		Name:          m.Name,
		HasWritten:    m.HasWritten,
		TotalScore:    m.TotalScore,
		TotalPossible: m.TotalPossible,
		Percentage:    m.Percentage,
		Status:        m.Status,
		TimeTaken:     m.TimeTaken,
		ScoredBy:      m.ScoredBy,
		ScoredAt:      m.ScoredAt,
	}
}

func (m ScoreRecordModel) toDomain() domain.ScoreRecord {
	return domain.ScoreRecord{
		ID:             m.ID,
		CandidateID:    m.CandidateID,
		ScreeningID:    m.ScreeningID,
		QuestionID:     m.QuestionID,
		SelectedAnswer: m.SelectedAnswer,
		CorrectAnswer:  m.CorrectAnswer,
		MarksAwarded:   m.MarksAwarded,
		MarksPossible:  m.MarksPossible,
		Correct:        m.Correct,
		CreatedAt:      m.CreatedAt,
	}
}

func (m AuditLogModel) toDomain() domain.AuditEntry {
	return domain.AuditEntry{
		ID:          m.ID,
		Actor:       m.Actor,
		Action:      m.Action,
		CandidateID: m.CandidateID,
		ScreeningID: m.ScreeningID,
		Detail:      m.Detail,
		CreatedAt:   m.CreatedAt,
	}
}
