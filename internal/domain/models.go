package domain

import "time"

// Status is the pass/fail classification of a scored submission.
type Status string

const (
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

// Subject groups questions in reports; it plays no part in scoring.
type Subject struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Question is one immutable catalog item. CorrectAnswer is matched literally.
type Question struct {
	ID            string  `json:"id" yaml:"id"`
	CorrectAnswer string  `json:"correctAnswer" yaml:"correctAnswer"`
	Marks         int     `json:"marks" yaml:"marks"`
	Subject       Subject `json:"subject" yaml:"subject"`
}

// Catalog is the ordered question set of one screening.
type Catalog struct {
	ScreeningID string `json:"screeningId" yaml:"screeningId"`
	// PassMark is a percentage of the total possible marks; nil uses the engine default.
	PassMark  *int       `json:"passMark,omitempty" yaml:"passMark,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Answer is one submitted response. A nil SelectedAnswer means unanswered.
type Answer struct {
	QuestionID     string  `json:"questionId" yaml:"questionId"`
	SelectedAnswer *string `json:"selectedAnswer" yaml:"selectedAnswer"`
	TimeSpent      *int    `json:"timeTaken,omitempty" yaml:"timeTaken,omitempty"`
}

// Submission is a candidate's full answer set.
type Submission struct {
	CandidateID string   `json:"candidateId" yaml:"candidateId"`
	Answers     []Answer `json:"answers" yaml:"answers"`
	TimeTaken   int      `json:"timeTaken" yaml:"timeTaken"`
}

// BreakdownEntry is the graded outcome of one catalog question.
type BreakdownEntry struct {
	QuestionID     string  `json:"questionId"`
	SelectedAnswer *string `json:"selectedAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
	MarksAwarded   int     `json:"marksAwarded"`
	Correct        bool    `json:"correct"`
}

// ScoreResult is the derived outcome of scoring one submission.
type ScoreResult struct {
	TotalScore        int              `json:"totalScore"`
	TotalPossible     int              `json:"totalPossible"`
	Percentage        int              `json:"percentage"`
	QuestionsAnswered int              `json:"questionsAnswered"`
	TotalQuestions    int              `json:"totalQuestions"`
	Status            Status           `json:"status"`
	Breakdown         []BreakdownEntry `json:"breakdown"`
	TimeTaken         int              `json:"timeTaken"`
}

// CandidateResult pairs a result with the candidate it belongs to.
type CandidateResult struct {
	CandidateID string `json:"candidateId"`
	ScoreResult
}

// Candidate is a test-taker of exactly one screening. Score fields are a cache
// written together with the score records.
type Candidate struct {
	ID            string    `json:"id" yaml:"id"`
	ScreeningID   string    `json:"screeningId" yaml:"screeningId"`
	Name          string    `json:"name" yaml:"name"`
	HasWritten    bool      `json:"hasWritten" yaml:"-"`
	TotalScore    int       `json:"totalScore" yaml:"-"`
	TotalPossible int       `json:"totalPossible" yaml:"-"`
	Percentage    int       `json:"percentage" yaml:"-"`
	Status        Status    `json:"status,omitempty" yaml:"-"`
	TimeTaken     int       `json:"timeTaken" yaml:"-"`
	ScoredBy      string    `json:"scoredBy,omitempty" yaml:"-"`
	ScoredAt      time.Time `json:"scoredAt,omitempty" yaml:"-"`
}

// ScoreRecord is the persisted audit row of one breakdown entry.
type ScoreRecord struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"candidateId"`
	ScreeningID    string    `json:"screeningId"`
	QuestionID     string    `json:"questionId"`
	SelectedAnswer *string   `json:"selectedAnswer"`
	CorrectAnswer  string    `json:"correctAnswer"`
	MarksAwarded   int       `json:"marksAwarded"`
	MarksPossible  int       `json:"marksPossible"`
	Correct        bool      `json:"correct"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AuditEntry records who performed a scoring action and when.
type AuditEntry struct {
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	CandidateID string    `json:"candidateId"`
	ScreeningID string    `json:"screeningId"`
	Detail      string    `json:"detail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditActionScoreSaved is the audit action written by a successful save.
const AuditActionScoreSaved = "score.saved"

// ScoreWrite is everything a store commits for one save, as one unit.
type ScoreWrite struct {
	CandidateID string
	ScreeningID string
	Result      ScoreResult
	// Possible marks per question id, used to fill ScoreRecord.MarksPossible.
	MarksPossible map[string]int
	ScoredBy      string
}

// ScoreSummary is the cached per-candidate outcome read back for statistics.
type ScoreSummary struct {
	CandidateID   string `json:"candidateId"`
	TotalScore    int    `json:"totalScore"`
	TotalPossible int    `json:"totalPossible"`
	Percentage    int    `json:"percentage"`
	Status        Status `json:"status"`
}

// DistributionBucket counts candidates whose percentage lies in [Min, Max].
type DistributionBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// CohortStatistics aggregates persisted results of one screening.
type CohortStatistics struct {
	ScreeningID       string               `json:"screeningId"`
	CandidateCount    int                  `json:"candidateCount"`
	MeanScore         int                  `json:"meanScore"`
	MeanPercentage    int                  `json:"meanPercentage"`
	HighestPercentage int                  `json:"highestPercentage"`
	LowestPercentage  int                  `json:"lowestPercentage"`
	PassCount         int                  `json:"passCount"`
	FailCount         int                  `json:"failCount"`
	PendingCount      int                  `json:"pendingCount"`
	PassRate          int                  `json:"passRate"`
	Distribution      []DistributionBucket `json:"distribution"`
}

// SubjectScore is one per-subject row of a candidate report.
type SubjectScore struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Score       int    `json:"score"`
	Possible    int    `json:"possible"`
	Percentage  int    `json:"percentage"`
	Correct     int    `json:"correct"`
	Questions   int    `json:"questions"`
}

// ReportResult is the overall outcome shown at the top of a report.
type ReportResult struct {
	TotalScore        int    `json:"totalScore"`
	TotalPossible     int    `json:"totalPossible"`
	Percentage        int    `json:"percentage"`
	QuestionsAnswered int    `json:"questionsAnswered"`
	TotalQuestions    int    `json:"totalQuestions"`
	Status            Status `json:"status"`
	TimeTaken         int    `json:"timeTaken"`
}

// Report is a candidate's persisted result broken down by subject.
type Report struct {
	CandidateID   string         `json:"candidateId"`
	CandidateName string         `json:"candidateName"`
	ScreeningID   string         `json:"screeningId"`
	Result        ReportResult   `json:"result"`
	Subjects      []SubjectScore `json:"subjects"`
	ScoredBy      string         `json:"scoredBy"`
	ScoredAt      time.Time      `json:"scoredAt"`
}

// ScoreSavedEvent is published after a score commits.
type ScoreSavedEvent struct {
	Type          string    `json:"type"`
	CandidateID   string    `json:"candidateId"`
	ScreeningID   string    `json:"screeningId"`
	TotalScore    int       `json:"totalScore"`
	TotalPossible int       `json:"totalPossible"`
	Percentage    int       `json:"percentage"`
	Status        Status    `json:"status"`
	ScoredBy      string    `json:"scoredBy"`
	ScoredAt      time.Time `json:"scoredAt"`
}
