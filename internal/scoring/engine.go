// Package scoring grades answer sets against a question catalog and aggregates
// persisted outcomes into cohort statistics. Everything here is pure.
package scoring

import (
	"fmt"

	"screening-score-service/internal/domain"
)

// DefaultPassMark is the pass threshold, as a percentage of the total possible
// marks, used when a screening does not set its own.
const DefaultPassMark = 50

type Option func(*Engine)

// WithDefaultPassMark overrides the pass mark used for catalogs without one.
func WithDefaultPassMark(percent int) Option {
	return func(e *Engine) { e.defaultPassMark = percent }
}

// Engine holds scoring policy only; it is safe for concurrent use.
type Engine struct {
	defaultPassMark int
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{defaultPassMark: DefaultPassMark}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Calculate grades answers against the full catalog.
//
// Every catalog question yields one breakdown entry, answered or not. Answers
// for question ids outside the catalog are dropped, and when a question id
// repeats only its first answer counts. When timeTaken is 0 the time spent on
// accepted answers is summed instead.
func (e *Engine) Calculate(candidateID string, answers []domain.Answer, catalog domain.Catalog, timeTaken int) (domain.ScoreResult, error) {
	if candidateID == "" {
		return domain.ScoreResult{}, domain.ErrMissingCandidateID
	}
	if err := catalog.Validate(); err != nil {
		return domain.ScoreResult{}, err
	}
	if timeTaken < 0 {
		return domain.ScoreResult{}, fmt.Errorf("%w: timeTaken must not be negative", domain.ErrInvalidArgument)
	}

	known := make(map[string]struct{}, len(catalog.Questions))
	for _, q := range catalog.Questions {
		known[q.ID] = struct{}{}
	}

	byQuestion := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		if _, ok := known[a.QuestionID]; !ok {
			continue
		}
		if _, seen := byQuestion[a.QuestionID]; seen {
			continue
		}
		byQuestion[a.QuestionID] = a
	}

	result := domain.ScoreResult{
		TotalQuestions: len(catalog.Questions),
		Breakdown:      make([]domain.BreakdownEntry, 0, len(catalog.Questions)),
	}
	spent := 0
	for _, q := range catalog.Questions {
		entry := domain.BreakdownEntry{
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswer,
		}
		if a, ok := byQuestion[q.ID]; ok {
			if a.SelectedAnswer != nil {
				selected := *a.SelectedAnswer
				entry.SelectedAnswer = &selected
				entry.Correct = selected == q.CorrectAnswer
				result.QuestionsAnswered++
			}
			if a.TimeSpent != nil && *a.TimeSpent > 0 {
				spent += *a.TimeSpent
			}
		}
		if entry.Correct {
			entry.MarksAwarded = q.Marks
		}
		result.TotalScore += entry.MarksAwarded
		result.TotalPossible += q.Marks
		result.Breakdown = append(result.Breakdown, entry)
	}

	if result.TotalPossible > 0 {
		result.Percentage = RoundRatio(result.TotalScore*100, result.TotalPossible)
	}
	result.Status = e.classify(result, catalog.PassMark)

	result.TimeTaken = timeTaken
	if timeTaken == 0 {
		result.TimeTaken = spent
	}
	return result, nil
}

func (e *Engine) classify(r domain.ScoreResult, passMark *int) domain.Status {
	if r.QuestionsAnswered < r.TotalQuestions {
		return domain.StatusPending
	}
	threshold := e.defaultPassMark
	if passMark != nil {
		threshold = *passMark
	}
	// Compared in whole marks so a 49.6% score never passes a 50% mark by rounding.
	if r.TotalScore*100 >= threshold*r.TotalPossible {
		return domain.StatusPassed
	}
	return domain.StatusFailed
}

// RoundRatio returns num/den rounded half-up to the nearest integer for
// non-negative num and positive den. It is exact: no floating point is used.
func RoundRatio(num, den int) int {
	if den <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}
