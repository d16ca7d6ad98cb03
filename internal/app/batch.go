package app

import (
	"context"

	"screening-score-service/internal/domain"

	"golang.org/x/sync/errgroup"
)

// BatchError is the failure of one submission within a batch.
type BatchError struct {
	CandidateID string `json:"candidateId"`
	Error       string `json:"error"`
	err         error
}

// Err returns the underlying error for classification with errors.Is.
func (e BatchError) Err() error { return e.err }

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BatchResult struct {
	Results []domain.CandidateResult `json:"results"`
	Errors  []BatchError             `json:"errors"`
	Summary BatchSummary             `json:"summary"`
}

// BatchScore scores each submission independently. A failing submission is
// reported in Errors and never stops the others. Results and errors keep the
// order of the input.
func (s *ScoringService) BatchScore(ctx context.Context, submissions []domain.Submission, scoredBy string) BatchResult {
	type outcome struct {
		result domain.ScoreResult
		err    error
	}
	outcomes := make([]outcome, len(submissions))

	var g errgroup.Group
	g.SetLimit(s.batchLimit)
	for i, sub := range submissions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].result, outcomes[i].err = s.ScoreCandidate(ctx, sub, scoredBy)
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{
		Results: make([]domain.CandidateResult, 0, len(submissions)),
		Errors:  make([]BatchError, 0),
		Summary: BatchSummary{Total: len(submissions)},
	}
	for i, o := range outcomes {
		candidateID := submissions[i].CandidateID
		if o.err != nil {
			s.log.WithError(o.err).WithField("candidate_id", candidateID).Warn("batch submission failed")
			out.Errors = append(out.Errors, BatchError{CandidateID: candidateID, Error: o.err.Error(), err: o.err})
			out.Summary.Failed++
			continue
		}
		out.Results = append(out.Results, domain.CandidateResult{CandidateID: candidateID, ScoreResult: o.result})
		out.Summary.Successful++
	}
	return out
}
