package domain

import (
	"errors"
	"fmt"
)

// Error classes. Callers classify with errors.Is; the specific errors below wrap one of these.
var (
	// ErrInvalidArgument marks missing or malformed identifiers supplied by the caller.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks data-integrity problems such as an empty catalog.
	ErrInvalidState = errors.New("invalid state")
	// ErrDuplicateSubmission is returned when a candidate has already been scored.
	ErrDuplicateSubmission = errors.New("candidate already scored")
	// ErrNotFound marks a missing candidate, screening or score record.
	ErrNotFound = errors.New("not found")
)

var (
	ErrCandidateNotFound = fmt.Errorf("candidate %w", ErrNotFound)
	ErrScreeningNotFound = fmt.Errorf("screening %w", ErrNotFound)
	ErrScoreNotFound     = fmt.Errorf("score record %w", ErrNotFound)

	ErrEmptyCatalog = fmt.Errorf("%w: question catalog is empty", ErrInvalidState)
	ErrNoScreening  = fmt.Errorf("%w: candidate has no screening", ErrInvalidState)

	ErrInvalidMarks    = fmt.Errorf("%w: question marks must be positive", ErrInvalidState)
	ErrInvalidPassMark = fmt.Errorf("%w: pass mark must be between 0 and 100", ErrInvalidState)

	ErrMissingCandidateID = fmt.Errorf("%w: candidate id is required", ErrInvalidArgument)
	ErrMissingScreeningID = fmt.Errorf("%w: screening id is required", ErrInvalidArgument)
	ErrMissingScorer      = fmt.Errorf("%w: scoredBy is required", ErrInvalidArgument)
)
