package services

import "errors"

// Core errors returned by the settlement and prediction services. Handlers map
// these to HTTP statuses; none of them is retried automatically.
var (
	// ErrMatchNotFound: referenced match does not exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrSeriesNotFound: referenced series does not exist.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrInvalidChoice: submitted prediction names neither of the match's outcomes.
	ErrInvalidChoice = errors.New("invalid team selection")
	// ErrInvalidOutcome: declared winner names neither of the match's outcomes.
	ErrInvalidOutcome = errors.New("invalid winning outcome")
	// ErrWindowClosed: prediction window is closed (cutoff passed or match no
	// longer open).
	ErrWindowClosed = errors.New("prediction locked: cutoff passed")
	// ErrAlreadyDeclared: match is already completed or washed out.
	ErrAlreadyDeclared = errors.New("already declared or closed")
	// ErrSeriesLocked: series membership is frozen.
	ErrSeriesLocked = errors.New("series is locked")
)
