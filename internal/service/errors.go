package service

import "errors"

// Recoverable error taxonomy for the adaptive engine. All of these are
// handled at the coordinator/controller boundary; none leaves a Response
// recorded without its matching rating mutation.
var (
	// ErrNoCandidate means the selector exhausted the question pool even
	// after widening the difficulty window.
	ErrNoCandidate = errors.New("no candidate question available")
	// ErrGenerationUnavailable means the content source could not produce a
	// fresh question.
	ErrGenerationUnavailable = errors.New("question generation unavailable")
	// ErrInvalidAnswerIndex rejects a selected_index outside the option
	// bounds before any state is touched.
	ErrInvalidAnswerIndex = errors.New("selected answer index out of bounds")
	// ErrSessionNotActive means an answer arrived for an ended or unknown
	// session.
	ErrSessionNotActive = errors.New("session is not active")
	// ErrConcurrentModification means the optimistic check on a session
	// write failed twice.
	ErrConcurrentModification = errors.New("concurrent session modification")
)
