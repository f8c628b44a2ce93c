package domain

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptActive is returned when a start collides with a live attempt.
	ErrAttemptActive = errors.New("an attempt is already active, stop or submit it first")
	// ErrNoActiveAttempt is returned by stop/submit when no live attempt exists
	// (never started, already finished, or past its deadline).
	ErrNoActiveAttempt = errors.New("no active attempt")
	// ErrAnswerMismatch indicates submitted answers do not line up with the
	// quiz's questions.
	ErrAnswerMismatch = errors.New("answers do not match quiz questions")
)
