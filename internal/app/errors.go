package app

import "errors"

var (
	// ErrSessionNotFound is returned when a user acts without an active quiz.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidState is returned for transitions the session's state does not allow.
	ErrInvalidState = errors.New("operation not allowed in the current session state")
	// ErrAlreadyAnswered is returned when a question is answered a second time.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrAtFirstQuestion is returned by GoBack on the first question.
	ErrAtFirstQuestion = errors.New("already at the first question")
	// ErrInvalidAnswer is returned for open-ended answers outside 1-4 words.
	ErrInvalidAnswer = errors.New("answer must be between 1 and 4 words")
)
