package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuestion is matched by validation failures raised while building a question.
	ErrInvalidQuestion = errors.New("invalid question argument")
	// ErrInvalidResult is matched by quiz result invariant violations.
	ErrInvalidResult = errors.New("invalid quiz result")
	// ErrInvalidUser is matched by username/password format violations.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUnknownQuestionType indicates a stored discriminant outside the known variants.
	ErrUnknownQuestionType = errors.New("unknown question type")
	// ErrCorruptQuestion indicates a stored row that cannot be rebuilt into its variant.
	ErrCorruptQuestion = errors.New("corrupt question row")
	// ErrQuestionNotFound is returned when no question has the requested ID.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyPool is returned when a quiz is started without eligible questions.
	ErrEmptyPool = errors.New("no questions available for the selected continent")
	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when creating a user whose name already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUserNotFound is returned when looking up an unknown username.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports a rejected field value. It matches its Kind via errors.Is.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalidQuestion(field, reason string) error {
	return &ValidationError{Kind: ErrInvalidQuestion, Field: field, Reason: reason}
}

// RepositoryError wraps a storage failure with the operation that hit it.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return "repository " + e.Op + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// DecodeErrors lists rows a listing skipped because they could not be decoded.
// The listing still returns every row that decoded cleanly.
type DecodeErrors []error

func (e DecodeErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d question rows skipped: %s", len(e), strings.Join(msgs, "; "))
}

func (e DecodeErrors) Unwrap() []error { return e }
