package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 4
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// User is an account able to author questions and take quizzes.
// Passwords are stored and compared as plain text.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Password      string    `json:"-"`
	CreatedDate   time.Time `json:"createdDate"`
	LastLoginDate time.Time `json:"lastLoginDate"`
}

// NewUser validates the credentials' format and stamps both dates with now.
func NewUser(username, password string, now time.Time) (User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return User{}, err
	}
	return User{Username: username, Password: password, CreatedDate: now, LastLoginDate: now}, nil
}

func (u User) CheckPassword(password string) bool {
	return u.Password != "" && u.Password == password
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return &ValidationError{Kind: ErrInvalidUser, Field: "username", Reason: "cannot be empty"}
	case len(username) < MinUsernameLen:
		return &ValidationError{Kind: ErrInvalidUser, Field: "username", Reason: fmt.Sprintf("must be at least %d characters long", MinUsernameLen)}
	case len(username) > MaxUsernameLen:
		return &ValidationError{Kind: ErrInvalidUser, Field: "username", Reason: fmt.Sprintf("cannot be longer than %d characters", MaxUsernameLen)}
	case !usernamePattern.MatchString(username):
		return &ValidationError{Kind: ErrInvalidUser, Field: "username", Reason: "can only contain letters, numbers, and underscores"}
	}
	return nil
}

func ValidatePassword(password string) error {
	switch {
	case strings.TrimSpace(password) == "":
		return &ValidationError{Kind: ErrInvalidUser, Field: "password", Reason: "cannot be empty"}
	case len(password) < MinPasswordLen:
		return &ValidationError{Kind: ErrInvalidUser, Field: "password", Reason: fmt.Sprintf("must be at least %d characters long", MinPasswordLen)}
	}
	return nil
}
