package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuizResult is the immutable record of one completed session.
type QuizResult struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"userId"`
	Username          string        `json:"username"`
	TotalQuestions    int           `json:"totalQuestions"`
	CorrectAnswers    int           `json:"correctAnswers"`
	TimeTaken         time.Duration `json:"timeTaken"`
	CompletedDate     time.Time     `json:"completedDate"`
	SelectedContinent Continent     `json:"selectedContinent"`
	ContinentName     string        `json:"continentName"`
}

// NewQuizResult validates the counters and duration before building a result.
func NewQuizResult(userID int64, username string, total, correct int, timeTaken time.Duration, filter ContinentFilter, completed time.Time) (QuizResult, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return QuizResult{}, &ValidationError{Kind: ErrInvalidResult, Field: "username", Reason: "cannot be empty"}
	case total < 0:
		return QuizResult{}, &ValidationError{Kind: ErrInvalidResult, Field: "totalQuestions", Reason: "cannot be negative"}
	case correct < 0:
		return QuizResult{}, &ValidationError{Kind: ErrInvalidResult, Field: "correctAnswers", Reason: "cannot be negative"}
	case correct > total:
		return QuizResult{}, &ValidationError{Kind: ErrInvalidResult, Field: "correctAnswers", Reason: "cannot exceed total questions"}
	case timeTaken < 0:
		return QuizResult{}, &ValidationError{Kind: ErrInvalidResult, Field: "timeTaken", Reason: "cannot be negative"}
	}
	return QuizResult{
		UserID:            userID,
		Username:          username,
		TotalQuestions:    total,
		CorrectAnswers:    correct,
		TimeTaken:         timeTaken,
		CompletedDate:     completed,
		SelectedContinent: filter.Selected(),
		ContinentName:     filter.DisplayName(),
	}, nil
}

func (r QuizResult) Percentage() float64 {
	return Percentage(r.CorrectAnswers, r.TotalQuestions)
}

func (r QuizResult) WrongAnswers() int {
	return r.TotalQuestions - r.CorrectAnswers
}

func (r QuizResult) Grade() string {
	return Grade(r.Percentage())
}

func (r QuizResult) PerformanceMessage() string {
	return PerformanceMessage(r.Percentage())
}

// TimeTakenFormatted renders MM:SS, or HH:MM:SS once the quiz ran for an hour.
func (r QuizResult) TimeTakenFormatted() string {
	total := int(r.TimeTaken / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func (r QuizResult) String() string {
	return fmt.Sprintf("%s: %d/%d (%.1f%%) - %s - %s", r.Username, r.CorrectAnswers, r.TotalQuestions, r.Percentage(), r.ContinentName, r.TimeTakenFormatted())
}

// Percentage is correct/total*100, and 0 for an empty quiz.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

var gradeBands = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D+"},
	{40, "D"},
}

// Grade maps a percentage to a letter grade; anything under 40 is F.
func Grade(percentage float64) string {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.grade
		}
	}
	return "F"
}

var messageBands = []struct {
	min     float64
	message string
}{
	{90, "Excellent! Outstanding geography knowledge!"},
	{80, "Great job! Very good understanding of geography!"},
	{70, "Good work! Solid geography knowledge!"},
	{60, "Not bad! Keep studying to improve!"},
	{50, "Fair performance. More practice needed!"},
}

func PerformanceMessage(percentage float64) string {
	for _, band := range messageBands {
		if percentage >= band.min {
			return band.message
		}
	}
	return "Keep studying! Geography is fascinating!"
}
