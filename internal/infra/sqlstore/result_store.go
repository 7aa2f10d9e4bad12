package sqlstore

import (
	"context"
	"fmt"
	"time"

	"geoquiz/internal/domain"
	"github.com/uptrace/bun"
)

type ResultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID                int64  `bun:"id,pk,autoincrement"`
	UserID            int64  `bun:"user_id,notnull"`
	Username          string `bun:"username,notnull"`
	TotalQuestions    int    `bun:"total_questions,notnull"`
	CorrectAnswers    int    `bun:"correct_answers,notnull"`
	TimeTakenSeconds  int64  `bun:"time_taken_seconds,notnull"`
	CompletedDate     string `bun:"completed_date,notnull"`
	SelectedContinent int    `bun:"selected_continent,notnull"`
	ContinentName     string `bun:"continent_name,notnull"`
}

// ResultStore persists completed quiz results. Durations are stored in whole seconds.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Save(ctx context.Context, r domain.QuizResult) (domain.QuizResult, error) {
	row := ResultRow{
		UserID:            r.UserID,
		Username:          r.Username,
		TotalQuestions:    r.TotalQuestions,
		CorrectAnswers:    r.CorrectAnswers,
		TimeTakenSeconds:  int64(r.TimeTaken / time.Second),
		CompletedDate:     FormatDate(r.CompletedDate),
		SelectedContinent: int(r.SelectedContinent),
		ContinentName:     r.ContinentName,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.QuizResult{}, &domain.RepositoryError{Op: "save result", Err: err}
	}
	r.ID = row.ID
	return r, nil
}

// ListByUser returns the user's results, most recent first.
func (s *ResultStore) ListByUser(ctx context.Context, userID int64) ([]domain.QuizResult, error) {
	var rows []ResultRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("completed_date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "list results", Err: err}
	}
	return decodeResults(rows)
}

// ListAll returns every result, most recent first.
func (s *ResultStore) ListAll(ctx context.Context) ([]domain.QuizResult, error) {
	var rows []ResultRow
	err := s.db.NewSelect().Model(&rows).
		Order("completed_date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "list results", Err: err}
	}
	return decodeResults(rows)
}

func decodeResults(rows []ResultRow) ([]domain.QuizResult, error) {
	results := make([]domain.QuizResult, 0, len(rows))
	for _, row := range rows {
		completed, err := ParseDate(row.CompletedDate)
		if err != nil {
			return nil, fmt.Errorf("decode result %d: %w", row.ID, err)
		}
		results = append(results, domain.QuizResult{
			ID:                row.ID,
			UserID:            row.UserID,
			Username:          row.Username,
			TotalQuestions:    row.TotalQuestions,
			CorrectAnswers:    row.CorrectAnswers,
			TimeTaken:         time.Duration(row.TimeTakenSeconds) * time.Second,
			CompletedDate:     completed,
			SelectedContinent: domain.Continent(row.SelectedContinent),
			ContinentName:     row.ContinentName,
		})
	}
	return results, nil
}
