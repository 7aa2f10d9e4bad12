package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"geoquiz/internal/domain"
	"github.com/uptrace/bun"
)

// QuestionStore persists questions in the flat questions table.
type QuestionStore struct {
	db        *bun.DB
	onCorrupt func(error)
}

type QuestionStoreOption func(*QuestionStore)

// WithCorruptRowHandler receives every row LoadPool skips.
func WithCorruptRowHandler(fn func(error)) QuestionStoreOption {
	return func(s *QuestionStore) { s.onCorrupt = fn }
}

func NewQuestionStore(db *bun.DB, opts ...QuestionStoreOption) *QuestionStore {
	s := &QuestionStore{db: db, onCorrupt: func(error) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts q and returns it carrying the assigned ID.
func (s *QuestionStore) Save(ctx context.Context, q domain.Question) (domain.Question, error) {
	row, err := EncodeQuestion(q)
	if err != nil {
		return nil, err
	}
	row.ID = 0
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return nil, &domain.RepositoryError{Op: "save question", Err: err}
	}
	return domain.WithIdentity(q, row.ID, q.CreatedDate()), nil
}

// Update overwrites every column of the row with q's ID. It reports whether exactly one row changed.
func (s *QuestionStore) Update(ctx context.Context, q domain.Question) (bool, error) {
	row, err := EncodeQuestion(q)
	if err != nil {
		return false, err
	}
	if row.ID == 0 {
		return false, &domain.ValidationError{Kind: domain.ErrInvalidQuestion, Field: "id", Reason: "question is not saved"}
	}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return false, &domain.RepositoryError{Op: "update question", Err: err}
	}
	return affectedOne(res, "update question")
}

func (s *QuestionStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.NewDelete().Model((*QuestionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, &domain.RepositoryError{Op: "delete question", Err: err}
	}
	return affectedOne(res, "delete question")
}

func (s *QuestionStore) FindByID(ctx context.Context, id int64) (domain.Question, error) {
	var row QuestionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQuestionNotFound
	}
	if err != nil {
		return nil, &domain.RepositoryError{Op: "find question", Err: err}
	}
	return DecodeQuestion(row)
}

// ListByContinent returns the continent's questions oldest first. Rows that fail to
// decode are skipped and reported as domain.DecodeErrors next to the decoded questions.
func (s *QuestionStore) ListByContinent(ctx context.Context, c domain.Continent) ([]domain.Question, error) {
	var rows []QuestionRow
	err := s.db.NewSelect().Model(&rows).
		Where("continent = ?", int(c)).
		Order("created_date ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "list questions", Err: err}
	}
	return decodeRows(rows)
}

// ListAll returns every question grouped by continent, oldest first within a continent.
func (s *QuestionStore) ListAll(ctx context.Context) ([]domain.Question, error) {
	var rows []QuestionRow
	err := s.db.NewSelect().Model(&rows).
		Order("continent ASC", "created_date ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "list questions", Err: err}
	}
	return decodeRows(rows)
}

func (s *QuestionStore) CountAll(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*QuestionRow)(nil)).Count(ctx)
	if err != nil {
		return 0, &domain.RepositoryError{Op: "count questions", Err: err}
	}
	return n, nil
}

func (s *QuestionStore) CountByContinent(ctx context.Context, c domain.Continent) (int, error) {
	n, err := s.db.NewSelect().Model((*QuestionRow)(nil)).Where("continent = ?", int(c)).Count(ctx)
	if err != nil {
		return 0, &domain.RepositoryError{Op: "count questions", Err: err}
	}
	return n, nil
}

// LoadPool lists the questions matching filter for a quiz. Undecodable rows go to
// the corrupt row handler instead of failing the quiz.
func (s *QuestionStore) LoadPool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	var (
		questions []domain.Question
		err       error
	)
	if filter.All {
		questions, err = s.ListAll(ctx)
	} else {
		questions, err = s.ListByContinent(ctx, filter.Continent)
	}
	var skipped domain.DecodeErrors
	if errors.As(err, &skipped) {
		for _, e := range skipped {
			s.onCorrupt(e)
		}
		return questions, nil
	}
	return questions, err
}

func decodeRows(rows []QuestionRow) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(rows))
	var skipped domain.DecodeErrors
	for _, row := range rows {
		q, err := DecodeQuestion(row)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		questions = append(questions, q)
	}
	if len(skipped) > 0 {
		return questions, skipped
	}
	return questions, nil
}

func affectedOne(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.RepositoryError{Op: op, Err: err}
	}
	return n == 1, nil
}
