package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"geoquiz/internal/domain"
	"github.com/uptrace/bun"
)

// DateLayout is how every date column is stored, in local time.
const DateLayout = "2006-01-02 15:04:05"

// QuestionRow is the flat persisted form shared by all question variants.
// Columns a variant does not use are NULL.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions" json:"-"`

	ID                 int64   `bun:"id,pk,autoincrement" json:"id"`
	QuestionText       string  `bun:"question_text,notnull" json:"questionText"`
	CorrectAnswer      string  `bun:"correct_answer,notnull" json:"correctAnswer"`
	QuestionType       int     `bun:"question_type,notnull" json:"questionType"`
	Continent          int     `bun:"continent,notnull" json:"continent"`
	CreatedDate        string  `bun:"created_date,notnull" json:"createdDate"`
	Options            *string `bun:"options" json:"options,omitempty"`
	CorrectOptionIndex *int    `bun:"correct_option_index" json:"correctOptionIndex,omitempty"`
	AlternativeAnswers *string `bun:"alternative_answers" json:"alternativeAnswers,omitempty"`
}

// EncodeQuestion flattens q into a row, writing only the columns its variant uses.
func EncodeQuestion(q domain.Question) (QuestionRow, error) {
	if q == nil {
		return QuestionRow{}, fmt.Errorf("encode question: %w", domain.ErrInvalidQuestion)
	}
	row := QuestionRow{
		ID:            q.ID(),
		QuestionText:  q.Text(),
		CorrectAnswer: q.CorrectAnswer(),
		QuestionType:  int(q.Type()),
		Continent:     int(q.Continent()),
		CreatedDate:   FormatDate(q.CreatedDate()),
	}
	switch v := q.(type) {
	case *domain.TrueFalse:
	case *domain.OpenEnded:
		if alts := v.AlternativeAnswers(); len(alts) > 0 {
			joined := strings.Join(alts, domain.FieldDelimiter)
			row.AlternativeAnswers = &joined
		}
	case *domain.MultipleChoice:
		joined := strings.Join(v.Options(), domain.FieldDelimiter)
		index := v.CorrectOptionIndex()
		row.Options = &joined
		row.CorrectOptionIndex = &index
	default:
		return QuestionRow{}, fmt.Errorf("encode question %d: %w", q.ID(), domain.ErrUnknownQuestionType)
	}
	return row, nil
}

// DecodeQuestion rebuilds the variant named by the row's discriminant.
func DecodeQuestion(row QuestionRow) (domain.Question, error) {
	created, err := ParseDate(row.CreatedDate)
	if err != nil {
		return nil, corrupt(row.ID, err)
	}
	continent := domain.Continent(row.Continent)

	var q domain.Question
	switch domain.QuestionType(row.QuestionType) {
	case domain.TypeTrueFalse:
		answer, err := strconv.ParseBool(row.CorrectAnswer)
		if err != nil {
			return nil, corrupt(row.ID, err)
		}
		q, err = domain.NewTrueFalse(row.QuestionText, answer, continent)
		if err != nil {
			return nil, corrupt(row.ID, err)
		}
	case domain.TypeOpenEnded:
		var alts []string
		if row.AlternativeAnswers != nil {
			for _, alt := range strings.Split(*row.AlternativeAnswers, domain.FieldDelimiter) {
				if alt != "" {
					alts = append(alts, alt)
				}
			}
		}
		q, err = domain.NewOpenEnded(row.QuestionText, row.CorrectAnswer, continent, alts)
		if err != nil {
			return nil, corrupt(row.ID, err)
		}
	case domain.TypeMultipleChoice:
		if row.Options == nil || row.CorrectOptionIndex == nil {
			return nil, corrupt(row.ID, errors.New("missing options"))
		}
		options := strings.Split(*row.Options, domain.FieldDelimiter)
		if len(options) != domain.OptionCount {
			return nil, corrupt(row.ID, fmt.Errorf("expected %d options, found %d", domain.OptionCount, len(options)))
		}
		q, err = domain.NewMultipleChoice(row.QuestionText, options, *row.CorrectOptionIndex, continent)
		if err != nil {
			return nil, corrupt(row.ID, err)
		}
	default:
		return nil, fmt.Errorf("decode question %d: %w: %d", row.ID, domain.ErrUnknownQuestionType, row.QuestionType)
	}
	return domain.WithIdentity(q, row.ID, created), nil
}

func corrupt(id int64, cause error) error {
	return fmt.Errorf("decode question %d: %w: %w", id, domain.ErrCorruptQuestion, cause)
}

func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
