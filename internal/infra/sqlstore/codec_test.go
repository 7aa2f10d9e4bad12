package sqlstore

import (
	"errors"
	"testing"
	"time"

	"geoquiz/internal/domain"
)

func TestEncodeWritesOnlyVariantColumns(t *testing.T) {
	tf, _ := domain.NewTrueFalse("The Danube flows through Vienna.", false, domain.Europe)
	row, err := EncodeQuestion(tf)
	if err != nil {
		t.Fatalf("encode true/false: %v", err)
	}
	if row.QuestionType != 1 || row.CorrectAnswer != "False" || row.Options != nil || row.CorrectOptionIndex != nil || row.AlternativeAnswers != nil {
		t.Fatalf("unexpected true/false row %+v", row)
	}

	oe, _ := domain.NewOpenEnded("What is the capital of Japan?", "Tokyo", domain.Asia, []string{"Edo", "Tōkyō"})
	row, err = EncodeQuestion(oe)
	if err != nil {
		t.Fatalf("encode open ended: %v", err)
	}
	if row.QuestionType != 2 || row.AlternativeAnswers == nil || *row.AlternativeAnswers != "Edo|Tōkyō" || row.Options != nil {
		t.Fatalf("unexpected open ended row %+v", row)
	}

	bare, _ := domain.NewOpenEnded("What is the capital of Kenya?", "Nairobi", domain.Africa, nil)
	row, _ = EncodeQuestion(bare)
	if row.AlternativeAnswers != nil {
		t.Fatalf("expected NULL alternatives, got %q", *row.AlternativeAnswers)
	}

	mc, _ := domain.NewMultipleChoice("What is the capital of France?", []string{"Paris", "London", "Berlin", "Madrid"}, 0, domain.Europe)
	row, err = EncodeQuestion(mc)
	if err != nil {
		t.Fatalf("encode multiple choice: %v", err)
	}
	if row.QuestionType != 3 || *row.Options != "Paris|London|Berlin|Madrid" || *row.CorrectOptionIndex != 0 || row.CorrectAnswer != "Paris" {
		t.Fatalf("unexpected multiple choice row %+v", row)
	}
	if row.Continent != 2 || row.AlternativeAnswers != nil {
		t.Fatalf("unexpected shared columns %+v", row)
	}
}

func TestDecodeRebuildsVariants(t *testing.T) {
	created := "2024-02-03 04:05:06"
	alts := "Edo||Tōkyō"
	row := QuestionRow{ID: 4, QuestionText: "What is the capital of Japan?", CorrectAnswer: "Tokyo", QuestionType: 2, Continent: 1, CreatedDate: created, AlternativeAnswers: &alts}
	q, err := DecodeQuestion(row)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	oe, ok := q.(*domain.OpenEnded)
	if !ok {
		t.Fatalf("expected *domain.OpenEnded, got %T", q)
	}
	if got := oe.AlternativeAnswers(); len(got) != 2 || got[0] != "Edo" || got[1] != "Tōkyō" {
		t.Fatalf("expected empty segments dropped, got %v", got)
	}
	want := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	if q.ID() != 4 || !q.CreatedDate().Equal(want) {
		t.Fatalf("identity not restored: id=%d created=%v", q.ID(), q.CreatedDate())
	}

	row = QuestionRow{ID: 5, QuestionText: "Lake Baikal is in Russia.", CorrectAnswer: "False", QuestionType: 1, Continent: 1, CreatedDate: created}
	q, err = DecodeQuestion(row)
	if err != nil {
		t.Fatalf("decode true/false: %v", err)
	}
	if tf, ok := q.(*domain.TrueFalse); !ok || tf.Answer() {
		t.Fatalf("expected false true/false question, got %#v", q)
	}

	row = QuestionRow{ID: 6, QuestionText: "What is the capital of Peru?", CorrectAnswer: "Lima", QuestionType: 2, Continent: 3, CreatedDate: created}
	q, err = DecodeQuestion(row)
	if err != nil {
		t.Fatalf("decode open ended without alternatives: %v", err)
	}
	if len(q.(*domain.OpenEnded).AlternativeAnswers()) != 0 {
		t.Fatalf("expected no alternatives")
	}
}

func TestDecodeRejectsBadRows(t *testing.T) {
	created := "2024-02-03 04:05:06"
	three := "Paris|London|Berlin"
	five := "a|b|c|d|e"
	index := 0
	cases := []struct {
		name string
		row  QuestionRow
		want error
	}{
		{"unknown type", QuestionRow{ID: 1, QuestionText: "Which river is longest?", CorrectAnswer: "Nile", QuestionType: 9, Continent: 4, CreatedDate: created}, domain.ErrUnknownQuestionType},
		{"three options", QuestionRow{ID: 2, QuestionText: "What is the capital of France?", CorrectAnswer: "Paris", QuestionType: 3, Continent: 2, CreatedDate: created, Options: &three, CorrectOptionIndex: &index}, domain.ErrCorruptQuestion},
		{"five options", QuestionRow{ID: 3, QuestionText: "What is the capital of France?", CorrectAnswer: "a", QuestionType: 3, Continent: 2, CreatedDate: created, Options: &five, CorrectOptionIndex: &index}, domain.ErrCorruptQuestion},
		{"missing options", QuestionRow{ID: 4, QuestionText: "What is the capital of France?", CorrectAnswer: "Paris", QuestionType: 3, Continent: 2, CreatedDate: created}, domain.ErrCorruptQuestion},
		{"bad boolean", QuestionRow{ID: 5, QuestionText: "Everest is in Nepal.", CorrectAnswer: "maybe", QuestionType: 1, Continent: 1, CreatedDate: created}, domain.ErrCorruptQuestion},
		{"bad date", QuestionRow{ID: 6, QuestionText: "Everest is in Nepal.", CorrectAnswer: "True", QuestionType: 1, Continent: 1, CreatedDate: "yesterday"}, domain.ErrCorruptQuestion},
		{"bad continent", QuestionRow{ID: 7, QuestionText: "Everest is in Nepal.", CorrectAnswer: "True", QuestionType: 1, Continent: 0, CreatedDate: created}, domain.ErrCorruptQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeQuestion(tc.row); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
