package app_test

import (
	"context"
	"errors"
	"testing"

	"geoquiz/internal/app"
	"geoquiz/internal/domain"
)

func TestPendingBatchKeepsOrder(t *testing.T) {
	batch := app.NewPendingBatch()
	qs := batchQuestions(t)
	for _, q := range qs {
		if err := batch.Add(q); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if batch.Len() != 3 {
		t.Fatalf("expected 3 pending, got %d", batch.Len())
	}
	if !batch.Remove(1) || batch.Remove(5) {
		t.Fatalf("unexpected remove results")
	}
	got := batch.Questions()
	if len(got) != 2 || got[0] != qs[0] || got[1] != qs[2] {
		t.Fatalf("unexpected pending order %v", got)
	}
}

func TestPendingBatchRejectsStoredQuestions(t *testing.T) {
	batch := app.NewPendingBatch()
	q := batchQuestions(t)[0]
	stored := domain.WithIdentity(q, 4, q.CreatedDate())
	if err := batch.Add(stored); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected saved question rejected, got %v", err)
	}
	if err := batch.Add(nil); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected nil rejected, got %v", err)
	}
}

func TestPendingBatchFlushStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeQuestions()
	repo.failOnSave = 2

	batch := app.NewPendingBatch()
	for _, q := range batchQuestions(t) {
		_ = batch.Add(q)
	}

	saved, err := batch.Flush(ctx, repo)
	var repoErr *domain.RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if len(saved) != 1 || saved[0].ID() != 1 {
		t.Fatalf("expected first question saved, got %v", saved)
	}
	if batch.Len() != 2 {
		t.Fatalf("expected unsaved questions kept, got %d", batch.Len())
	}

	saved, err = batch.Flush(ctx, repo)
	if err != nil || len(saved) != 2 || batch.Len() != 0 {
		t.Fatalf("expected retry to drain the batch, saved=%d err=%v left=%d", len(saved), err, batch.Len())
	}
}

func batchQuestions(t *testing.T) []domain.Question {
	t.Helper()
	a, err := domain.NewTrueFalse("The Sahara is the largest hot desert.", true, domain.Africa)
	if err != nil {
		t.Fatalf("true/false: %v", err)
	}
	b, err := domain.NewOpenEnded("Which ocean borders Oceania to the east?", "Pacific", domain.Oceania, []string{"Pacific Ocean"})
	if err != nil {
		t.Fatalf("open ended: %v", err)
	}
	c, err := domain.NewMultipleChoice("Which is the coldest continent?", []string{"Europe", "Antarctica", "Asia", "Africa"}, 1, domain.Antarctica)
	if err != nil {
		t.Fatalf("multiple choice: %v", err)
	}
	return []domain.Question{a, b, c}
}
