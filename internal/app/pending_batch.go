package app

import (
	"context"
	"sync"

	"geoquiz/internal/domain"
)

// QuestionSaver is the part of QuestionRepository a batch needs to persist itself.
type QuestionSaver interface {
	Save(ctx context.Context, q domain.Question) (domain.Question, error)
}

// PendingBatch holds authored questions, in insertion order, until they are saved together.
type PendingBatch struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewPendingBatch() *PendingBatch {
	return &PendingBatch{}
}

// Add queues q. Questions with an ID are already stored and are rejected.
func (b *PendingBatch) Add(q domain.Question) error {
	if q == nil {
		return &domain.ValidationError{Kind: domain.ErrInvalidQuestion, Field: "question", Reason: "cannot be nil"}
	}
	if q.ID() != 0 {
		return &domain.ValidationError{Kind: domain.ErrInvalidQuestion, Field: "id", Reason: "question is already saved"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = append(b.questions, q)
	return nil
}

// Remove drops the question at position i.
func (b *PendingBatch) Remove(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.questions) {
		return false
	}
	b.questions = append(b.questions[:i], b.questions[i+1:]...)
	return true
}

func (b *PendingBatch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// Questions returns a copy of the queued questions.
func (b *PendingBatch) Questions() []domain.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Question(nil), b.questions...)
}

func (b *PendingBatch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = nil
}

// Flush saves queued questions in order. Saved questions leave the batch; on the
// first failure the remaining ones stay queued so the flush can be retried.
func (b *PendingBatch) Flush(ctx context.Context, repo QuestionSaver) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	saved := make([]domain.Question, 0, len(b.questions))
	for len(b.questions) > 0 {
		stored, err := repo.Save(ctx, b.questions[0])
		if err != nil {
			return saved, err
		}
		saved = append(saved, stored)
		b.questions = b.questions[1:]
	}
	b.questions = nil
	return saved, nil
}
