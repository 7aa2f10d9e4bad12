package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"geoquiz/internal/domain"
)

// QuestionRepository persists questions (SQLite, Postgres, etc).
type QuestionRepository interface {
	QuestionSaver
	Update(ctx context.Context, q domain.Question) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (domain.Question, error)
	ListByContinent(ctx context.Context, c domain.Continent) ([]domain.Question, error)
	ListAll(ctx context.Context) ([]domain.Question, error)
	CountAll(ctx context.Context) (int, error)
	CountByContinent(ctx context.Context, c domain.Continent) (int, error)
}

// QuestionPool serves the questions eligible for a quiz, usually from a cache.
type QuestionPool interface {
	Pool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error)
	Invalidate(ctx context.Context) error
}

type ResultRepository interface {
	Save(ctx context.Context, r domain.QuizResult) (domain.QuizResult, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.QuizResult, error)
	ListAll(ctx context.Context) ([]domain.QuizResult, error)
}

type UserRepository interface {
	Authenticate(ctx context.Context, username, password string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SessionRepository abstracts where active sessions live (in-memory, Redis, etc).
// A user has at most one active session.
type SessionRepository interface {
	Put(userID int64, s *Session)
	Get(userID int64) (*Session, bool)
	// Delete removes the user's session only if it is still s.
	Delete(userID int64, s *Session) bool
}

// AnswerFeedback is what a player learns after answering.
type AnswerFeedback struct {
	Correct       bool
	CorrectAnswer string
}

// Progress is the session view after a navigation step. Result is set once the quiz completed.
type Progress struct {
	Snapshot
	Result *domain.QuizResult
}

// QuizService contains the authoring, play and review use cases.
type QuizService struct {
	questions QuestionRepository
	pool      QuestionPool
	results   ResultRepository
	users     UserRepository
	sessions  SessionRepository
	now       func() time.Time
	shuffle   Shuffler
}

type Option func(*QuizService)

// WithClock sets the clock used for sessions and registrations.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithShuffle fixes the question order of new sessions.
func WithShuffle(shuffle Shuffler) Option {
	return func(s *QuizService) { s.shuffle = shuffle }
}

func NewQuizService(questions QuestionRepository, pool QuestionPool, results ResultRepository, users UserRepository, sessions SessionRepository, opts ...Option) *QuizService {
	s := &QuizService{
		questions: questions,
		pool:      pool,
		results:   results,
		users:     users,
		sessions:  sessions,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QuizService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return s.users.Authenticate(ctx, username, password)
}

func (s *QuizService) Register(ctx context.Context, username, password string) (domain.User, error) {
	user, err := domain.NewUser(username, password, s.now())
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Create(ctx, user)
}

// CreateQuestion stores a new question and returns it with its assigned ID.
func (s *QuizService) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if q == nil {
		return nil, &domain.ValidationError{Kind: domain.ErrInvalidQuestion, Field: "question", Reason: "cannot be nil"}
	}
	stored, err := s.questions.Save(ctx, q)
	if err != nil {
		return nil, err
	}
	return stored, s.pool.Invalidate(ctx)
}

// SaveBatch flushes a pending batch and refreshes the quiz pool if anything was stored.
func (s *QuizService) SaveBatch(ctx context.Context, batch *PendingBatch) ([]domain.Question, error) {
	saved, err := batch.Flush(ctx, s.questions)
	if len(saved) > 0 {
		if invErr := s.pool.Invalidate(ctx); invErr != nil && err == nil {
			err = invErr
		}
	}
	return saved, err
}

// UpdateQuestion replaces question id with q, keeping the original creation date.
// The variant may change.
func (s *QuizService) UpdateQuestion(ctx context.Context, id int64, q domain.Question) (domain.Question, error) {
	if q == nil {
		return nil, &domain.ValidationError{Kind: domain.ErrInvalidQuestion, Field: "question", Reason: "cannot be nil"}
	}
	existing, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := domain.WithIdentity(q, id, existing.CreatedDate())
	ok, err := s.questions.Update(ctx, updated)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return updated, s.pool.Invalidate(ctx)
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id int64) error {
	ok, err := s.questions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrQuestionNotFound
	}
	return s.pool.Invalidate(ctx)
}

func (s *QuizService) Question(ctx context.Context, id int64) (domain.Question, error) {
	return s.questions.FindByID(ctx, id)
}

// ListQuestions may return questions together with domain.DecodeErrors for skipped rows.
func (s *QuizService) ListQuestions(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	if filter.All {
		return s.questions.ListAll(ctx)
	}
	return s.questions.ListByContinent(ctx, filter.Continent)
}

func (s *QuizService) CountQuestions(ctx context.Context, filter domain.ContinentFilter) (int, error) {
	if filter.All {
		return s.questions.CountAll(ctx)
	}
	return s.questions.CountByContinent(ctx, filter.Continent)
}

// StartQuiz begins a new session for user, replacing any session in progress.
func (s *QuizService) StartQuiz(ctx context.Context, user domain.User, filter domain.ContinentFilter) (Snapshot, error) {
	if !filter.All && !filter.Continent.Valid() {
		return Snapshot{}, fmt.Errorf("start quiz: unknown continent %d", filter.Continent)
	}
	pool, err := s.pool.Pool(ctx, filter)
	if err != nil {
		return Snapshot{}, err
	}
	session := NewSessionWithClock(user, s.now, s.shuffle)
	if err := session.Start(filter, pool); err != nil {
		return Snapshot{}, err
	}
	s.sessions.Put(user.ID, session)
	return session.Snapshot(), nil
}

// Current returns the user's active session state.
func (s *QuizService) Current(userID int64) (Snapshot, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// SubmitAnswer grades an answer to the current question. A repeated answer returns
// the recorded feedback together with ErrAlreadyAnswered.
func (s *QuizService) SubmitAnswer(_ context.Context, userID int64, answer string) (AnswerFeedback, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return AnswerFeedback{}, ErrSessionNotFound
	}
	q, correct, err := session.SubmitAnswer(answer)
	if err != nil && !errors.Is(err, ErrAlreadyAnswered) {
		return AnswerFeedback{}, err
	}
	return AnswerFeedback{Correct: correct, CorrectAnswer: q.FormattedCorrectAnswer()}, err
}

// Next advances the session. Moving past the last question completes the quiz and stores its result.
func (s *QuizService) Next(ctx context.Context, userID int64) (Progress, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return Progress{}, ErrSessionNotFound
	}
	if err := session.Advance(); err != nil {
		return Progress{}, err
	}
	if session.State() != StateCompleted {
		return Progress{Snapshot: session.Snapshot()}, nil
	}
	result, err := s.complete(ctx, userID, session)
	if err != nil {
		return Progress{}, err
	}
	return Progress{Snapshot: session.Snapshot(), Result: &result}, nil
}

func (s *QuizService) Back(_ context.Context, userID int64) (Snapshot, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if err := session.GoBack(); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Finish ends the quiz early and stores its result. Unanswered questions count as wrong.
func (s *QuizService) Finish(ctx context.Context, userID int64) (domain.QuizResult, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.QuizResult{}, ErrSessionNotFound
	}
	if _, err := session.Finish(); err != nil {
		return domain.QuizResult{}, err
	}
	return s.complete(ctx, userID, session)
}

// Abandon drops the user's session without recording a result, unless a
// newer session has replaced sessionID.
func (s *QuizService) Abandon(userID int64, sessionID uint64) {
	session, ok := s.sessions.Get(userID)
	if !ok || session.ID() != sessionID {
		return
	}
	s.sessions.Delete(userID, session)
}

func (s *QuizService) UserResults(ctx context.Context, userID int64) ([]domain.QuizResult, error) {
	return s.results.ListByUser(ctx, userID)
}

func (s *QuizService) AllResults(ctx context.Context) ([]domain.QuizResult, error) {
	return s.results.ListAll(ctx)
}

// UserResultsWithin narrows the user's history to window, measured from the service clock.
func (s *QuizService) UserResultsWithin(ctx context.Context, userID int64, window domain.ResultWindow) ([]domain.QuizResult, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return window.Apply(results, s.now()), nil
}

func (s *QuizService) AllResultsWithin(ctx context.Context, window domain.ResultWindow) ([]domain.QuizResult, error) {
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return window.Apply(results, s.now()), nil
}

// UserStats summarises the user's whole history regardless of any window.
func (s *QuizService) UserStats(ctx context.Context, userID int64) (domain.ResultStats, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return domain.ResultStats{}, err
	}
	return domain.Summarize(results), nil
}

// complete stores the session's result. The session is kept when saving fails so Finish can retry.
func (s *QuizService) complete(ctx context.Context, userID int64, session *Session) (domain.QuizResult, error) {
	result, ok := session.Result()
	if !ok {
		return domain.QuizResult{}, ErrInvalidState
	}
	saved, err := s.results.Save(ctx, result)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("save quiz result: %w", err)
	}
	s.sessions.Delete(userID, session)
	return saved, nil
}
