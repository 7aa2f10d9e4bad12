package app

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"geoquiz/internal/domain"
)

// SessionState is the lifecycle stage of a quiz session.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateCompleted
)

func (s SessionState) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return "not_started"
}

// Shuffler permutes n elements through swap, with the signature of (*rand.Rand).Shuffle.
type Shuffler func(n int, swap func(i, j int))

var sessionSeq atomic.Uint64

// Session runs one quiz over a fixed, shuffled question list.
type Session struct {
	id      uint64
	user    domain.User
	now     func() time.Time
	shuffle Shuffler

	mu        sync.Mutex
	state     SessionState
	filter    domain.ContinentFilter
	questions []domain.Question
	answers   []answerSlot
	index     int
	startedAt time.Time
	result    *domain.QuizResult
}

// answerSlot holds the first answer recorded for a question index.
type answerSlot struct {
	answered bool
	answer   string
	correct  bool
}

// Snapshot is a consistent view of a session for presentation.
type Snapshot struct {
	SessionID uint64
	State     SessionState
	Filter    domain.ContinentFilter
	Index     int
	Total     int
	Question  domain.Question
	Answered  bool
	Elapsed   time.Duration
}

func NewSession(user domain.User) *Session {
	return NewSessionWithClock(user, time.Now, nil)
}

// NewSessionWithClock allows deterministic timestamps and ordering in tests.
// A nil shuffle uses a uniformly random, time-seeded permutation.
func NewSessionWithClock(user domain.User, now func() time.Time, shuffle Shuffler) *Session {
	if shuffle == nil {
		shuffle = rand.New(rand.NewSource(now().UnixNano())).Shuffle
	}
	return &Session{id: sessionSeq.Add(1), user: user, now: now, shuffle: shuffle}
}

// ID identifies the session within the process.
func (s *Session) ID() uint64 {
	return s.id
}

func (s *Session) User() domain.User {
	return s.user
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start shuffles a copy of pool and resets all progress. Starting again discards the previous run.
func (s *Session) Start(filter domain.ContinentFilter, pool []domain.Question) error {
	if len(pool) == 0 {
		return domain.ErrEmptyPool
	}
	questions := append([]domain.Question(nil), pool...)
	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	s.questions = questions
	s.answers = make([]answerSlot, len(questions))
	s.index = 0
	s.result = nil
	s.startedAt = s.now()
	s.state = StateInProgress
	return nil
}

// SubmitAnswer grades raw against the current question and returns that question.
// Only the first answer per question counts: later submissions return the recorded
// outcome with ErrAlreadyAnswered. Open-ended answers must be 1 to 4 words.
func (s *Session) SubmitAnswer(raw string) (domain.Question, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return nil, false, ErrInvalidState
	}
	q := s.questions[s.index]
	slot := &s.answers[s.index]
	if slot.answered {
		return q, slot.correct, ErrAlreadyAnswered
	}
	if q.Type() == domain.TypeOpenEnded && !domain.ValidOpenEndedAnswer(raw) {
		return q, false, ErrInvalidAnswer
	}
	slot.answered = true
	slot.answer = raw
	slot.correct = q.CheckAnswer(raw)
	return q, slot.correct, nil
}

// Advance moves to the next question, completing the session after the last one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrInvalidState
	}
	if s.index < len(s.questions)-1 {
		s.index++
		return nil
	}
	_, err := s.completeLocked()
	return err
}

// GoBack revisits the previous question. Recorded answers are kept.
func (s *Session) GoBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrInvalidState
	}
	if s.index == 0 {
		return ErrAtFirstQuestion
	}
	s.index--
	return nil
}

// Finish ends the session early; unanswered questions count as wrong.
// Calling it on a completed session returns the existing result.
func (s *Session) Finish() (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateCompleted:
		return *s.result, nil
	case StateInProgress:
		return s.completeLocked()
	}
	return domain.QuizResult{}, ErrInvalidState
}

// Result returns the outcome once the session has completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{SessionID: s.id, State: s.state, Filter: s.filter, Index: s.index, Total: len(s.questions)}
	switch s.state {
	case StateInProgress:
		snap.Question = s.questions[s.index]
		snap.Answered = s.answers[s.index].answered
		snap.Elapsed = s.now().Sub(s.startedAt)
	case StateCompleted:
		snap.Elapsed = s.result.TimeTaken
	}
	return snap
}

func (s *Session) completeLocked() (domain.QuizResult, error) {
	now := s.now()
	elapsed := now.Sub(s.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	correct := 0
	for _, slot := range s.answers {
		if slot.correct {
			correct++
		}
	}
	result, err := domain.NewQuizResult(s.user.ID, s.user.Username, len(s.questions), correct, elapsed, s.filter, now)
	if err != nil {
		return domain.QuizResult{}, err
	}
	s.result = &result
	s.state = StateCompleted
	return result, nil
}
