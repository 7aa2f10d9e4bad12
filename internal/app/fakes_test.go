package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"geoquiz/internal/domain"
)

var errStoreDown = errors.New("store down")

// fakeQuestions is an in-memory QuestionRepository that also serves as a pool loader.
type fakeQuestions struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Question
	// failOnSave fails the nth Save call (1-based); zero never fails.
	failOnSave int
	saves      int
}

func newFakeQuestions() *fakeQuestions {
	return &fakeQuestions{rows: make(map[int64]domain.Question)}
}

func (f *fakeQuestions) Save(_ context.Context, q domain.Question) (domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failOnSave == f.saves {
		return nil, &domain.RepositoryError{Op: "save question", Err: errStoreDown}
	}
	f.nextID++
	stored := domain.WithIdentity(q, f.nextID, q.CreatedDate())
	f.rows[f.nextID] = stored
	return stored, nil
}

func (f *fakeQuestions) Update(_ context.Context, q domain.Question) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[q.ID()]; !ok {
		return false, nil
	}
	f.rows[q.ID()] = q
	return true, nil
}

func (f *fakeQuestions) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeQuestions) FindByID(_ context.Context, id int64) (domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (f *fakeQuestions) ListByContinent(ctx context.Context, c domain.Continent) ([]domain.Question, error) {
	return f.LoadPool(ctx, domain.OnlyContinent(c))
}

func (f *fakeQuestions) ListAll(ctx context.Context) ([]domain.Question, error) {
	return f.LoadPool(ctx, domain.AllContinents())
}

func (f *fakeQuestions) CountAll(ctx context.Context) (int, error) {
	all, _ := f.ListAll(ctx)
	return len(all), nil
}

func (f *fakeQuestions) CountByContinent(ctx context.Context, c domain.Continent) (int, error) {
	qs, _ := f.ListByContinent(ctx, c)
	return len(qs), nil
}

// LoadPool returns matching questions ordered by ID.
func (f *fakeQuestions) LoadPool(_ context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Question, 0, len(f.rows))
	for _, q := range f.rows {
		if filter.Matches(q.Continent()) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

type fakeResults struct {
	mu      sync.Mutex
	results []domain.QuizResult
	fail    bool
}

func (f *fakeResults) Save(_ context.Context, r domain.QuizResult) (domain.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.QuizResult{}, &domain.RepositoryError{Op: "save result", Err: errStoreDown}
	}
	r.ID = int64(len(f.results) + 1)
	f.results = append(f.results, r)
	return r, nil
}

func (f *fakeResults) ListByUser(_ context.Context, userID int64) ([]domain.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QuizResult
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].UserID == userID {
			out = append(out, f.results[i])
		}
	}
	return out, nil
}

func (f *fakeResults) ListAll(_ context.Context) ([]domain.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.QuizResult, 0, len(f.results))
	for i := len(f.results) - 1; i >= 0; i-- {
		out = append(out, f.results[i])
	}
	return out, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]domain.User{
		"admin": {ID: 1, Username: "admin", Password: "admin"},
	}}
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok || !u.CheckPassword(password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Username]; ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	u.ID = int64(len(f.users) + 1)
	f.users[u.Username] = u
	return u, nil
}

// reverseShuffle reverses the pool, giving tests a known question order.
func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
