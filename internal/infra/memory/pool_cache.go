package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"geoquiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches the questions matching a filter from the backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error)
}

// PoolCache caches question pools per continent filter with TTL to avoid repeated DB hits.
type PoolCache struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu         sync.RWMutex
	rnd        *rand.Rand
	cache      map[string]cachedPool
	generation uint64
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewPoolCache(loader PoolLoader, ttl time.Duration) *PoolCache {
	return &PoolCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

// Pool returns a copy of the cached pool, loading it on a miss.
func (c *PoolCache) Pool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	key := filter.Key()
	if questions, ok := c.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if questions, ok := c.lookup(key); ok {
			return questions, nil
		}

		c.mu.RLock()
		gen := c.generation
		c.mu.RUnlock()

		questions, err := c.loader.LoadPool(ctx, filter)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// an Invalidate during the load makes this result stale
		if gen == c.generation {
			c.cache[key] = cachedPool{
				questions: questions,
				expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
			}
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate drops every cached pool. Called after any question is written.
func (c *PoolCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cachedPool)
	c.generation++
	return nil
}

func (c *PoolCache) lookup(key string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return append([]domain.Question(nil), entry.questions...), true
	}
	return nil, false
}

func (c *PoolCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader filters a fixed question list (useful for tests/demos).
type StaticPoolLoader struct {
	questions []domain.Question
}

func NewStaticPoolLoader(questions []domain.Question) *StaticPoolLoader {
	return &StaticPoolLoader{questions: questions}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	pool := make([]domain.Question, 0, len(l.questions))
	for _, q := range l.questions {
		if filter.Matches(q.Continent()) {
			pool = append(pool, q)
		}
	}
	return pool, nil
}
