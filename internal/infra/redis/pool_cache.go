package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"geoquiz/internal/domain"
	"geoquiz/internal/infra/sqlstore"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches the questions matching a filter from the backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error)
}

// PoolCache caches question pools in Redis and falls back to a loader on cache miss.
// Each pool is stored as the JSON array of its encoded rows:
//
//	SET quiz:pool:{filter} [{"id":1,"questionType":3,...}, ...]
//
// A ttl of zero or less disables caching.
type PoolCache struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPoolCache(client *redis.Client, loader PoolLoader, ttl time.Duration) *PoolCache {
	return &PoolCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PoolCache) Pool(ctx context.Context, filter domain.ContinentFilter) ([]domain.Question, error) {
	key := poolKey(filter)
	if questions, ok := c.cached(ctx, key); ok {
		return questions, nil
	}

	// without a readable generation the pool is served but not cached
	gen, genErr := c.generation(ctx)

	// loads started before an Invalidate never share a flight with later callers
	result, err, _ := c.sf.Do(key+"@"+gen, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.cached(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadPool(ctx, filter)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			c.store(ctx, key, gen, questions)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// store writes the pool unless an Invalidate bumped the generation since gen was read.
// It is best-effort: a failed or skipped write only costs a reload.
func (c *PoolCache) store(ctx context.Context, key, gen string, questions []domain.Question) {
	if c.ttl <= 0 {
		return
	}
	rows := make([]sqlstore.QuestionRow, 0, len(questions))
	for _, q := range questions {
		row, err := sqlstore.EncodeQuestion(q)
		if err != nil {
			return
		}
		rows = append(rows, row)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	ttl := c.ttlWithJitter()
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, generationKey)
}

// Invalidate deletes the cached pool of every filter and bumps the generation so
// loads already in flight do not write their stale pools back.
func (c *PoolCache) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(domain.Continents())+1)
	keys = append(keys, poolKey(domain.AllContinents()))
	for _, continent := range domain.Continents() {
		keys = append(keys, poolKey(domain.OnlyContinent(continent)))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}

func (c *PoolCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// cached reads a pool from Redis. Unreadable entries count as a miss.
func (c *PoolCache) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []sqlstore.QuestionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q, err := sqlstore.DecodeQuestion(row)
		if err != nil {
			return nil, false
		}
		questions = append(questions, q)
	}
	return questions, true
}

const generationKey = "quiz:pool:generation"

func poolKey(filter domain.ContinentFilter) string {
	return "quiz:pool:" + filter.Key()
}

func (c *PoolCache) ttlWithJitter() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
