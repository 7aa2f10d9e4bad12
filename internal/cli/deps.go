package cli

import (
	"context"
	"fmt"
	"time"

	"geoquiz/internal/app"
	"geoquiz/internal/config"
	"geoquiz/internal/infra/memory"
	"geoquiz/internal/infra/postgres"
	redisstore "geoquiz/internal/infra/redis"
	"geoquiz/internal/infra/sqlite"
	"geoquiz/internal/infra/sqlstore"
	"geoquiz/internal/infra/sqlstore/migrations"
	"geoquiz/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// deps is the wired application shared by the subcommands.
type deps struct {
	cfg       config.Config
	log       *zap.Logger
	db        *bun.DB
	redis     *redis.Client
	questions *sqlstore.QuestionStore
	results   *sqlstore.ResultStore
	users     *sqlstore.UserStore
	sessions  app.SessionRepository
	service   *app.QuizService
}

func loadDeps(ctx context.Context, configPath string) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	d := &deps{cfg: cfg, log: log, db: db}
	d.questions = sqlstore.NewQuestionStore(db, sqlstore.WithCorruptRowHandler(func(err error) {
		log.Warn("skipping unreadable question", zap.Error(err))
	}))
	d.results = sqlstore.NewResultStore(db)
	d.users = sqlstore.NewUserStore(db)

	poolTTL := config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute)
	var pool app.QuestionPool
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pool = redisstore.NewPoolCache(d.redis, d.questions, poolTTL)
		d.sessions = redisstore.NewSessionStore(d.redis, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		pool = memory.NewPoolCache(d.questions, poolTTL)
		d.sessions = memory.NewSessionStore()
	}

	d.service = app.NewQuizService(d.questions, pool, d.results, d.users, d.sessions)
	return d, nil
}

func openDB(ctx context.Context, cfg config.Config) (*bun.DB, error) {
	switch driver := cfg.StoreDriver(); driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.Postgres.URL)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	_ = d.db.Close()
	_ = d.log.Sync()
}
