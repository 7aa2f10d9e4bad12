package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"geoquiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map; Redis holds a liveness key per user whose TTL
// is refreshed on every access, so abandoned quizzes expire.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[int64]*app.Session),
	}
}

func (s *SessionStore) Put(userID int64, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(userID), session.State().String(), s.ttl).Err()
}

// Get returns the user's session unless its liveness key has expired.
// If Redis is unreachable the local session is returned.
func (s *SessionStore) Get(userID int64) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ctx := context.Background()
	n, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return session, true
	}
	if n == 0 {
		s.mu.Lock()
		if s.sessions[userID] == session {
			delete(s.sessions, userID)
		}
		s.mu.Unlock()
		return nil, false
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, s.key(userID), s.ttl).Err()
	}
	return session, true
}

func (s *SessionStore) Delete(userID int64, session *app.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[userID] != session {
		return false
	}
	delete(s.sessions, userID)
	_ = s.client.Del(context.Background(), s.key(userID)).Err()
	return true
}

func (s *SessionStore) key(userID int64) string {
	return "quiz:session:" + strconv.FormatInt(userID, 10)
}
