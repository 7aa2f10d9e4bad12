package redis

import (
	"testing"
	"time"

	"geoquiz/internal/app"
	"geoquiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	session := app.NewSession(domain.User{ID: 42, Username: "alice"})

	store.Put(42, session)
	if !mr.Exists("quiz:session:42") {
		t.Fatalf("expected redis key to be set")
	}
	if got, ok := store.Get(42); !ok || got != session {
		t.Fatalf("expected session to be returned")
	}

	if store.Delete(42, app.NewSession(domain.User{ID: 42, Username: "alice"})) || !mr.Exists("quiz:session:42") {
		t.Fatalf("expected another session not to clear the key")
	}
	if !store.Delete(42, session) {
		t.Fatalf("expected session deleted")
	}
	if mr.Exists("quiz:session:42") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get(42); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	store.Put(7, app.NewSession(domain.User{ID: 7, Username: "bob"}))

	mr.FastForward(40 * time.Second)
	if _, ok := store.Get(7); !ok {
		t.Fatalf("expected session alive before ttl")
	}
	// the access above refreshed the ttl
	mr.FastForward(40 * time.Second)
	if _, ok := store.Get(7); !ok {
		t.Fatalf("expected refreshed session alive")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get(7); ok {
		t.Fatalf("expected idle session to expire")
	}
}
