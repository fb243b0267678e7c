package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/jobdesk/internal/model"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	user := &model.User{ID: "u1", Email: "taro@example.com", Role: model.RoleCandidate}
	sess, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected generated session ID")
	}

	found, err := store.Find(ctx, sess.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found == nil || found.User == nil {
		t.Fatal("expected session to be found")
	}
	if found.User.ID != "u1" || found.User.Email != "taro@example.com" {
		t.Errorf("unexpected user snapshot: %+v", found.User)
	}
}

func TestRedisStore_FindUnknownReturnsNil(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	found, err := store.Find(ctx, "no-such-session")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown session, got %+v", found)
	}
}

func TestRedisStore_ExpiredSessionIsGone(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	sess, err := store.Create(ctx, &model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// TTLを経過させる
	mr.FastForward(2 * time.Hour)

	found, err := store.Find(ctx, sess.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found != nil {
		t.Errorf("expected expired session to be gone, got %+v", found)
	}
}

func TestRedisStore_Refresh(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	sess, err := store.Create(ctx, &model.User{ID: "u1", FullName: "山田"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("replaces user snapshot keeping TTL", func(t *testing.T) {
		mr.FastForward(30 * time.Minute)

		updated := &model.User{ID: "u1", FullName: "山田太郎"}
		if err := store.Refresh(ctx, sess.ID, updated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		found, err := store.Find(ctx, sess.ID)
		if err != nil || found == nil {
			t.Fatalf("expected session, got %+v (err %v)", found, err)
		}
		if found.User.FullName != "山田太郎" {
			t.Errorf("expected refreshed snapshot, got %q", found.User.FullName)
		}

		// RefreshでTTLが延長されていないこと: 残り30分経過でセッションは消える
		mr.FastForward(31 * time.Minute)
		found, err = store.Find(ctx, sess.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if found != nil {
			t.Error("expected session to expire on original schedule")
		}
	})

	t.Run("missing session is a no-op", func(t *testing.T) {
		if err := store.Refresh(ctx, "no-such-session", &model.User{ID: "u2"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	sess, err := store.Create(ctx, &model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	found, err := store.Find(ctx, sess.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found != nil {
		t.Errorf("expected session deleted, got %+v", found)
	}
}

func TestRedisStore_SessionIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		sess, err := store.Create(ctx, &model.User{ID: "u1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if seen[sess.ID] {
			t.Fatalf("duplicate session ID generated: %s", sess.ID)
		}
		seen[sess.ID] = true
	}
}
