// Package session は現在ユーザーのセッション保存を提供する。
//
// セッションは「セッションIDをキーに、現在ユーザーのスナップショットを
// シリアライズして1件保持する」だけの単純なキーバリューで、
// TTL切れで自然に消滅する。サーバー側にそれ以外のセッション概念はない。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/jobdesk/internal/model"
)

// Store はセッションの保存インターフェース。
type Store interface {
	// Create は現在ユーザーのセッションを新規発行する。
	Create(ctx context.Context, user *model.User) (*model.Session, error)
	// Find は指定IDのセッションを取得する。未知または期限切れの場合はnilを返す。
	Find(ctx context.Context, id string) (*model.Session, error)
	// Refresh は既存セッションの現在ユーザーをTTLを維持したまま差し替える。
	// プロフィール更新後にセッション内のスナップショットを追従させるために使う。
	Refresh(ctx context.Context, id string, user *model.User) error
	// Delete は指定IDのセッションを破棄する。
	Delete(ctx context.Context, id string) error
}

// Open はRedisクライアントを生成し、接続を確認して返す。
func Open(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisStore はRedisを使用したセッションストア。
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore はRedisStoreを生成する。ttlはセッション有効期間。
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// sessionKey はセッションIDからRedisキーを生成する。
func sessionKey(id string) string {
	return "session:" + id
}

// Create は現在ユーザーのセッションを新規発行する。
func (s *RedisStore) Create(ctx context.Context, user *model.User) (*model.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	sess := &model.Session{
		ID:        id,
		User:      user,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Find は指定IDのセッションを取得する。未知または期限切れの場合はnilを返す。
func (s *RedisStore) Find(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := &model.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

// Refresh は既存セッションの現在ユーザーをTTLを維持したまま差し替える。
// セッションが存在しない場合は何もしない。
func (s *RedisStore) Refresh(ctx context.Context, id string, user *model.User) error {
	sess, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	sess.User = user
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// KeepTTLで残り有効期間を維持する
	if err := s.client.Set(ctx, sessionKey(id), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

// Delete は指定IDのセッションを破棄する。
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// newSessionID は暗号学的乱数からセッションIDを生成する。
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
