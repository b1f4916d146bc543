package users

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshStore persists refresh tokens with a TTL. Tokens are opaque;
// only the mapping to a user ID matters.
type RefreshStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

const refreshKeyPrefix = "refresh:"

// RedisRefreshStore keeps refresh tokens in Redis so logins survive
// process restarts and revocation is shared across instances.
type RedisRefreshStore struct {
	client *redis.Client
}

// NewRedisRefreshStore creates a Redis-backed refresh token store.
func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err()
}

func (s *RedisRefreshStore) Get(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+token).Err()
}

type memoryToken struct {
	userID    string
	expiresAt time.Time
}

// MemoryRefreshStore is the single-process fallback when no Redis
// address is configured.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

// NewMemoryRefreshStore creates an in-memory refresh token store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{tokens: make(map[string]memoryToken)}
}

func (s *MemoryRefreshStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryToken{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return "", ErrInvalidToken
	}
	return entry.userID, nil
}

func (s *MemoryRefreshStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
