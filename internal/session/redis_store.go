package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casekit/case-gateway/internal/domain"
)

// RedisStore persists a session's records in Redis. Keys are
// namespaced by session id so each browser session gets its own scope,
// the way the original store was scoped to a browser origin.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a store for one session id. Entries expire with
// the given TTL so abandoned sessions do not accumulate; zero disables
// expiry.
func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "session:" + sessionID + ":", ttl: ttl}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) set(ctx context.Context, name, value string) error {
	return s.client.Set(ctx, s.key(name), value, s.ttl).Err()
}

func (s *RedisStore) get(ctx context.Context, name string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetToken stores the token string.
func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, keyToken, token)
}

// GetToken returns the stored token if present.
func (s *RedisStore) GetToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyToken)
}

// RemoveToken clears the token and the profile together.
func (s *RedisStore) RemoveToken(ctx context.Context) error {
	return s.client.Del(ctx, s.key(keyToken), s.key(keyUser)).Err()
}

// SetUser serializes and stores the full profile.
func (s *RedisStore) SetUser(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.set(ctx, keyUser, string(raw))
}

// GetUser deserializes the stored profile; malformed data reads as
// absent.
func (s *RedisStore) GetUser(ctx context.Context) (*domain.User, bool, error) {
	raw, ok, err := s.get(ctx, keyUser)
	if err != nil || !ok {
		return nil, false, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, nil
	}
	return &user, true, nil
}

// SetPreference stores a cached UI preference.
func (s *RedisStore) SetPreference(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

// GetPreference returns a cached UI preference.
func (s *RedisStore) GetPreference(ctx context.Context, key string) (string, bool, error) {
	return s.get(ctx, key)
}

// Clear removes every record the session owns.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys := []string{s.key(keyToken), s.key(keyUser)}
	for _, p := range PreferenceKeys() {
		keys = append(keys, s.key(p))
	}
	return s.client.Del(ctx, keys...).Err()
}
