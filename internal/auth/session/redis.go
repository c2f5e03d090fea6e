package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis as JSON blobs with a per-key TTL, so
// expiry is enforced by Redis itself and invalidation is a single DEL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) New(ctx context.Context, ttl time.Duration, attrs Attributes) (string, error) {
	payload, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Attributes, bool, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return Attributes{}, false, nil
	}
	if err != nil {
		return Attributes{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var attrs Attributes
	if err := json.Unmarshal(payload, &attrs); err != nil {
		// A blob we cannot decode is as good as no session.
		return Attributes{}, false, nil
	}

	return attrs, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
