package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"familydir/internal/auth/models"
	"familydir/pkg/platform/sentinel"
)

const magicLinkKeyPrefix = "magic:link:"

type redisLink struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisStore is a LinkStore shared between instances. Expiry is enforced by
// the key TTL; GETDEL makes redemption atomic.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, fingerprint string, link models.MagicLink, ttl time.Duration) error {
	payload, err := json.Marshal(redisLink{Email: link.Email, ExpiresAt: s.now().Add(ttl).UTC()})
	if err != nil {
		return fmt.Errorf("encode magic link: %w", err)
	}
	return s.client.Set(ctx, magicLinkKeyPrefix+fingerprint, payload, ttl).Err()
}

func (s *RedisStore) Consume(ctx context.Context, fingerprint string) (*models.MagicLink, error) {
	raw, err := s.client.GetDel(ctx, magicLinkKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var stored redisLink
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode magic link: %w", err)
	}
	return &models.MagicLink{Email: stored.Email, ExpiresAt: stored.ExpiresAt}, nil
}
