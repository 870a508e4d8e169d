//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"familydir/internal/auth/models"
	"familydir/internal/auth/store"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestSaveAndConsume() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "fp", models.MagicLink{Email: "ann@example.com"}, time.Minute))

	ttl, err := s.redis.Client.TTL(ctx, "magic:link:fp").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	link, err := s.store.Consume(ctx, "fp")
	s.Require().NoError(err)
	s.Equal("ann@example.com", link.Email)
	s.False(link.ExpiresAt.IsZero())

	_, err = s.store.Consume(ctx, "fp")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "short", models.MagicLink{Email: "bob@example.com"}, 50*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	_, err := s.store.Consume(ctx, "short")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentConsume verifies a link redeems exactly once under contention.
func (s *RedisStoreSuite) TestConcurrentConsume() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "race", models.MagicLink{Email: "cal@example.com"}, time.Minute))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Consume(ctx, "race"); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
}
