package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familydir/internal/auth/models"
	"familydir/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := NewInMemoryStore(WithClock(func() time.Time { return now }))

	t.Run("consume is single use", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "fp-1", models.MagicLink{Email: "ann@example.com"}, 15*time.Minute))

		link, err := s.Consume(ctx, "fp-1")
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", link.Email)
		assert.Equal(t, now.Add(15*time.Minute), link.ExpiresAt)

		_, err = s.Consume(ctx, "fp-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("unknown fingerprint", func(t *testing.T) {
		_, err := s.Consume(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("expired link is rejected", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "fp-2", models.MagicLink{Email: "bob@example.com"}, time.Minute))
		now = now.Add(time.Minute)

		_, err := s.Consume(ctx, "fp-2")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save prunes expired links", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "fp-3", models.MagicLink{Email: "cal@example.com"}, time.Minute))
		now = now.Add(2 * time.Minute)
		require.NoError(t, s.Save(ctx, "fp-4", models.MagicLink{Email: "dee@example.com"}, time.Minute))

		assert.Equal(t, 1, s.Len())
	})
}
