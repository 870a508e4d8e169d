// Package store keeps pending magic links keyed by token fingerprint.
// Consume is single-use: a link can be redeemed at most once.
package store

import (
	"context"
	"time"

	"familydir/internal/auth/models"
)

// LinkStore is implemented by the in-memory and Redis stores. Consume
// returns sentinel.ErrNotFound for unknown, expired or already used links.
type LinkStore interface {
	Save(ctx context.Context, fingerprint string, link models.MagicLink, ttl time.Duration) error
	Consume(ctx context.Context, fingerprint string) (*models.MagicLink, error)
}
