// Package worker relays audit outbox entries to the message broker.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"familydir/pkg/platform/audit/store/postgres"
)

// Outbox is the subset of the Postgres audit store the relay drives.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer publishes one record to the audit topic.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// TxRunner runs fn inside a database transaction carried by ctx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Relay polls the outbox and publishes pending entries in order.
type Relay struct {
	outbox    Outbox
	producer  Producer
	runInTx   TxRunner
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// Option configures the Relay.
type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func NewRelay(outbox Outbox, producer Producer, runInTx TxRunner, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		runInTx:   runInTx,
		logger:    slog.Default(),
		interval:  2 * time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Batch failures are logged and retried on
// the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil {
				r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// Tick publishes one batch and returns the number of entries relayed.
// Entries are marked processed only up to the first publish failure, so
// ordering per aggregate is preserved across retries.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	var relayed int
	err := r.runInTx(ctx, func(ctx context.Context) error {
		entries, err := r.outbox.FetchPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		done := make([]uuid.UUID, 0, len(entries))
		var publishErr error
		for _, e := range entries {
			if publishErr = r.producer.Publish(ctx, e.AggregateID, e.Payload); publishErr != nil {
				break
			}
			done = append(done, e.ID)
		}
		if err := r.outbox.MarkProcessed(ctx, done, time.Now()); err != nil {
			return err
		}
		relayed = len(done)
		if publishErr != nil {
			r.logger.WarnContext(ctx, "audit publish interrupted",
				"relayed", relayed,
				"pending", len(entries)-relayed,
				"error", publishErr,
			)
		}
		return nil
	})
	return relayed, err
}
