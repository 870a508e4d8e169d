// Package service orchestrates directory reads and edits over the stores,
// the kinship labeler and the edit-authority evaluator.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"familydir/internal/directory/metrics"
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/platform/sentinel"
)

// PersonStore persists persons. Misses return sentinel.ErrNotFound and
// duplicate emails sentinel.ErrConflict.
type PersonStore interface {
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	FindByIDs(ctx context.Context, personIDs []id.PersonID) ([]*models.Person, error)
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
	FindByHousehold(ctx context.Context, householdID id.HouseholdID) ([]*models.Person, error)
	List(ctx context.Context) ([]*models.Person, error)
	CountByHousehold(ctx context.Context, householdID id.HouseholdID) (int, error)
	Create(ctx context.Context, p *models.Person) error
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, personID id.PersonID) error
}

// HouseholdStore persists households.
type HouseholdStore interface {
	FindByID(ctx context.Context, householdID id.HouseholdID) (*models.Household, error)
	List(ctx context.Context) ([]*models.Household, error)
	Create(ctx context.Context, h *models.Household) error
	Update(ctx context.Context, h *models.Household) error
	ClearPrimaryContact(ctx context.Context, personID id.PersonID) error
	DeleteEmpty(ctx context.Context) (int, error)
}

// MaritalStore persists marital relationships.
type MaritalStore interface {
	SetSpouse(ctx context.Context, personID, spouseID id.PersonID, today time.Time) (*models.MaritalRelationship, error)
	RemoveSpouse(ctx context.Context, personID id.PersonID, today time.Time) (bool, error)
	ActiveSpouse(ctx context.Context, personID id.PersonID) (id.PersonID, bool, error)
	DeleteByPerson(ctx context.Context, personID id.PersonID) error
}

// RelationshipStore persists the parent-child edge table.
type RelationshipStore interface {
	ParentsOf(ctx context.Context, childID id.PersonID) ([]models.ParentChildEdge, error)
	ChildrenOf(ctx context.Context, parentID id.PersonID) ([]models.ParentChildEdge, error)
	LineageFacts(ctx context.Context, personIDs []id.PersonID) (models.LineageFacts, error)
	ReplaceParents(ctx context.Context, childID id.PersonID, edges []models.ParentChildEdge) error
	DeleteByPerson(ctx context.Context, personID id.PersonID) error
}

// Stores bundles the directory stores.
type Stores struct {
	People        PersonStore
	Households    HouseholdStore
	Marriages     MaritalStore
	Relationships RelationshipStore
}

// Labeler names how a target is related to a viewer.
type Labeler interface {
	Label(ctx context.Context, viewerID, targetID id.PersonID) (models.Label, error)
}

// Authority decides who may edit whom.
type Authority interface {
	CanEdit(ctx context.Context, actorID, targetID id.PersonID) (bool, error)
	IsAncestor(ctx context.Context, ancestor, descendant id.PersonID) (bool, error)
}

// AuditPublisher persists audit events. An error means the event was lost and
// the surrounding operation must fail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type config struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	tx             TxRunner
	metrics        *metrics.Metrics
}

// Option configures a directory service.
type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *config) { c.auditPublisher = publisher }
}

// WithTx sets the transaction runner. Without one, mutations are serialized
// by an in-process lock.
func WithTx(tx TxRunner) Option {
	return func(c *config) { c.tx = tx }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.tx == nil {
		c.tx = NewInMemoryTx()
	}
	return c
}

func wrapStoreErr(err error, entity, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" conflicts with an existing record")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "failed to "+op)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}
