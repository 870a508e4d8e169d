// Package authority decides whether one person may edit another's record.
package authority

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"familydir/internal/directory/household"
	"familydir/internal/directory/metrics"
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

// MaxAncestorDepth bounds the upward walk over the edge table.
const MaxAncestorDepth = 64

// Rule names, used for metrics and trace attributes.
const (
	RuleSelf           = "self"
	RuleAdmin          = "admin"
	RuleHouseholdHead  = "household_head"
	RuleAncestor       = "ancestor"
	RuleSpouseAncestor = "spouse_ancestor"
	RuleDenied         = "denied"
)

// People reads persons. FindByID returns sentinel.ErrNotFound for misses.
type People interface {
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	CountByHousehold(ctx context.Context, householdID id.HouseholdID) (int, error)
}

// Households reads households. FindByID returns sentinel.ErrNotFound for misses.
type Households interface {
	FindByID(ctx context.Context, householdID id.HouseholdID) (*models.Household, error)
}

// Edges reads the parent-child edge table.
type Edges interface {
	// ParentIDsOf returns the parents of each child, keyed by child id.
	ParentIDsOf(ctx context.Context, childIDs []id.PersonID) (map[id.PersonID][]id.PersonID, error)
}

// Marriages reads active marital relationships.
type Marriages interface {
	// ActiveSpouse returns the current spouse, or ok=false when there is none.
	ActiveSpouse(ctx context.Context, personID id.PersonID) (spouseID id.PersonID, ok bool, err error)
}

// Evaluator evaluates edit-authority rules.
type Evaluator struct {
	people     People
	households Households
	edges      Edges
	marriages  Marriages
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// New creates an Evaluator.
func New(people People, households Households, edges Edges, marriages Marriages, opts ...Option) *Evaluator {
	e := &Evaluator{
		people:     people,
		households: households,
		edges:      edges,
		marriages:  marriages,
		tracer:     otel.Tracer("familydir/authority"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CanEdit reports whether actor may mutate target's record. Rules are
// evaluated in order and the first satisfied rule grants:
//
//  1. actor is target
//  2. actor is an admin
//  3. actor heads the household both of them belong to
//  4. actor is an ancestor of target
//  5. actor's active spouse is an ancestor of target
//
// Unknown persons are denied. Store errors are returned with false, and
// callers must treat them as a denial.
func (e *Evaluator) CanEdit(ctx context.Context, actorID, targetID id.PersonID) (bool, error) {
	ctx, span := e.tracer.Start(ctx, "authority.CanEdit", trace.WithAttributes(
		attribute.String("actor_id", actorID.String()),
		attribute.String("target_id", targetID.String()),
	))
	defer span.End()

	rule, err := e.evaluate(ctx, actorID, targetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "edit authority lookup failed")
		return false, err
	}
	span.SetAttributes(attribute.String("rule", rule))
	e.metrics.IncrementDecision(rule)
	return rule != RuleDenied, nil
}

func (e *Evaluator) evaluate(ctx context.Context, actorID, targetID id.PersonID) (string, error) {
	if actorID.IsNil() || targetID.IsNil() {
		return RuleDenied, nil
	}
	if actorID == targetID {
		return RuleSelf, nil
	}

	actor, err := e.find(ctx, actorID)
	if err != nil || actor == nil {
		return RuleDenied, err
	}
	if actor.IsAdmin {
		return RuleAdmin, nil
	}
	target, err := e.find(ctx, targetID)
	if err != nil || target == nil {
		return RuleDenied, err
	}

	head, err := e.headsSharedHousehold(ctx, actor, target)
	if err != nil {
		return RuleDenied, err
	}
	if head {
		return RuleHouseholdHead, nil
	}

	found, err := e.IsAncestor(ctx, actorID, targetID)
	if err != nil {
		return RuleDenied, err
	}
	if found {
		return RuleAncestor, nil
	}

	spouseID, married, err := e.marriages.ActiveSpouse(ctx, actorID)
	if err != nil {
		return RuleDenied, err
	}
	if married {
		found, err := e.IsAncestor(ctx, spouseID, targetID)
		if err != nil {
			return RuleDenied, err
		}
		if found {
			return RuleSpouseAncestor, nil
		}
	}
	return RuleDenied, nil
}

func (e *Evaluator) find(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	p, err := e.people.FindByID(ctx, personID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (e *Evaluator) headsSharedHousehold(ctx context.Context, actor, target *models.Person) (bool, error) {
	if actor.HouseholdID == nil || target.HouseholdID == nil || *actor.HouseholdID != *target.HouseholdID {
		return false, nil
	}
	h, err := e.households.FindByID(ctx, *target.HouseholdID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	count, err := e.people.CountByHousehold(ctx, h.ID)
	if err != nil {
		return false, err
	}
	return household.IsHead(h, actor.ID, count), nil
}

// IsAncestor reports whether ancestor sits above descendant in the edge
// table. The walk loads one generation per batch, keeps a visited set so
// cycles terminate, and stops after MaxAncestorDepth generations.
func (e *Evaluator) IsAncestor(ctx context.Context, ancestor, descendant id.PersonID) (bool, error) {
	visited := map[id.PersonID]struct{}{descendant: {}}
	frontier := []id.PersonID{descendant}
	depth := 0
	defer func() { e.metrics.ObserveAncestorDepth(depth) }()

	for depth < MaxAncestorDepth && len(frontier) > 0 {
		depth++
		parents, err := e.edges.ParentIDsOf(ctx, frontier)
		if err != nil {
			return false, err
		}
		next := make([]id.PersonID, 0, len(frontier)*2)
		for _, child := range frontier {
			for _, parent := range parents[child] {
				if parent == ancestor {
					return true, nil
				}
				if _, seen := visited[parent]; seen {
					continue
				}
				visited[parent] = struct{}{}
				next = append(next, parent)
			}
		}
		frontier = next
	}
	return false, nil
}
