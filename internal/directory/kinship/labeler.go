// Package kinship computes the relationship label one person sees for another.
//
// The labeler walks mother/father links up to two generations from both
// persons and applies a fixed, ordered rule list; the first matching rule
// wins. Only two parent slots exist per person, so households with more
// than two parents or same-sex parents sharing a slot cannot be labeled
// beyond what those slots express.
package kinship

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"familydir/internal/directory/metrics"
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

// PersonLookup is the batched person read the labeler needs.
type PersonLookup interface {
	FindByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error)
}

// Labeler computes relationship labels.
type Labeler struct {
	people  PersonLookup
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Labeler) { l.metrics = m }
}

// New creates a Labeler over people.
func New(people PersonLookup, opts ...Option) *Labeler {
	l := &Labeler{
		people: people,
		tracer: otel.Tracer("familydir/kinship"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Label returns the relationship of target as seen by viewer, or LabelNone.
// A viewer never has a label for themselves, and unresolvable persons yield
// LabelNone. Store errors are returned to the caller.
func (l *Labeler) Label(ctx context.Context, viewerID, targetID id.PersonID) (models.Label, error) {
	ctx, span := l.tracer.Start(ctx, "kinship.Label", trace.WithAttributes(
		attribute.String("viewer_id", viewerID.String()),
		attribute.String("target_id", targetID.String()),
	))
	defer span.End()

	if viewerID == targetID {
		return models.LabelNone, nil
	}

	label, err := l.label(ctx, viewerID, targetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "person lookup failed")
		return models.LabelNone, err
	}
	span.SetAttributes(attribute.String("label", string(label)))
	l.metrics.IncrementLabel(string(label))
	return label, nil
}

func (l *Labeler) label(ctx context.Context, viewerID, targetID id.PersonID) (models.Label, error) {
	snap := newSnapshot(l.people)
	if err := snap.load(ctx, viewerID, targetID); err != nil {
		return models.LabelNone, err
	}
	viewer, target := snap.get(viewerID), snap.get(targetID)
	if viewer == nil || target == nil {
		return models.LabelNone, nil
	}

	if err := snap.load(ctx, parentIDs(viewer, target)...); err != nil {
		return models.LabelNone, err
	}
	pair := &pair{snap: snap, viewer: viewer, target: target}
	pair.viewerParents = snap.parentsOf(viewer)
	pair.targetParents = snap.parentsOf(target)

	for _, rule := range nearRules {
		if label := rule(pair); label != models.LabelNone {
			return label, nil
		}
	}

	grand := make([]id.PersonID, 0, 8)
	for _, p := range pair.viewerParents {
		grand = append(grand, parentIDs(p)...)
	}
	for _, p := range pair.targetParents {
		grand = append(grand, parentIDs(p)...)
	}
	if err := snap.load(ctx, grand...); err != nil {
		return models.LabelNone, err
	}

	for _, rule := range extendedRules {
		if label := rule(pair); label != models.LabelNone {
			return label, nil
		}
	}
	return models.LabelNone, nil
}

func parentIDs(people ...*models.Person) []id.PersonID {
	var out []id.PersonID
	for _, p := range people {
		for _, link := range p.Parents() {
			out = append(out, link.ID)
		}
	}
	return out
}
