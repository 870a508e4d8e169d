package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the kinship and edit-authority engines.
type Metrics struct {
	// Labels computed, by label ("none" when no rule matched)
	LabelOutcome *prometheus.CounterVec

	// Edit-authority decisions by the rule that granted, or "denied"
	AuthorityDecision *prometheus.CounterVec

	// Generations walked by the ancestor search
	AncestorDepth prometheus.Histogram

	// Household listing latency including head resolution
	HouseholdListLatency prometheus.Histogram
}

// New registers the directory metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LabelOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familydir_kinship_labels_total",
			Help: "Relationship labels computed, by label",
		}, []string{"label"}),

		AuthorityDecision: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familydir_edit_authority_decisions_total",
			Help: "Edit-authority decisions by granting rule",
		}, []string{"rule"}),

		AncestorDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "familydir_ancestor_walk_depth",
			Help:    "Generations visited per ancestor search",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64},
		}),

		HouseholdListLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "familydir_household_list_duration_seconds",
			Help:    "Duration of household listing including head resolution",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementLabel records a computed label.
func (m *Metrics) IncrementLabel(label string) {
	if m != nil {
		if label == "" {
			label = "none"
		}
		m.LabelOutcome.WithLabelValues(label).Inc()
	}
}

// IncrementDecision records an edit-authority decision.
func (m *Metrics) IncrementDecision(rule string) {
	if m != nil {
		m.AuthorityDecision.WithLabelValues(rule).Inc()
	}
}

// ObserveAncestorDepth records how many generations an ancestor walk visited.
func (m *Metrics) ObserveAncestorDepth(depth int) {
	if m != nil {
		m.AncestorDepth.Observe(float64(depth))
	}
}

// ObserveHouseholdList records the duration of a household listing.
func (m *Metrics) ObserveHouseholdList(d time.Duration) {
	if m != nil {
		m.HouseholdListLatency.Observe(d.Seconds())
	}
}
