package authority

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/metrics"
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

type fakeGraph struct {
	people     map[id.PersonID]*models.Person
	households map[id.HouseholdID]*models.Household
	parents    map[id.PersonID][]id.PersonID
	spouses    map[id.PersonID]id.PersonID
	edgeCalls  int
	peopleErr  error
	edgesErr   error
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		people:     make(map[id.PersonID]*models.Person),
		households: make(map[id.HouseholdID]*models.Household),
		parents:    make(map[id.PersonID][]id.PersonID),
		spouses:    make(map[id.PersonID]id.PersonID),
	}
}

func (f *fakeGraph) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	if f.peopleErr != nil {
		return nil, f.peopleErr
	}
	p, ok := f.people[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

func (f *fakeGraph) CountByHousehold(_ context.Context, householdID id.HouseholdID) (int, error) {
	n := 0
	for _, p := range f.people {
		if p.HouseholdID != nil && *p.HouseholdID == householdID {
			n++
		}
	}
	return n, nil
}

type fakeHouseholds struct{ g *fakeGraph }

func (f fakeHouseholds) FindByID(_ context.Context, householdID id.HouseholdID) (*models.Household, error) {
	h, ok := f.g.households[householdID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return h, nil
}

func (f *fakeGraph) ParentIDsOf(_ context.Context, childIDs []id.PersonID) (map[id.PersonID][]id.PersonID, error) {
	f.edgeCalls++
	if f.edgesErr != nil {
		return nil, f.edgesErr
	}
	out := make(map[id.PersonID][]id.PersonID, len(childIDs))
	for _, c := range childIDs {
		if ps, ok := f.parents[c]; ok {
			out[c] = ps
		}
	}
	return out, nil
}

func (f *fakeGraph) ActiveSpouse(_ context.Context, personID id.PersonID) (id.PersonID, bool, error) {
	s, ok := f.spouses[personID]
	return s, ok, nil
}

type EvaluatorSuite struct {
	suite.Suite
	graph     *fakeGraph
	metrics   *metrics.Metrics
	evaluator *Evaluator
	ctx       context.Context
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.graph = newFakeGraph()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.evaluator = New(s.graph, fakeHouseholds{s.graph}, s.graph, s.graph, WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *EvaluatorSuite) person(name string) *models.Person {
	p := &models.Person{ID: id.NewPersonID(), FirstName: name}
	s.graph.people[p.ID] = p
	return p
}

func (s *EvaluatorSuite) household(head *models.Person, members ...*models.Person) *models.Household {
	h := &models.Household{ID: id.NewHouseholdID(), Name: "House"}
	if head != nil {
		hid := head.ID
		h.PrimaryContactID = &hid
		members = append(members, head)
	}
	for _, m := range members {
		m.HouseholdID = &h.ID
	}
	s.graph.households[h.ID] = h
	return h
}

func (s *EvaluatorSuite) edge(parent, child *models.Person) {
	s.graph.parents[child.ID] = append(s.graph.parents[child.ID], parent.ID)
}

func (s *EvaluatorSuite) canEdit(actor, target id.PersonID) bool {
	ok, err := s.evaluator.CanEdit(s.ctx, actor, target)
	s.Require().NoError(err)
	return ok
}

func (s *EvaluatorSuite) decisions(rule string) float64 {
	return testutil.ToFloat64(s.metrics.AuthorityDecision.WithLabelValues(rule))
}

func (s *EvaluatorSuite) TestSelf() {
	a := s.person("A")
	s.True(s.canEdit(a.ID, a.ID))
	s.Equal(1.0, s.decisions(RuleSelf))
}

func (s *EvaluatorSuite) TestAdmin() {
	admin := s.person("Admin")
	admin.IsAdmin = true
	other := s.person("Other")

	s.True(s.canEdit(admin.ID, other.ID))
	s.False(s.canEdit(other.ID, admin.ID))
	s.Equal(1.0, s.decisions(RuleAdmin))
}

func (s *EvaluatorSuite) TestUnknownPersonsAreDenied() {
	a := s.person("A")
	ghost := id.NewPersonID()

	s.False(s.canEdit(a.ID, ghost))
	s.False(s.canEdit(ghost, a.ID))
	s.False(s.canEdit(id.PersonID{}, a.ID))
}

func (s *EvaluatorSuite) TestHouseholdHead() {
	head := s.person("Head")
	member := s.person("Member")
	s.household(head, member)

	s.True(s.canEdit(head.ID, member.ID))
	s.False(s.canEdit(member.ID, head.ID))
	s.Equal(1.0, s.decisions(RuleHouseholdHead))
}

func (s *EvaluatorSuite) TestHeadOfOtherHouseholdIsDenied() {
	head := s.person("Head")
	s.household(head)
	outsider := s.person("Outsider")
	s.household(nil, outsider)

	s.False(s.canEdit(head.ID, outsider.ID))
}

func (s *EvaluatorSuite) TestHouseholdWithoutDesigneeGrantsNobody() {
	a := s.person("A")
	b := s.person("B")
	s.household(nil, a, b)

	s.False(s.canEdit(a.ID, b.ID))
	s.False(s.canEdit(b.ID, a.ID))
}

func (s *EvaluatorSuite) TestAncestors() {
	gran := s.person("Gran")
	mom := s.person("Mom")
	kid := s.person("Kid")
	s.edge(gran, mom)
	s.edge(mom, kid)

	s.True(s.canEdit(mom.ID, kid.ID))
	s.True(s.canEdit(gran.ID, kid.ID))
	s.False(s.canEdit(kid.ID, mom.ID))
	s.False(s.canEdit(kid.ID, gran.ID))
	s.Equal(2.0, s.decisions(RuleAncestor))
}

func (s *EvaluatorSuite) TestSpouseOfAncestor() {
	mom := s.person("Mom")
	stepdad := s.person("Stepdad")
	kid := s.person("Kid")
	s.edge(mom, kid)
	s.graph.spouses[stepdad.ID] = mom.ID
	s.graph.spouses[mom.ID] = stepdad.ID

	s.True(s.canEdit(stepdad.ID, kid.ID))
	s.False(s.canEdit(kid.ID, stepdad.ID))
	s.Equal(1.0, s.decisions(RuleSpouseAncestor))
}

func (s *EvaluatorSuite) TestSiblingsAndCousinsAreDenied() {
	mom := s.person("Mom")
	a := s.person("A")
	b := s.person("B")
	s.edge(mom, a)
	s.edge(mom, b)

	s.False(s.canEdit(a.ID, b.ID))
	s.Equal(1.0, s.decisions(RuleDenied))
}

func (s *EvaluatorSuite) TestCycleTerminates() {
	a := s.person("A")
	b := s.person("B")
	c := s.person("C")
	s.edge(a, b)
	s.edge(b, a)

	s.False(s.canEdit(c.ID, a.ID))
	s.LessOrEqual(s.graph.edgeCalls, 3)
}

func (s *EvaluatorSuite) TestWalkIsBatchedPerGeneration() {
	kid := s.person("Kid")
	mom := s.person("Mom")
	dad := s.person("Dad")
	s.edge(mom, kid)
	s.edge(dad, kid)
	for _, parent := range []*models.Person{mom, dad} {
		g1, g2 := s.person("G1"), s.person("G2")
		s.edge(g1, parent)
		s.edge(g2, parent)
	}
	stranger := s.person("Stranger")

	s.False(s.canEdit(stranger.ID, kid.ID))
	s.Equal(3, s.graph.edgeCalls, "kid, parents, grandparents")
}

func (s *EvaluatorSuite) TestDepthIsBounded() {
	chain := make([]*models.Person, MaxAncestorDepth+2)
	for i := range chain {
		chain[i] = s.person("P")
		if i > 0 {
			s.edge(chain[i-1], chain[i])
		}
	}
	bottom := chain[len(chain)-1]

	s.True(s.canEdit(chain[1].ID, bottom.ID))
	s.False(s.canEdit(chain[0].ID, bottom.ID), "beyond the walk depth")
}

func (s *EvaluatorSuite) TestErrorsDeny() {
	a := s.person("A")
	b := s.person("B")

	s.Run("person lookup", func() {
		s.graph.peopleErr = errors.New("db down")
		defer func() { s.graph.peopleErr = nil }()
		ok, err := s.evaluator.CanEdit(s.ctx, a.ID, b.ID)
		s.Error(err)
		s.False(ok)
	})

	s.Run("edge lookup", func() {
		s.graph.edgesErr = errors.New("db down")
		defer func() { s.graph.edgesErr = nil }()
		ok, err := s.evaluator.CanEdit(s.ctx, a.ID, b.ID)
		s.Error(err)
		s.False(ok)
	})

	s.Run("self needs no lookup", func() {
		s.graph.peopleErr = errors.New("db down")
		defer func() { s.graph.peopleErr = nil }()
		s.True(s.canEdit(a.ID, a.ID))
	})
}
