package relationship

import (
	"context"
	"slices"
	"strings"
	"sync"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

type edgeKey struct{ parent, child id.PersonID }

// InMemoryStore keeps parent-child edges in a map keyed by the pair.
type InMemoryStore struct {
	mu    sync.RWMutex
	edges map[edgeKey]models.ParentKind
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{edges: make(map[edgeKey]models.ParentKind)}
}

func (s *InMemoryStore) ParentIDsOf(_ context.Context, childIDs []id.PersonID) (map[id.PersonID][]id.PersonID, error) {
	want := make(map[id.PersonID]struct{}, len(childIDs))
	for _, c := range childIDs {
		want[c] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.PersonID][]id.PersonID)
	for key := range s.edges {
		if _, ok := want[key.child]; ok {
			out[key.child] = append(out[key.child], key.parent)
		}
	}
	for child := range out {
		slices.SortFunc(out[child], compareIDs)
	}
	return out, nil
}

func (s *InMemoryStore) ParentsOf(_ context.Context, childID id.PersonID) ([]models.ParentChildEdge, error) {
	return s.collect(func(k edgeKey) bool { return k.child == childID }), nil
}

func (s *InMemoryStore) ChildrenOf(_ context.Context, parentID id.PersonID) ([]models.ParentChildEdge, error) {
	return s.collect(func(k edgeKey) bool { return k.parent == parentID }), nil
}

func (s *InMemoryStore) LineageFacts(_ context.Context, personIDs []id.PersonID) (models.LineageFacts, error) {
	want := make(map[id.PersonID]struct{}, len(personIDs))
	for _, pid := range personIDs {
		want[pid] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts := make(models.LineageFacts)
	for key := range s.edges {
		if _, ok := want[key.child]; ok {
			f := facts[key.child]
			f.HasParents = true
			facts[key.child] = f
		}
		if _, ok := want[key.parent]; ok {
			f := facts[key.parent]
			f.HasChildren = true
			facts[key.parent] = f
		}
	}
	return facts, nil
}

// Create inserts the edge, overwriting the kind of an existing one.
func (s *InMemoryStore) Create(_ context.Context, edge models.ParentChildEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[edgeKey{edge.ParentID, edge.ChildID}] = edge.Kind
	return nil
}

// ReplaceParents makes edges the complete set of parent edges of childID.
func (s *InMemoryStore) ReplaceParents(_ context.Context, childID id.PersonID, edges []models.ParentChildEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.edges {
		if key.child == childID {
			delete(s.edges, key)
		}
	}
	for _, e := range edges {
		s.edges[edgeKey{e.ParentID, childID}] = e.Kind
	}
	return nil
}

func (s *InMemoryStore) DeleteByPerson(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.edges {
		if key.parent == personID || key.child == personID {
			delete(s.edges, key)
		}
	}
	return nil
}

func (s *InMemoryStore) collect(match func(edgeKey) bool) []models.ParentChildEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ParentChildEdge
	for key, kind := range s.edges {
		if match(key) {
			out = append(out, models.ParentChildEdge{ParentID: key.parent, ChildID: key.child, Kind: kind})
		}
	}
	slices.SortFunc(out, func(a, b models.ParentChildEdge) int {
		if c := compareIDs(a.ParentID, b.ParentID); c != 0 {
			return c
		}
		return compareIDs(a.ChildID, b.ChildID)
	})
	return out
}

func compareIDs(a, b id.PersonID) int {
	return strings.Compare(a.String(), b.String())
}
