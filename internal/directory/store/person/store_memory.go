package person

import (
	"context"
	"slices"
	"strings"
	"sync"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

// InMemoryStore keeps persons in a map. Records are copied on the way in and
// out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu      sync.RWMutex
	persons map[id.PersonID]*models.Person
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{persons: make(map[id.PersonID]*models.Person)}
}

func (s *InMemoryStore) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) FindByIDs(_ context.Context, personIDs []id.PersonID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0, len(personIDs))
	seen := make(map[id.PersonID]struct{}, len(personIDs))
	for _, pid := range personIDs {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if p, ok := s.persons[pid]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Person, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if strings.EqualFold(p.Email, email) {
			return p.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByHousehold(_ context.Context, householdID id.HouseholdID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Person
	for _, p := range s.persons {
		if p.HouseholdID != nil && *p.HouseholdID == householdID {
			out = append(out, p.Clone())
		}
	}
	sortByName(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, p.Clone())
	}
	sortByName(out)
	return out, nil
}

func (s *InMemoryStore) CountByHousehold(_ context.Context, householdID id.HouseholdID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.persons {
		if p.HouseholdID != nil && *p.HouseholdID == householdID {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[p.ID]; exists {
		return sentinel.ErrConflict
	}
	if s.emailTaken(p.Email, p.ID) {
		return sentinel.ErrConflict
	}
	s.persons[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[p.ID]; !exists {
		return sentinel.ErrNotFound
	}
	if s.emailTaken(p.Email, p.ID) {
		return sentinel.ErrConflict
	}
	s.persons[p.ID] = p.Clone()
	return nil
}

// Delete removes the person and clears parent links that pointed at them.
func (s *InMemoryStore) Delete(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[personID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.persons, personID)
	for _, p := range s.persons {
		if p.Mother != nil && p.Mother.ID == personID {
			p.Mother = nil
		}
		if p.Father != nil && p.Father.ID == personID {
			p.Father = nil
		}
	}
	return nil
}

// ResolvePrincipal returns the admin flag of an existing person.
func (s *InMemoryStore) ResolvePrincipal(ctx context.Context, personID id.PersonID) (bool, error) {
	p, err := s.FindByID(ctx, personID)
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

func (s *InMemoryStore) emailTaken(email string, self id.PersonID) bool {
	if email == "" {
		return false
	}
	for _, other := range s.persons {
		if other.ID != self && strings.EqualFold(other.Email, email) {
			return true
		}
	}
	return false
}

func sortByName(persons []*models.Person) {
	slices.SortFunc(persons, func(a, b *models.Person) int {
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		if c := strings.Compare(a.FirstName, b.FirstName); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
