package household

import (
	"context"
	"slices"
	"strings"
	"sync"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

// MemberCounter reports how many persons belong to a household.
type MemberCounter interface {
	CountByHousehold(ctx context.Context, householdID id.HouseholdID) (int, error)
}

// InMemoryStore keeps households in a map. DeleteEmpty consults members to
// decide which households have no one left.
type InMemoryStore struct {
	mu         sync.RWMutex
	households map[id.HouseholdID]*models.Household
	members    MemberCounter
}

func NewInMemoryStore(members MemberCounter) *InMemoryStore {
	return &InMemoryStore{
		households: make(map[id.HouseholdID]*models.Household),
		members:    members,
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, householdID id.HouseholdID) (*models.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.households[householdID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return h.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Household, 0, len(s.households))
	for _, h := range s.households {
		out = append(out, h.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Household) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, h *models.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.households[h.ID]; exists {
		return sentinel.ErrConflict
	}
	s.households[h.ID] = h.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, h *models.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.households[h.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.households[h.ID] = h.Clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, householdID id.HouseholdID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.households[householdID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.households, householdID)
	return nil
}

// ClearPrimaryContact unsets the designee wherever it is personID.
func (s *InMemoryStore) ClearPrimaryContact(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.households {
		if h.PrimaryContactID != nil && *h.PrimaryContactID == personID {
			h.PrimaryContactID = nil
		}
	}
	return nil
}

// DeleteEmpty removes households without members and returns how many went.
func (s *InMemoryStore) DeleteEmpty(ctx context.Context) (int, error) {
	if s.members == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for hid := range s.households {
		n, err := s.members.CountByHousehold(ctx, hid)
		if err != nil {
			return removed, err
		}
		if n == 0 {
			delete(s.households, hid)
			removed++
		}
	}
	return removed, nil
}
