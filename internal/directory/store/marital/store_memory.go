package marital

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

type pairKey struct{ a, b id.PersonID }

// InMemoryStore keeps marital relationships keyed by their ordered pair.
type InMemoryStore struct {
	mu    sync.RWMutex
	pairs map[pairKey]*models.MaritalRelationship
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pairs: make(map[pairKey]*models.MaritalRelationship)}
}

// SetSpouse closes every active relationship of either party as of today and
// then opens (or reopens) the pair.
func (s *InMemoryStore) SetSpouse(_ context.Context, personID, spouseID id.PersonID, today time.Time) (*models.MaritalRelationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeActive(personID, today)
	s.closeActive(spouseID, today)

	a, b := models.OrderPair(personID, spouseID)
	key := pairKey{a, b}
	rel, ok := s.pairs[key]
	if !ok {
		rel = &models.MaritalRelationship{ID: uuid.New(), PersonA: a, PersonB: b}
		s.pairs[key] = rel
	}
	rel.MarriageDate = nil
	rel.DivorceDate = nil
	out := *rel
	return &out, nil
}

// RemoveSpouse closes the person's active relationship. It reports whether
// one was open.
func (s *InMemoryStore) RemoveSpouse(_ context.Context, personID id.PersonID, today time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeActive(personID, today) > 0, nil
}

func (s *InMemoryStore) FindActive(_ context.Context, personID id.PersonID) (*models.MaritalRelationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rel := s.active(personID); rel != nil {
		out := *rel
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ActiveSpouse(_ context.Context, personID id.PersonID) (id.PersonID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rel := s.active(personID); rel != nil {
		return rel.Partner(personID), true, nil
	}
	return id.PersonID{}, false, nil
}

func (s *InMemoryStore) DeleteByPerson(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pairs {
		if key.a == personID || key.b == personID {
			delete(s.pairs, key)
		}
	}
	return nil
}

func (s *InMemoryStore) active(personID id.PersonID) *models.MaritalRelationship {
	for key, rel := range s.pairs {
		if (key.a == personID || key.b == personID) && rel.Active() {
			return rel
		}
	}
	return nil
}

func (s *InMemoryStore) closeActive(personID id.PersonID, today time.Time) int {
	closed := 0
	for key, rel := range s.pairs {
		if (key.a == personID || key.b == personID) && rel.Active() {
			d := today
			rel.DivorceDate = &d
			closed++
		}
	}
	return closed
}
