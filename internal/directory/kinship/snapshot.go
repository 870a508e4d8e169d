package kinship

import (
	"context"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

// snapshot caches persons fetched during one Label call.
type snapshot struct {
	people  PersonLookup
	byID    map[id.PersonID]*models.Person
	fetched map[id.PersonID]struct{}
}

func newSnapshot(people PersonLookup) *snapshot {
	return &snapshot{
		people:  people,
		byID:    make(map[id.PersonID]*models.Person),
		fetched: make(map[id.PersonID]struct{}),
	}
}

// load fetches the ids not yet requested in a single batch.
func (s *snapshot) load(ctx context.Context, ids ...id.PersonID) error {
	missing := make([]id.PersonID, 0, len(ids))
	for _, pid := range ids {
		if _, ok := s.fetched[pid]; ok {
			continue
		}
		s.fetched[pid] = struct{}{}
		missing = append(missing, pid)
	}
	if len(missing) == 0 {
		return nil
	}
	found, err := s.people.FindByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for _, p := range found {
		s.byID[p.ID] = p
	}
	return nil
}

func (s *snapshot) get(pid id.PersonID) *models.Person {
	return s.byID[pid]
}

// parentsOf returns p's parents that resolved, mother first.
func (s *snapshot) parentsOf(p *models.Person) []*models.Person {
	out := make([]*models.Person, 0, 2)
	for _, link := range p.Parents() {
		if parent := s.get(link.ID); parent != nil {
			out = append(out, parent)
		}
	}
	return out
}
