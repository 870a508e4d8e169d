package marital

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

type MaritalStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	today time.Time
}

func TestMaritalStoreSuite(t *testing.T) {
	suite.Run(t, new(MaritalStoreSuite))
}

func (s *MaritalStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.today = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (s *MaritalStoreSuite) spouseOf(pid id.PersonID) (id.PersonID, bool) {
	spouse, ok, err := s.store.ActiveSpouse(s.ctx, pid)
	s.Require().NoError(err)
	return spouse, ok
}

func (s *MaritalStoreSuite) TestSetSpouseIsSymmetric() {
	a, b := id.NewPersonID(), id.NewPersonID()
	rel, err := s.store.SetSpouse(s.ctx, a, b, s.today)
	s.Require().NoError(err)
	s.True(rel.PersonA.Less(rel.PersonB) || rel.PersonA == rel.PersonB)

	spouse, ok := s.spouseOf(a)
	s.True(ok)
	s.Equal(b, spouse)
	spouse, ok = s.spouseOf(b)
	s.True(ok)
	s.Equal(a, spouse)
}

func (s *MaritalStoreSuite) TestSetSpouseClosesPriorMarriages() {
	a, b, c, d := id.NewPersonID(), id.NewPersonID(), id.NewPersonID(), id.NewPersonID()
	_, err := s.store.SetSpouse(s.ctx, a, b, s.today)
	s.Require().NoError(err)
	_, err = s.store.SetSpouse(s.ctx, c, d, s.today)
	s.Require().NoError(err)

	_, err = s.store.SetSpouse(s.ctx, a, c, s.today)
	s.Require().NoError(err)

	spouse, ok := s.spouseOf(a)
	s.True(ok)
	s.Equal(c, spouse)
	_, ok = s.spouseOf(b)
	s.False(ok, "b's marriage was closed")
	_, ok = s.spouseOf(d)
	s.False(ok, "d's marriage was closed")
}

func (s *MaritalStoreSuite) TestRemarryingReopensPair() {
	a, b, c := id.NewPersonID(), id.NewPersonID(), id.NewPersonID()
	first, err := s.store.SetSpouse(s.ctx, a, b, s.today)
	s.Require().NoError(err)
	_, err = s.store.SetSpouse(s.ctx, a, c, s.today)
	s.Require().NoError(err)

	again, err := s.store.SetSpouse(s.ctx, b, a, s.today)
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
	s.Nil(again.DivorceDate)
}

func (s *MaritalStoreSuite) TestRemoveSpouse() {
	a, b := id.NewPersonID(), id.NewPersonID()
	_, err := s.store.SetSpouse(s.ctx, a, b, s.today)
	s.Require().NoError(err)

	removed, err := s.store.RemoveSpouse(s.ctx, b, s.today)
	s.Require().NoError(err)
	s.True(removed)

	_, ok := s.spouseOf(a)
	s.False(ok)
	_, err = s.store.FindActive(s.ctx, a)
	s.ErrorIs(err, sentinel.ErrNotFound)

	removed, err = s.store.RemoveSpouse(s.ctx, b, s.today)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *MaritalStoreSuite) TestDeleteByPerson() {
	a, b := id.NewPersonID(), id.NewPersonID()
	_, err := s.store.SetSpouse(s.ctx, a, b, s.today)
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteByPerson(s.ctx, a))
	_, ok := s.spouseOf(b)
	s.False(ok)
}
