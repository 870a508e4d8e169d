package household

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

type fixedCounts map[id.HouseholdID]int

func (f fixedCounts) CountByHousehold(_ context.Context, householdID id.HouseholdID) (int, error) {
	return f[householdID], nil
}

type HouseholdStoreSuite struct {
	suite.Suite
	counts fixedCounts
	store  *InMemoryStore
	ctx    context.Context
}

func TestHouseholdStoreSuite(t *testing.T) {
	suite.Run(t, new(HouseholdStoreSuite))
}

func (s *HouseholdStoreSuite) SetupTest() {
	s.counts = fixedCounts{}
	s.store = NewInMemoryStore(s.counts)
	s.ctx = context.Background()
}

func (s *HouseholdStoreSuite) newHousehold(name string) *models.Household {
	h := &models.Household{ID: id.NewHouseholdID(), Name: name}
	s.Require().NoError(s.store.Create(s.ctx, h))
	return h
}

func (s *HouseholdStoreSuite) TestCRUD() {
	h := s.newHousehold("Lee")

	found, err := s.store.FindByID(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal("Lee", found.Name)

	head := id.NewPersonID()
	found.PrimaryContactID = &head
	s.Require().NoError(s.store.Update(s.ctx, found))

	again, err := s.store.FindByID(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Require().NotNil(again.PrimaryContactID)
	s.Equal(head, *again.PrimaryContactID)

	s.Require().NoError(s.store.Delete(s.ctx, h.ID))
	_, err = s.store.FindByID(s.ctx, h.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, h), sentinel.ErrNotFound)
}

func (s *HouseholdStoreSuite) TestListIsSortedByName() {
	s.newHousehold("Zed")
	s.newHousehold("Abe")

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Abe", all[0].Name)
}

func (s *HouseholdStoreSuite) TestClearPrimaryContact() {
	head := id.NewPersonID()
	h := &models.Household{ID: id.NewHouseholdID(), Name: "Lee", PrimaryContactID: &head}
	s.Require().NoError(s.store.Create(s.ctx, h))

	s.Require().NoError(s.store.ClearPrimaryContact(s.ctx, head))
	found, err := s.store.FindByID(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Nil(found.PrimaryContactID)
}

func (s *HouseholdStoreSuite) TestDeleteEmpty() {
	full := s.newHousehold("Full")
	empty := s.newHousehold("Empty")
	s.counts[full.ID] = 2

	removed, err := s.store.DeleteEmpty(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.store.FindByID(s.ctx, empty.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByID(s.ctx, full.ID)
	s.NoError(err)
}
