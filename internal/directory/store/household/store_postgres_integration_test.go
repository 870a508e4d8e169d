//go:build integration

package household_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/models"
	"familydir/internal/directory/store/household"
	"familydir/internal/directory/store/person"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	people   *person.PostgresStore
	store    *household.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.people = person.NewPostgres(s.postgres.DB)
	s.store = household.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateDirectory(s.ctx))
}

func (s *PostgresStoreSuite) TestPrimaryContactNameAndCleanup() {
	head := &models.Person{ID: id.NewPersonID(), FirstName: "Ada", LastName: "Lee", Gender: models.GenderFemale}
	s.Require().NoError(s.people.Create(s.ctx, head))

	full := &models.Household{ID: id.NewHouseholdID(), Name: "Lee Household", PrimaryContactID: &head.ID}
	empty := &models.Household{ID: id.NewHouseholdID(), Name: "Ghost Household"}
	s.Require().NoError(s.store.Create(s.ctx, full))
	s.Require().NoError(s.store.Create(s.ctx, empty))

	head.HouseholdID = &full.ID
	s.Require().NoError(s.people.Update(s.ctx, head))

	found, err := s.store.FindByID(s.ctx, full.ID)
	s.Require().NoError(err)
	s.Equal("Ada Lee", found.PrimaryContactName)

	removed, err := s.store.DeleteEmpty(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)
	_, err = s.store.FindByID(s.ctx, empty.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.ClearPrimaryContact(s.ctx, head.ID))
	found, err = s.store.FindByID(s.ctx, full.ID)
	s.Require().NoError(err)
	s.Nil(found.PrimaryContactID)
	s.Empty(found.PrimaryContactName)
}
