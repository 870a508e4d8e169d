//go:build integration

package person_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/models"
	"familydir/internal/directory/store/person"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *person.PostgresStore
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
	s.store = person.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateDirectory(s.ctx))
}

func (s *PostgresStoreSuite) newPerson(first, email string) *models.Person {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &models.Person{
		ID:        id.NewPersonID(),
		FirstName: first,
		LastName:  "Lee",
		Email:     email,
		Gender:    models.GenderMale,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	dob := time.Date(1970, 4, 2, 0, 0, 0, 0, time.UTC)
	age := 56
	restricted := id.NewPersonID()
	p := &models.Person{
		ID:           id.NewPersonID(),
		FirstName:    "Ada",
		LastName:     "Lee",
		Email:        "ada@example.com",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		DateOfBirth:  &dob,
		Age:          &age,
		Gender:       models.GenderFemale,
		Generation:   "G2",
		Privacy:      models.PrivacySettings{Email: true, RestrictedPeople: []id.PersonID{restricted}},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Create(s.ctx, p))

	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Ada", found.FirstName)
	s.Equal(models.DefaultCountry, found.Country)
	s.Require().NotNil(found.Age)
	s.Equal(56, *found.Age)
	s.Require().NotNil(found.DateOfBirth)
	s.Equal(dob.Format(time.DateOnly), found.DateOfBirth.Format(time.DateOnly))
	s.True(found.Privacy.Email)
	s.Equal([]id.PersonID{restricted}, found.Privacy.RestrictedPeople)

	byEmail, err := s.store.FindByEmail(s.ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.Equal(p.ID, byEmail.ID)

	_, err = s.store.FindByID(s.ctx, id.NewPersonID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEmailConflict() {
	s.newPerson("A", "a@example.com")
	dup := &models.Person{ID: id.NewPersonID(), FirstName: "B", LastName: "Lee", Email: "A@EXAMPLE.com", Gender: models.GenderMale}
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)

	s.newPerson("C", "")
	s.newPerson("D", "")
}

func (s *PostgresStoreSuite) TestUpdateParentsAndBatchLookup() {
	mom := s.newPerson("Mom", "")
	kid := s.newPerson("Kid", "")
	kid.Mother = &models.ParentLink{ID: mom.ID, Kind: models.KindStep}
	kid.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Update(s.ctx, kid))

	found, err := s.store.FindByIDs(s.ctx, []id.PersonID{kid.ID, mom.ID, id.NewPersonID()})
	s.Require().NoError(err)
	s.Len(found, 2)

	reloaded, err := s.store.FindByID(s.ctx, kid.ID)
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.Mother)
	s.Equal(mom.ID, reloaded.Mother.ID)
	s.Equal(models.KindStep, reloaded.Mother.Kind)

	s.Require().NoError(s.store.Delete(s.ctx, mom.ID))
	reloaded, err = s.store.FindByID(s.ctx, kid.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.Mother, "parent reference cleared on delete")
}

func (s *PostgresStoreSuite) TestSelfParentRejected() {
	p := s.newPerson("Loop", "")
	p.Father = &models.ParentLink{ID: p.ID, Kind: models.KindBiological}
	s.Error(s.store.Update(s.ctx, p))
}

func (s *PostgresStoreSuite) TestResolvePrincipal() {
	p := s.newPerson("Admin", "")
	p.IsAdmin = true
	s.Require().NoError(s.store.Update(s.ctx, p))

	isAdmin, err := s.store.ResolvePrincipal(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(isAdmin)

	_, err = s.store.ResolvePrincipal(s.ctx, id.NewPersonID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
