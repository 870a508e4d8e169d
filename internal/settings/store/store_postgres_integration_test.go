//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/models"
	"familydir/internal/directory/store/person"
	settingsmodels "familydir/internal/settings/models"
	"familydir/internal/settings/store"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	people   *person.PostgresStore
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
	s.store = store.NewPostgres(s.postgres.DB)
	s.people = person.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateDirectory(s.ctx))
}

func (s *PostgresStoreSuite) TestSiteNameSeededAndUpserted() {
	name, err := s.store.GetSetting(s.ctx, settingsmodels.KeySiteName)
	s.Require().NoError(err)
	s.Equal(settingsmodels.DefaultSiteName, name)

	s.Require().NoError(s.store.SetSetting(s.ctx, settingsmodels.KeySiteName, "The Smiths"))
	all, err := s.store.AllSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal("The Smiths", all[settingsmodels.KeySiteName])

	s.Require().NoError(s.store.SetSetting(s.ctx, settingsmodels.KeySiteName, settingsmodels.DefaultSiteName))

	_, err = s.store.GetSetting(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPreferencesFollowPerson() {
	p := &models.Person{ID: id.NewPersonID(), FirstName: "Ada", LastName: "Lee", Gender: models.GenderFemale}
	s.Require().NoError(s.people.Create(s.ctx, p))

	s.Require().NoError(s.store.SetPreference(s.ctx, p.ID, "theme", json.RawMessage(`{"dark":true}`)))
	s.Require().NoError(s.store.SetPreference(s.ctx, p.ID, "theme", json.RawMessage(`{"dark":false}`)))

	value, err := s.store.GetPreference(s.ctx, p.ID, "theme")
	s.Require().NoError(err)
	s.JSONEq(`{"dark":false}`, string(value))

	s.Require().NoError(s.people.Delete(s.ctx, p.ID))
	all, err := s.store.AllPreferences(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(all)
}
