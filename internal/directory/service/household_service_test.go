package service_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/models"
	"familydir/internal/directory/service"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
)

type HouseholdServiceSuite struct {
	directoryFixture
}

func TestHouseholdServiceSuite(t *testing.T) {
	suite.Run(t, new(HouseholdServiceSuite))
}

func (s *HouseholdServiceSuite) TestList() {
	s.Run("resolves head, display name and address", func() {
		views, err := s.householdS.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(views, 1)

		v := views[0]
		s.Equal(s.home.ID, v.ID)
		s.Require().NotNil(v.HeadID)
		s.Equal(s.ann.ID, *v.HeadID)
		s.Equal("Ann Smith Household", v.DisplayName)
		s.Require().NotNil(v.Address)
		s.Equal("1 Elm St\nSpringfield, IL", *v.Address)
		s.Len(v.Members, 3)
	})

	s.Run("skips households without members", func() {
		empty := &models.Household{ID: id.NewHouseholdID(), Name: "Empty"}
		s.Require().NoError(s.households.Create(s.ctx, empty))

		views, err := s.householdS.List(s.ctx)
		s.Require().NoError(err)
		s.Len(views, 1)

		view, err := s.householdS.Get(s.ctx, empty.ID)
		s.requireCode(err, dErrors.CodeNotFound)
		s.Nil(view)
	})

	s.Run("unknown household is not found", func() {
		_, err := s.householdS.Get(s.ctx, id.NewHouseholdID())
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *HouseholdServiceSuite) TestSetHead() {
	s.Run("creates a household around the head", func() {
		view, err := s.householdS.SetHead(s.ctx, s.eve.ID, service.NewHouseholdRef, s.dee.ID, []id.PersonID{s.eve.ID, s.dee.ID})
		s.Require().NoError(err)
		s.Equal("Dee Jones Household", view.Name)
		s.Require().NotNil(view.HeadID)
		s.Equal(s.dee.ID, *view.HeadID)
		s.Len(view.Members, 2)
		s.Equal(view.ID, *s.reload(s.eve).HouseholdID)
		s.Contains(s.auditActions(), string(audit.EventHouseholdHeadSet))
	})

	s.Run("moves the designee within a household", func() {
		view, err := s.householdS.SetHead(s.ctx, s.ann.ID, s.home.ID.String(), s.cal.ID, nil)
		s.Require().NoError(err)
		s.Equal(s.cal.ID, *view.HeadID)
		s.Equal("Cal Smith Household", view.DisplayName)
	})

	s.Run("skips members the actor cannot edit", func() {
		_, err := s.householdS.SetHead(s.ctx, s.ann.ID, s.home.ID.String(), s.ann.ID, []id.PersonID{s.dee.ID, id.NewPersonID()})
		s.Require().NoError(err)
		s.NotEqual(s.home.ID, *s.reload(s.dee).HouseholdID)
	})

	s.Run("denies an unrelated actor", func() {
		_, err := s.householdS.SetHead(s.ctx, s.dee.ID, s.home.ID.String(), s.cal.ID, nil)
		s.requireCode(err, dErrors.CodeForbidden)
	})

	s.Run("rejects a malformed household id", func() {
		_, err := s.householdS.SetHead(s.ctx, s.eve.ID, "not-a-uuid", s.cal.ID, nil)
		s.requireCode(err, dErrors.CodeBadRequest)
	})
}

func (s *HouseholdServiceSuite) TestRemoveMemberAndCleanup() {
	s.Run("removing the head clears the designee", func() {
		s.Require().NoError(s.householdS.RemoveMember(s.ctx, s.ann.ID, s.ann.ID))
		s.Nil(s.reload(s.ann).HouseholdID)

		h, err := s.households.FindByID(s.ctx, s.home.ID)
		s.Require().NoError(err)
		s.Nil(h.PrimaryContactID)
		s.Contains(s.auditActions(), string(audit.EventHouseholdMemberRemove))
	})

	s.Run("unrelated actor cannot remove", func() {
		err := s.householdS.RemoveMember(s.ctx, s.dee.ID, s.cal.ID)
		s.requireCode(err, dErrors.CodeForbidden)
	})

	s.Run("cleanup deletes emptied households", func() {
		s.Require().NoError(s.householdS.RemoveMember(s.ctx, s.eve.ID, s.bob.ID))
		s.Require().NoError(s.householdS.RemoveMember(s.ctx, s.eve.ID, s.cal.ID))

		deleted, err := s.householdS.Cleanup(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, deleted)
		_, err = s.households.FindByID(s.ctx, s.home.ID)
		s.Error(err)
	})
}
