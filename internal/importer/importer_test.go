package importer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"familydir/internal/directory/authority"
	"familydir/internal/directory/models"
	"familydir/internal/directory/service"
	householdstore "familydir/internal/directory/store/household"
	maritalstore "familydir/internal/directory/store/marital"
	personstore "familydir/internal/directory/store/person"
	relationshipstore "familydir/internal/directory/store/relationship"
	"familydir/internal/importer"
	"familydir/pkg/platform/audit/publishers/compliance"
	auditmemory "familydir/pkg/platform/audit/store/memory"
)

const familyCSV = `first_name,last_name,email,gender,generation,household_name,mother_name,father_name,spouse_name,date_of_birth,is_deceased
Ruth,Smith,,,G1,Ruth Home,,,,1930-02-01,true
Ann,Smith,ann@example.com,,G2,Smith Home,Ruth Smith,,Bob Smith,1960-07-01,
Bob,Smith,,Male,G2,Smith Home,,,Ann Smith,not-a-date,
Cal,Smith,,Male,G3,Smith Home,Ann Smith,Bob Smith,,,
Dee,Jones,,Female,G3,,Zed Nobody,,,,
`

type ImporterSuite struct {
	suite.Suite
	ctx           context.Context
	people        *personstore.InMemoryStore
	households    *householdstore.InMemoryStore
	marriages     *maritalstore.InMemoryStore
	relationships *relationshipstore.InMemoryStore
	auditStore    *auditmemory.InMemoryStore
	importer      *importer.Importer
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterSuite))
}

func (s *ImporterSuite) SetupTest() {
	s.ctx = context.Background()
	s.people = personstore.NewInMemoryStore()
	s.households = householdstore.NewInMemoryStore(s.people)
	s.marriages = maritalstore.NewInMemoryStore()
	s.relationships = relationshipstore.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()

	fixedNow := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.importer = importer.New(importer.Stores{
		People:        s.people,
		Households:    s.households,
		Marriages:     s.marriages,
		Relationships: s.relationships,
	}, service.NewInMemoryTx(),
		importer.WithAuditPublisher(compliance.New(s.auditStore)),
		importer.WithClock(func() time.Time { return fixedNow }),
	)
}

func (s *ImporterSuite) importCSV(in string) (*importer.Result, error) {
	records, err := importer.Parse(strings.NewReader(in))
	s.Require().NoError(err)
	return s.importer.Import(s.ctx, records)
}

func (s *ImporterSuite) person(email, first string) *models.Person {
	all, err := s.people.List(s.ctx)
	s.Require().NoError(err)
	for _, p := range all {
		if p.FirstName == first && (email == "" || p.Email == email) {
			return p
		}
	}
	s.FailNow("person not found", first)
	return nil
}

func (s *ImporterSuite) TestImport() {
	result, err := s.importCSV(familyCSV)
	s.Require().NoError(err)

	s.Equal(5, result.Persons)
	s.Equal(2, result.Households)
	s.Equal(3, result.ParentLinks)
	s.Equal(1, result.Marriages)
	s.Len(result.Warnings, 2)

	ruth := s.person("", "Ruth")
	ann := s.person("ann@example.com", "Ann")
	bob := s.person("", "Bob")
	cal := s.person("", "Cal")

	s.Run("genders are inferred from parent references", func() {
		s.Equal(models.GenderFemale, ruth.Gender)
		s.Equal(models.GenderFemale, ann.Gender)
		s.Equal(models.GenderMale, bob.Gender)
	})

	s.Run("rows are filled in", func() {
		s.True(ruth.Deceased)
		s.Equal(models.DefaultCountry, ann.Country)
		s.Equal("Ann Smith", ann.FullName)
		s.Require().NotNil(ann.Age)
		s.Equal(63, *ann.Age)
		s.Nil(bob.DateOfBirth)
	})

	s.Run("parent links and edges agree", func() {
		s.Require().NotNil(cal.Mother)
		s.Require().NotNil(cal.Father)
		s.Equal(ann.ID, cal.Mother.ID)
		s.Equal(bob.ID, cal.Father.ID)
		s.Require().NotNil(ann.Mother)
		s.Equal(ruth.ID, ann.Mother.ID)

		edges, err := s.relationships.ParentsOf(s.ctx, cal.ID)
		s.Require().NoError(err)
		s.Len(edges, 2)
	})

	s.Run("spouses are married once", func() {
		spouse, ok, err := s.marriages.ActiveSpouse(s.ctx, bob.ID)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(ann.ID, spouse)
	})

	s.Run("households get a living primary contact", func() {
		s.Require().NotNil(ann.HouseholdID)
		s.Equal(*ann.HouseholdID, *cal.HouseholdID)
		home, err := s.households.FindByID(s.ctx, *ann.HouseholdID)
		s.Require().NoError(err)
		s.Equal("Smith Home", home.Name)
		s.Require().NotNil(home.PrimaryContactID)
		s.Equal(ann.ID, *home.PrimaryContactID)

		ruthHome, err := s.households.FindByID(s.ctx, *ruth.HouseholdID)
		s.Require().NoError(err)
		s.Require().NotNil(ruthHome.PrimaryContactID)
		s.Equal(ruth.ID, *ruthHome.PrimaryContactID)
	})

	s.Run("import is audited", func() {
		events, err := s.auditStore.ListRecent(s.ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal("people_imported", events[0].Action)
	})
}

func (s *ImporterSuite) TestMissingGender() {
	_, err := s.importCSV("first_name,last_name\nZed,Nobody\n")
	s.Require().Error(err)
	s.Contains(err.Error(), "gender is required")
}

func (s *ImporterSuite) requireNotOwnAncestor(people ...*models.Person) {
	evaluator := authority.New(s.people, s.households, s.relationships, s.marriages)
	for _, p := range people {
		own, err := evaluator.IsAncestor(s.ctx, p.ID, p.ID)
		s.Require().NoError(err)
		s.False(own, "%s is their own ancestor", p.Name())
	}
}

func (s *ImporterSuite) TestParentCyclesAreRefused() {
	s.Run("two rows naming each other as mother", func() {
		result, err := s.importCSV("first_name,last_name,gender,mother_name\nAnn,X,Female,Bea X\nBea,X,Female,Ann X\n")
		s.Require().NoError(err)
		s.Equal(1, result.ParentLinks)
		s.Require().Len(result.Warnings, 1)
		s.Contains(result.Warnings[0], "own ancestor")

		ann := s.person("", "Ann")
		bea := s.person("", "Bea")
		s.Require().NotNil(ann.Mother)
		s.Equal(bea.ID, ann.Mother.ID)
		s.Nil(bea.Mother)
		s.requireNotOwnAncestor(ann, bea)
	})

	s.Run("three rows closing a loop", func() {
		result, err := s.importCSV("first_name,last_name,gender,mother_name\nAmy,Y,Female,Bo Y\nBo,Y,Female,Cy Y\nCy,Y,Female,Amy Y\n")
		s.Require().NoError(err)
		s.Equal(2, result.ParentLinks)
		s.Require().Len(result.Warnings, 1)
		s.Contains(result.Warnings[0], "Cy Y")

		amy := s.person("", "Amy")
		bo := s.person("", "Bo")
		cy := s.person("", "Cy")
		s.Nil(cy.Mother)
		edges, err := s.relationships.ParentsOf(s.ctx, cy.ID)
		s.Require().NoError(err)
		s.Empty(edges)
		s.requireNotOwnAncestor(amy, bo, cy)
	})
}

func (s *ImporterSuite) TestDuplicateNamesWarn() {
	result, err := s.importCSV("first_name,last_name,email,gender,mother_name\n" +
		"Ann,Smith,first@example.com,Female,\n" +
		"Ann,Smith,second@example.com,Female,\n" +
		"Cal,Smith,,Male,Ann Smith\n")
	s.Require().NoError(err)
	s.Equal(3, result.Persons)
	s.Require().Len(result.Warnings, 1)
	s.Contains(result.Warnings[0], "duplicate name Ann Smith")

	cal := s.person("", "Cal")
	s.Require().NotNil(cal.Mother)
	s.Equal(s.person("second@example.com", "Ann").ID, cal.Mother.ID)
}
