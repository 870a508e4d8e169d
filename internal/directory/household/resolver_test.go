package household

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

func age(n int) *int { return &n }

func member(first, last, generation string, years *int) *models.Person {
	return &models.Person{
		ID:         id.NewPersonID(),
		FirstName:  first,
		LastName:   last,
		Generation: generation,
		Age:        years,
	}
}

func TestResolveHead_ExplicitDesigneeWins(t *testing.T) {
	elder := member("Ada", "Lee", "G1", age(80))
	designee := member("Zed", "Lee", "", age(20))
	h := &models.Household{Name: "Lee", PrimaryContactID: &designee.ID}

	head := ResolveHead(h, []*models.Person{elder, designee}, nil)
	assert.Equal(t, designee.ID, head.ID)
}

func TestResolveHead_DesigneeNoLongerMemberIsIgnored(t *testing.T) {
	elder := member("Ada", "Lee", "G1", age(80))
	gone := id.NewPersonID()
	h := &models.Household{PrimaryContactID: &gone}

	head := ResolveHead(h, []*models.Person{elder}, nil)
	assert.Equal(t, elder.ID, head.ID)
}

func TestResolveHead_LowerGenerationWins(t *testing.T) {
	a := member("Adam", "Smith", "G1", nil)
	b := member("Ben", "Smith", "G2", age(50))
	b.Father = &models.ParentLink{ID: a.ID, Kind: models.KindBiological}

	head := ResolveHead(&models.Household{}, []*models.Person{b, a}, nil)
	assert.Equal(t, a.ID, head.ID)
}

func TestResolveHead_BloodRelativeBeatsMarriedIn(t *testing.T) {
	inLaw := member("Al", "Jones", "", age(90))
	descendant := member("Zoe", "Jones", "", age(30))
	lineage := models.LineageFacts{descendant.ID: {HasParents: true}}

	head := ResolveHead(&models.Household{}, []*models.Person{inLaw, descendant}, lineage)
	assert.Equal(t, descendant.ID, head.ID)
}

func TestResolveHead_ChildOnFileCountsAsBlood(t *testing.T) {
	parent := member("Pat", "Kim", "", age(40))
	spouse := member("Sam", "Kim", "", age(60))
	lineage := models.LineageFacts{parent.ID: {HasChildren: true}}

	head := ResolveHead(&models.Household{}, []*models.Person{spouse, parent}, lineage)
	assert.Equal(t, parent.ID, head.ID)
}

func TestResolveHead_BloodRanking(t *testing.T) {
	withParents := member("Zara", "Ng", "G2", age(30))
	noParents := member("Abe", "Ng", "G2", age(70))
	lineage := models.LineageFacts{withParents.ID: {HasParents: true}}

	head := ResolveHead(&models.Household{}, []*models.Person{noParents, withParents}, lineage)
	assert.Equal(t, withParents.ID, head.ID, "parent on file outranks name and age")

	jane := member("jane", "Ng", "G2", age(30))
	john := member("John", "Ng", "G2", age(70))
	head = ResolveHead(&models.Household{}, []*models.Person{john, jane}, nil)
	assert.Equal(t, jane.ID, head.ID, "first name compares case-insensitively")

	older := member("Kai", "Ng", "G3", age(50))
	younger := member("Kai", "Ng", "G3", age(20))
	unknown := member("Kai", "Ng", "G3", nil)
	head = ResolveHead(&models.Household{}, []*models.Person{unknown, younger, older}, nil)
	assert.Equal(t, older.ID, head.ID)
}

func TestResolveHead_NoBloodRelativesOldestWins(t *testing.T) {
	a := member("A", "X", "", age(30))
	b := member("B", "X", "", age(45))
	c := member("C", "X", "", nil)

	head := ResolveHead(&models.Household{}, []*models.Person{c, a, b}, nil)
	assert.Equal(t, b.ID, head.ID)
}

func TestResolveHead_TiesBreakByID(t *testing.T) {
	a := member("A", "X", "", age(40))
	b := member("B", "X", "", age(40))
	want := a
	if b.ID.Less(a.ID) {
		want = b
	}

	assert.Equal(t, want.ID, ResolveHead(&models.Household{}, []*models.Person{a, b}, nil).ID)
	assert.Equal(t, want.ID, ResolveHead(&models.Household{}, []*models.Person{b, a}, nil).ID)
}

func TestResolveHead_Empty(t *testing.T) {
	assert.Nil(t, ResolveHead(&models.Household{}, nil, nil))
}

func TestDisplayName(t *testing.T) {
	h := &models.Household{Name: "The Lees"}
	assert.Equal(t, "Ada Lee Household", DisplayName(h, &models.Person{FirstName: "Ada", LastName: "Lee"}))
	assert.Equal(t, "The Lees", DisplayName(h, nil))
}

func TestAddress(t *testing.T) {
	head := member("Ada", "Lee", "G1", nil)
	other := member("Bo", "Lee", "", nil)
	other.AddressLine1 = "1 Main St"
	other.City = "Springfield"
	other.State = "IL"
	other.PostalCode = "62701"
	other.Country = "USA"

	assert.Equal(t, "1 Main St\nSpringfield, IL, 62701", Address([]*models.Person{head, other}, head),
		"head without address falls back to first member with one")

	head.AddressLine1 = "9 Elm Rd"
	head.AddressLine2 = "Apt 2"
	head.State = "ON"
	head.Country = "Canada"
	assert.Equal(t, "9 Elm Rd\nApt 2\nON\nCanada", Address([]*models.Person{other, head}, head))

	assert.Empty(t, Address([]*models.Person{member("C", "D", "", nil)}, nil))
}

func TestIsHead(t *testing.T) {
	p := id.NewPersonID()
	other := id.NewPersonID()

	require.True(t, IsHead(nil, p, 0))
	assert.True(t, IsHead(&models.Household{PrimaryContactID: &p}, p, 3))
	assert.False(t, IsHead(&models.Household{PrimaryContactID: &other}, p, 1))
	assert.True(t, IsHead(&models.Household{}, p, 1))
	assert.False(t, IsHead(&models.Household{}, p, 2))
}
