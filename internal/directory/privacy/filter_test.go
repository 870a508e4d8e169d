package privacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

func fullView(owner id.PersonID) *models.PersonView {
	dob := time.Date(1980, 5, 4, 0, 0, 0, 0, time.UTC)
	age := 46
	p := &models.Person{
		ID:           owner,
		FirstName:    "Ada",
		LastName:     "Lee",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		State:        "IL",
		DateOfBirth:  &dob,
		Age:          &age,
		Generation:   "G2",
		PhotoURL:     "/photos/ada.jpg",
	}
	v := models.NewPersonView(p)
	addr := "1 Main St\nSpringfield, IL"
	v.HouseholdAddress = &addr
	return v
}

func TestApply(t *testing.T) {
	owner := id.NewPersonID()
	restricted := id.NewPersonID()
	other := id.NewPersonID()
	settings := models.PrivacySettings{
		Email:            true,
		Address:          true,
		Age:              true,
		HouseholdName:    true,
		RestrictedPeople: []id.PersonID{restricted},
	}

	t.Run("restricted viewer loses toggled fields", func(t *testing.T) {
		v := Apply(fullView(owner), settings, restricted)
		assert.Nil(t, v.Email)
		assert.Nil(t, v.Address)
		assert.Nil(t, v.HouseholdAddress)
		assert.Nil(t, v.Age)
		assert.True(t, v.HouseholdNameHidden)

		require.NotNil(t, v.Phone)
		assert.Equal(t, "555-0100", *v.Phone)
		assert.NotNil(t, v.DateOfBirth)
		assert.NotNil(t, v.Generation)
		assert.NotNil(t, v.PhotoURL)
	})

	t.Run("unrestricted viewer sees everything", func(t *testing.T) {
		v := Apply(fullView(owner), settings, other)
		assert.NotNil(t, v.Email)
		assert.NotNil(t, v.Address)
		assert.False(t, v.HouseholdNameHidden)
	})

	t.Run("owner sees everything", func(t *testing.T) {
		self := settings
		self.RestrictedPeople = []id.PersonID{owner}
		v := Apply(fullView(owner), self, owner)
		assert.NotNil(t, v.Email)
	})

	t.Run("toggles without restricted viewers hide nothing", func(t *testing.T) {
		open := settings
		open.RestrictedPeople = nil
		v := Apply(fullView(owner), open, restricted)
		assert.NotNil(t, v.Email)
		assert.NotNil(t, v.Age)
	})

	t.Run("every toggle clears its field", func(t *testing.T) {
		all := models.PrivacySettings{
			Photo: true, Email: true, Phone: true, Address: true, Generation: true,
			Age: true, Birthday: true, Anniversary: true, YearsMarried: true, HouseholdName: true,
			RestrictedPeople: []id.PersonID{restricted},
		}
		v := Apply(fullView(owner), all, restricted)
		assert.Nil(t, v.PhotoURL)
		assert.Nil(t, v.Email)
		assert.Nil(t, v.Phone)
		assert.Nil(t, v.Address)
		assert.Nil(t, v.Generation)
		assert.Nil(t, v.Age)
		assert.Nil(t, v.DateOfBirth)
		assert.Nil(t, v.WeddingAnniversary)
		assert.Nil(t, v.YearsMarried)
		assert.True(t, v.HouseholdNameHidden)
		assert.Equal(t, "Ada", v.FirstName)
	})

	t.Run("nil view", func(t *testing.T) {
		assert.Nil(t, Apply(nil, settings, restricted))
	})
}

func TestNormalize(t *testing.T) {
	owner := id.NewPersonID()
	a := id.NewPersonID()
	b := id.NewPersonID()

	got := Normalize(owner, models.PrivacySettings{
		Email:            true,
		RestrictedPeople: []id.PersonID{a, b, a, owner, {}},
	})
	assert.True(t, got.Email)
	assert.Equal(t, []id.PersonID{a, b}, got.RestrictedPeople)

	empty := Normalize(owner, models.PrivacySettings{RestrictedPeople: []id.PersonID{owner}})
	assert.Nil(t, empty.RestrictedPeople)
}
