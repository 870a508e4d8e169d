package models

import (
	"time"

	id "familydir/pkg/domain"
)

// PersonSummary is the short form used for spouse, parent and child links.
type PersonSummary struct {
	ID        id.PersonID `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Gender    Gender      `json:"gender"`
	Kind      ParentKind  `json:"kind,omitempty"`
}

// Summarize builds a PersonSummary.
func Summarize(p *Person) PersonSummary {
	return PersonSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Gender: p.Gender}
}

// PersonView is a profile as rendered to one viewer. Privacy filtering clears
// fields in place, so every hideable field is a pointer or omitempty value.
type PersonView struct {
	ID                  id.PersonID      `json:"id"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	FullName            string           `json:"full_name,omitempty"`
	Email               *string          `json:"email"`
	Phone               *string          `json:"phone"`
	Address             *Address         `json:"address"`
	DateOfBirth         *time.Time       `json:"date_of_birth"`
	Age                 *int             `json:"age"`
	WeddingAnniversary  *time.Time       `json:"wedding_anniversary_date"`
	YearsMarried        *int             `json:"years_married"`
	Gender              Gender           `json:"gender"`
	Generation          *string          `json:"generation"`
	Mother              *ParentLink      `json:"mother,omitempty"`
	Father              *ParentLink      `json:"father,omitempty"`
	HouseholdID         *id.HouseholdID  `json:"household_id"`
	PhotoURL            *string          `json:"photo_url"`
	Deceased            bool             `json:"deceased"`
	IsAdmin             bool             `json:"is_admin"`
	Privacy             *PrivacySettings `json:"privacy_settings,omitempty"`
	Spouse              *PersonSummary   `json:"spouse"`
	Parents             []PersonSummary  `json:"parents,omitempty"`
	Children            []PersonSummary  `json:"children,omitempty"`
	CanEdit             bool             `json:"can_edit"`
	IsHeadOfHousehold   bool             `json:"is_head_of_household"`
	HouseholdAddress    *string          `json:"household_address"`
	HouseholdNameHidden bool             `json:"household_name_hidden,omitempty"`
	Relationship        Label            `json:"relationship,omitempty"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewPersonView copies p into a view. Derived fields are filled by the caller.
func NewPersonView(p *Person) *PersonView {
	v := &PersonView{
		ID:                 p.ID,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		FullName:           p.FullName,
		Email:              strPtr(p.Email),
		Phone:              strPtr(p.Phone),
		DateOfBirth:        p.DateOfBirth,
		Age:                p.Age,
		WeddingAnniversary: p.WeddingAnniversary,
		YearsMarried:       p.YearsMarried,
		Gender:             p.Gender,
		Generation:         strPtr(p.Generation),
		Mother:             p.Mother,
		Father:             p.Father,
		HouseholdID:        p.HouseholdID,
		PhotoURL:           strPtr(p.PhotoURL),
		Deceased:           p.Deceased,
		IsAdmin:            p.IsAdmin,
	}
	if p.HasAddress() || p.PostalCode != "" {
		addr := p.Address()
		v.Address = &addr
	}
	return v
}

// HouseholdMember is one line of a household's member list.
type HouseholdMember struct {
	ID         id.PersonID `json:"id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	FullName   string      `json:"full_name"`
	Email      *string     `json:"email"`
	Generation *string     `json:"generation"`
	Address
}

// NewHouseholdMember builds a member line; FullName falls back to Name.
func NewHouseholdMember(p *Person) HouseholdMember {
	full := p.FullName
	if full == "" {
		full = p.Name()
	}
	return HouseholdMember{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		FullName:   full,
		Email:      strPtr(p.Email),
		Generation: strPtr(p.Generation),
		Address:    p.Address(),
	}
}

// HouseholdView is a household with its resolved head, display name and
// shared address.
type HouseholdView struct {
	ID                 id.HouseholdID    `json:"id"`
	Name               string            `json:"name"`
	PrimaryContactID   *id.PersonID      `json:"primary_contact_person_id"`
	PrimaryContactName string            `json:"primary_contact_name,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	DisplayName        string            `json:"display_name"`
	Address            *string           `json:"address"`
	HeadID             *id.PersonID      `json:"head_person_id"`
	Members            []HouseholdMember `json:"members"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
