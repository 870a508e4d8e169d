package models

import (
	"strconv"
	"strings"
	"time"

	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
)

// DefaultCountry is omitted from rendered addresses.
const DefaultCountry = "USA"

// UnlabeledGeneration sorts persons without a usable generation label last.
const UnlabeledGeneration = 999

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender accepts the two stored values case-insensitively.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "gender must be Male or Female")
	}
}

// ParentKind types a parent link.
type ParentKind string

const (
	KindBiological ParentKind = "biological"
	KindStep       ParentKind = "step"
	KindInLaw      ParentKind = "in-law"
)

// ParseParentKind defaults an empty value to biological.
func ParseParentKind(raw string) (ParentKind, error) {
	switch ParentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindBiological:
		return KindBiological, nil
	case KindStep:
		return KindStep, nil
	case KindInLaw, "in_law", "inlaw":
		return KindInLaw, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "relationship kind must be biological, step or in-law")
	}
}

// ParentLink is a typed reference from a child to one parent slot.
type ParentLink struct {
	ID   id.PersonID `json:"id"`
	Kind ParentKind  `json:"kind"`
}

// Person is a member of the directory.
type Person struct {
	ID                 id.PersonID
	FirstName          string
	LastName           string
	FullName           string
	Email              string
	Phone              string
	AddressLine1       string
	AddressLine2       string
	City               string
	State              string
	PostalCode         string
	Country            string
	DateOfBirth        *time.Time
	Age                *int
	WeddingAnniversary *time.Time
	YearsMarried       *int
	Gender             Gender
	Generation         string
	Mother             *ParentLink
	Father             *ParentLink
	HouseholdID        *id.HouseholdID
	PhotoURL           string
	Deceased           bool
	IsAdmin            bool
	Privacy            PrivacySettings
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Name is "first last".
func (p *Person) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// HasAddress reports whether any locating address field is filled in.
func (p *Person) HasAddress() bool {
	return p.AddressLine1 != "" || p.City != "" || p.State != ""
}

// Address returns the person's address fields as a value.
func (p *Person) Address() Address {
	return Address{
		Line1:      p.AddressLine1,
		Line2:      p.AddressLine2,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

// SetAddress overwrites all address fields.
func (p *Person) SetAddress(a Address) {
	p.AddressLine1 = a.Line1
	p.AddressLine2 = a.Line2
	p.City = a.City
	p.State = a.State
	p.PostalCode = a.PostalCode
	p.Country = a.Country
}

// Parents returns the filled parent slots, mother first.
func (p *Person) Parents() []ParentLink {
	out := make([]ParentLink, 0, 2)
	if p.Mother != nil {
		out = append(out, *p.Mother)
	}
	if p.Father != nil {
		out = append(out, *p.Father)
	}
	return out
}

// KindOf returns the kind of the link to parentID. The mother slot is checked
// first when both slots hold the same id.
func (p *Person) KindOf(parentID id.PersonID) (ParentKind, bool) {
	if p.Mother != nil && p.Mother.ID == parentID {
		return p.Mother.Kind, true
	}
	if p.Father != nil && p.Father.ID == parentID {
		return p.Father.Kind, true
	}
	return "", false
}

// GenerationNumber parses labels like "G2". Missing or malformed labels
// return UnlabeledGeneration.
func (p *Person) GenerationNumber() int {
	return ParseGeneration(p.Generation)
}

// ParseGeneration parses "G<n>" (case-insensitive).
func ParseGeneration(label string) int {
	label = strings.TrimSpace(label)
	if len(label) < 2 || (label[0] != 'G' && label[0] != 'g') {
		return UnlabeledGeneration
	}
	n, err := strconv.Atoi(label[1:])
	if err != nil || n <= 0 {
		return UnlabeledGeneration
	}
	return n
}

// Address is the set of postal fields a household head shares with members.
type Address struct {
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// YearsSince counts whole years elapsed from date to now.
func YearsSince(date, now time.Time) int {
	years := now.Year() - date.Year()
	if now.Month() < date.Month() || (now.Month() == date.Month() && now.Day() < date.Day()) {
		years--
	}
	return years
}

// Clone returns a deep copy of p.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	c.DateOfBirth = cloneTime(p.DateOfBirth)
	c.WeddingAnniversary = cloneTime(p.WeddingAnniversary)
	c.Age = cloneInt(p.Age)
	c.YearsMarried = cloneInt(p.YearsMarried)
	if p.Mother != nil {
		m := *p.Mother
		c.Mother = &m
	}
	if p.Father != nil {
		f := *p.Father
		c.Father = &f
	}
	if p.HouseholdID != nil {
		h := *p.HouseholdID
		c.HouseholdID = &h
	}
	c.Privacy.RestrictedPeople = append([]id.PersonID(nil), p.Privacy.RestrictedPeople...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
