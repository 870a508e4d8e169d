package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
)

// Optional distinguishes a field that was absent from one sent as null.
// Set is true whenever the field appeared; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Or returns the value, or fallback when unset or null.
func (o Optional[T]) Or(fallback T) T {
	if o.Value == nil {
		return fallback
	}
	return *o.Value
}

// Date is a calendar date carried as "2006-01-02". RFC 3339 timestamps are
// accepted and truncated; an empty string decodes to the zero Date.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return dErrors.New(dErrors.CodeValidation, "dates must be strings formatted YYYY-MM-DD")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid date: "+raw)
		}
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

// Ptr returns nil for the zero Date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// PersonPatch is a partial person record. Only set fields are applied.
type PersonPatch struct {
	FirstName          Optional[string]          `json:"first_name"`
	LastName           Optional[string]          `json:"last_name"`
	FullName           Optional[string]          `json:"full_name"`
	Email              Optional[string]          `json:"email"`
	Phone              Optional[string]          `json:"phone"`
	AddressLine1       Optional[string]          `json:"address_line1"`
	AddressLine2       Optional[string]          `json:"address_line2"`
	City               Optional[string]          `json:"city"`
	State              Optional[string]          `json:"state"`
	PostalCode         Optional[string]          `json:"postal_code"`
	Country            Optional[string]          `json:"country"`
	DateOfBirth        Optional[Date]            `json:"date_of_birth"`
	WeddingAnniversary Optional[Date]            `json:"wedding_anniversary_date"`
	Gender             Optional[Gender]          `json:"gender"`
	Generation         Optional[string]          `json:"generation"`
	MotherID           Optional[id.PersonID]     `json:"mother_id"`
	MotherKind         Optional[ParentKind]      `json:"mother_relationship_kind"`
	FatherID           Optional[id.PersonID]     `json:"father_id"`
	FatherKind         Optional[ParentKind]      `json:"father_relationship_kind"`
	HouseholdID        Optional[id.HouseholdID]  `json:"household_id"`
	PhotoURL           Optional[string]          `json:"photo_url"`
	Deceased           Optional[bool]            `json:"deceased"`
	IsAdmin            Optional[bool]            `json:"is_admin"`
	Privacy            Optional[PrivacySettings] `json:"privacy_settings"`
}

// TouchesAddress reports whether any address field is set.
func (p *PersonPatch) TouchesAddress() bool {
	return p.AddressLine1.Set || p.AddressLine2.Set || p.City.Set ||
		p.State.Set || p.PostalCode.Set || p.Country.Set
}

// TouchesParents reports whether either parent slot is set.
func (p *PersonPatch) TouchesParents() bool {
	return p.MotherID.Set || p.MotherKind.Set || p.FatherID.Set || p.FatherKind.Set
}

// DropAddress unsets every address field.
func (p *PersonPatch) DropAddress() {
	p.AddressLine1 = Optional[string]{}
	p.AddressLine2 = Optional[string]{}
	p.City = Optional[string]{}
	p.State = Optional[string]{}
	p.PostalCode = Optional[string]{}
	p.Country = Optional[string]{}
}

// Normalize trims strings and checks enumerations.
func (p *PersonPatch) Normalize() error {
	for _, f := range []*Optional[string]{
		&p.FirstName, &p.LastName, &p.FullName, &p.Email, &p.Phone,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.PostalCode,
		&p.Country, &p.Generation, &p.PhotoURL,
	} {
		if f.Value != nil {
			v := strings.TrimSpace(*f.Value)
			f.Value = &v
		}
	}
	if p.FirstName.Set && p.FirstName.Or("") == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name must not be empty")
	}
	if p.LastName.Set && p.LastName.Or("") == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name must not be empty")
	}
	if p.Gender.Set {
		g, err := ParseGender(string(p.Gender.Or("")))
		if err != nil {
			return err
		}
		p.Gender = Some(g)
	}
	for _, k := range []*Optional[ParentKind]{&p.MotherKind, &p.FatherKind} {
		if k.Set {
			kind, err := ParseParentKind(string(k.Or("")))
			if err != nil {
				return err
			}
			*k = Some(kind)
		}
	}
	if p.Email.Value != nil && *p.Email.Value != "" && !strings.Contains(*p.Email.Value, "@") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	return nil
}

// Apply writes the set fields onto person. Derived fields are left alone.
func (p *PersonPatch) Apply(person *Person) {
	setString(&person.FirstName, p.FirstName)
	setString(&person.LastName, p.LastName)
	setString(&person.FullName, p.FullName)
	setString(&person.Email, p.Email)
	setString(&person.Phone, p.Phone)
	setString(&person.AddressLine1, p.AddressLine1)
	setString(&person.AddressLine2, p.AddressLine2)
	setString(&person.City, p.City)
	setString(&person.State, p.State)
	setString(&person.PostalCode, p.PostalCode)
	setString(&person.Country, p.Country)
	setString(&person.Generation, p.Generation)
	setString(&person.PhotoURL, p.PhotoURL)
	if p.DateOfBirth.Set {
		person.DateOfBirth = p.DateOfBirth.Value.Ptr()
	}
	if p.WeddingAnniversary.Set {
		person.WeddingAnniversary = p.WeddingAnniversary.Value.Ptr()
	}
	if p.Gender.Value != nil {
		person.Gender = *p.Gender.Value
	}
	person.Mother = applyParent(person.Mother, p.MotherID, p.MotherKind)
	person.Father = applyParent(person.Father, p.FatherID, p.FatherKind)
	if p.HouseholdID.Set {
		if p.HouseholdID.Value == nil || p.HouseholdID.Value.IsNil() {
			person.HouseholdID = nil
		} else {
			hid := *p.HouseholdID.Value
			person.HouseholdID = &hid
		}
	}
	if p.Deceased.Value != nil {
		person.Deceased = *p.Deceased.Value
	}
	if p.IsAdmin.Value != nil {
		person.IsAdmin = *p.IsAdmin.Value
	}
	if p.Privacy.Set {
		person.Privacy = p.Privacy.Or(PrivacySettings{})
	}
}

func setString(dst *string, o Optional[string]) {
	if o.Set {
		*dst = o.Or("")
	}
}

func applyParent(current *ParentLink, parentID Optional[id.PersonID], kind Optional[ParentKind]) *ParentLink {
	if parentID.Set {
		if parentID.Value == nil || parentID.Value.IsNil() {
			return nil
		}
		link := &ParentLink{ID: *parentID.Value, Kind: KindBiological}
		if current != nil && current.ID == link.ID {
			link.Kind = current.Kind
		}
		current = link
	}
	if current != nil && kind.Set {
		next := *current
		next.Kind = kind.Or(KindBiological)
		current = &next
	}
	return current
}

// SortKey orders person listings.
type SortKey string

const (
	SortName        SortKey = ""
	SortBirthday    SortKey = "birthday"
	SortAnniversary SortKey = "anniversary"
	SortAgeAsc      SortKey = "age_asc"
	SortAgeDesc     SortKey = "age_desc"
	SortGeneration  SortKey = "generation"
)

// ParseSortKey accepts the listing sort keys; empty keeps name order.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(raw)); k {
	case SortName, SortBirthday, SortAnniversary, SortAgeAsc, SortAgeDesc, SortGeneration:
		return k, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unsupported sort: "+raw)
	}
}

// ListQuery filters and orders a person listing.
type ListQuery struct {
	Search string
	Sort   SortKey
}
