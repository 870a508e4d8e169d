package models

import (
	id "familydir/pkg/domain"
)

// PrivacyField names one hideable group of profile fields.
type PrivacyField string

const (
	PrivacyPhoto         PrivacyField = "photo"
	PrivacyEmail         PrivacyField = "email"
	PrivacyPhone         PrivacyField = "phone"
	PrivacyAddress       PrivacyField = "address"
	PrivacyGeneration    PrivacyField = "generation"
	PrivacyAge           PrivacyField = "age"
	PrivacyBirthday      PrivacyField = "birthday"
	PrivacyAnniversary   PrivacyField = "anniversary"
	PrivacyYearsMarried  PrivacyField = "years_married"
	PrivacyHouseholdName PrivacyField = "household_name"
)

// PrivacySettings hides the toggled field groups from viewers listed in
// RestrictedPeople. The JSON shape matches the stored privacy column.
type PrivacySettings struct {
	Photo            bool          `json:"photo,omitempty"`
	Email            bool          `json:"email,omitempty"`
	Phone            bool          `json:"phone,omitempty"`
	Address          bool          `json:"address,omitempty"`
	Generation       bool          `json:"generation,omitempty"`
	Age              bool          `json:"age,omitempty"`
	Birthday         bool          `json:"birthday,omitempty"`
	Anniversary      bool          `json:"anniversary,omitempty"`
	YearsMarried     bool          `json:"years_married,omitempty"`
	HouseholdName    bool          `json:"household_name,omitempty"`
	RestrictedPeople []id.PersonID `json:"restricted_people,omitempty"`
}

// Enabled lists the toggles that are switched on, in declaration order.
func (s PrivacySettings) Enabled() []PrivacyField {
	toggles := []struct {
		on    bool
		field PrivacyField
	}{
		{s.Photo, PrivacyPhoto},
		{s.Email, PrivacyEmail},
		{s.Phone, PrivacyPhone},
		{s.Address, PrivacyAddress},
		{s.Generation, PrivacyGeneration},
		{s.Age, PrivacyAge},
		{s.Birthday, PrivacyBirthday},
		{s.Anniversary, PrivacyAnniversary},
		{s.YearsMarried, PrivacyYearsMarried},
		{s.HouseholdName, PrivacyHouseholdName},
	}
	var out []PrivacyField
	for _, t := range toggles {
		if t.on {
			out = append(out, t.field)
		}
	}
	return out
}

// Restricts reports whether viewer is in the restricted set.
func (s PrivacySettings) Restricts(viewer id.PersonID) bool {
	for _, r := range s.RestrictedPeople {
		if r == viewer {
			return true
		}
	}
	return false
}
