// Package privacy hides profile fields from restricted viewers.
package privacy

import (
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/strings"
)

// Apply clears the fields owner has toggled off for viewerID. The view is left
// untouched when the viewer is the owner, when no one is restricted, or when
// the viewer is not in the restricted set.
func Apply(view *models.PersonView, owner models.PrivacySettings, viewerID id.PersonID) *models.PersonView {
	if view == nil || view.ID == viewerID || len(owner.RestrictedPeople) == 0 || !owner.Restricts(viewerID) {
		return view
	}
	for _, field := range owner.Enabled() {
		hide(view, field)
	}
	return view
}

func hide(view *models.PersonView, field models.PrivacyField) {
	switch field {
	case models.PrivacyPhoto:
		view.PhotoURL = nil
	case models.PrivacyEmail:
		view.Email = nil
	case models.PrivacyPhone:
		view.Phone = nil
	case models.PrivacyAddress:
		view.Address = nil
		view.HouseholdAddress = nil
	case models.PrivacyGeneration:
		view.Generation = nil
	case models.PrivacyAge:
		view.Age = nil
	case models.PrivacyBirthday:
		view.DateOfBirth = nil
	case models.PrivacyAnniversary:
		view.WeddingAnniversary = nil
	case models.PrivacyYearsMarried:
		view.YearsMarried = nil
	case models.PrivacyHouseholdName:
		view.HouseholdNameHidden = true
	}
}

// Normalize drops duplicate and nil restricted viewers, and the owner itself.
func Normalize(owner id.PersonID, s models.PrivacySettings) models.PrivacySettings {
	kept := make([]id.PersonID, 0, len(s.RestrictedPeople))
	for _, pid := range strings.Dedupe(s.RestrictedPeople) {
		if pid.IsNil() || pid == owner {
			continue
		}
		kept = append(kept, pid)
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.RestrictedPeople = kept
	return s
}
