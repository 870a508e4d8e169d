// Package household resolves a household's head, display name and shared
// address from a snapshot of its members. All functions are pure.
package household

import (
	"cmp"
	"slices"
	"strings"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

// ResolveHead picks the head of h among members.
//
// An explicit designee who is still a member always wins. Otherwise blood
// relatives (generation label, parent on file, or child on file) are ranked
// by generation, then parent on file, then first name, then age. Without
// blood relatives the oldest member is chosen, preferring members with a
// generation label. Remaining ties go to the lowest id so every store
// yields the same head. Returns nil only when members is empty.
func ResolveHead(h *models.Household, members []*models.Person, lineage models.LineageFacts) *models.Person {
	if len(members) == 0 {
		return nil
	}
	if h != nil && h.PrimaryContactID != nil {
		for _, m := range members {
			if m.ID == *h.PrimaryContactID {
				return m
			}
		}
	}

	var blood []*models.Person
	for _, m := range members {
		if isBloodRelative(m, lineage) {
			blood = append(blood, m)
		}
	}

	if len(blood) == 0 {
		pool := make([]*models.Person, 0, len(members))
		for _, m := range members {
			if m.Generation != "" {
				pool = append(pool, m)
			}
		}
		if len(pool) == 0 {
			pool = slices.Clone(members)
		}
		slices.SortFunc(pool, func(a, b *models.Person) int {
			if c := compareAgeDesc(a.Age, b.Age); c != 0 {
				return c
			}
			return compareID(a.ID, b.ID)
		})
		return pool[0]
	}

	slices.SortFunc(blood, func(a, b *models.Person) int {
		if c := cmp.Compare(a.GenerationNumber(), b.GenerationNumber()); c != 0 {
			return c
		}
		ap, bp := hasParents(a, lineage), hasParents(b, lineage)
		if ap != bp {
			if ap {
				return -1
			}
			return 1
		}
		if c := strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)); c != 0 {
			return c
		}
		if c := compareAgeDesc(a.Age, b.Age); c != 0 {
			return c
		}
		return compareID(a.ID, b.ID)
	})
	return blood[0]
}

func isBloodRelative(p *models.Person, lineage models.LineageFacts) bool {
	return p.Generation != "" || hasParents(p, lineage) || lineage[p.ID].HasChildren
}

// hasParents combines the edge table with the person's own parent links.
func hasParents(p *models.Person, lineage models.LineageFacts) bool {
	return lineage[p.ID].HasParents || p.Mother != nil || p.Father != nil
}

// compareAgeDesc orders older first with unknown ages last.
func compareAgeDesc(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}

func compareID(a, b id.PersonID) int {
	return strings.Compare(a.String(), b.String())
}

// DisplayName is "{first} {last} Household" for a resolved head, else the
// stored household name.
func DisplayName(h *models.Household, head *models.Person) string {
	if head != nil {
		return head.FirstName + " " + head.LastName + " Household"
	}
	if h == nil {
		return ""
	}
	return h.Name
}

// Address renders the household address from the head when the head has
// one, else from the first member that does. Empty when nobody has an
// address.
func Address(members []*models.Person, head *models.Person) string {
	if head != nil && head.HasAddress() {
		return FormatAddress(head)
	}
	for _, m := range members {
		if m.HasAddress() {
			return FormatAddress(m)
		}
	}
	return ""
}

// FormatAddress joins address lines, "city, state, postal" and a
// non-default country with newlines.
func FormatAddress(p *models.Person) string {
	var parts []string
	if p.AddressLine1 != "" {
		parts = append(parts, p.AddressLine1)
	}
	if p.AddressLine2 != "" {
		parts = append(parts, p.AddressLine2)
	}
	var locality []string
	for _, s := range []string{p.City, p.State, p.PostalCode} {
		if s != "" {
			locality = append(locality, s)
		}
	}
	if len(locality) > 0 {
		parts = append(parts, strings.Join(locality, ", "))
	}
	if p.Country != "" && p.Country != models.DefaultCountry {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, "\n")
}

// IsHead reports whether personID heads h: the explicit designee when one is
// set, else the sole remaining member. A person without a household heads
// their own, so a nil h returns true.
func IsHead(h *models.Household, personID id.PersonID, memberCount int) bool {
	if h == nil {
		return true
	}
	if h.PrimaryContactID != nil {
		return *h.PrimaryContactID == personID
	}
	return memberCount == 1
}
