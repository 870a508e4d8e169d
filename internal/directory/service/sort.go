package service

import (
	"cmp"
	"slices"
	"time"

	"familydir/internal/directory/models"
)

// computeAges refreshes stored Age and YearsMarried from their dates. A
// missing date leaves the stored value untouched.
func computeAges(p *models.Person, now time.Time) {
	if p.DateOfBirth != nil {
		age := models.YearsSince(*p.DateOfBirth, now)
		p.Age = &age
	}
	if p.WeddingAnniversary != nil {
		years := models.YearsSince(*p.WeddingAnniversary, now)
		p.YearsMarried = &years
	}
}

// deriveAges sets the view's ages as of now.
func deriveAges(view *models.PersonView, p *models.Person, now time.Time) {
	if p.DateOfBirth != nil {
		age := models.YearsSince(*p.DateOfBirth, now)
		view.Age = &age
	}
	if p.WeddingAnniversary != nil {
		years := models.YearsSince(*p.WeddingAnniversary, now)
		view.YearsMarried = &years
	}
}

// sortViews orders views in place. Name order is the store's order; every
// other key puts missing values last and keeps ties stable.
func sortViews(views []*models.PersonView, key models.SortKey, now time.Time) {
	var compare func(a, b *models.PersonView) int
	switch key {
	case models.SortBirthday:
		compare = func(a, b *models.PersonView) int {
			return compareNil(daysUntil(a.DateOfBirth, now), daysUntil(b.DateOfBirth, now), cmp.Compare[int])
		}
	case models.SortAnniversary:
		compare = func(a, b *models.PersonView) int {
			return compareNil(daysUntil(a.WeddingAnniversary, now), daysUntil(b.WeddingAnniversary, now), cmp.Compare[int])
		}
	case models.SortAgeAsc:
		compare = func(a, b *models.PersonView) int {
			return compareNil(a.Age, b.Age, cmp.Compare[int])
		}
	case models.SortAgeDesc:
		compare = func(a, b *models.PersonView) int {
			return compareNil(a.Age, b.Age, func(x, y int) int { return cmp.Compare(y, x) })
		}
	case models.SortGeneration:
		compare = func(a, b *models.PersonView) int {
			return cmp.Compare(generationOf(a), generationOf(b))
		}
	default:
		return
	}
	slices.SortStableFunc(views, compare)
}

func compareNil(a, b *int, compare func(x, y int) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return compare(*a, *b)
	}
}

// daysUntil counts days from now to the next anniversary of date, zero when
// it falls today. Feb 29 dates fall on Mar 1 in common years.
func daysUntil(date *time.Time, now time.Time) *int {
	if date == nil {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next := time.Date(today.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}
	days := int(next.Sub(today).Hours() / 24)
	return &days
}

func generationOf(v *models.PersonView) int {
	if v.Generation == nil {
		return models.UnlabeledGeneration
	}
	return models.ParseGeneration(*v.Generation)
}
