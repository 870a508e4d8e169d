// Package importer loads a family directory from CSV. Rows reference each
// other by "first last" name for parents and spouses.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/audit"
)

const dateLayout = "2006-01-02"

type PersonStore interface {
	Create(ctx context.Context, p *models.Person) error
	Update(ctx context.Context, p *models.Person) error
}

type HouseholdStore interface {
	Create(ctx context.Context, h *models.Household) error
	Update(ctx context.Context, h *models.Household) error
}

type MaritalStore interface {
	SetSpouse(ctx context.Context, personID, spouseID id.PersonID, today time.Time) (*models.MaritalRelationship, error)
	ActiveSpouse(ctx context.Context, personID id.PersonID) (id.PersonID, bool, error)
}

type RelationshipStore interface {
	ReplaceParents(ctx context.Context, childID id.PersonID, edges []models.ParentChildEdge) error
}

// Stores are the directory stores an import writes to.
type Stores struct {
	People        PersonStore
	Households    HouseholdStore
	Marriages     MaritalStore
	Relationships RelationshipStore
}

// TxRunner runs fn in one transaction; stores called with its context join it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result summarizes an import. Warnings name rows whose references or dates
// could not be resolved; they do not abort the import.
type Result struct {
	Persons     int
	Households  int
	ParentLinks int
	Marriages   int
	Warnings    []string
}

type Importer struct {
	stores         Stores
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	now            func() time.Time
}

type Option func(*Importer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(i *Importer) { i.auditPublisher = publisher }
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

func New(stores Stores, tx TxRunner, opts ...Option) *Importer {
	i := &Importer{stores: stores, tx: tx, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.DiscardHandler)
	}
	return i
}

// row is a record after the first pass.
type row struct {
	record Record
	person *models.Person
}

// Import creates every person, then links parents, spouses and household
// contacts, all in one transaction.
func (i *Importer) Import(ctx context.Context, records []Record) (*Result, error) {
	result := &Result{}
	genders := inferGenders(records)

	err := i.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := i.now()
		households := make(map[string]*models.Household)
		var householdOrder []string
		byName := make(map[string]*models.Person, len(records))
		rows := make([]row, 0, len(records))

		for _, rec := range records {
			var household *models.Household
			if name := rec.Get(colHousehold); name != "" {
				household = households[name]
				if household == nil {
					household = &models.Household{
						ID:        id.NewHouseholdID(),
						Name:      name,
						CreatedAt: now,
						UpdatedAt: now,
					}
					if err := i.stores.Households.Create(ctx, household); err != nil {
						return fmt.Errorf("create household %q: %w", name, err)
					}
					households[name] = household
					householdOrder = append(householdOrder, name)
					result.Households++
				}
			}

			p, warnings := i.newPerson(rec, genders, now)
			result.Warnings = append(result.Warnings, warnings...)
			if p.Gender == "" {
				return fmt.Errorf("line %d: gender is required for %s", rec.Line, p.Name())
			}
			if household != nil {
				hid := household.ID
				p.HouseholdID = &hid
			}
			if err := i.stores.People.Create(ctx, p); err != nil {
				return fmt.Errorf("line %d: create %s: %w", rec.Line, p.Name(), err)
			}
			if _, dup := byName[rec.Name()]; dup {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: duplicate name %s; references resolve to this row", rec.Line, p.Name()))
			}
			byName[rec.Name()] = p
			rows = append(rows, row{record: rec, person: p})
			result.Persons++
		}

		lineage := make(parentGraph, len(rows))
		for _, r := range rows {
			links, warnings, err := i.linkParents(ctx, r, byName, lineage)
			if err != nil {
				return err
			}
			result.ParentLinks += links
			result.Warnings = append(result.Warnings, warnings...)

			married, warning, err := i.linkSpouse(ctx, r, byName, now)
			if err != nil {
				return err
			}
			if married {
				result.Marriages++
			}
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
		}

		for _, name := range householdOrder {
			if err := i.assignPrimaryContact(ctx, households[name], rows); err != nil {
				return err
			}
		}

		return i.logImported(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		i.logger.WarnContext(ctx, "import warning", "warning", w)
	}
	return result, nil
}

func (i *Importer) newPerson(rec Record, genders map[string]models.Gender, now time.Time) (*models.Person, []string) {
	var warnings []string
	p := &models.Person{
		ID:           id.NewPersonID(),
		FirstName:    rec.Get(colFirstName),
		LastName:     rec.Get(colLastName),
		FullName:     rec.Get(colFullName),
		Email:        rec.Get(colEmail),
		Phone:        rec.Get(colPhone),
		AddressLine1: rec.Get(colAddress1),
		AddressLine2: rec.Get(colAddress2),
		City:         rec.Get(colCity),
		State:        rec.Get(colState),
		PostalCode:   rec.Get(colPostalCode),
		Country:      rec.Get(colCountry),
		Generation:   rec.Get(colGeneration),
		PhotoURL:     rec.Get(colPhotoURL),
		Deceased:     parseBool(rec.Get(colDeceased)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.FullName == "" {
		p.FullName = p.FirstName + " " + p.LastName
	}
	if p.Country == "" {
		p.Country = models.DefaultCountry
	}
	if g, err := models.ParseGender(rec.Get(colGender)); err == nil {
		p.Gender = g
	} else {
		p.Gender = genders[rec.Name()]
	}

	if raw := rec.Get(colBirthDate); raw != "" {
		if dob, err := time.Parse(dateLayout, raw); err == nil {
			age := models.YearsSince(dob, now)
			p.DateOfBirth, p.Age = &dob, &age
		} else {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid date_of_birth %q", rec.Line, raw))
		}
	}
	if raw := rec.Get(colAnniversary); raw != "" {
		if ann, err := time.Parse(dateLayout, raw); err == nil {
			years := models.YearsSince(ann, now)
			p.WeddingAnniversary, p.YearsMarried = &ann, &years
		} else {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid wedding_anniversary_date %q", rec.Line, raw))
		}
	}
	return p, warnings
}

// parentGraph holds the parent links accepted so far in an import, keyed by child.
type parentGraph map[id.PersonID][]id.PersonID

// descendsFrom reports whether ancestor is reachable from person by
// following parent links.
func (g parentGraph) descendsFrom(person, ancestor id.PersonID) bool {
	visited := make(map[id.PersonID]struct{})
	frontier := []id.PersonID{person}
	for len(frontier) > 0 {
		var next []id.PersonID
		for _, pid := range frontier {
			for _, parent := range g[pid] {
				if parent == ancestor {
					return true
				}
				if _, seen := visited[parent]; seen {
					continue
				}
				visited[parent] = struct{}{}
				next = append(next, parent)
			}
		}
		frontier = next
	}
	return false
}

// linkParents records the row's mother and father. A link that would make
// the row its own ancestor is refused with a warning.
func (i *Importer) linkParents(ctx context.Context, r row, byName map[string]*models.Person, lineage parentGraph) (int, []string, error) {
	var warnings []string
	var edges []models.ParentChildEdge
	p := r.person

	for _, slot := range []struct {
		column string
		kind   string
		link   **models.ParentLink
	}{
		{colMother, "mother", &p.Mother},
		{colFather, "father", &p.Father},
	} {
		name := r.record.Get(slot.column)
		if name == "" {
			continue
		}
		parent := byName[nameKey(name)]
		if parent == nil || parent.ID == p.ID {
			warnings = append(warnings, fmt.Sprintf("line %d: %s not found: %s", r.record.Line, slot.kind, name))
			continue
		}
		if lineage.descendsFrom(parent.ID, p.ID) {
			warnings = append(warnings, fmt.Sprintf("line %d: %s %s would make %s their own ancestor", r.record.Line, slot.kind, name, p.Name()))
			continue
		}
		lineage[p.ID] = append(lineage[p.ID], parent.ID)
		*slot.link = &models.ParentLink{ID: parent.ID, Kind: models.KindBiological}
		edges = append(edges, models.ParentChildEdge{ParentID: parent.ID, ChildID: p.ID, Kind: models.KindBiological})
	}
	if len(edges) == 0 {
		return 0, warnings, nil
	}

	if err := i.stores.People.Update(ctx, p); err != nil {
		return 0, nil, fmt.Errorf("line %d: link parents of %s: %w", r.record.Line, p.Name(), err)
	}
	if err := i.stores.Relationships.ReplaceParents(ctx, p.ID, edges); err != nil {
		return 0, nil, fmt.Errorf("line %d: link parents of %s: %w", r.record.Line, p.Name(), err)
	}
	return len(edges), warnings, nil
}

// linkSpouse marries the row to its named spouse unless the pair is already
// active from the spouse's own row.
func (i *Importer) linkSpouse(ctx context.Context, r row, byName map[string]*models.Person, now time.Time) (bool, string, error) {
	name := r.record.Get(colSpouse)
	if name == "" {
		return false, "", nil
	}
	spouse := byName[nameKey(name)]
	if spouse == nil || spouse.ID == r.person.ID {
		return false, fmt.Sprintf("line %d: spouse not found: %s", r.record.Line, name), nil
	}

	current, ok, err := i.stores.Marriages.ActiveSpouse(ctx, r.person.ID)
	if err != nil {
		return false, "", fmt.Errorf("line %d: look up spouse: %w", r.record.Line, err)
	}
	if ok && current == spouse.ID {
		return false, "", nil
	}
	if _, err := i.stores.Marriages.SetSpouse(ctx, r.person.ID, spouse.ID, now); err != nil {
		return false, "", fmt.Errorf("line %d: marry %s: %w", r.record.Line, r.person.Name(), err)
	}
	return true, "", nil
}

// assignPrimaryContact picks the first living member in file order, or the
// first member when all are deceased.
func (i *Importer) assignPrimaryContact(ctx context.Context, h *models.Household, rows []row) error {
	var contact *models.Person
	for _, r := range rows {
		p := r.person
		if p.HouseholdID == nil || *p.HouseholdID != h.ID {
			continue
		}
		if contact == nil || (contact.Deceased && !p.Deceased) {
			contact = p
		}
		if !contact.Deceased {
			break
		}
	}
	if contact == nil {
		return nil
	}
	contactID := contact.ID
	h.PrimaryContactID = &contactID
	h.UpdatedAt = i.now()
	if err := i.stores.Households.Update(ctx, h); err != nil {
		return fmt.Errorf("set primary contact of %q: %w", h.Name, err)
	}
	return nil
}

// inferGenders assigns Female to anyone named as a mother and Male to anyone
// named as a father, for rows without a gender column value.
func inferGenders(records []Record) map[string]models.Gender {
	out := make(map[string]models.Gender)
	for _, rec := range records {
		if name := rec.Get(colMother); name != "" {
			out[nameKey(name)] = models.GenderFemale
		}
		if name := rec.Get(colFather); name != "" {
			out[nameKey(name)] = models.GenderMale
		}
	}
	return out
}

func parseBool(raw string) bool {
	if raw == "" {
		return false
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return strings.EqualFold(raw, "yes")
}

func (i *Importer) logImported(ctx context.Context, result *Result) error {
	i.logger.InfoContext(ctx, string(audit.EventPeopleImported),
		"persons", result.Persons,
		"households", result.Households,
		"parent_links", result.ParentLinks,
		"marriages", result.Marriages,
		"warnings", len(result.Warnings),
		"event", string(audit.EventPeopleImported),
		"log_type", "audit",
	)
	if i.auditPublisher == nil {
		return nil
	}
	return i.auditPublisher.Emit(ctx, audit.Event{
		Action: string(audit.EventPeopleImported),
		Reason: fmt.Sprintf("%d persons, %d households", result.Persons, result.Households),
	})
}
