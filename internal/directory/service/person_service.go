package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"familydir/internal/directory/household"
	"familydir/internal/directory/models"
	"familydir/internal/directory/privacy"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/requestcontext"
)

// listSpouseConcurrency bounds parallel spouse lookups in List.
const listSpouseConcurrency = 8

// PersonService serves person profiles and edits.
type PersonService struct {
	people         PersonStore
	households     HouseholdStore
	marriages      MaritalStore
	relationships  RelationshipStore
	labeler        Labeler
	authority      Authority
	logger         *slog.Logger
	auditPublisher AuditPublisher
	tx             TxRunner
}

func NewPersonService(stores Stores, labeler Labeler, authority Authority, opts ...Option) *PersonService {
	cfg := newConfig(opts)
	return &PersonService{
		people:         stores.People,
		households:     stores.Households,
		marriages:      stores.Marriages,
		relationships:  stores.Relationships,
		labeler:        labeler,
		authority:      authority,
		logger:         cfg.logger,
		auditPublisher: cfg.auditPublisher,
		tx:             cfg.tx,
	}
}

// Get renders target's profile for actor: derived ages, spouse, parents and
// children, edit permission, household head status and the relationship
// label, with the target's privacy settings applied.
func (s *PersonService) Get(ctx context.Context, actor, targetID id.PersonID) (*models.PersonView, error) {
	target, err := s.people.FindByID(ctx, targetID)
	if err != nil {
		return nil, wrapStoreErr(err, "person", "load person")
	}
	view := models.NewPersonView(target)
	deriveAges(view, target, requestcontext.Now(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		spouse, err := s.spouseSummary(gctx, targetID)
		view.Spouse = spouse
		return err
	})
	g.Go(func() error {
		parents, err := s.linked(gctx, targetID, s.relationships.ParentsOf, func(e models.ParentChildEdge) id.PersonID { return e.ParentID })
		view.Parents = parents
		return err
	})
	g.Go(func() error {
		children, err := s.linked(gctx, targetID, s.relationships.ChildrenOf, func(e models.ParentChildEdge) id.PersonID { return e.ChildID })
		view.Children = children
		return err
	})
	g.Go(func() error {
		isHead, address, err := s.householdInfo(gctx, target)
		view.IsHeadOfHousehold = isHead
		view.HouseholdAddress = address
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person details")
	}

	view.CanEdit = s.canEditOrDeny(ctx, actor, targetID)
	view.Relationship = s.label(ctx, actor, targetID)
	if actor == targetID {
		settings := target.Privacy
		view.Privacy = &settings
	}
	return privacy.Apply(view, target.Privacy, actor), nil
}

// Me renders the actor's own profile.
func (s *PersonService) Me(ctx context.Context, actor id.PersonID) (*models.PersonView, error) {
	return s.Get(ctx, actor, actor)
}

// Relationship returns the label of target as seen by actor. Lookup failures
// degrade to no label.
func (s *PersonService) Relationship(ctx context.Context, actor, targetID id.PersonID) (models.Label, error) {
	if _, err := s.people.FindByID(ctx, targetID); err != nil {
		return models.LabelNone, wrapStoreErr(err, "person", "load person")
	}
	return s.label(ctx, actor, targetID), nil
}

// List renders every person for actor with spouse and household status,
// filtered by a case-insensitive name or email search and ordered by sort.
// Search and sort see only the fields left after privacy filtering.
func (s *PersonService) List(ctx context.Context, actor id.PersonID, query models.ListQuery) ([]*models.PersonView, error) {
	persons, err := s.people.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "person", "list persons")
	}
	households, err := s.households.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "household", "list households")
	}

	byID := make(map[id.PersonID]*models.Person, len(persons))
	members := make(map[id.HouseholdID][]*models.Person)
	for _, p := range persons {
		byID[p.ID] = p
		if p.HouseholdID != nil {
			members[*p.HouseholdID] = append(members[*p.HouseholdID], p)
		}
	}
	householdByID := make(map[id.HouseholdID]*models.Household, len(households))
	for _, h := range households {
		householdByID[h.ID] = h
	}

	spouses := make([]*models.PersonSummary, len(persons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listSpouseConcurrency)
	for i, p := range persons {
		g.Go(func() error {
			spouseID, ok, err := s.marriages.ActiveSpouse(gctx, p.ID)
			if err != nil || !ok {
				return err
			}
			if spouse, found := byID[spouseID]; found {
				summary := models.Summarize(spouse)
				spouses[i] = &summary
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouses")
	}

	now := requestcontext.Now(ctx)
	search := strings.ToLower(strings.TrimSpace(query.Search))
	views := make([]*models.PersonView, 0, len(persons))
	for i, p := range persons {
		view := models.NewPersonView(p)
		deriveAges(view, p, now)
		view.Spouse = spouses[i]
		if p.HouseholdID == nil {
			view.IsHeadOfHousehold = true
		} else if h, ok := householdByID[*p.HouseholdID]; ok {
			view.IsHeadOfHousehold, view.HouseholdAddress = headAndAddress(h, p, members[h.ID])
		}
		if actor == p.ID {
			settings := p.Privacy
			view.Privacy = &settings
		}
		view = privacy.Apply(view, p.Privacy, actor)
		if search != "" && !matches(view, search) {
			continue
		}
		views = append(views, view)
	}
	sortViews(views, query.Sort, now)
	return views, nil
}

// Create adds a person. Only admins may create.
func (s *PersonService) Create(ctx context.Context, actor id.PersonID, patch models.PersonPatch) (*models.PersonView, error) {
	if err := s.requireAdmin(ctx, actor, "create contacts"); err != nil {
		return nil, err
	}
	if err := patch.Normalize(); err != nil {
		return nil, err
	}
	if patch.FirstName.Or("") == "" || patch.LastName.Or("") == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first_name and last_name are required")
	}
	if !patch.Gender.Set {
		return nil, dErrors.New(dErrors.CodeValidation, "gender is required")
	}

	now := requestcontext.Now(ctx)
	p := &models.Person{
		ID:        id.NewPersonID(),
		Country:   models.DefaultCountry,
		CreatedAt: now,
		UpdatedAt: now,
	}
	patch.Apply(p)
	if p.Country == "" {
		p.Country = models.DefaultCountry
	}
	computeAges(p, now)
	p.Privacy = privacy.Normalize(p.ID, p.Privacy)

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkReferences(txCtx, p, true); err != nil {
			return err
		}
		if err := s.people.Create(txCtx, p); err != nil {
			return wrapEmailConflict(err, "create person")
		}
		if err := s.relationships.ReplaceParents(txCtx, p.ID, parentEdges(p)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record parents")
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventPersonCreated,
			"person_id", p.ID.String(), "email", p.Email)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, p.ID)
}

// Update applies patch to target. Non-heads cannot change address fields and
// only admins may change the admin flag. When a household head changes
// address, the new address is copied to every other member the actor may
// edit, in the same transaction.
func (s *PersonService) Update(ctx context.Context, actor, targetID id.PersonID, patch models.PersonPatch) (*models.PersonView, error) {
	if err := patch.Normalize(); err != nil {
		return nil, err
	}
	if _, err := s.people.FindByID(ctx, targetID); err != nil {
		return nil, wrapStoreErr(err, "person", "load person")
	}
	if err := s.requireCanEdit(ctx, actor, targetID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.people.FindByID(txCtx, targetID)
		if err != nil {
			return wrapStoreErr(err, "person", "load person")
		}
		h, members, err := s.householdOf(txCtx, current)
		if err != nil {
			return err
		}
		isHead := household.IsHead(h, current.ID, len(members))
		if !isHead {
			patch.DropAddress()
		}
		if patch.IsAdmin.Set && patch.IsAdmin.Or(false) != current.IsAdmin {
			if err := s.requireAdmin(txCtx, actor, "change administrator access"); err != nil {
				return err
			}
		}

		updated := current.Clone()
		patch.Apply(updated)
		computeAges(updated, now)
		updated.Privacy = privacy.Normalize(updated.ID, updated.Privacy)
		updated.UpdatedAt = now

		if err := s.checkReferences(txCtx, updated, patch.TouchesParents()); err != nil {
			return err
		}
		if err := s.people.Update(txCtx, updated); err != nil {
			return wrapEmailConflict(err, "update person")
		}
		if patch.TouchesParents() {
			if err := s.relationships.ReplaceParents(txCtx, updated.ID, parentEdges(updated)); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record parents")
			}
		}
		if err := logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventPersonUpdated,
			"person_id", updated.ID.String()); err != nil {
			return err
		}
		if updated.IsAdmin != current.IsAdmin {
			if err := logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventAdminFlagChanged,
				"person_id", updated.ID.String(), "email", updated.Email); err != nil {
				return err
			}
		}

		if !sameHousehold(current.HouseholdID, updated.HouseholdID) {
			// A head leaving stops heading the old household and takes the
			// new address alone.
			if current.HouseholdID != nil {
				if err := s.households.ClearPrimaryContact(txCtx, current.ID); err != nil {
					return wrapStoreErr(err, "household", "clear household head")
				}
			}
			return nil
		}
		if isHead && h != nil && patch.TouchesAddress() {
			return s.propagateAddress(txCtx, actor, updated, members)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, targetID)
}

func (s *PersonService) propagateAddress(ctx context.Context, actor id.PersonID, head *models.Person, members []*models.Person) error {
	address := head.Address()
	copied := 0
	for _, m := range members {
		if m.ID == head.ID {
			continue
		}
		ok, err := s.authority.CanEdit(ctx, actor, m.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check edit permission")
		}
		if !ok {
			continue
		}
		m.SetAddress(address)
		m.UpdatedAt = head.UpdatedAt
		if err := s.people.Update(ctx, m); err != nil {
			return wrapStoreErr(err, "person", "propagate address")
		}
		copied++
	}
	if copied == 0 {
		return nil
	}
	return logAudit(ctx, s.logger, s.auditPublisher, actor, audit.EventAddressPropagated,
		"person_id", head.ID.String(), "household_id", head.HouseholdID.String(), "members", copied)
}

// Delete removes target with its marital and parent-child records. Only
// admins may delete.
func (s *PersonService) Delete(ctx context.Context, actor, targetID id.PersonID) error {
	if err := s.requireAdmin(ctx, actor, "delete contacts"); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		target, err := s.people.FindByID(txCtx, targetID)
		if err != nil {
			return wrapStoreErr(err, "person", "load person")
		}
		if err := s.marriages.DeleteByPerson(txCtx, targetID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete marriages")
		}
		if err := s.relationships.DeleteByPerson(txCtx, targetID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete relationships")
		}
		if err := s.households.ClearPrimaryContact(txCtx, targetID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear household head")
		}
		if err := s.people.Delete(txCtx, targetID); err != nil {
			return wrapStoreErr(err, "person", "delete person")
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventPersonDeleted,
			"person_id", targetID.String(), "email", target.Email)
	})
}

// SetSpouse marries personID to spouseID, closing any prior marriage of
// either as of today.
func (s *PersonService) SetSpouse(ctx context.Context, actor, personID, spouseID id.PersonID) error {
	if spouseID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "spouse id is required")
	}
	if personID == spouseID {
		return dErrors.New(dErrors.CodeValidation, "a person cannot be their own spouse")
	}
	if _, err := s.people.FindByID(ctx, personID); err != nil {
		return wrapStoreErr(err, "person", "load person")
	}
	if _, err := s.people.FindByID(ctx, spouseID); err != nil {
		return wrapStoreErr(err, "spouse", "load spouse")
	}
	if err := s.requireCanEdit(ctx, actor, personID); err != nil {
		return err
	}

	today := requestcontext.Now(ctx)
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.marriages.SetSpouse(txCtx, personID, spouseID, today); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set spouse")
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventSpouseSet,
			"person_id", personID.String(), "spouse_id", spouseID.String())
	})
}

// RemoveSpouse closes personID's active marriage as of today.
func (s *PersonService) RemoveSpouse(ctx context.Context, actor, personID id.PersonID) error {
	if _, err := s.people.FindByID(ctx, personID); err != nil {
		return wrapStoreErr(err, "person", "load person")
	}
	if err := s.requireCanEdit(ctx, actor, personID); err != nil {
		return err
	}

	today := requestcontext.Now(ctx)
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		removed, err := s.marriages.RemoveSpouse(txCtx, personID, today)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove spouse")
		}
		if !removed {
			return nil
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventSpouseRemoved,
			"person_id", personID.String())
	})
}

// RecalculateAges refreshes stored ages and years married from dates.
// It returns how many records changed.
func (s *PersonService) RecalculateAges(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)
	changed := 0
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		persons, err := s.people.List(txCtx)
		if err != nil {
			return wrapStoreErr(err, "person", "list persons")
		}
		for _, p := range persons {
			before := p.Clone()
			computeAges(p, now)
			if equalInt(before.Age, p.Age) && equalInt(before.YearsMarried, p.YearsMarried) {
				continue
			}
			p.UpdatedAt = now
			if err := s.people.Update(txCtx, p); err != nil {
				return wrapStoreErr(err, "person", "update person")
			}
			changed++
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, id.PersonID{}, audit.EventAgesRecalculated,
			"updated", changed)
	})
	return changed, err
}

// SetAdmin grants or revokes administrator access by email.
func (s *PersonService) SetAdmin(ctx context.Context, email string, isAdmin bool) (*models.Person, error) {
	var p *models.Person
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.people.FindByEmail(txCtx, email)
		if err != nil {
			return wrapStoreErr(err, "person", "find person by email")
		}
		p = found
		if p.IsAdmin == isAdmin {
			return nil
		}
		p.IsAdmin = isAdmin
		p.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.people.Update(txCtx, p); err != nil {
			return wrapStoreErr(err, "person", "update person")
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, id.PersonID{}, audit.EventAdminFlagChanged,
			"person_id", p.ID.String(), "email", p.Email)
	})
	return p, err
}

func (s *PersonService) requireAdmin(ctx context.Context, actor id.PersonID, action string) error {
	p, err := s.people.FindByID(ctx, actor)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return wrapStoreErr(err, "person", "load actor")
	}
	if p == nil || !p.IsAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only administrators can "+action)
	}
	return nil
}

func (s *PersonService) requireCanEdit(ctx context.Context, actor, targetID id.PersonID) error {
	return requireCanEdit(ctx, s.authority, s.logger, s.auditPublisher, actor, targetID)
}

func (s *PersonService) canEditOrDeny(ctx context.Context, actor, targetID id.PersonID) bool {
	ok, err := s.authority.CanEdit(ctx, actor, targetID)
	if err != nil {
		s.logger.WarnContext(ctx, "edit authority lookup failed; denying",
			"actor_id", actor.String(), "person_id", targetID.String(), "error", err)
		return false
	}
	return ok
}

func (s *PersonService) label(ctx context.Context, viewer, target id.PersonID) models.Label {
	if s.labeler == nil {
		return models.LabelNone
	}
	label, err := s.labeler.Label(ctx, viewer, target)
	if err != nil {
		s.logger.WarnContext(ctx, "relationship label lookup failed",
			"viewer_id", viewer.String(), "person_id", target.String(), "error", err)
		return models.LabelNone
	}
	return label
}

// checkReferences rejects a household that does not exist and, when
// checkParents is set, a parent that is missing, is p, or descends from p.
func (s *PersonService) checkReferences(ctx context.Context, p *models.Person, checkParents bool) error {
	var parents []models.ParentLink
	if checkParents {
		parents = p.Parents()
	}
	for _, link := range parents {
		if link.ID == p.ID {
			return dErrors.New(dErrors.CodeInvariantViolation, "a person cannot be their own parent")
		}
		if _, err := s.people.FindByID(ctx, link.ID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, "parent not found")
			}
			return wrapStoreErr(err, "person", "load parent")
		}
		descends, err := s.authority.IsAncestor(ctx, p.ID, link.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ancestry")
		}
		if descends {
			return dErrors.New(dErrors.CodeInvariantViolation, "a person cannot be their own ancestor")
		}
	}
	if p.HouseholdID != nil {
		if _, err := s.households.FindByID(ctx, *p.HouseholdID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, "household not found")
			}
			return wrapStoreErr(err, "household", "load household")
		}
	}
	return nil
}

func (s *PersonService) householdOf(ctx context.Context, p *models.Person) (*models.Household, []*models.Person, error) {
	if p.HouseholdID == nil {
		return nil, nil, nil
	}
	h, err := s.households.FindByID(ctx, *p.HouseholdID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, wrapStoreErr(err, "household", "load household")
	}
	members, err := s.people.FindByHousehold(ctx, h.ID)
	if err != nil {
		return nil, nil, wrapStoreErr(err, "person", "load household members")
	}
	return h, members, nil
}

func (s *PersonService) householdInfo(ctx context.Context, p *models.Person) (bool, *string, error) {
	if p.HouseholdID == nil {
		return true, nil, nil
	}
	h, members, err := s.householdOf(ctx, p)
	if err != nil || h == nil {
		return false, nil, err
	}
	isHead, address := headAndAddress(h, p, members)
	return isHead, address, nil
}

func (s *PersonService) spouseSummary(ctx context.Context, personID id.PersonID) (*models.PersonSummary, error) {
	spouseID, ok, err := s.marriages.ActiveSpouse(ctx, personID)
	if err != nil || !ok {
		return nil, err
	}
	spouse, err := s.people.FindByID(ctx, spouseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	summary := models.Summarize(spouse)
	return &summary, nil
}

func (s *PersonService) linked(
	ctx context.Context,
	personID id.PersonID,
	load func(context.Context, id.PersonID) ([]models.ParentChildEdge, error),
	other func(models.ParentChildEdge) id.PersonID,
) ([]models.PersonSummary, error) {
	edges, err := load(ctx, personID)
	if err != nil || len(edges) == 0 {
		return nil, err
	}
	ids := make([]id.PersonID, len(edges))
	kinds := make(map[id.PersonID]models.ParentKind, len(edges))
	for i, e := range edges {
		ids[i] = other(e)
		kinds[ids[i]] = e.Kind
	}
	persons, err := s.people.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.PersonSummary, 0, len(persons))
	for _, p := range persons {
		summary := models.Summarize(p)
		summary.Kind = kinds[p.ID]
		out = append(out, summary)
	}
	return out, nil
}

// headAndAddress reports whether p heads h and, for non-heads, the address
// shown as the household's: the designated head's, else the first member
// with an address, else the first member's.
func headAndAddress(h *models.Household, p *models.Person, members []*models.Person) (bool, *string) {
	if household.IsHead(h, p.ID, len(members)) {
		return true, nil
	}
	var source *models.Person
	if h.PrimaryContactID != nil {
		for _, m := range members {
			if m.ID == *h.PrimaryContactID {
				source = m
				break
			}
		}
	}
	if source == nil {
		for _, m := range members {
			if m.HasAddress() {
				source = m
				break
			}
		}
	}
	if source == nil && len(members) > 0 {
		source = members[0]
	}
	if source == nil || !source.HasAddress() {
		return false, nil
	}
	address := household.FormatAddress(source)
	return false, &address
}

func parentEdges(p *models.Person) []models.ParentChildEdge {
	links := p.Parents()
	edges := make([]models.ParentChildEdge, 0, len(links))
	for _, link := range links {
		edges = append(edges, models.ParentChildEdge{ParentID: link.ID, ChildID: p.ID, Kind: link.Kind})
	}
	return edges
}

func wrapEmailConflict(err error, op string) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "email is already in use")
	}
	return wrapStoreErr(err, "person", op)
}

func matches(view *models.PersonView, search string) bool {
	name := strings.ToLower(view.FirstName + " " + view.LastName)
	if strings.Contains(name, search) {
		return true
	}
	return view.Email != nil && strings.Contains(strings.ToLower(*view.Email), search)
}

func sameHousehold(a, b *id.HouseholdID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
