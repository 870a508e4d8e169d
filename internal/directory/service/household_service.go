package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"familydir/internal/directory/household"
	"familydir/internal/directory/metrics"
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/requestcontext"
)

// householdConcurrency bounds parallel member loads in List.
const householdConcurrency = 8

// NewHouseholdRef asks SetHead to create a household around the head.
const NewHouseholdRef = "new"

// HouseholdService resolves households and edits membership.
type HouseholdService struct {
	people         PersonStore
	households     HouseholdStore
	relationships  RelationshipStore
	authority      Authority
	logger         *slog.Logger
	auditPublisher AuditPublisher
	tx             TxRunner
	metrics        *metrics.Metrics
}

func NewHouseholdService(stores Stores, authority Authority, opts ...Option) *HouseholdService {
	cfg := newConfig(opts)
	return &HouseholdService{
		people:         stores.People,
		households:     stores.Households,
		relationships:  stores.Relationships,
		authority:      authority,
		logger:         cfg.logger,
		auditPublisher: cfg.auditPublisher,
		tx:             cfg.tx,
		metrics:        cfg.metrics,
	}
}

// List resolves every household that still has members.
func (s *HouseholdService) List(ctx context.Context) ([]*models.HouseholdView, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveHouseholdList(time.Since(start)) }()

	households, err := s.households.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "household", "list households")
	}

	views := make([]*models.HouseholdView, len(households))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(householdConcurrency)
	for i, h := range households {
		g.Go(func() error {
			view, err := s.resolve(gctx, h)
			views[i] = view
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapStoreErr(err, "household", "resolve households")
	}

	out := make([]*models.HouseholdView, 0, len(views))
	for _, v := range views {
		if v != nil && len(v.Members) > 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// Get resolves one household. A household without members is reported as
// not found.
func (s *HouseholdService) Get(ctx context.Context, householdID id.HouseholdID) (*models.HouseholdView, error) {
	h, err := s.households.FindByID(ctx, householdID)
	if err != nil {
		return nil, wrapStoreErr(err, "household", "load household")
	}
	view, err := s.resolve(ctx, h)
	if err != nil {
		return nil, wrapStoreErr(err, "household", "resolve household")
	}
	if len(view.Members) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "household not found")
	}
	return view, nil
}

func (s *HouseholdService) resolve(ctx context.Context, h *models.Household) (*models.HouseholdView, error) {
	members, err := s.people.FindByHousehold(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]id.PersonID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	lineage, err := s.relationships.LineageFacts(ctx, ids)
	if err != nil {
		return nil, err
	}

	head := household.ResolveHead(h, members, lineage)
	view := &models.HouseholdView{
		ID:                 h.ID,
		Name:               h.Name,
		PrimaryContactID:   h.PrimaryContactID,
		PrimaryContactName: h.PrimaryContactName,
		Notes:              h.Notes,
		DisplayName:        household.DisplayName(h, head),
		Members:            make([]models.HouseholdMember, 0, len(members)),
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
	if head != nil {
		headID := head.ID
		view.HeadID = &headID
	}
	if address := household.Address(members, head); address != "" {
		view.Address = &address
	}
	for _, m := range members {
		view.Members = append(view.Members, models.NewHouseholdMember(m))
	}
	return view, nil
}

// SetHead makes headID the head of a household and moves memberIDs into it.
// ref is a household id, or "new" (also "" or "null") to create a household
// named after the head. Members the actor may not edit are skipped.
func (s *HouseholdService) SetHead(ctx context.Context, actor id.PersonID, ref string, headID id.PersonID, memberIDs []id.PersonID) (*models.HouseholdView, error) {
	if headID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "head person id is required")
	}
	createNew := isNewHouseholdRef(ref)
	var householdID id.HouseholdID
	if !createNew {
		parsed, err := id.ParseHouseholdID(ref)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid household id")
		}
		householdID = parsed
	}
	if _, err := s.people.FindByID(ctx, headID); err != nil {
		return nil, wrapStoreErr(err, "person", "load head")
	}
	if err := requireCanEdit(ctx, s.authority, s.logger, s.auditPublisher, actor, headID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		head, err := s.people.FindByID(txCtx, headID)
		if err != nil {
			return wrapStoreErr(err, "person", "load head")
		}

		// A head moving in from elsewhere stops heading the old household.
		if head.HouseholdID == nil || *head.HouseholdID != householdID {
			if err := s.households.ClearPrimaryContact(txCtx, head.ID); err != nil {
				return wrapStoreErr(err, "household", "clear household head")
			}
		}

		var h *models.Household
		if createNew {
			h = &models.Household{
				ID:        id.NewHouseholdID(),
				Name:      head.FirstName + " " + head.LastName + " Household",
				CreatedAt: now,
				UpdatedAt: now,
			}
			h.PrimaryContactID = &head.ID
			if err := s.households.Create(txCtx, h); err != nil {
				return wrapStoreErr(err, "household", "create household")
			}
		} else {
			h, err = s.households.FindByID(txCtx, householdID)
			if err != nil {
				return wrapStoreErr(err, "household", "load household")
			}
			h.PrimaryContactID = &head.ID
			h.UpdatedAt = now
			if err := s.households.Update(txCtx, h); err != nil {
				return wrapStoreErr(err, "household", "update household")
			}
		}
		householdID = h.ID

		moved, err := s.moveIn(txCtx, actor, h.ID, head, memberIDs, now)
		if err != nil {
			return err
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventHouseholdHeadSet,
			"household_id", h.ID.String(), "head_id", head.ID.String(), "members", moved)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, householdID)
}

// moveIn sets the household of the head and every editable listed member.
func (s *HouseholdService) moveIn(ctx context.Context, actor id.PersonID, householdID id.HouseholdID, head *models.Person, memberIDs []id.PersonID, now time.Time) (int, error) {
	if head.HouseholdID == nil || *head.HouseholdID != householdID {
		head.HouseholdID = &householdID
		head.UpdatedAt = now
		if err := s.people.Update(ctx, head); err != nil {
			return 0, wrapStoreErr(err, "person", "move head")
		}
	}

	seen := map[id.PersonID]struct{}{head.ID: {}}
	moved := 0
	for _, memberID := range memberIDs {
		if _, dup := seen[memberID]; dup || memberID.IsNil() {
			continue
		}
		seen[memberID] = struct{}{}

		member, err := s.people.FindByID(ctx, memberID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, wrapStoreErr(err, "person", "load member")
		}
		ok, err := s.authority.CanEdit(ctx, actor, memberID)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check edit permission")
		}
		if !ok {
			s.logger.InfoContext(ctx, "skipping member the actor cannot edit",
				"actor_id", actor.String(), "person_id", memberID.String())
			continue
		}
		if member.HouseholdID != nil && *member.HouseholdID == householdID {
			continue
		}
		if err := s.households.ClearPrimaryContact(ctx, member.ID); err != nil {
			return 0, wrapStoreErr(err, "household", "clear household head")
		}
		member.HouseholdID = &householdID
		member.UpdatedAt = now
		if err := s.people.Update(ctx, member); err != nil {
			return 0, wrapStoreErr(err, "person", "move member")
		}
		moved++
	}
	return moved, nil
}

// RemoveMember takes personID out of their household. A removed head is no
// longer the household's designee.
func (s *HouseholdService) RemoveMember(ctx context.Context, actor, personID id.PersonID) error {
	if personID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "person id is required")
	}
	if _, err := s.people.FindByID(ctx, personID); err != nil {
		return wrapStoreErr(err, "person", "load person")
	}
	if err := requireCanEdit(ctx, s.authority, s.logger, s.auditPublisher, actor, personID); err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.people.FindByID(txCtx, personID)
		if err != nil {
			return wrapStoreErr(err, "person", "load person")
		}
		if p.HouseholdID == nil {
			return nil
		}
		previous := *p.HouseholdID
		if err := s.households.ClearPrimaryContact(txCtx, p.ID); err != nil {
			return wrapStoreErr(err, "household", "clear household head")
		}
		p.HouseholdID = nil
		p.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.people.Update(txCtx, p); err != nil {
			return wrapStoreErr(err, "person", "remove member")
		}
		return logAudit(txCtx, s.logger, s.auditPublisher, actor, audit.EventHouseholdMemberRemove,
			"person_id", p.ID.String(), "household_id", previous.String())
	})
}

// Cleanup deletes households left without members.
func (s *HouseholdService) Cleanup(ctx context.Context) (int, error) {
	deleted := 0
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.households.DeleteEmpty(txCtx)
		if err != nil {
			return wrapStoreErr(err, "household", "delete empty households")
		}
		deleted = n
		return logAudit(txCtx, s.logger, s.auditPublisher, id.PersonID{}, audit.EventHouseholdsCleaned,
			"deleted", n)
	})
	return deleted, err
}

func isNewHouseholdRef(ref string) bool {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", NewHouseholdRef, "null":
		return true
	default:
		return false
	}
}
