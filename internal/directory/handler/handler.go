package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/httputil"
	"familydir/pkg/requestcontext"
)

// PersonService defines the person operations the handler exposes.
type PersonService interface {
	Get(ctx context.Context, actor, targetID id.PersonID) (*models.PersonView, error)
	Me(ctx context.Context, actor id.PersonID) (*models.PersonView, error)
	List(ctx context.Context, actor id.PersonID, query models.ListQuery) ([]*models.PersonView, error)
	Relationship(ctx context.Context, actor, targetID id.PersonID) (models.Label, error)
	Create(ctx context.Context, actor id.PersonID, patch models.PersonPatch) (*models.PersonView, error)
	Update(ctx context.Context, actor, targetID id.PersonID, patch models.PersonPatch) (*models.PersonView, error)
	Delete(ctx context.Context, actor, targetID id.PersonID) error
	SetSpouse(ctx context.Context, actor, personID, spouseID id.PersonID) error
	RemoveSpouse(ctx context.Context, actor, personID id.PersonID) error
}

// HouseholdService defines the household operations the handler exposes.
type HouseholdService interface {
	List(ctx context.Context) ([]*models.HouseholdView, error)
	Get(ctx context.Context, householdID id.HouseholdID) (*models.HouseholdView, error)
	SetHead(ctx context.Context, actor id.PersonID, ref string, headID id.PersonID, memberIDs []id.PersonID) (*models.HouseholdView, error)
	RemoveMember(ctx context.Context, actor, personID id.PersonID) error
}

// Handler wires directory endpoints to the person and household services.
// Every route expects the auth middleware to have placed the actor in the
// request context.
type Handler struct {
	persons    PersonService
	households HouseholdService
	logger     *slog.Logger
}

// New constructs a directory handler.
func New(persons PersonService, households HouseholdService, logger *slog.Logger) *Handler {
	return &Handler{
		persons:    persons,
		households: households,
		logger:     logger,
	}
}

// Register mounts directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/persons", h.HandleListPersons)
	r.Post("/persons", h.HandleCreatePerson)
	r.Get("/persons/me/info", h.HandleMe)
	r.Get("/persons/{id}", h.HandleGetPerson)
	r.Put("/persons/{id}", h.HandleUpdatePerson)
	r.Delete("/persons/{id}", h.HandleDeletePerson)
	r.Get("/persons/{id}/relationship", h.HandleRelationship)
	r.Post("/persons/{id}/set-spouse", h.HandleSetSpouse)
	r.Delete("/persons/{id}/spouse", h.HandleRemoveSpouse)

	r.Get("/households", h.HandleListHouseholds)
	r.Post("/households/remove-member", h.HandleRemoveMember)
	r.Get("/households/{id}", h.HandleGetHousehold)
	r.Post("/households/{id}/set-head", h.HandleSetHead)
}

// actor returns the authenticated person or writes 401.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (id.PersonID, bool) {
	personID := requestcontext.PersonID(r.Context())
	if personID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.PersonID{}, false
	}
	return personID, true
}

func (h *Handler) personParam(w http.ResponseWriter, r *http.Request) (id.PersonID, bool) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PersonID{}, false
	}
	return personID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// HandleListPersons handles GET /persons?search=&sort=.
func (h *Handler) HandleListPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sort, err := models.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.persons.List(ctx, actor, models.ListQuery{Search: r.URL.Query().Get("search"), Sort: sort})
	if err != nil {
		h.fail(ctx, w, "failed to list persons", err, "actor_id", actor)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// HandleMe handles GET /persons/me/info.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	view, err := h.persons.Me(ctx, actor)
	if err != nil {
		h.fail(ctx, w, "failed to load own profile", err, "actor_id", actor)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleGetPerson handles GET /persons/{id}.
func (h *Handler) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	view, err := h.persons.Get(ctx, actor, personID)
	if err != nil {
		h.fail(ctx, w, "failed to load person", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleRelationship handles GET /persons/{id}/relationship.
func (h *Handler) HandleRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	label, err := h.persons.Relationship(ctx, actor, personID)
	if err != nil {
		h.fail(ctx, w, "failed to label relationship", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RelationshipResponse{PersonID: personID, Relationship: label})
}

// HandleCreatePerson handles POST /persons.
func (h *Handler) HandleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreatePersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.persons.Create(ctx, actor, req.PersonPatch)
	if err != nil {
		h.fail(ctx, w, "failed to create person", err, "actor_id", actor)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleUpdatePerson handles PUT /persons/{id}.
func (h *Handler) HandleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdatePersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.persons.Update(ctx, actor, personID, req.PersonPatch)
	if err != nil {
		h.fail(ctx, w, "failed to update person", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDeletePerson handles DELETE /persons/{id}.
func (h *Handler) HandleDeletePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	if err := h.persons.Delete(ctx, actor, personID); err != nil {
		h.fail(ctx, w, "failed to delete person", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Person deleted"})
}

// HandleSetSpouse handles POST /persons/{id}/set-spouse.
func (h *Handler) HandleSetSpouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetSpouseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.persons.SetSpouse(ctx, actor, personID, req.ParsedSpouseID()); err != nil {
		h.fail(ctx, w, "failed to set spouse", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Spouse updated"})
}

// HandleRemoveSpouse handles DELETE /persons/{id}/spouse.
func (h *Handler) HandleRemoveSpouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	personID, ok := h.personParam(w, r)
	if !ok {
		return
	}
	if err := h.persons.RemoveSpouse(ctx, actor, personID); err != nil {
		h.fail(ctx, w, "failed to remove spouse", err, "actor_id", actor, "person_id", personID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Spouse removed"})
}

// HandleListHouseholds handles GET /households.
func (h *Handler) HandleListHouseholds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.actor(w, r); !ok {
		return
	}
	views, err := h.households.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list households", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// HandleGetHousehold handles GET /households/{id}.
func (h *Handler) HandleGetHousehold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.actor(w, r); !ok {
		return
	}
	householdID, err := id.ParseHouseholdID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.households.Get(ctx, householdID)
	if err != nil {
		h.fail(ctx, w, "failed to load household", err, "household_id", householdID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSetHead handles POST /households/{id}/set-head. The id may be "new".
func (h *Handler) HandleSetHead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetHeadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "id")
	view, err := h.households.SetHead(ctx, actor, ref, req.ParsedHeadID(), req.ParsedMemberIDs())
	if err != nil {
		h.fail(ctx, w, "failed to set household head", err, "actor_id", actor, "household", ref)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleRemoveMember handles POST /households/remove-member.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RemoveMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.households.RemoveMember(ctx, actor, req.ParsedPersonID()); err != nil {
		h.fail(ctx, w, "failed to remove household member", err, "actor_id", actor)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Member removed from household"})
}
