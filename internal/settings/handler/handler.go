package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"familydir/internal/settings/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/httputil"
	"familydir/pkg/platform/middleware/admin"
	"familydir/pkg/requestcontext"
)

// Service defines the settings operations the handler exposes.
type Service interface {
	SiteName(ctx context.Context) string
	All(ctx context.Context) (map[string]any, error)
	SetSiteName(ctx context.Context, actor id.PersonID, name string) error
	Preference(ctx context.Context, personID id.PersonID, key string) (json.RawMessage, error)
	SetPreference(ctx context.Context, personID id.PersonID, key string, value json.RawMessage) error
	Preferences(ctx context.Context, personID id.PersonID) (map[string]json.RawMessage, error)
}

// Handler serves site settings and the caller's preferences.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the routes that need no session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/settings/site-name", h.HandleSiteName)
}

// Register mounts the authenticated routes. Settings writes and the full
// settings listing are admin only.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdmin(h.logger))
		r.Get("/settings", h.HandleAllSettings)
		r.Post("/settings/site-name", h.HandleSetSiteName)
	})
	r.Get("/preferences", h.HandleAllPreferences)
	r.Get("/preferences/{key}", h.HandleGetPreference)
	r.Post("/preferences/{key}", h.HandleSetPreference)
}

// HandleSiteName handles GET /settings/site-name.
func (h *Handler) HandleSiteName(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, SiteNameResponse{SiteName: h.service.SiteName(r.Context())})
}

// HandleAllSettings handles GET /settings.
func (h *Handler) HandleAllSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.service.All(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

// HandleSetSiteName handles POST /settings/site-name.
func (h *Handler) HandleSetSiteName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[SetSiteNameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetSiteName(ctx, requestcontext.PersonID(ctx), req.Value); err != nil {
		h.logger.WarnContext(ctx, "failed to set site name",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleGetPreference handles GET /preferences/{key}. The stored JSON is
// returned as the body.
func (h *Handler) HandleGetPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, key, ok := h.preferenceTarget(w, r)
	if !ok {
		return
	}
	value, err := h.service.Preference(ctx, personID, key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, value)
}

// HandleSetPreference handles POST /preferences/{key}. The whole body is
// stored as the value.
func (h *Handler) HandleSetPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, key, ok := h.preferenceTarget(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, models.MaxPreferenceBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body too large"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
		return
	}
	if err := h.service.SetPreference(ctx, personID, key, body); err != nil {
		h.logger.WarnContext(ctx, "failed to set preference",
			"request_id", requestcontext.RequestID(ctx),
			"key", key,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleAllPreferences handles GET /preferences.
func (h *Handler) HandleAllPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID := requestcontext.PersonID(ctx)
	if personID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	prefs, err := h.service.Preferences(ctx, personID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prefs)
}

func (h *Handler) preferenceTarget(w http.ResponseWriter, r *http.Request) (id.PersonID, string, bool) {
	personID := requestcontext.PersonID(r.Context())
	if personID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.PersonID{}, "", false
	}
	key, err := models.ParsePreferenceKey(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PersonID{}, "", false
	}
	return personID, key, true
}
