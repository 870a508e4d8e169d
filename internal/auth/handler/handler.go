package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"familydir/internal/auth/models"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/httputil"
	"familydir/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the login operations the handler exposes.
type Service interface {
	RequestLink(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// Handler serves the magic-link login endpoints. Both routes are public.
type Handler struct {
	service     Service
	frontendURL string
	logger      *slog.Logger
}

func New(service Service, frontendURL string, logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/request-link", h.HandleRequestLink)
	r.Get("/auth/verify", h.HandleVerify)
}

// HandleRequestLink handles POST /auth/request-link.
func (h *Handler) HandleRequestLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[RequestLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	message, err := h.service.RequestLink(ctx, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue login link",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// HandleVerify handles GET /auth/verify?token=. A valid token redirects to
// the frontend callback carrying the session token.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token is required"))
		return
	}

	session, err := h.service.Verify(ctx, token)
	if err != nil {
		h.logger.WarnContext(ctx, "login link rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login link redeemed",
		"request_id", requestID,
		"person_id", session.PersonID.String(),
	)
	http.Redirect(w, r, h.callbackURL(session.Token), http.StatusFound)
}

func (h *Handler) callbackURL(token string) string {
	return h.frontendURL + "/auth/callback?" + url.Values{"token": {token}}.Encode()
}
