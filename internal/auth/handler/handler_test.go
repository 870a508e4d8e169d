package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"familydir/internal/auth/handler/mocks"
	"familydir/internal/auth/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, "https://family.example.com/", logger).Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestRequestLink() {
	s.Run("returns the service message", func() {
		s.service.EXPECT().RequestLink(gomock.Any(), "ann@example.com").Return(models.NeutralLinkMessage, nil)

		w := s.serve(httptest.NewRequest(http.MethodPost, "/auth/request-link", strings.NewReader(`{"email":" ann@example.com "}`)))
		s.Require().Equal(http.StatusOK, w.Code)
		var body MessageResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
		s.Equal(models.NeutralLinkMessage, body.Message)
	})

	s.Run("missing email is rejected before the service", func() {
		w := s.serve(httptest.NewRequest(http.MethodPost, "/auth/request-link", strings.NewReader(`{}`)))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed body", func() {
		w := s.serve(httptest.NewRequest(http.MethodPost, "/auth/request-link", strings.NewReader(`{"email":`)))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("service failure hides details", func() {
		s.service.EXPECT().RequestLink(gomock.Any(), "ann@example.com").
			Return("", dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed to look up email"))

		w := s.serve(httptest.NewRequest(http.MethodPost, "/auth/request-link", strings.NewReader(`{"email":"ann@example.com"}`)))
		s.Equal(http.StatusInternalServerError, w.Code)
		s.NotContains(w.Body.String(), "db down")
	})
}

func (s *HandlerSuite) TestVerify() {
	s.Run("redirects to the frontend callback", func() {
		s.service.EXPECT().Verify(gomock.Any(), "tok-123").Return(&models.Session{
			Token:     "jwt.value.here",
			ExpiresAt: time.Now().Add(time.Hour),
			PersonID:  id.NewPersonID(),
		}, nil)

		w := s.serve(httptest.NewRequest(http.MethodGet, "/auth/verify?token=tok-123", nil))
		s.Require().Equal(http.StatusFound, w.Code)

		location, err := url.Parse(w.Header().Get("Location"))
		s.Require().NoError(err)
		s.Equal("family.example.com", location.Host)
		s.Equal("/auth/callback", location.Path)
		s.Equal("jwt.value.here", location.Query().Get("token"))
	})

	s.Run("missing token", func() {
		w := s.serve(httptest.NewRequest(http.MethodGet, "/auth/verify", nil))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid token is reported", func() {
		s.service.EXPECT().Verify(gomock.Any(), "stale").
			Return(nil, dErrors.New(dErrors.CodeBadRequest, "invalid or expired token"))

		w := s.serve(httptest.NewRequest(http.MethodGet, "/auth/verify?token=stale", nil))
		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), "invalid or expired token")
	})
}
