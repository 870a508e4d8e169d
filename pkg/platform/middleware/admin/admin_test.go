package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "familydir/pkg/domain"
	"familydir/pkg/requestcontext"
)

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequireAdmin(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	member := httptest.NewRequest(http.MethodGet, "/settings", nil)
	member = member.WithContext(requestcontext.WithPrincipal(member.Context(), id.NewPersonID(), false))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, member)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	admin := httptest.NewRequest(http.MethodGet, "/settings", nil)
	admin = admin.WithContext(requestcontext.WithPrincipal(admin.Context(), id.NewPersonID(), true))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
