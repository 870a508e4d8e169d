package admin

import (
	"log/slog"
	"net/http"

	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/httputil"
	"familydir/pkg/requestcontext"
)

// RequireAdmin rejects principals without the admin flag. Must run after
// the auth middleware.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.IsAdmin(ctx) {
				logger.WarnContext(ctx, "admin route denied",
					"person_id", requestcontext.PersonID(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
