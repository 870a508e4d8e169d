package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/httputil"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/requestcontext"
)

// JWTValidator validates session tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims are the claims the middleware needs from a session token.
type JWTClaims struct {
	PersonID string
	Email    string
}

// PrincipalResolver confirms the token subject still exists and reports
// their admin flag. Returns sentinel.ErrNotFound for deleted persons.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, personID id.PersonID) (isAdmin bool, err error)
}

// RequireAuth authenticates Bearer tokens and stores the principal in context.
func RequireAuth(validator JWTValidator, people PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			personID, err := id.ParsePersonID(claims.PersonID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			isAdmin, err := people.ResolvePrincipal(ctx, personID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					logger.WarnContext(ctx, "unauthorized access - person no longer exists",
						"person_id", personID,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
					return
				}
				logger.ErrorContext(ctx, "failed to resolve principal",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token"))
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, personID, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
