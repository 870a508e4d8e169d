package testutil

import (
	"net/http"

	id "familydir/pkg/domain"
	"familydir/pkg/requestcontext"
)

// WithPerson marks the request as authenticated by personID, as the auth
// middleware would after validating a session token.
func WithPerson(req *http.Request, personID id.PersonID) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), personID, false))
}

// WithAdmin marks the request as authenticated by an admin.
func WithAdmin(req *http.Request, personID id.PersonID) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), personID, true))
}

// WithRequestID attaches a correlation id for log assertions.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
