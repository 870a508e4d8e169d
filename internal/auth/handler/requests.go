package handler

import (
	"strings"

	dErrors "familydir/pkg/domain-errors"
)

// RequestLinkRequest is the body of POST /auth/request-link.
type RequestLinkRequest struct {
	Email string `json:"email"`
}

func (r *RequestLinkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Email) > 254 {
		return dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	return nil
}

// MessageResponse carries a user-facing message.
type MessageResponse struct {
	Message string `json:"message"`
}
