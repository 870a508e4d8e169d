package handler

import (
	"strings"

	dErrors "familydir/pkg/domain-errors"
)

// SetSiteNameRequest is the HTTP request body for POST /settings/site-name.
type SetSiteNameRequest struct {
	Value string `json:"value"`
}

func (r *SetSiteNameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Value = strings.TrimSpace(r.Value)
	if r.Value == "" {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	return nil
}

// SiteNameResponse is the body of GET /settings/site-name.
type SiteNameResponse struct {
	SiteName string `json:"site_name"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success"`
}
