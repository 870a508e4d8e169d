package handler

import (
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

// MessageResponse acknowledges a mutation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// RelationshipResponse is the body of GET /persons/{id}/relationship.
type RelationshipResponse struct {
	PersonID     id.PersonID  `json:"person_id"`
	Relationship models.Label `json:"relationship"`
}
