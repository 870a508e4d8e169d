package handler

import (
	"strings"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
)

// maxMemberIDs bounds the member list of a set-head request.
const maxMemberIDs = 100

// CreatePersonRequest is the HTTP request body for POST /persons.
type CreatePersonRequest struct {
	models.PersonPatch
}

// Validate normalizes the patch and requires the identifying fields.
func (r *CreatePersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := r.Normalize(); err != nil {
		return err
	}
	if r.FirstName.Or("") == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if r.LastName.Or("") == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	if !r.Gender.Set {
		return dErrors.New(dErrors.CodeValidation, "gender is required")
	}
	return nil
}

// UpdatePersonRequest is the HTTP request body for PUT /persons/{id}. Only
// fields present in the body are changed; explicit nulls clear them.
type UpdatePersonRequest struct {
	models.PersonPatch
}

func (r *UpdatePersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.Normalize()
}

// SetSpouseRequest is the HTTP request body for POST /persons/{id}/set-spouse.
type SetSpouseRequest struct {
	SpouseID string `json:"spouse_id"`

	parsedSpouseID id.PersonID
}

func (r *SetSpouseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.SpouseID = strings.TrimSpace(r.SpouseID)
	if r.SpouseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "spouse_id is required")
	}
	spouseID, err := id.ParsePersonID(r.SpouseID)
	if err != nil {
		return err
	}
	r.parsedSpouseID = spouseID
	return nil
}

// ParsedSpouseID returns the validated spouse id.
func (r *SetSpouseRequest) ParsedSpouseID() id.PersonID {
	return r.parsedSpouseID
}

// SetHeadRequest is the HTTP request body for POST /households/{id}/set-head.
type SetHeadRequest struct {
	HeadPersonID string   `json:"head_person_id"`
	MemberIDs    []string `json:"member_ids"`

	parsedHeadID    id.PersonID
	parsedMemberIDs []id.PersonID
}

func (r *SetHeadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.MemberIDs) > maxMemberIDs {
		return dErrors.New(dErrors.CodeValidation, "too many member_ids")
	}
	r.HeadPersonID = strings.TrimSpace(r.HeadPersonID)
	if r.HeadPersonID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "head_person_id is required")
	}
	headID, err := id.ParsePersonID(r.HeadPersonID)
	if err != nil {
		return err
	}
	r.parsedHeadID = headID

	r.parsedMemberIDs = make([]id.PersonID, 0, len(r.MemberIDs))
	for _, raw := range r.MemberIDs {
		memberID, err := id.ParsePersonID(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		r.parsedMemberIDs = append(r.parsedMemberIDs, memberID)
	}
	return nil
}

// ParsedHeadID returns the validated head id.
func (r *SetHeadRequest) ParsedHeadID() id.PersonID {
	return r.parsedHeadID
}

// ParsedMemberIDs returns the validated member ids in request order.
func (r *SetHeadRequest) ParsedMemberIDs() []id.PersonID {
	return r.parsedMemberIDs
}

// RemoveMemberRequest is the HTTP request body for POST /households/remove-member.
type RemoveMemberRequest struct {
	PersonID string `json:"person_id"`

	parsedPersonID id.PersonID
}

func (r *RemoveMemberRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PersonID = strings.TrimSpace(r.PersonID)
	if r.PersonID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "person_id is required")
	}
	personID, err := id.ParsePersonID(r.PersonID)
	if err != nil {
		return err
	}
	r.parsedPersonID = personID
	return nil
}

// ParsedPersonID returns the validated person id.
func (r *RemoveMemberRequest) ParsedPersonID() id.PersonID {
	return r.parsedPersonID
}
