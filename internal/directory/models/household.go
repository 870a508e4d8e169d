package models

import (
	"time"

	"github.com/google/uuid"

	id "familydir/pkg/domain"
)

// Household groups persons living together. Membership is owned by
// Person.HouseholdID.
type Household struct {
	ID                 id.HouseholdID
	Name               string
	PrimaryContactID   *id.PersonID
	PrimaryContactName string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MaritalRelationship is an unordered pair stored with PersonA < PersonB.
type MaritalRelationship struct {
	ID           uuid.UUID
	PersonA      id.PersonID
	PersonB      id.PersonID
	MarriageDate *time.Time
	DivorceDate  *time.Time
}

// Active reports whether the marriage has not been closed.
func (m *MaritalRelationship) Active() bool {
	return m.DivorceDate == nil
}

// Partner returns the other party of the pair.
func (m *MaritalRelationship) Partner(of id.PersonID) id.PersonID {
	if m.PersonA == of {
		return m.PersonB
	}
	return m.PersonA
}

// OrderPair returns a and b ordered lexicographically by id string.
func OrderPair(a, b id.PersonID) (id.PersonID, id.PersonID) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

// ParentChildEdge is a row of the legacy parent-child edge table.
type ParentChildEdge struct {
	ParentID id.PersonID
	ChildID  id.PersonID
	Kind     ParentKind
}

// Lineage records whether a person has parents or children on file.
type Lineage struct {
	HasParents  bool
	HasChildren bool
}

// LineageFacts is keyed by person id. Absent entries mean no lineage.
type LineageFacts map[id.PersonID]Lineage

// Clone returns a deep copy of h.
func (h *Household) Clone() *Household {
	if h == nil {
		return nil
	}
	c := *h
	if h.PrimaryContactID != nil {
		pc := *h.PrimaryContactID
		c.PrimaryContactID = &pc
	}
	return &c
}
