// Package domain holds identifier primitives shared by every module.
//
// IDs are distinct named types over uuid.UUID so a PersonID can never be
// passed where a HouseholdID is expected.
package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"

	dErrors "familydir/pkg/domain-errors"
)

type (
	PersonID    uuid.UUID
	HouseholdID uuid.UUID
)

// NewPersonID returns a fresh random person id.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewHouseholdID returns a fresh random household id.
func NewHouseholdID() HouseholdID { return HouseholdID(uuid.New()) }

func (id PersonID) String() string    { return uuid.UUID(id).String() }
func (id HouseholdID) String() string { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id HouseholdID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Less orders ids by their canonical string form.
func (id PersonID) Less(other PersonID) bool { return id.String() < other.String() }

func (id PersonID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *PersonID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id HouseholdID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *HouseholdID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Value and Scan let typed ids flow through database/sql unchanged.
func (id PersonID) Value() (driver.Value, error) { return id.String(), nil }
func (id *PersonID) Scan(src any) error           { return (*uuid.UUID)(id).Scan(src) }

func (id HouseholdID) Value() (driver.Value, error) { return id.String(), nil }
func (id *HouseholdID) Scan(src any) error           { return (*uuid.UUID)(id).Scan(src) }

// ParsePersonID validates a person id at a trust boundary.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person")
	return PersonID(u), err
}

// ParseHouseholdID validates a household id at a trust boundary.
func ParseHouseholdID(s string) (HouseholdID, error) {
	u, err := parseUUID(s, "household")
	return HouseholdID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s id is required", kind))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s id", kind))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s id must not be nil", kind))
	}
	return u, nil
}

// PersonIDStrings renders ids for SQL array parameters.
func PersonIDStrings(ids []PersonID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
