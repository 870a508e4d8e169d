package audit

import (
	"context"
	"time"

	id "familydir/pkg/domain"
)

// EventCategory classifies audit events by their retention and routing needs.
type EventCategory string

const (
	// CategoryCompliance covers changes to family records and admin rights.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers login activity and denied mutations.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine maintenance activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the authenticated person who performed the action.
	// Nil for CLI and system-initiated events.
	ActorID   id.PersonID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Email     string
	RequestID string
	IP        string
	UserAgent string
}

type AuditEvent string

const (
	// Directory events
	EventPersonCreated         AuditEvent = "person_created"
	EventPersonUpdated         AuditEvent = "person_updated"
	EventPersonDeleted         AuditEvent = "person_deleted"
	EventAddressPropagated     AuditEvent = "address_propagated"
	EventSpouseSet             AuditEvent = "spouse_set"
	EventSpouseRemoved         AuditEvent = "spouse_removed"
	EventHouseholdHeadSet      AuditEvent = "household_head_set"
	EventHouseholdMemberRemove AuditEvent = "household_member_removed"
	EventAdminFlagChanged      AuditEvent = "admin_flag_changed"
	EventEditDenied            AuditEvent = "edit_denied"

	// Settings events
	EventSiteNameChanged AuditEvent = "site_name_changed"

	// Auth events
	EventMagicLinkRequested AuditEvent = "magic_link_requested"
	EventLoginSucceeded     AuditEvent = "login_succeeded"
	EventAuthFailed         AuditEvent = "auth_failed"

	// Maintenance events
	EventPeopleImported    AuditEvent = "people_imported"
	EventHouseholdsCleaned AuditEvent = "households_cleaned"
	EventAgesRecalculated  AuditEvent = "ages_recalculated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPersonCreated:         CategoryCompliance,
	EventPersonUpdated:         CategoryCompliance,
	EventPersonDeleted:         CategoryCompliance,
	EventAddressPropagated:     CategoryCompliance,
	EventSpouseSet:             CategoryCompliance,
	EventSpouseRemoved:         CategoryCompliance,
	EventHouseholdHeadSet:      CategoryCompliance,
	EventHouseholdMemberRemove: CategoryCompliance,
	EventAdminFlagChanged:      CategoryCompliance,

	EventEditDenied:         CategorySecurity,
	EventMagicLinkRequested: CategorySecurity,
	EventLoginSucceeded:     CategorySecurity,
	EventAuthFailed:         CategorySecurity,

	EventSiteNameChanged:   CategoryOperations,
	EventPeopleImported:    CategoryOperations,
	EventHouseholdsCleaned: CategoryOperations,
	EventAgesRecalculated:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
