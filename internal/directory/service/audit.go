package service

import (
	"context"
	"log/slog"

	"familydir/pkg/attrs"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/requestcontext"
)

// logAudit writes an audit log line and persists the event. Persistence
// failures are returned so the caller aborts; inside a transaction the event
// rolls back with the change it describes.
func logAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, actor id.PersonID, event audit.AuditEvent, attributes ...any) error {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if !actor.IsNil() {
		attributes = append(attributes, "actor_id", actor.String())
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	logger.InfoContext(ctx, string(event), args...)

	if publisher == nil {
		return nil
	}
	subject := attrs.ExtractString(attributes, "person_id")
	if subject == "" {
		subject = attrs.ExtractString(attributes, "household_id")
	}
	return publisher.Emit(ctx, audit.Event{
		ActorID:   actor,
		Subject:   subject,
		Action:    string(event),
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		Email:     attrs.ExtractString(attributes, "email"),
		RequestID: requestID,
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}

// requireCanEdit returns forbidden unless actor may edit target. Every denial
// is audited. Evaluator errors fail the request.
func requireCanEdit(ctx context.Context, authority Authority, logger *slog.Logger, publisher AuditPublisher, actor, targetID id.PersonID) error {
	ok, err := authority.CanEdit(ctx, actor, targetID)
	if err != nil {
		logger.ErrorContext(ctx, "edit authority lookup failed",
			"actor_id", actor.String(), "person_id", targetID.String(), "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check edit permission")
	}
	if ok {
		return nil
	}
	if err := logAudit(ctx, logger, publisher, actor, audit.EventEditDenied,
		"person_id", targetID.String(), "decision", "denied"); err != nil {
		return err
	}
	return dErrors.New(dErrors.CodeForbidden, "you do not have permission to edit this person")
}
