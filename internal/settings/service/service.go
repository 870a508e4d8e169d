// Package service serves the site settings and per-person preferences.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"familydir/internal/settings/models"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/requestcontext"
)

// Store persists settings and preferences. Misses return sentinel.ErrNotFound.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)
	GetPreference(ctx context.Context, personID id.PersonID, key string) (json.RawMessage, error)
	SetPreference(ctx context.Context, personID id.PersonID, key string, value json.RawMessage) error
	AllPreferences(ctx context.Context, personID id.PersonID) (map[string]json.RawMessage, error)
}

// AuditPublisher persists audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// SiteName returns the stored site name. Lookup failures fall back to the
// default so the public endpoint always answers.
func (s *Service) SiteName(ctx context.Context) string {
	name, err := s.store.GetSetting(ctx, models.KeySiteName)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load site name; using default", "error", err)
		}
		return models.DefaultSiteName
	}
	if name == "" {
		return models.DefaultSiteName
	}
	return name
}

// All returns every app setting, JSON values decoded.
func (s *Service) All(ctx context.Context) (map[string]any, error) {
	raw, err := s.store.AllSettings(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = models.DecodeValue(v)
	}
	return out, nil
}

// SetSiteName stores a new site name and audits the change.
func (s *Service) SetSiteName(ctx context.Context, actor id.PersonID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "site name is required")
	}
	if len(name) > models.MaxSiteNameLength {
		return dErrors.New(dErrors.CodeValidation, "site name is too long")
	}
	if err := s.store.SetSetting(ctx, models.KeySiteName, name); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save site name")
	}
	return s.logAudit(ctx, actor, audit.EventSiteNameChanged, "site_name", name)
}

// Preference returns one stored preference of personID.
func (s *Service) Preference(ctx context.Context, personID id.PersonID, key string) (json.RawMessage, error) {
	value, err := s.store.GetPreference(ctx, personID, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "preference not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load preference")
	}
	return value, nil
}

// SetPreference stores value, which must be valid JSON, under key.
func (s *Service) SetPreference(ctx context.Context, personID id.PersonID, key string, value json.RawMessage) error {
	if len(value) > models.MaxPreferenceBytes {
		return dErrors.New(dErrors.CodeValidation, "preference value is too large")
	}
	if !json.Valid(value) {
		return dErrors.New(dErrors.CodeValidation, "preference value must be JSON")
	}
	if err := s.store.SetPreference(ctx, personID, key, value); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save preference")
	}
	return nil
}

// Preferences returns every stored preference of personID.
func (s *Service) Preferences(ctx context.Context, personID id.PersonID) (map[string]json.RawMessage, error) {
	prefs, err := s.store.AllPreferences(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load preferences")
	}
	return prefs, nil
}

func (s *Service) logAudit(ctx context.Context, actor id.PersonID, event audit.AuditEvent, attributes ...any) error {
	requestID := requestcontext.RequestID(ctx)
	args := append(attributes, "actor_id", actor.String(), "request_id", requestID, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:   actor,
		Subject:   models.KeySiteName,
		Action:    string(event),
		RequestID: requestID,
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}
