// Package service implements passwordless login: emailed single-use links
// redeemed for session tokens.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"familydir/internal/auth/models"
	"familydir/internal/auth/secrets"
	dirModels "familydir/internal/directory/models"
	"familydir/pkg/attrs"
	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
	"familydir/pkg/platform/audit"
	"familydir/pkg/platform/sentinel"
	"familydir/pkg/requestcontext"
)

const (
	defaultLinkTTL = 15 * time.Minute
	verifyPath     = "/api/auth/verify"
)

// PersonLookup finds directory members by email. Misses return
// sentinel.ErrNotFound.
type PersonLookup interface {
	FindByEmail(ctx context.Context, email string) (*dirModels.Person, error)
}

// LinkStore holds pending links by token fingerprint.
type LinkStore interface {
	Save(ctx context.Context, fingerprint string, link models.MagicLink, ttl time.Duration) error
	Consume(ctx context.Context, fingerprint string) (*models.MagicLink, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateSessionToken(personID id.PersonID, email string) (string, time.Time, error)
}

// AuditPublisher persists audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	people         PersonLookup
	links          LinkStore
	tokens         TokenIssuer
	mailer         Mailer
	logger         *slog.Logger
	auditPublisher AuditPublisher
	linkTTL        time.Duration
	baseURL        string
	newToken       func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithLinkTTL sets how long an emailed link stays redeemable.
func WithLinkTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.linkTTL = ttl
		}
	}
}

// WithBaseURL sets the public API origin used to build emailed links.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(baseURL, "/") }
}

func New(people PersonLookup, links LinkStore, tokens TokenIssuer, mailer Mailer, opts ...Option) *Service {
	s := &Service{
		people:   people,
		links:    links,
		tokens:   tokens,
		mailer:   mailer,
		linkTTL:  defaultLinkTTL,
		baseURL:  "http://localhost:8080",
		newToken: secrets.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// RequestLink emails a login link when email belongs to a directory member.
// The returned message is the same whether or not it does.
func (s *Service) RequestLink(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}

	person, err := s.people.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		if err := s.logAudit(ctx, id.PersonID{}, audit.EventMagicLinkRequested,
			"email", email, "decision", "unknown_email"); err != nil {
			return "", err
		}
		return models.NeutralLinkMessage, nil
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up email")
	}

	token, err := s.newToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create login link")
	}
	link := models.MagicLink{Email: person.Email}
	if err := s.links.Save(ctx, secrets.Fingerprint(token), link, s.linkTTL); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create login link")
	}

	// Delivery failures are logged only; the response must not reveal them.
	if err := s.mailer.SendMagicLink(ctx, person.Email, s.linkURL(token), s.linkTTL); err != nil {
		s.logger.ErrorContext(ctx, "failed to send login link",
			"person_id", person.ID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if err := s.logAudit(ctx, person.ID, audit.EventMagicLinkRequested,
		"person_id", person.ID.String(), "email", person.Email, "decision", "sent"); err != nil {
		return "", err
	}
	return models.NeutralLinkMessage, nil
}

// Verify redeems a link token and issues a session for its owner.
func (s *Service) Verify(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "token is required")
	}
	device := models.ParseDevice(requestcontext.UserAgent(ctx))

	link, err := s.links.Consume(ctx, secrets.Fingerprint(token))
	if errors.Is(err, sentinel.ErrNotFound) {
		if err := s.logAudit(ctx, id.PersonID{}, audit.EventAuthFailed,
			"reason", "invalid_or_expired_token", "decision", "denied",
			"browser", device.Browser, "os", device.OS); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid or expired token")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify token")
	}

	person, err := s.people.FindByEmail(ctx, link.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		if err := s.logAudit(ctx, id.PersonID{}, audit.EventAuthFailed,
			"email", link.Email, "reason", "person_not_found", "decision", "denied"); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	signed, expiresAt, err := s.tokens.GenerateSessionToken(person.ID, person.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	if err := s.logAudit(ctx, person.ID, audit.EventLoginSucceeded,
		"person_id", person.ID.String(),
		"email", person.Email,
		"decision", "granted",
		"device", device.DisplayName(),
		"browser", device.Browser,
		"os", device.OS,
	); err != nil {
		return nil, err
	}

	return &models.Session{
		Token:     signed,
		ExpiresAt: expiresAt,
		PersonID:  person.ID,
		Email:     person.Email,
	}, nil
}

func (s *Service) linkURL(token string) string {
	return s.baseURL + verifyPath + "?token=" + url.QueryEscape(token)
}

func (s *Service) logAudit(ctx context.Context, actor id.PersonID, event audit.AuditEvent, attributes ...any) error {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:   actor,
		Subject:   attrs.ExtractString(attributes, "person_id"),
		Action:    string(event),
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		Email:     attrs.ExtractString(attributes, "email"),
		RequestID: requestID,
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}
