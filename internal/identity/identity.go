// Package identity delegates sign-in to a passwordless email-link flow.
//
// A user asks for a link; the link carries a one-time code; completing the
// sign-in with the same email address yields a signed session token.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
)

// Query parameters of a sign-in link.
const (
	ParamMode     = "mode"
	ParamCode     = "oobCode"
	ParamContinue = "continueUrl"
	ModeSignIn    = "signIn"

	// CompletePath is the route that finishes a sign-in.
	CompletePath = "/auth/complete"
	// DefaultContinuePath is where a completed sign-in lands.
	DefaultContinuePath = "/settings"
)

// TokenStore keeps one-time sign-in codes and revoked sessions.
// Implemented by the Redis and memory stores.
type TokenStore interface {
	SaveSignInToken(ctx context.Context, tokenHash, email string, ttl time.Duration) error
	ConsumeSignInToken(ctx context.Context, tokenHash string) (string, error)
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Users finds or creates the account behind an email address.
type Users interface {
	GetOrCreateByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Config holds the identity settings.
type Config struct {
	BaseURL    string        // public origin used in mailed links
	Secret     []byte        // HS256 signing key of session tokens
	LinkTTL    time.Duration // lifetime of a sign-in link
	SessionTTL time.Duration // lifetime of a session token
	Issuer     string
}

// Service runs the email-link flow.
type Service struct {
	cfg    Config
	tokens TokenStore
	users  Users
	mailer Mailer
	bus    *events.Bus
	log    logger.Logger
	now    func() time.Time
}

// New creates an identity service. bus may be nil.
func New(cfg Config, tokens TokenStore, users Users, mailer Mailer, bus *events.Bus, log logger.Logger) *Service {
	if cfg.Issuer == "" {
		cfg.Issuer = "goodnews"
	}
	return &Service{
		cfg:    cfg,
		tokens: tokens,
		users:  users,
		mailer: mailer,
		bus:    bus,
		log:    log,
		now:    time.Now,
	}
}

// NormalizeEmail validates a bare email address and lowercases it.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &errs.FieldError{Field: "email", Key: "validate_email"}
	}
	return strings.ToLower(addr.Address), nil
}

// RequestLink mails a one-time sign-in link to email. continuePath is the
// local path to land on once signed in.
func (s *Service) RequestLink(ctx context.Context, email, continuePath string) (err error) {
	defer func() { metrics.SignInsTotal.WithLabelValues("request", metrics.Status(err)).Inc() }()

	email, err = NormalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := randomCode()
	if err != nil {
		return fmt.Errorf("sign-in code: %w", err)
	}
	if err := s.tokens.SaveSignInToken(ctx, hashCode(code), email, s.cfg.LinkTTL); err != nil {
		return err
	}

	link := s.buildLink(code, continuePath)
	if err := s.mailer.Send(ctx, email, "Sign in to Thai Good News", signInBody(link, s.cfg.LinkTTL)); err != nil {
		return fmt.Errorf("send sign-in link: %w", err)
	}
	s.log.Info("sign-in link sent", logger.String("email", email))
	return nil
}

func (s *Service) buildLink(code, continuePath string) string {
	q := url.Values{}
	q.Set(ParamMode, ModeSignIn)
	q.Set(ParamCode, code)
	q.Set(ParamContinue, SafeContinuePath(continuePath))
	return strings.TrimRight(s.cfg.BaseURL, "/") + CompletePath + "?" + q.Encode()
}

// SafeContinuePath keeps only local absolute paths, defaulting to /settings.
func SafeContinuePath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return DefaultContinuePath
	}
	return p
}

// IsSignInLink reports whether link looks like a sign-in link.
func IsSignInLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	q := u.Query()
	return q.Get(ParamMode) == ModeSignIn && q.Get(ParamCode) != ""
}

// CompleteSignIn consumes the code of link and opens a session for email.
// The code is single use even when the email does not match.
func (s *Service) CompleteSignIn(ctx context.Context, email, link string) (sess *domain.Session, err error) {
	defer func() { metrics.SignInsTotal.WithLabelValues("complete", metrics.Status(err)).Inc() }()

	if !IsSignInLink(link) {
		return nil, fmt.Errorf("sign-in link: %w", errs.ErrUnauthorized)
	}
	email, err = NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u, _ := url.Parse(link)
	owner, err := s.tokens.ConsumeSignInToken(ctx, hashCode(u.Query().Get(ParamCode)))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("sign-in link expired or used: %w", errs.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if owner != email {
		s.log.Warn("sign-in email mismatch", logger.String("email", email))
		return nil, fmt.Errorf("sign-in email mismatch: %w", errs.ErrUnauthorized)
	}

	user, err := s.users.GetOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign-in user: %w", err)
	}

	sess, err = s.issue(*user)
	if err != nil {
		return nil, err
	}
	s.publish("signed_in")
	s.log.Info("signed in", logger.String("uid", user.ID))
	return sess, nil
}

// Authenticate verifies a session token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsSessionRevoked(ctx, sess.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("session revoked: %w", errs.ErrUnauthorized)
	}
	return sess, nil
}

// SignOut revokes a session token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.tokens.RevokeSession(ctx, sess.TokenID, sess.ExpiresAt.Sub(s.now())); err != nil {
		return err
	}
	s.publish("signed_out")
	s.log.Info("signed out", logger.String("uid", sess.User.ID))
	return nil
}

// SessionTTL returns the lifetime of issued sessions.
func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL }

func (s *Service) publish(msg string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.KindAuth, Message: msg})
	}
}

func randomCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func signInBody(link string, ttl time.Duration) string {
	return fmt.Sprintf("Hello,\r\n\r\nFollow this link to sign in to Thai Good News:\r\n\r\n%s\r\n\r\n"+
		"The link works once and expires in %s.\r\nIf you did not ask for it, ignore this email.\r\n", link, ttl)
}
