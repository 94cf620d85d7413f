package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// claims is the payload of a session token.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Service) issue(user domain.User) (*domain.Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.cfg.SessionTTL)
	c := claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &domain.Session{
		User:      user,
		Token:     signed,
		TokenID:   c.ID,
		ExpiresAt: exp,
	}, nil
}

func (s *Service) parse(token string) (*domain.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("no session: %w", errs.ErrUnauthorized)
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.cfg.Secret, nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid session: %w", errs.ErrUnauthorized)
	}
	if c.Subject == "" || c.ID == "" {
		return nil, fmt.Errorf("incomplete session: %w", errs.ErrUnauthorized)
	}

	return &domain.Session{
		User:      domain.User{ID: c.Subject, Email: c.Email},
		Token:     token,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
