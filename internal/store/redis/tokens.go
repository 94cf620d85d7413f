package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/redis/go-redis/v9"
)

// SaveSignInToken stores the email a one-time sign-in token was issued for.
// The token itself never reaches Redis, only its hash.
func (s *Store) SaveSignInToken(ctx context.Context, tokenHash, email string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, SignInKey(tokenHash), email, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save sign-in token: %w", err)
	}
	if !ok {
		return fmt.Errorf("sign-in token collision")
	}
	return nil
}

// ConsumeSignInToken returns the email bound to a token and deletes it in
// the same command, so a link works at most once.
func (s *Store) ConsumeSignInToken(ctx context.Context, tokenHash string) (string, error) {
	email, err := s.client.GetDel(ctx, SignInKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("sign-in token: %w", errs.ErrNotFound)
		}
		return "", fmt.Errorf("failed to consume sign-in token: %w", err)
	}
	return email, nil
}

// RevokeSession marks a session ID as revoked until ttl elapses.
func (s *Store) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, RevokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether a session ID was revoked.
func (s *Store) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, RevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
