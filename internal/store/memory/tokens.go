package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
)

type expiring struct {
	value     string
	expiresAt time.Time
}

// Tokens keeps sign-in tokens and session revocations in memory.
// Expired entries are dropped lazily on access.
type Tokens struct {
	mu      sync.Mutex
	signIn  map[string]expiring // token hash -> email
	revoked map[string]time.Time
	now     func() time.Time
}

// NewTokens creates an empty token store.
func NewTokens() *Tokens {
	return &Tokens{
		signIn:  make(map[string]expiring),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SaveSignInToken stores the email bound to a token hash.
func (t *Tokens) SaveSignInToken(_ context.Context, tokenHash, email string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.signIn[tokenHash]; ok && t.now().Before(cur.expiresAt) {
		return fmt.Errorf("sign-in token collision")
	}
	t.signIn[tokenHash] = expiring{value: email, expiresAt: t.now().Add(ttl)}
	return nil
}

// ConsumeSignInToken returns and deletes the email bound to a token hash.
func (t *Tokens) ConsumeSignInToken(_ context.Context, tokenHash string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.signIn[tokenHash]
	delete(t.signIn, tokenHash)
	if !ok || !t.now().Before(cur.expiresAt) {
		return "", fmt.Errorf("sign-in token: %w", errs.ErrNotFound)
	}
	return cur.value, nil
}

// RevokeSession marks a session ID as revoked until ttl elapses.
func (t *Tokens) RevokeSession(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.revoked[tokenID] = t.now().Add(ttl)
	return nil
}

// IsSessionRevoked reports whether a session ID was revoked.
func (t *Tokens) IsSessionRevoked(_ context.Context, tokenID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !t.now().Before(until) {
		delete(t.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
