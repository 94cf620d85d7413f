package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo stores the users created by email-link sign-in.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const selectUserByEmail = `SELECT id::text, email, created_at FROM users WHERE email=$1`

// GetByEmail selects a user by email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.Pool.QueryRow(ctx, selectUserByEmail, strings.ToLower(email))
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, errs.ErrNotFound)
		}
		return nil, mapErr("get user", err)
	}
	return &u, nil
}

// GetOrCreateByEmail returns the user owning email, creating it on first sign-in.
func (r *UserRepo) GetOrCreateByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	const q = `INSERT INTO users (id, email) VALUES ($1, $2) RETURNING id::text, email, created_at`
	var created domain.User
	err = r.db.Pool.QueryRow(ctx, q, uuid.New(), email).Scan(&created.ID, &created.Email, &created.CreatedAt)
	if isUniqueViolation(err) {
		// Lost a race with a concurrent first sign-in.
		return r.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, mapErr("create user", err)
	}
	return &created, nil
}
