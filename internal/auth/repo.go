package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByLoginOrEmail(ctx context.Context, identifier string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByLoginOrEmail fetches the user whose login equals identifier, or failing
// that whose email matches it ignoring case.
func (r *PGRepository) FindByLoginOrEmail(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, user_login, user_email, user_pass
		FROM users
		WHERE user_login = $1 OR lower(user_email) = lower($1)
		ORDER BY (user_login = $1) DESC
		LIMIT 1`, identifier).Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
