package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ownerassign/ownerassign/internal/platform/db"
)

const userColumns = `id, user_login, user_email, user_nicename, display_name, user_registered`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByEmail returns the user whose email matches, ignoring case.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(user_email) = lower($1)`, email)
	return scanUser(row)
}

// LoginExists reports whether login is taken.
func (r *Repository) LoginExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_login = $1)`, login).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users: login exists: %w", err)
	}
	return exists, nil
}

// Create inserts the user and its role in one transaction.
func (r *Repository) Create(ctx context.Context, rec NewUserRecord) (User, error) {
	var user User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO users (user_login, user_email, user_pass, user_nicename, display_name)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+userColumns, rec.Login, rec.Email, rec.PasswordHash, rec.Nicename, rec.DisplayName)
		created, err := scanUser(row)
		if err != nil {
			return err
		}
		if rec.Role != "" {
			if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2)`, created.ID, rec.Role); err != nil {
				return fmt.Errorf("users: assign role %s: %w", rec.Role, err)
			}
		}
		user = created
		return nil
	})
	if err != nil {
		if constraint, ok := db.UniqueViolation(err); ok {
			switch constraint {
			case "users_login_key":
				return User{}, ErrLoginExists
			case "users_email_key":
				return User{}, ErrEmailExists
			}
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.Nicename, &u.DisplayName, &u.Registered); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("users: scan: %w", err)
	}
	return u, nil
}
