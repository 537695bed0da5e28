package roles

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AddRole inserts role unless one with the same name exists. It reports
// whether a row was written.
func (r *Repository) AddRole(ctx context.Context, role Role) (bool, error) {
	caps, err := json.Marshal(role.Capabilities)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `INSERT INTO roles (name, display_name, capabilities)
		VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`, role.Name, role.DisplayName, caps)
	if err != nil {
		return false, fmt.Errorf("roles: add %s: %w", role.Name, err)
	}
	return tag.RowsAffected() == 1, nil
}
