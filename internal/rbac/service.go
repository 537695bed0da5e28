package rbac

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service answers role and capability questions from PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Capabilities merges the capabilities granted by every role of the user.
func (s *Service) Capabilities(ctx context.Context, userID int64) (Capabilities, error) {
	rows, err := s.pool.Query(ctx, `SELECT r.capabilities
		FROM user_roles ur
		JOIN roles r ON r.name = ur.role_name
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: capabilities: %w", err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("rbac: scan capabilities: %w", err)
	}
	return mergeCapabilities(raw)
}

// UserIDsWithRole lists the ids of users holding role.
func (s *Service) UserIDsWithRole(ctx context.Context, role string) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM user_roles WHERE role_name = $1 ORDER BY user_id`, role)
	if err != nil {
		return nil, fmt.Errorf("rbac: users with role %s: %w", role, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("rbac: scan users with role %s: %w", role, err)
	}
	return ids, nil
}

func mergeCapabilities(sets [][]byte) (Capabilities, error) {
	merged := make(Capabilities)
	for _, raw := range sets {
		var caps map[string]bool
		if err := json.Unmarshal(raw, &caps); err != nil {
			return nil, fmt.Errorf("rbac: decode capabilities: %w", err)
		}
		for name, granted := range caps {
			if granted {
				merged[name] = true
			}
		}
	}
	return merged, nil
}
