package roles

import (
	"context"
	"log/slog"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	AddRole(ctx context.Context, role Role) (bool, error)
}

// Service handles role bootstrap.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// OwnerRole is the capability set given to provisioned listing owners.
func OwnerRole() Role {
	return Role{
		Name:         shared.RoleOwner,
		DisplayName:  "Owner",
		Capabilities: map[string]bool{shared.CapRead: true},
	}
}

// AdministratorRole can open the admin pages.
func AdministratorRole() Role {
	return Role{
		Name:        shared.RoleAdministrator,
		DisplayName: "Administrator",
		Capabilities: map[string]bool{
			shared.CapRead:          true,
			shared.CapManageOptions: true,
		},
	}
}

// EnsureOwnerRole creates the owner role when absent. An existing role is left
// exactly as it is.
func (s *Service) EnsureOwnerRole(ctx context.Context) error {
	return s.ensure(ctx, OwnerRole())
}

// Install runs the one-time setup: administrator and owner roles.
func (s *Service) Install(ctx context.Context) error {
	if err := s.ensure(ctx, AdministratorRole()); err != nil {
		return err
	}
	return s.EnsureOwnerRole(ctx)
}

func (s *Service) ensure(ctx context.Context, role Role) error {
	created, err := s.repo.AddRole(ctx, role)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("role created", slog.String("role", role.Name))
	}
	return nil
}
