package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ownerassign/ownerassign/internal/shared"
)

type memoryRepo struct {
	roles  map[string]Role
	adds   int
	addErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{roles: make(map[string]Role)}
}

func (m *memoryRepo) AddRole(ctx context.Context, role Role) (bool, error) {
	if m.addErr != nil {
		return false, m.addErr
	}
	m.adds++
	if _, ok := m.roles[role.Name]; ok {
		return false, nil
	}
	m.roles[role.Name] = role
	return true, nil
}

func TestEnsureOwnerRoleCreatesReadOnlyRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.EnsureOwnerRole(context.Background()))

	role, ok := repo.roles[shared.RoleOwner]
	require.True(t, ok)
	assert.Equal(t, "Owner", role.DisplayName)
	assert.Equal(t, map[string]bool{shared.CapRead: true}, role.Capabilities)
	assert.False(t, role.Capabilities[shared.CapManageOptions])
}

func TestEnsureOwnerRoleLeavesExistingRoleUntouched(t *testing.T) {
	repo := newMemoryRepo()
	custom := Role{Name: shared.RoleOwner, DisplayName: "Listing Owner", Capabilities: map[string]bool{"read": true, "edit_posts": true}}
	repo.roles[shared.RoleOwner] = custom
	svc := NewService(repo, nil)

	require.NoError(t, svc.EnsureOwnerRole(context.Background()))
	require.NoError(t, svc.EnsureOwnerRole(context.Background()))

	assert.Equal(t, custom, repo.roles[shared.RoleOwner])
}

func TestInstallCreatesAdministratorAndOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.Install(context.Background()))

	admin, ok := repo.roles[shared.RoleAdministrator]
	require.True(t, ok)
	assert.True(t, admin.Capabilities[shared.CapManageOptions])
	assert.Contains(t, repo.roles, shared.RoleOwner)
	assert.Equal(t, 2, repo.adds)
}

func TestInstallPropagatesRepositoryErrors(t *testing.T) {
	repo := newMemoryRepo()
	repo.addErr = errors.New("db down")
	svc := NewService(repo, nil)

	assert.EqualError(t, svc.Install(context.Background()), "db down")
}
