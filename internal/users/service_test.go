package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryRepo struct {
	users     []User
	hashes    map[int64]string
	roles     map[int64]string
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{hashes: make(map[int64]string), roles: make(map[int64]string)}
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memoryRepo) LoginExists(ctx context.Context, login string) (bool, error) {
	for _, u := range m.users {
		if u.Login == login {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Create(ctx context.Context, rec NewUserRecord) (User, error) {
	if m.createErr != nil {
		return User{}, m.createErr
	}
	u := User{
		ID:          int64(len(m.users) + 1),
		Login:       rec.Login,
		Email:       rec.Email,
		Nicename:    rec.Nicename,
		DisplayName: rec.DisplayName,
		Registered:  time.Now(),
	}
	m.users = append(m.users, u)
	m.hashes[u.ID] = rec.PasswordHash
	m.roles[u.ID] = rec.Role
	return u, nil
}

func newTestService(repo RepositoryPort) *Service {
	svc := NewService(repo)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestCreateUserSanitizesAndHashes(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Login:       "Café Olé",
		Email:       " cafe@example.com ",
		Password:    "s3cret-pass!",
		DisplayName: "Café Olé",
		Role:        "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cafe Ole", user.Login)
	assert.Equal(t, "cafe@example.com", user.Email)
	assert.Equal(t, "cafe-ole", user.Nicename)
	assert.Equal(t, "Café Olé", user.DisplayName)
	assert.Equal(t, "owner", repo.roles[user.ID])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[user.ID]), []byte("s3cret-pass!")))
}

func TestCreateUserKeepsDisplayNameVerbatim(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Login:       "  Sunny   Villa ",
		Email:       "sunny@example.com",
		Password:    "password123",
		DisplayName: "  Sunny   Villa ",
		Role:        "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunny Villa", user.Login)
	assert.Equal(t, "  Sunny   Villa ", user.DisplayName)

	user, err = svc.CreateUser(context.Background(), CreateUserInput{
		Login: "Blank Name", Email: "blank@example.com", Password: "password123", Role: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Blank Name", user.DisplayName)
}

func TestCreateUserStoresSanitizedEmailOnly(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	raw := "bad<>chars@domain.com"

	user, err := svc.CreateUser(ctx, CreateUserInput{Login: "Bad Chars", Email: raw, Password: "password123", Role: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "badchars@domain.com", user.Email)

	_, err = svc.FindByEmail(ctx, raw)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateUser(ctx, CreateUserInput{Login: "Bad Chars Two", Email: raw, Password: "password123", Role: "owner"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateUserRejections(t *testing.T) {
	base := CreateUserInput{Login: "Villa", Email: "villa@example.com", Password: "password123", Role: "owner"}

	cases := []struct {
		name  string
		setup func(*memoryRepo)
		edit  func(*CreateUserInput)
		want  error
	}{
		{name: "empty login", edit: func(in *CreateUserInput) { in.Login = "日本語" }, want: ErrEmptyLogin},
		{name: "login too long", edit: func(in *CreateUserInput) { in.Login = strings.Repeat("a", 61) }, want: ErrInvalidInput},
		{name: "invalid email", edit: func(in *CreateUserInput) { in.Email = "nope" }, want: ErrInvalidInput},
		{
			name:  "login taken",
			setup: func(r *memoryRepo) { r.users = append(r.users, User{ID: 9, Login: "Villa", Email: "other@example.com"}) },
			want:  ErrLoginExists,
		},
		{
			name:  "email taken",
			setup: func(r *memoryRepo) { r.users = append(r.users, User{ID: 9, Login: "other", Email: "VILLA@example.com"}) },
			want:  ErrEmailExists,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemoryRepo()
			if tc.setup != nil {
				tc.setup(repo)
			}
			in := base
			if tc.edit != nil {
				tc.edit(&in)
			}
			_, err := newTestService(repo).CreateUser(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateUserPropagatesRepositoryError(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("insert failed")
	_, err := newTestService(repo).CreateUser(context.Background(), CreateUserInput{
		Login: "Villa", Email: "villa@example.com", Password: "password123", Role: "owner",
	})
	assert.EqualError(t, err, "insert failed")
}

func TestFindByEmailBlankIsNotFound(t *testing.T) {
	_, err := newTestService(newMemoryRepo()).FindByEmail(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}
