package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, rec NewUserRecord) (User, error)
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	validator *validator.Validate
	hashCost  int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validator: validator.New(), hashCost: bcrypt.DefaultCost}
}

// FindByEmail returns the user registered with email.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	return s.repo.FindByEmail(ctx, email)
}

// CreateUser sanitizes and validates in, rejects taken logins and emails, and
// stores the account with a bcrypt password hash. DisplayName is stored as
// given and falls back to the login when empty.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	in.Login = SanitizeLogin(in.Login)
	in.Email = SanitizeEmail(in.Email)
	if in.Login == "" {
		return User{}, ErrEmptyLogin
	}
	if err := s.validator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return User{}, fmt.Errorf("%w: %s failed %s", ErrInvalidInput, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	taken, err := s.repo.LoginExists(ctx, in.Login)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrLoginExists
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Login
	}
	return s.repo.Create(ctx, NewUserRecord{
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: string(hash),
		Nicename:     Nicename(in.Login),
		DisplayName:  displayName,
		Role:         in.Role,
	})
}
