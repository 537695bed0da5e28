package auth

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// Auditor persists login events.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	auditor Auditor
}

// NewService constructs a new Service. auditor may be nil.
func NewService(repo Repository, auditor Auditor) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Authenticate validates login-or-email/password credentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	user, err := s.repo.FindByLoginOrEmail(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RecordLogin writes a login entry to the audit log.
func (s *Service) RecordLogin(ctx context.Context, userID int64, ip, ua string) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   "auth.login",
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"ip": ip, "user_agent": ua},
	})
}
