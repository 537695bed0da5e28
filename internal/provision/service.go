// Package provision assigns listings to per-owner user accounts, creating the
// accounts from the email stored on each listing when needed.
package provision

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ownerassign/ownerassign/internal/listings"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/users"
)

// ListingStore reads listings and rewrites their author.
type ListingStore interface {
	Get(ctx context.Context, id int64) (listings.Listing, error)
	UpdateAuthor(ctx context.Context, id, authorID int64) error
}

// UserStore finds and creates accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
	CreateUser(ctx context.Context, in users.CreateUserInput) (users.User, error)
}

// Recorder counts outcomes.
type Recorder interface {
	ObserveProvision(outcome string)
}

// Auditor persists author changes.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs the lookup-or-create-then-reassign routine.
type Service struct {
	listings ListingStore
	users    UserStore
	logger   *slog.Logger
	recorder Recorder
	auditor  Auditor
	group    singleflight.Group
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithAuditor sets the audit sink.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// NewService builds Service instance.
func NewService(listingStore ListingStore, userStore UserStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{listings: listingStore, users: userStore, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provision processes each id independently and in order. Ids that do not name
// a listing, listings without an email, and failed account creations are
// skipped; earlier assignments are never undone.
func (s *Service) Provision(ctx context.Context, ids []int64) Report {
	var report Report
	for _, id := range ids {
		outcome, userID := s.provisionOne(ctx, id)
		report.add(id, outcome, userID)
		if s.recorder != nil {
			s.recorder.ObserveProvision(string(outcome))
		}
	}
	s.logger.Info("provision finished",
		slog.Int("requested", len(ids)),
		slog.Int("assigned", report.Assigned()),
		slog.Int("created", report.Count(OutcomeCreated)),
	)
	return report
}

func (s *Service) provisionOne(ctx context.Context, id int64) (Outcome, int64) {
	if id <= 0 {
		return OutcomeSkippedInvalid, 0
	}
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, listings.ErrNotFound) {
			s.logger.Warn("provision load listing", slog.Int64("listing_id", id), slog.Any("error", err))
		}
		return OutcomeSkippedInvalid, 0
	}
	if !listing.IsListing() {
		return OutcomeSkippedInvalid, 0
	}
	email := strings.TrimSpace(listing.Email)
	if email == "" {
		s.logger.Debug("provision skip listing without email", slog.Int64("listing_id", id))
		return OutcomeSkippedNoEmail, 0
	}

	user, created, err := s.findOrCreate(ctx, listing, email)
	if err != nil {
		s.logger.Debug("provision create user failed", slog.Int64("listing_id", id), slog.Any("error", err))
		return OutcomeCreateFailed, 0
	}

	if err := s.listings.UpdateAuthor(ctx, listing.ID, user.ID); err != nil {
		s.logger.Warn("provision update author", slog.Int64("listing_id", id), slog.Any("error", err))
		return OutcomeUpdateFailed, user.ID
	}
	s.audit(ctx, listing, user, created)

	if created {
		return OutcomeCreated, user.ID
	}
	return OutcomeAssignedExisting, user.ID
}

type lookup struct {
	user    users.User
	created bool
}

// findOrCreate collapses concurrent calls for the same address so two requests
// in this process cannot both create it.
func (s *Service) findOrCreate(ctx context.Context, listing listings.Listing, email string) (users.User, bool, error) {
	v, err, _ := s.group.Do(strings.ToLower(email), func() (any, error) {
		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			return lookup{user: existing}, nil
		}
		if !errors.Is(err, users.ErrNotFound) {
			return nil, err
		}
		password, err := users.GeneratePassword(users.GeneratedPasswordLength)
		if err != nil {
			return nil, err
		}
		created, err := s.users.CreateUser(ctx, users.CreateUserInput{
			Login:       listing.Title,
			Email:       email,
			Password:    password,
			DisplayName: listing.Title,
			Role:        shared.RoleOwner,
		})
		if err != nil {
			return nil, err
		}
		return lookup{user: created, created: true}, nil
	})
	if err != nil {
		return users.User{}, false, err
	}
	res := v.(lookup)
	return res.user, res.created, nil
}

func (s *Service) audit(ctx context.Context, listing listings.Listing, user users.User, created bool) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "listing.author_assigned",
		Entity:   listings.PostType,
		EntityID: strconv.FormatInt(listing.ID, 10),
		Meta: map[string]any{
			"previous_author_id": listing.AuthorID,
			"author_id":          user.ID,
			"user_created":       created,
		},
	})
	if err != nil {
		s.logger.Warn("provision audit", slog.Int64("listing_id", listing.ID), slog.Any("error", err))
	}
}
