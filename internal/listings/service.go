package listings

import (
	"context"
	"fmt"
	"math"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// RepositoryPort defines data access methods for listings.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Listing, int, error)
	Get(ctx context.Context, id int64) (Listing, error)
	UpdateAuthor(ctx context.Context, id, authorID int64) error
	IDsByAuthorsWithEmail(ctx context.Context, authorIDs []int64) ([]int64, error)
}

// RoleDirectory lists the users holding a role.
type RoleDirectory interface {
	UserIDsWithRole(ctx context.Context, role string) ([]int64, error)
}

// MaxPage is the highest page number whose row offset fits in an int.
const MaxPage = math.MaxInt / PageSize

// Query selects one admin table page.
type Query struct {
	// ShowAll includes listings authored by administrators.
	ShowAll bool
	Page    int
}

// Page is one rendered slice of the admin table.
type Page struct {
	Listings   []Listing
	Pagination shared.Pagination
}

// Service handles listing queries.
type Service struct {
	repo  RepositoryPort
	roles RoleDirectory
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roles RoleDirectory) *Service {
	return &Service{repo: repo, roles: roles}
}

// ListPage returns the requested page. Unless q.ShowAll is set, listings whose
// author holds the administrator role are left out.
func (s *Service) ListPage(ctx context.Context, q Query) (Page, error) {
	pager := shared.NewPagination(min(q.Page, MaxPage), PageSize, 0)
	filter := ListFilter{Limit: PageSize, Offset: pager.Offset()}
	if !q.ShowAll {
		admins, err := s.roles.UserIDsWithRole(ctx, shared.RoleAdministrator)
		if err != nil {
			return Page{}, fmt.Errorf("listings: resolve administrators: %w", err)
		}
		filter.ExcludeAuthorIDs = admins
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	return Page{Listings: items, Pagination: shared.NewPagination(pager.Page, PageSize, total)}, nil
}

// Get returns the content item with id.
func (s *Service) Get(ctx context.Context, id int64) (Listing, error) {
	return s.repo.Get(ctx, id)
}

// UpdateAuthor reassigns the content item to authorID.
func (s *Service) UpdateAuthor(ctx context.Context, id, authorID int64) error {
	return s.repo.UpdateAuthor(ctx, id, authorID)
}

// AdminOwnedWithEmail returns the listings still authored by administrators
// that carry an owner email.
func (s *Service) AdminOwnedWithEmail(ctx context.Context) ([]int64, error) {
	admins, err := s.roles.UserIDsWithRole(ctx, shared.RoleAdministrator)
	if err != nil {
		return nil, fmt.Errorf("listings: resolve administrators: %w", err)
	}
	return s.repo.IDsByAuthorsWithEmail(ctx, admins)
}
