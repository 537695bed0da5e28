package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Statuses hidden from the admin table.
var hiddenStatuses = []string{"trash", "auto-draft"}

const listingSelect = `SELECT p.id, p.post_type, p.post_status, p.post_title, p.post_name, p.post_author,
	COALESCE(u.user_login, ''), COALESCE(m.meta_value, '')
FROM posts p
LEFT JOIN users u ON u.id = p.post_author
LEFT JOIN LATERAL (
	SELECT meta_value FROM postmeta
	WHERE post_id = p.id AND meta_key = $1
	ORDER BY meta_id
	LIMIT 1
) m ON TRUE`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of listings, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Listing, int, error) {
	exclude := filter.ExcludeAuthorIDs
	if exclude == nil {
		exclude = []int64{}
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts p
		WHERE p.post_type = $1 AND p.post_status <> ALL($2) AND NOT (p.post_author = ANY($3))`,
		PostType, hiddenStatuses, exclude).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("listings: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, listingSelect+`
		WHERE p.post_type = $2 AND p.post_status <> ALL($3) AND NOT (p.post_author = ANY($4))
		ORDER BY p.post_date DESC, p.id DESC
		LIMIT $5 OFFSET $6`,
		MetaEmail, PostType, hiddenStatuses, exclude, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listings: list: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanListing)
	if err != nil {
		return nil, 0, fmt.Errorf("listings: scan: %w", err)
	}
	return items, total, nil
}

// Get returns the content item with id whatever its type.
func (r *Repository) Get(ctx context.Context, id int64) (Listing, error) {
	rows, err := r.pool.Query(ctx, listingSelect+` WHERE p.id = $2`, MetaEmail, id)
	if err != nil {
		return Listing{}, fmt.Errorf("listings: get %d: %w", id, err)
	}
	item, err := pgx.CollectOneRow(rows, scanListing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("listings: get %d: %w", id, err)
	}
	return item, nil
}

// UpdateAuthor sets the author of the content item.
func (r *Repository) UpdateAuthor(ctx context.Context, id, authorID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE posts SET post_author = $2 WHERE id = $1`, id, authorID)
	if err != nil {
		return fmt.Errorf("listings: update author of %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IDsByAuthorsWithEmail returns listings authored by any of authorIDs that carry
// a non-empty email, oldest first.
func (r *Repository) IDsByAuthorsWithEmail(ctx context.Context, authorIDs []int64) ([]int64, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT p.id FROM posts p
		WHERE p.post_type = $1 AND p.post_status <> ALL($2) AND p.post_author = ANY($3)
		AND EXISTS (
			SELECT 1 FROM postmeta m
			WHERE m.post_id = p.id AND m.meta_key = $4 AND btrim(COALESCE(m.meta_value, '')) <> ''
		)
		ORDER BY p.id`, PostType, hiddenStatuses, authorIDs, MetaEmail)
	if err != nil {
		return nil, fmt.Errorf("listings: ids by authors: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("listings: scan ids by authors: %w", err)
	}
	return ids, nil
}

func scanListing(row pgx.CollectableRow) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.PostType, &l.Status, &l.Title, &l.Slug, &l.AuthorID, &l.AuthorLogin, &l.Email)
	return l, err
}
