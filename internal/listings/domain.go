package listings

import "errors"

const (
	// PostType is the content type handled by this tool.
	PostType = "listing"
	// MetaEmail is the postmeta key holding the owner's email.
	MetaEmail = "_email"
	// PageSize is the number of listings per admin page.
	PageSize = 30
)

// ErrNotFound indicates no content item has the requested id.
var ErrNotFound = errors.New("listings: not found")

// Listing is a content item together with the fields the admin page shows.
type Listing struct {
	ID       int64
	PostType string
	Status   string
	Title    string
	Slug     string
	AuthorID int64
	// AuthorLogin is empty when AuthorID does not resolve to a user.
	AuthorLogin string
	Email       string
}

// IsListing reports whether the content item has the listing type.
func (l Listing) IsListing() bool {
	return l.PostType == PostType
}

// HasAuthor reports whether the author id resolved to a user.
func (l Listing) HasAuthor() bool {
	return l.AuthorLogin != ""
}

// ListFilter narrows the admin table query.
type ListFilter struct {
	ExcludeAuthorIDs []int64
	Limit            int
	Offset           int
}
