package admin

import (
	"github.com/go-chi/chi/v5"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// ListingUserAssignSlug identifies the listing user assign page.
const ListingUserAssignSlug = "listing-user-assign"

// ListingUserAssignPage describes the listing user assign page served by mount.
func ListingUserAssignPage(mount func(r chi.Router)) Page {
	return Page{
		PageTitle:  "Listing User Assign",
		MenuTitle:  "Listing User Assign",
		Capability: shared.CapManageOptions,
		Slug:       ListingUserAssignSlug,
		Icon:       "admin-users",
		Position:   25,
		Mount:      mount,
	}
}
