package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ownerassign/ownerassign/internal/rbac"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/view"
)

type stubSource map[int64]rbac.Capabilities

func (s stubSource) Capabilities(ctx context.Context, userID int64) (rbac.Capabilities, error) {
	return s[userID], nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *[]view.NavItem) {
	t.Helper()
	var nav []view.NavItem
	menu := NewMenu()
	menu.Register(ListingUserAssignPage(func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			nav = view.NavFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
	}))
	router := chi.NewRouter()
	menu.MountRoutes(router, rbac.Middleware{Source: stubSource{
		1: {shared.CapRead: true, shared.CapManageOptions: true},
		2: {shared.CapRead: true},
	}})
	return router, &nav
}

func serveAs(router http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/listing-user-assign", nil)
	sess := &shared.Session{ID: "s"}
	sess.SetUser(userID)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestMountRoutesGuardsPage(t *testing.T) {
	router, nav := newTestRouter(t)

	assert.Equal(t, http.StatusForbidden, serveAs(router, "").Code)
	assert.Equal(t, http.StatusForbidden, serveAs(router, "2").Code)

	rr := serveAs(router, "1")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []view.NavItem{{Title: "Listing User Assign", Path: "/admin/listing-user-assign", Icon: "admin-users"}}, *nav)
}

func TestRegisterOrdersByPosition(t *testing.T) {
	menu := NewMenu()
	menu.Register(Page{Slug: "late", Position: 80, Capability: shared.CapRead})
	menu.Register(Page{Slug: "early", Position: 5, Capability: shared.CapManageOptions})

	pages := menu.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "early", pages[0].Slug)

	landing, ok := menu.Landing(rbac.Capabilities{shared.CapRead: true})
	require.True(t, ok)
	assert.Equal(t, "/admin/late", landing.Path())

	_, ok = menu.Landing(nil)
	assert.False(t, ok)
	assert.Len(t, menu.Items(rbac.Capabilities{shared.CapRead: true}), 1)
}
