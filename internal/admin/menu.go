// Package admin registers the pages of the operator back office and guards
// each one behind the capability it declares.
package admin

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/ownerassign/ownerassign/internal/rbac"
	"github.com/ownerassign/ownerassign/internal/view"
)

// PathPrefix is where admin pages are mounted.
const PathPrefix = "/admin/"

// Page describes one admin menu entry.
type Page struct {
	PageTitle  string
	MenuTitle  string
	Capability string
	Slug       string
	Icon       string
	Position   int
	// Mount registers the page handlers relative to the page path.
	Mount func(r chi.Router)
}

// Path returns the URL path of the page.
func (p Page) Path() string {
	return PathPrefix + p.Slug
}

// Menu holds the registered admin pages.
type Menu struct {
	pages []Page
}

// NewMenu constructs an empty Menu.
func NewMenu() *Menu {
	return &Menu{}
}

// Register adds page to the menu, keeping pages ordered by position.
func (m *Menu) Register(page Page) {
	m.pages = append(m.pages, page)
	sort.SliceStable(m.pages, func(i, j int) bool {
		return m.pages[i].Position < m.pages[j].Position
	})
}

// Pages returns the registered pages in menu order.
func (m *Menu) Pages() []Page {
	out := make([]Page, len(m.pages))
	copy(out, m.pages)
	return out
}

// MountRoutes mounts every page under PathPrefix behind its capability guard.
func (m *Menu) MountRoutes(r chi.Router, guard rbac.Middleware) {
	for _, page := range m.pages {
		r.Route(page.Path(), func(r chi.Router) {
			r.Use(guard.RequireCapability(page.Capability))
			r.Use(m.navMiddleware)
			page.Mount(r)
		})
	}
}

// Items lists the pages the capabilities allow.
func (m *Menu) Items(caps rbac.Capabilities) []view.NavItem {
	items := make([]view.NavItem, 0, len(m.pages))
	for _, page := range m.pages {
		if !caps.Can(page.Capability) {
			continue
		}
		items = append(items, view.NavItem{Title: page.MenuTitle, Path: page.Path(), Icon: page.Icon})
	}
	return items
}

// Landing returns the first page the capabilities allow.
func (m *Menu) Landing(caps rbac.Capabilities) (Page, bool) {
	for _, page := range m.pages {
		if caps.Can(page.Capability) {
			return page, true
		}
	}
	return Page{}, false
}

func (m *Menu) navMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := m.Items(rbac.CapabilitiesFromContext(r.Context()))
		next.ServeHTTP(w, r.WithContext(view.ContextWithNav(r.Context(), items)))
	})
}
