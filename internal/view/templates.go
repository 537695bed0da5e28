package view

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one entry of the admin navigation.
type NavItem struct {
	Title string
	Path  string
	Icon  string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nav         []NavItem
	Data        any
}

type navContextKey struct{}

// ContextWithNav stores the navigation visible to the current user.
func ContextWithNav(ctx context.Context, items []NavItem) context.Context {
	return context.WithValue(ctx, navContextKey{}, items)
}

// NavFromContext returns the navigation stored by ContextWithNav.
func NavFromContext(ctx context.Context) []NavItem {
	items, _ := ctx.Value(navContextKey{}).([]NavItem)
	return items
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
