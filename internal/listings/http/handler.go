package listingshttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ownerassign/ownerassign/internal/listings"
	"github.com/ownerassign/ownerassign/internal/provision"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/view"
)

const (
	// ActionCreateSingle scopes the nonce carried by per-row create links.
	ActionCreateSingle = "create_single_user"

	paramFilterAdmin  = "filter_admin"
	paramPaged        = "paged"
	paramDone         = "done"
	paramSingleCreate = "single_create_user"
	paramListingID    = "listing_id"
	fieldListingIDs   = "listing_ids"
	fieldBulkCreate   = "bulk_create_users"
)

type listingService interface {
	ListPage(ctx context.Context, q listings.Query) (listings.Page, error)
}

type provisioner interface {
	Provision(ctx context.Context, ids []int64) provision.Report
}

// Handler serves the listing user assign admin page.
type Handler struct {
	logger      *slog.Logger
	service     listingService
	provisioner provisioner
	templates   *view.Engine
	csrf        *shared.CSRFManager
	siteURL     string
}

type assignPageData struct {
	FilterAdmin string
	Done        bool
	FormAction  string
	Rows        []assignRow
	Pagination  shared.Pagination
	PageLinks   []pageLink
	PrevURL     string
	NextURL     string
}

type assignRow struct {
	ID        int64
	Owner     string
	HasOwner  bool
	Title     string
	EditURL   string
	ViewURL   string
	Email     string
	CreateURL string
}

// NewHandler constructs the admin page handler. siteURL prefixes edit and view links.
func NewHandler(logger *slog.Logger, service listingService, provisioner provisioner, templates *view.Engine, csrf *shared.CSRFManager, siteURL string) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		provisioner: provisioner,
		templates:   templates,
		csrf:        csrf,
		siteURL:     strings.TrimRight(siteURL, "/"),
	}
}

// MountRoutes registers the page on r; the page lives at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showPage)
	r.Post("/", h.bulkCreate)
}

func (h *Handler) showPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := normalizeFilter(q.Get(paramFilterAdmin))
	paged := parsePaged(q.Get(paramPaged))

	if q.Get(paramSingleCreate) == "1" && q.Has(paramListingID) {
		sess := shared.SessionFromContext(r.Context())
		if h.csrf.VerifyNonce(sess, ActionCreateSingle, q.Get(shared.NonceQueryParam)) {
			id, _ := strconv.ParseInt(strings.TrimSpace(q.Get(paramListingID)), 10, 64)
			h.provisioner.Provision(r.Context(), []int64{id})
			h.redirectDone(w, r, filter, paged)
			return
		}
		h.logger.Warn("single create rejected: nonce did not verify", slog.String("listing_id", q.Get(paramListingID)))
	}

	h.renderPage(w, r, filter, paged, q.Get(paramDone) == "1")
}

func (h *Handler) bulkCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	filter := normalizeFilter(q.Get(paramFilterAdmin))
	paged := parsePaged(q.Get(paramPaged))

	ids := parseIDs(r.PostForm[fieldListingIDs])
	if !r.PostForm.Has(fieldBulkCreate) || len(ids) == 0 {
		h.renderPage(w, r, filter, paged, false)
		return
	}
	h.provisioner.Provision(r.Context(), ids)
	h.redirectDone(w, r, filter, paged)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, filter string, paged int, done bool) {
	page, err := h.service.ListPage(r.Context(), listings.Query{ShowAll: filter == "1", Page: paged})
	if err != nil {
		h.logger.Error("list listings", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	path := r.URL.Path
	nonce := h.csrf.CreateNonce(shared.SessionFromContext(r.Context()), ActionCreateSingle)
	rows := make([]assignRow, 0, len(page.Listings))
	for _, l := range page.Listings {
		rows = append(rows, assignRow{
			ID:        l.ID,
			Owner:     l.AuthorLogin,
			HasOwner:  l.HasAuthor(),
			Title:     l.Title,
			EditURL:   h.editURL(l.ID),
			ViewURL:   h.viewURL(l),
			Email:     l.Email,
			CreateURL: singleCreateURL(path, l.ID, nonce, filter),
		})
	}

	data := assignPageData{
		FilterAdmin: filter,
		Done:        done,
		FormAction:  pageURL(path, filter, paged),
		Rows:        rows,
		Pagination:  page.Pagination,
	}
	if page.Pagination.TotalPages > 1 {
		data.PageLinks = paginateLinks(path, filter, page.Pagination.Page, page.Pagination.TotalPages)
		if page.Pagination.HasPrev() {
			data.PrevURL = pageURL(path, filter, page.Pagination.Page-1)
		}
		if page.Pagination.HasNext() {
			data.NextURL = pageURL(path, filter, page.Pagination.Page+1)
		}
	}
	h.render(w, r, "pages/listings/assign.html", "Listing User Assign", data, http.StatusOK)
}

func (h *Handler) redirectDone(w http.ResponseWriter, r *http.Request, filter string, paged int) {
	location := fmt.Sprintf("%s?%s=%s&%s=%d&%s=1", r.URL.Path, paramFilterAdmin, filter, paramPaged, paged, paramDone)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Nav:         view.NavFromContext(r.Context()),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) editURL(id int64) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", h.siteURL, id)
}

func (h *Handler) viewURL(l listings.Listing) string {
	if l.Slug == "" {
		return fmt.Sprintf("%s/?p=%d", h.siteURL, l.ID)
	}
	return fmt.Sprintf("%s/listing/%s/", h.siteURL, url.PathEscape(l.Slug))
}

func singleCreateURL(path string, id int64, nonce, filter string) string {
	return fmt.Sprintf("%s?%s=1&%s=%d&%s=%s&%s=%s", path,
		paramSingleCreate, paramListingID, id, shared.NonceQueryParam, url.QueryEscape(nonce), paramFilterAdmin, filter)
}

func pageURL(path, filter string, paged int) string {
	return fmt.Sprintf("%s?%s=%s&%s=%d", path, paramFilterAdmin, filter, paramPaged, paged)
}

// normalizeFilter maps the visibility argument to "1" (show all) or "0".
func normalizeFilter(raw string) string {
	if strings.TrimSpace(raw) == "1" {
		return "1"
	}
	return "0"
}

func parsePaged(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > listings.MaxPage {
		return 1
	}
	return n
}

func parseIDs(raw []string) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
