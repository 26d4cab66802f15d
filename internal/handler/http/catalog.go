package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/service"
	"github.com/utafrali/catalogsearch/pkg/httputil"
)

// CatalogHandler handles HTTP requests for catalog search endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// Suggest handles GET /api/suggest
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Suggest(r.Context(), r.URL.Query().Get("q"), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, suggestions)
}

// Terms handles GET /api/suggest/terms
func (h *CatalogHandler) Terms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	httputil.WriteData(w, map[string]any{
		"query": q,
		"terms": h.service.Expand(q),
	})
}

// Completions handles GET /api/suggest/queries
func (h *CatalogHandler) Completions(w http.ResponseWriter, r *http.Request) {
	completions, err := h.service.Completions(r.Context(), r.URL.Query().Get("q"), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, completions)
}

// Search handles GET /api/search. Malformed numbers and unknown values are
// ignored rather than rejected.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &domain.SearchRequest{
		Query:     strings.TrimSpace(q.Get("q")),
		Page:      httputil.QueryInt(r, "page", 1),
		Limit:     httputil.QueryInt(r, "limit", 0),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Location:  strings.TrimSpace(q.Get("location")),
		Filters: domain.Filters{
			MinPrice:     httputil.QueryFloat(r, "minPrice"),
			MaxPrice:     httputil.QueryFloat(r, "maxPrice"),
			Brands:       httputil.QueryList(r, "brands"),
			Categories:   httputil.QueryList(r, "categories"),
			MinRating:    httputil.QueryFloat(r, "minRating"),
			MinDiscount:  httputil.QueryFloat(r, "minDiscount"),
			Availability: q.Get("availability"),
			Offers:       httputil.QueryList(r, "offers"),
		},
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, resp)
}

// Popular handles GET /api/products/popular
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Popular(r.Context(), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, products)
}

// Product handles GET /api/product/{id}
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Product(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(r.URL.Query().Get("location")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, product)
}

// Related handles GET /api/product/{id}/related
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	related, err := h.service.Related(r.Context(), chi.URLParam(r, "id"), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, related)
}
