package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/internal/engine"
	"github.com/bazaarlabs/catalog-search/internal/service"
	apperrors "github.com/bazaarlabs/catalog-search/pkg/errors"
	"github.com/bazaarlabs/catalog-search/pkg/httputil"
	"github.com/bazaarlabs/catalog-search/pkg/validator"
)

// SearchHandler handles HTTP requests for the catalog search endpoints.
type SearchHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewSearchHandler creates the catalog search HTTP handler.
func NewSearchHandler(svc *service.CatalogService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// searchParams holds the validated query parameters for a search request.
type searchParams struct {
	Query string `validate:"max=200"`
}

// SearchResult is the JSON payload for a successful search.
type SearchResult struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// IndexStatus is the JSON payload describing the index lifecycle state.
type IndexStatus struct {
	State     engine.IndexState `json:"state"`
	Documents int               `json:"documents"`
}

// Search handles GET /api/v1/catalog/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := searchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products, err := h.service.Search(r.Context(), params.Query)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SearchResult{
		Products: products,
		Count:    len(products),
	}})
}

// Reindex handles POST /api/v1/catalog/reindex. The rebuild runs in the
// background; overlapping requests are rejected.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.service.IsRebuilding() {
		httputil.WriteError(w, r, apperrors.Conflict("index rebuild already in progress"), h.logger)
		return
	}

	go func() {
		ctx := context.Background()
		if err := h.service.Initialize(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", slog.String("error", err.Error()))
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}

// IndexStatus handles GET /api/v1/catalog/index
func (h *SearchHandler) IndexStatus(w http.ResponseWriter, r *http.Request) {
	state, count, err := h.service.IndexState(r.Context())
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: IndexStatus{
		State:     state,
		Documents: count,
	}})
}

// writeSearchError maps engine failures onto the HTTP error taxonomy: a
// missing index means search is temporarily unavailable, everything else is
// an internal failure of this request only.
func (h *SearchHandler) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrIndex):
		httputil.WriteError(w, r, apperrors.Unavailable("search index is not ready"), h.logger)
	case errors.Is(err, engine.ErrMalformedResponse), errors.Is(err, engine.ErrSearch):
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
	default:
		httputil.WriteError(w, r, err, h.logger)
	}
}
