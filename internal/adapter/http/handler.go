package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SearchService is the part of the listing usecase exposed over HTTP.
type SearchService interface {
	ListAvailable(ctx context.Context) (*domain.ListingPage, error)
	Search(ctx context.Context, criteria domain.Criteria) (*domain.SearchResult, error)
	GetDetails(ctx context.Context, id string) (*domain.Listing, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// PropertyHandler serves the public catalog endpoints.
type PropertyHandler struct {
	svc    SearchService
	logger *logger.Logger
}

func NewPropertyHandler(svc SearchService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, logger: log.Named("PropertyHandler")}
}

// HandleIndex lists every bookable property together with the category
// list used by the filter form.
func (h *PropertyHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListAvailable(r.Context())
	if err != nil {
		h.fail(w, r, "ListAvailable", err)
		return
	}
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "ListCategories", err)
		return
	}

	h.writeJSON(w, http.StatusOK, indexResponse{
		Listings:   toListingResponses(page.Listings),
		TotalCount: page.TotalCount,
		Categories: toCategoryResponses(categories),
	})
}

func (h *PropertyHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		h.logger.Debug("Rejected search parameters", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Search(r.Context(), criteria)
	if err != nil {
		h.fail(w, r, "Search", err)
		return
	}
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "ListCategories", err)
		return
	}

	h.writeJSON(w, http.StatusOK, searchResponse{
		Listings:      toListingResponses(result.Listings),
		TotalCount:    result.TotalCount,
		FilteredCount: result.FilteredCount,
		Categories:    toCategoryResponses(categories),
	})
}

func (h *PropertyHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.svc.GetDetails(r.Context(), id)
	if err != nil {
		h.fail(w, r, "GetDetails", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListingResponse(listing, true))
}

func (h *PropertyHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "ListCategories", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCategoryResponses(categories))
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// fail maps usecase errors onto HTTP status codes.
func (h *PropertyHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, domain.ErrListingNotFound) {
		http.Error(w, "property not found", http.StatusNotFound)
		return
	}
	h.logger.Error("Request failed",
		zap.String("operation", op),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *PropertyHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
