package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Shiro-Bankai7/electricians/pkg/httputil"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/service"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request/response DTOs ---

// SubmitReviewRequest is the JSON request body for submitting a review.
// Rating bounds are checked by the service so out-of-range values are
// reported the same way regardless of transport.
type SubmitReviewRequest struct {
	Name   string `json:"name" validate:"notblank,max=100"`
	Rating int    `json:"rating"`
	Text   string `json:"text" validate:"notblank"`
}

// ListReviewsResponse is one page of rendered reviews plus what the next
// "load more" should request.
type ListReviewsResponse struct {
	pagination.Page[domain.RenderedReview]
	NextLimit int             `json:"next_limit"`
	Viewport  domain.Viewport `json:"viewport"`
	Summary   *domain.Summary `json:"summary"`
}

// --- Handlers ---

// ListReviews handles GET /api/v1/reviews
//
// Query parameters: offset, limit (defaults to the load-more step for offset),
// viewport (desktop|mobile) or width (CSS pixels), expanded (comma separated
// review IDs shown in full).
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	window, err := pagination.FromRequest(r)
	if err != nil {
		writeInvalidParameter(w, err.Error())
		return
	}

	viewport, err := viewportFromQuery(r)
	if err != nil {
		writeInvalidParameter(w, err.Error())
		return
	}

	if window.Limit == 0 {
		window.Limit = h.service.NextPageSize(window.Offset, viewport)
	}

	page, err := h.service.Page(r.Context(), window.Offset, window.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	expanded := expansionFromQuery(r)
	rendered := h.service.Render(page, expanded)

	httputil.WriteJSON(w, http.StatusOK, ListReviewsResponse{
		Page:      pagination.NewPage(rendered, page.Total, window),
		NextLimit: h.service.NextPageSize(page.NextOffset, viewport),
		Viewport:  viewport,
		Summary:   page.Summary,
	})
}

// GetSummary handles GET /api/v1/reviews/summary. It answers 204 while there
// are too few reviews for a meaningful summary.
func (h *ReviewHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}

// SubmitReview handles POST /api/v1/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if !httputil.Bind(w, r, &req) {
		return
	}

	review, err := h.service.Submit(r.Context(), &service.SubmitReviewInput{
		Name:   req.Name,
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, review)
}

// --- Helpers ---

var errInvalidWidth = errors.New("width must be a non-negative integer")

func viewportFromQuery(r *http.Request) (domain.Viewport, error) {
	q := r.URL.Query()
	if v := q.Get("viewport"); v != "" {
		return domain.ParseViewport(v)
	}
	if raw := q.Get("width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil || width < 0 {
			return "", errInvalidWidth
		}
		return domain.ViewportForWidth(width), nil
	}
	return domain.ViewportDesktop, nil
}

func expansionFromQuery(r *http.Request) domain.Expansion {
	raw := r.URL.Query().Get("expanded")
	if raw == "" {
		return domain.NewExpansion()
	}
	ids := strings.Split(raw, ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}
	return domain.NewExpansion(ids...)
}

func writeInvalidParameter(w http.ResponseWriter, msg string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: msg},
	})
}
