package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const (
	defaultGuidePageSize = 20
	maxGuidePageSize     = 100
)

// PublicContentHandlers serves CMS guides and landing pages without authentication.
type PublicContentHandlers struct {
	content services.ContentService
}

// NewPublicContentHandlers constructs the public content handlers.
func NewPublicContentHandlers(content services.ContentService) *PublicContentHandlers {
	return &PublicContentHandlers{content: content}
}

// Routes registers content endpoints under the /public group.
func (h *PublicContentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/guides", h.listGuides)
	r.Get("/guides/{slug}", h.getGuide)
	r.Get("/pages/{slug}", h.getPage)
}

type guidePayload struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Locale       string `json:"locale"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Category     string `json:"category,omitempty"`
	Title        string `json:"title"`
	Summary      string `json:"summary,omitempty"`
	BodyRef      string `json:"body_ref,omitempty"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updated_at"`
}

type guideListResponse struct {
	Items         []guidePayload `json:"items"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

type landingPagePayload struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Locale       string `json:"locale"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Title        string `json:"title"`
	BodyRef      string `json:"body_ref,omitempty"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updated_at"`
}

func buildGuidePayload(guide domain.Guide) guidePayload {
	return guidePayload{
		ID:           guide.ID,
		Slug:         guide.Slug,
		Locale:       guide.Locale,
		Jurisdiction: guide.Jurisdiction,
		Category:     guide.Category,
		Title:        guide.Title,
		Summary:      guide.Summary,
		BodyRef:      guide.BodyRef,
		Status:       guide.Status,
		UpdatedAt:    formatTime(guide.UpdatedAt),
	}
}

func (h *PublicContentHandlers) listGuides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "content service unavailable", http.StatusServiceUnavailable))
		return
	}

	query := r.URL.Query()
	pageSize, err := parsePageSize(query.Get("page_size"), defaultGuidePageSize, maxGuidePageSize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	filter := services.GuideFilter{
		Pagination: services.Pagination{
			PageSize:  pageSize,
			PageToken: strings.TrimSpace(query.Get("page_token")),
		},
	}
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		filter.Category = &raw
	}
	if raw := strings.TrimSpace(query.Get("jurisdiction")); raw != "" {
		filter.Jurisdiction = &raw
	}
	if raw := strings.TrimSpace(query.Get("locale")); raw != "" {
		filter.Locale = &raw
	}

	page, err := h.content.ListGuides(ctx, filter)
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}

	items := make([]guidePayload, 0, len(page.Items))
	for _, guide := range page.Items {
		items = append(items, buildGuidePayload(guide))
	}

	writeJSONResponse(w, http.StatusOK, guideListResponse{
		Items:         items,
		NextPageToken: page.NextPageToken,
	})
}

func (h *PublicContentHandlers) getGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "content service unavailable", http.StatusServiceUnavailable))
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "slug is required", http.StatusBadRequest))
		return
	}

	guide, err := h.content.GetGuideBySlug(ctx, slug, r.URL.Query().Get("locale"))
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildGuidePayload(guide))
}

func (h *PublicContentHandlers) getPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "content service unavailable", http.StatusServiceUnavailable))
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "slug is required", http.StatusBadRequest))
		return
	}

	page, err := h.content.GetPage(ctx, slug, r.URL.Query().Get("locale"))
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, landingPagePayload{
		ID:           page.ID,
		Slug:         page.Slug,
		Locale:       page.Locale,
		Jurisdiction: page.Jurisdiction,
		Title:        page.Title,
		BodyRef:      page.BodyRef,
		Status:       page.Status,
		UpdatedAt:    formatTime(page.UpdatedAt),
	})
}

func writeContentError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrContentInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrContentNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("content_not_found", "content not found", http.StatusNotFound))
	case errors.Is(err, services.ErrContentUnavailable), errors.Is(err, services.ErrContentRepositoryMissing):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "content service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process content request", http.StatusInternalServerError))
	}
}
