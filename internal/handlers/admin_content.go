package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const maxContentRequestBody = 256 * 1024

// AdminContentHandlers exposes the CMS editing surface for staff users.
type AdminContentHandlers struct {
	authn   *auth.Authenticator
	content services.ContentService
}

// NewAdminContentHandlers constructs content handlers restricted to staff and admin roles.
func NewAdminContentHandlers(authn *auth.Authenticator, content services.ContentService) *AdminContentHandlers {
	return &AdminContentHandlers{
		authn:   authn,
		content: content,
	}
}

// Routes registers content editing endpoints under the /admin group.
func (h *AdminContentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	group.Put("/content/guides/{slug}", h.saveGuide)
	group.Delete("/content/guides/{slug}", h.deleteGuide)
	group.Put("/content/pages/{slug}", h.savePage)
	group.Delete("/content/pages/{slug}", h.deletePage)
}

type guideWriteRequest struct {
	Locale       string `json:"locale"`
	Jurisdiction string `json:"jurisdiction"`
	Category     string `json:"category"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	BodyRef      string `json:"body_ref"`
	Status       string `json:"status"`
}

type pageWriteRequest struct {
	Locale       string `json:"locale"`
	Jurisdiction string `json:"jurisdiction"`
	Title        string `json:"title"`
	BodyRef      string `json:"body_ref"`
	Status       string `json:"status"`
}

func (h *AdminContentHandlers) saveGuide(w http.ResponseWriter, r *http.Request) {
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

	body, err := readLimitedBody(r, maxContentRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req guideWriteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	guide, err := h.content.SaveGuide(ctx, domain.Guide{
		Slug:         slug,
		Locale:       req.Locale,
		Jurisdiction: strings.TrimSpace(req.Jurisdiction),
		Category:     strings.TrimSpace(req.Category),
		Title:        req.Title,
		Summary:      strings.TrimSpace(req.Summary),
		BodyRef:      strings.TrimSpace(req.BodyRef),
		Status:       strings.TrimSpace(req.Status),
	})
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildGuidePayload(guide))
}

func (h *AdminContentHandlers) deleteGuide(w http.ResponseWriter, r *http.Request) {
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

	if err := h.content.DeleteGuide(ctx, slug, r.URL.Query().Get("locale")); err != nil {
		writeContentError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminContentHandlers) savePage(w http.ResponseWriter, r *http.Request) {
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

	body, err := readLimitedBody(r, maxContentRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req pageWriteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	page, err := h.content.SavePage(ctx, domain.LandingPage{
		Slug:         slug,
		Locale:       req.Locale,
		Jurisdiction: strings.TrimSpace(req.Jurisdiction),
		Title:        req.Title,
		BodyRef:      strings.TrimSpace(req.BodyRef),
		Status:       strings.TrimSpace(req.Status),
	})
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

func (h *AdminContentHandlers) deletePage(w http.ResponseWriter, r *http.Request) {
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

	if err := h.content.DeletePage(ctx, slug, r.URL.Query().Get("locale")); err != nil {
		writeContentError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
