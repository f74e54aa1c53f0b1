package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/landlorddesk/api/internal/services"
)

func contentWriteRequest(method, target, slug, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("slug", slug)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminContentHandlers_SaveGuide(t *testing.T) {
	updated := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	var captured services.Guide
	stub := &stubContentService{
		saveGuideFn: func(_ context.Context, guide services.Guide) (services.Guide, error) {
			captured = guide
			guide.ID = "guide_1"
			guide.UpdatedAt = updated
			return guide, nil
		},
	}
	handler := NewAdminContentHandlers(nil, stub)

	body := `{"locale": "en-GB", "jurisdiction": "england", "category": "eviction", "title": "Section 21 basics", "body_ref": "content/guides/s21.md", "status": "published"}`
	req := contentWriteRequest(http.MethodPut, "/admin/content/guides/section-21-basics", "section-21-basics", body)
	res := httptest.NewRecorder()
	handler.saveGuide(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}
	if captured.Slug != "section-21-basics" {
		t.Fatalf("slug = %q", captured.Slug)
	}
	if captured.Jurisdiction != "england" || captured.Status != "published" {
		t.Fatalf("unexpected guide %#v", captured)
	}

	var payload guidePayload
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if payload.ID != "guide_1" || payload.Title != "Section 21 basics" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.UpdatedAt != "2026-02-02T09:00:00Z" {
		t.Fatalf("updated_at = %q", payload.UpdatedAt)
	}
}

func TestAdminContentHandlers_SaveGuide_InvalidInput(t *testing.T) {
	stub := &stubContentService{
		saveGuideFn: func(context.Context, services.Guide) (services.Guide, error) {
			return services.Guide{}, services.ErrContentInvalidInput
		},
	}
	handler := NewAdminContentHandlers(nil, stub)

	req := contentWriteRequest(http.MethodPut, "/admin/content/guides/x", "x", `{"locale": "fr", "title": "T"}`)
	res := httptest.NewRecorder()
	handler.saveGuide(res, req)

	if res.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Result().StatusCode)
	}
}

func TestAdminContentHandlers_DeleteGuide(t *testing.T) {
	var capturedSlug, capturedLocale string
	stub := &stubContentService{
		deleteGuideFn: func(_ context.Context, slug, locale string) error {
			capturedSlug = slug
			capturedLocale = locale
			return nil
		},
	}
	handler := NewAdminContentHandlers(nil, stub)

	req := contentWriteRequest(http.MethodDelete, "/admin/content/guides/old-guide?locale=cy", "old-guide", "")
	res := httptest.NewRecorder()
	handler.deleteGuide(res, req)

	if res.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.Result().StatusCode)
	}
	if capturedSlug != "old-guide" || capturedLocale != "cy" {
		t.Fatalf("delete called with %q %q", capturedSlug, capturedLocale)
	}
}

func TestAdminContentHandlers_SavePage(t *testing.T) {
	stub := &stubContentService{
		savePageFn: func(_ context.Context, page services.LandingPage) (services.LandingPage, error) {
			page.ID = "page_1"
			return page, nil
		},
	}
	handler := NewAdminContentHandlers(nil, stub)

	body := `{"locale": "en-GB", "title": "Evict a tenant", "body_ref": "content/pages/evict.md", "status": "published"}`
	req := contentWriteRequest(http.MethodPut, "/admin/content/pages/evict-a-tenant", "evict-a-tenant", body)
	res := httptest.NewRecorder()
	handler.savePage(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}

	var payload landingPagePayload
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if payload.ID != "page_1" || payload.Slug != "evict-a-tenant" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestAdminContentHandlers_SaveGuide_InvalidJSON(t *testing.T) {
	handler := NewAdminContentHandlers(nil, &stubContentService{})

	req := contentWriteRequest(http.MethodPut, "/admin/content/guides/x", "x", "not-json")
	res := httptest.NewRecorder()
	handler.saveGuide(res, req)

	if res.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Result().StatusCode)
	}
}

func TestAdminContentHandlers_DeletePage(t *testing.T) {
	deleted := false
	stub := &stubContentService{
		deletePageFn: func(_ context.Context, slug, locale string) error {
			deleted = slug == "evict-a-tenant" && locale == "en-GB"
			return nil
		},
	}
	handler := NewAdminContentHandlers(nil, stub)

	req := contentWriteRequest(http.MethodDelete, "/admin/content/pages/evict-a-tenant?locale=en-GB", "evict-a-tenant", "")
	res := httptest.NewRecorder()
	handler.deletePage(res, req)

	if res.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.Result().StatusCode)
	}
	if !deleted {
		t.Fatalf("expected delete call with slug and locale")
	}
}
