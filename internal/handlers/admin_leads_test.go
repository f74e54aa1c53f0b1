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

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/services"
)

type stubLeadService struct {
	captureFn func(context.Context, services.CaptureLeadCommand) (services.Lead, error)
	listFn    func(context.Context, services.LeadListFilter) (domain.CursorPage[services.Lead], error)
	updateFn  func(context.Context, string, services.LeadStatus) (services.Lead, error)
	exportFn  func(context.Context, services.LeadListFilter) ([]byte, error)
}

func (s *stubLeadService) Capture(ctx context.Context, cmd services.CaptureLeadCommand) (services.Lead, error) {
	if s.captureFn != nil {
		return s.captureFn(ctx, cmd)
	}
	return services.Lead{}, nil
}

func (s *stubLeadService) List(ctx context.Context, filter services.LeadListFilter) (domain.CursorPage[services.Lead], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[services.Lead]{}, nil
}

func (s *stubLeadService) UpdateStatus(ctx context.Context, leadID string, status services.LeadStatus) (services.Lead, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, leadID, status)
	}
	return services.Lead{}, nil
}

func (s *stubLeadService) ExportCSV(ctx context.Context, filter services.LeadListFilter) ([]byte, error) {
	if s.exportFn != nil {
		return s.exportFn(ctx, filter)
	}
	return nil, nil
}

var _ services.LeadService = (*stubLeadService)(nil)

func TestAdminLeadHandlers_ListLeads_FilterPropagation(t *testing.T) {
	created := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	var captured services.LeadListFilter
	stub := &stubLeadService{
		listFn: func(_ context.Context, filter services.LeadListFilter) (domain.CursorPage[services.Lead], error) {
			captured = filter
			return domain.CursorPage[services.Lead]{
				Items: []domain.Lead{{
					ID:               "lead_a",
					Name:             "Avery Landlord",
					Email:            "avery@example.co.uk",
					Product:          "eviction_pack",
					Jurisdiction:     "england",
					MarketingConsent: true,
					Status:           domain.LeadStatusNew,
					CreatedAt:        created,
					UpdatedAt:        created,
				}},
				NextPageToken: "cursor-b",
			}, nil
		},
	}
	handler := NewAdminLeadHandlers(nil, stub)

	target := "/admin/leads?status=new,contacted&product=eviction_pack&jurisdiction=england&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z&page_size=25"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	handler.listLeads(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}
	if len(captured.Status) != 2 || captured.Status[0] != "new" || captured.Status[1] != "contacted" {
		t.Fatalf("unexpected status filter: %v", captured.Status)
	}
	if captured.Product == nil || *captured.Product != "eviction_pack" {
		t.Fatalf("unexpected product filter: %v", captured.Product)
	}
	if captured.Jurisdiction == nil || *captured.Jurisdiction != "england" {
		t.Fatalf("unexpected jurisdiction filter: %v", captured.Jurisdiction)
	}
	if captured.DateRange.From == nil || !captured.DateRange.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from bound: %v", captured.DateRange.From)
	}
	if captured.DateRange.To == nil || !captured.DateRange.To.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to bound: %v", captured.DateRange.To)
	}
	if captured.Pagination.PageSize != 25 {
		t.Fatalf("unexpected page size: %d", captured.Pagination.PageSize)
	}

	var payload leadListResponse
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "lead_a" {
		t.Fatalf("unexpected items: %+v", payload.Items)
	}
	if !payload.Items[0].MarketingConsent {
		t.Fatalf("expected marketing consent in payload")
	}
	if payload.NextPageToken != "cursor-b" {
		t.Fatalf("unexpected page token: %s", payload.NextPageToken)
	}
}

func TestAdminLeadHandlers_ListLeads_InvalidDate(t *testing.T) {
	handler := NewAdminLeadHandlers(nil, &stubLeadService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/leads?from=yesterday", nil)
	res := httptest.NewRecorder()
	handler.listLeads(res, req)

	if res.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Result().StatusCode)
	}
}

func TestAdminLeadHandlers_ExportLeads(t *testing.T) {
	var captured services.LeadListFilter
	stub := &stubLeadService{
		exportFn: func(_ context.Context, filter services.LeadListFilter) ([]byte, error) {
			captured = filter
			return []byte("id,name,email\nlead_a,Avery Landlord,avery@example.co.uk\n"), nil
		},
	}
	handler := NewAdminLeadHandlers(nil, stub)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads/export?status=converted&page_size=5&page_token=cursor", nil)
	res := httptest.NewRecorder()
	handler.exportLeads(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type: %s", got)
	}
	if got := res.Header().Get("Content-Disposition"); got != `attachment; filename="leads.csv"` {
		t.Fatalf("unexpected content disposition: %s", got)
	}
	if !strings.HasPrefix(res.Body.String(), "id,name,email") {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
	if len(captured.Status) != 1 || captured.Status[0] != "converted" {
		t.Fatalf("unexpected status filter: %v", captured.Status)
	}
	if captured.Pagination.PageSize != 0 || captured.Pagination.PageToken != "" {
		t.Fatalf("expected export to clear pagination, got %+v", captured.Pagination)
	}
}

func TestAdminLeadHandlers_UpdateLeadStatus(t *testing.T) {
	stub := &stubLeadService{
		updateFn: func(_ context.Context, leadID string, status services.LeadStatus) (services.Lead, error) {
			if leadID != "lead_a" {
				t.Fatalf("unexpected lead id: %s", leadID)
			}
			if status != domain.LeadStatusContacted {
				t.Fatalf("unexpected status: %s", status)
			}
			return domain.Lead{ID: leadID, Status: status}, nil
		},
	}
	handler := NewAdminLeadHandlers(nil, stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/leads/lead_a/status", strings.NewReader(`{"status":"Contacted"}`))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("leadID", "lead_a")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	res := httptest.NewRecorder()
	handler.updateLeadStatus(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}

	var payload leadPayload
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if payload.Status != "contacted" {
		t.Fatalf("unexpected status: %s", payload.Status)
	}
}

func TestAdminLeadHandlers_UpdateLeadStatus_NotFound(t *testing.T) {
	stub := &stubLeadService{
		updateFn: func(context.Context, string, services.LeadStatus) (services.Lead, error) {
			return services.Lead{}, services.ErrLeadNotFound
		},
	}
	handler := NewAdminLeadHandlers(nil, stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/leads/lead_x/status", strings.NewReader(`{"status":"closed"}`))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("leadID", "lead_x")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	res := httptest.NewRecorder()
	handler.updateLeadStatus(res, req)

	if res.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.Result().StatusCode)
	}
}
