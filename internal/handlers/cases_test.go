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
	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/services"
)

func caseRequestWithIdentity(method, target, body, caseID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: "user-1"}))
	if caseID != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("caseID", caseID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}
	return req
}

func TestCaseHandlers_ListCases_FilterPropagation(t *testing.T) {
	var capturedOwner string
	var capturedFilter services.CaseListFilter
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	stub := &stubCaseService{
		listFn: func(_ context.Context, ownerID string, filter services.CaseListFilter) (domain.CursorPage[services.Case], error) {
			capturedOwner = ownerID
			capturedFilter = filter
			return domain.CursorPage[services.Case]{
				Items: []domain.Case{{
					ID:        "case_a",
					OwnerID:   ownerID,
					Product:   "eviction_pack",
					Status:    domain.CaseStatusReady,
					Answers:   domain.WizardFacts{"landlord_name": "Avery"},
					CreatedAt: created,
					UpdatedAt: created,
				}},
				NextPageToken: "token-2",
			}, nil
		},
	}
	handler := NewCaseHandlers(nil, stub)

	req := caseRequestWithIdentity(http.MethodGet, "/cases?status=Draft,ready&product=eviction_pack&include_archived=true&page_size=5&page_token=token-1", "", "")
	res := httptest.NewRecorder()
	handler.listCases(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}
	if capturedOwner != "user-1" {
		t.Fatalf("expected owner user-1, got %s", capturedOwner)
	}
	if len(capturedFilter.Status) != 2 || capturedFilter.Status[0] != "draft" || capturedFilter.Status[1] != "ready" {
		t.Fatalf("unexpected status filter: %v", capturedFilter.Status)
	}
	if capturedFilter.Product == nil || *capturedFilter.Product != "eviction_pack" {
		t.Fatalf("unexpected product filter: %v", capturedFilter.Product)
	}
	if !capturedFilter.IncludeArchived {
		t.Fatalf("expected include_archived to propagate")
	}
	if capturedFilter.Pagination.PageSize != 5 || capturedFilter.Pagination.PageToken != "token-1" {
		t.Fatalf("unexpected pagination: %+v", capturedFilter.Pagination)
	}

	var payload caseListResponse
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "case_a" {
		t.Fatalf("unexpected items: %+v", payload.Items)
	}
	if payload.Items[0].Answers != nil {
		t.Fatalf("expected answers omitted from list payloads")
	}
	if payload.NextPageToken != "token-2" {
		t.Fatalf("unexpected page token: %s", payload.NextPageToken)
	}
}

func TestCaseHandlers_ListCases_InvalidIncludeArchived(t *testing.T) {
	handler := NewCaseHandlers(nil, &stubCaseService{})

	req := caseRequestWithIdentity(http.MethodGet, "/cases?include_archived=sometimes", "", "")
	res := httptest.NewRecorder()
	handler.listCases(res, req)

	if res.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Result().StatusCode)
	}
}

func TestCaseHandlers_GetCase_IncludesAnswers(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	stub := &stubCaseService{
		getFn: func(_ context.Context, ownerID, caseID string) (services.Case, error) {
			if ownerID != "user-1" || caseID != "case_a" {
				t.Fatalf("unexpected lookup: owner=%s case=%s", ownerID, caseID)
			}
			return domain.Case{
				ID:        "case_a",
				OwnerID:   ownerID,
				Product:   "eviction_pack",
				Status:    domain.CaseStatusDraft,
				Answers:   domain.WizardFacts{"landlord_name": "Avery"},
				CreatedAt: created,
				UpdatedAt: created,
			}, nil
		},
	}
	handler := NewCaseHandlers(nil, stub)

	req := caseRequestWithIdentity(http.MethodGet, "/cases/case_a", "", "case_a")
	res := httptest.NewRecorder()
	handler.getCase(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}

	var payload casePayload
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if payload.ID != "case_a" || payload.Status != "draft" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Answers["landlord_name"] != "Avery" {
		t.Fatalf("expected answers in detail payload")
	}
}

func TestCaseHandlers_GetCase_NotFound(t *testing.T) {
	stub := &stubCaseService{
		getFn: func(context.Context, string, string) (services.Case, error) {
			return services.Case{}, services.ErrCaseNotFound
		},
	}
	handler := NewCaseHandlers(nil, stub)

	req := caseRequestWithIdentity(http.MethodGet, "/cases/missing", "", "missing")
	res := httptest.NewRecorder()
	handler.getCase(res, req)

	if res.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.Result().StatusCode)
	}
}

func TestCaseHandlers_UpdateFacts_ReplaceFlag(t *testing.T) {
	var captured services.UpdateCaseFactsCommand
	stub := &stubCaseService{
		updateFn: func(_ context.Context, cmd services.UpdateCaseFactsCommand) (services.Case, error) {
			captured = cmd
			return domain.Case{
				ID:      cmd.CaseID,
				OwnerID: cmd.OwnerID,
				Product: "eviction_pack",
				Status:  domain.CaseStatusDraft,
				Answers: cmd.Answers,
			}, nil
		},
	}
	handler := NewCaseHandlers(nil, stub)

	body := `{"answers":{"has_arrears":"yes"},"replace":true}`
	req := caseRequestWithIdentity(http.MethodPut, "/cases/case_a/facts", body, "case_a")
	res := httptest.NewRecorder()
	handler.updateFacts(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}
	if captured.OwnerID != "user-1" || captured.CaseID != "case_a" {
		t.Fatalf("unexpected command: %+v", captured)
	}
	if !captured.Replace {
		t.Fatalf("expected replace flag to propagate")
	}
	if captured.Answers["has_arrears"] != "yes" {
		t.Fatalf("unexpected answers: %v", captured.Answers)
	}
}

func TestCaseHandlers_UpdateFacts_RequiresAnswers(t *testing.T) {
	handler := NewCaseHandlers(nil, &stubCaseService{})

	req := caseRequestWithIdentity(http.MethodPut, "/cases/case_a/facts", `{"replace":false}`, "case_a")
	res := httptest.NewRecorder()
	handler.updateFacts(res, req)

	if res.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Result().StatusCode)
	}
}

func TestCaseHandlers_ArchiveCase(t *testing.T) {
	archived := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	stub := &stubCaseService{
		archiveFn: func(_ context.Context, ownerID, caseID string) (services.Case, error) {
			return domain.Case{
				ID:         caseID,
				OwnerID:    ownerID,
				Product:    "eviction_pack",
				Status:     domain.CaseStatusArchived,
				ArchivedAt: &archived,
			}, nil
		},
	}
	handler := NewCaseHandlers(nil, stub)

	req := caseRequestWithIdentity(http.MethodPost, "/cases/case_a/archive", "", "case_a")
	res := httptest.NewRecorder()
	handler.archiveCase(res, req)

	if res.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Result().StatusCode, res.Body.String())
	}

	var payload casePayload
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	if payload.Status != "archived" {
		t.Fatalf("unexpected status: %s", payload.Status)
	}
	if payload.ArchivedAt == "" {
		t.Fatalf("expected archived_at in payload")
	}
	if payload.Answers != nil {
		t.Fatalf("expected answers omitted after archive")
	}
}

func TestCaseHandlers_Unauthorized_MapsToNotFound(t *testing.T) {
	stub := &stubCaseService{
		getFn: func(context.Context, string, string) (services.Case, error) {
			return services.Case{}, services.ErrCaseUnauthorized
		},
	}
	handler := NewCaseHandlers(nil, stub)

	req := caseRequestWithIdentity(http.MethodGet, "/cases/case_b", "", "case_b")
	res := httptest.NewRecorder()
	handler.getCase(res, req)

	if res.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.Result().StatusCode)
	}
}
