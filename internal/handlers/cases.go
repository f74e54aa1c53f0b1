package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const (
	maxCaseRequestBody  = 256 * 1024
	defaultCasePageSize = 20
	maxCasePageSize     = 100
)

// CaseHandlers exposes case lifecycle endpoints for authenticated landlords.
type CaseHandlers struct {
	authn *auth.Authenticator
	cases services.CaseService
}

// NewCaseHandlers constructs case handlers guarded by Firebase authentication.
func NewCaseHandlers(authn *auth.Authenticator, cases services.CaseService) *CaseHandlers {
	return &CaseHandlers{
		authn: authn,
		cases: cases,
	}
}

// Routes registers case endpoints under the provided router.
func (h *CaseHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Get("/", h.listCases)
	group.Get("/{caseID}", h.getCase)
	group.Put("/{caseID}/facts", h.updateFacts)
	group.Post("/{caseID}/archive", h.archiveCase)
}

type casePayload struct {
	ID         string           `json:"id"`
	Product    string           `json:"product"`
	Status     string           `json:"status"`
	Answers    map[string]any   `json:"answers,omitempty"`
	Facts      caseFactsPayload `json:"facts"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
	ArchivedAt string           `json:"archived_at,omitempty"`
}

type caseListResponse struct {
	Items         []casePayload `json:"items"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type updateFactsRequest struct {
	Answers map[string]any `json:"answers"`
	Replace bool           `json:"replace"`
}

func buildCasePayload(c domain.Case, includeAnswers bool) casePayload {
	payload := casePayload{
		ID:         c.ID,
		Product:    c.Product,
		Status:     string(c.Status),
		Facts:      buildCaseFactsPayload(c.Facts),
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
		ArchivedAt: formatTimePointer(c.ArchivedAt),
	}
	if includeAnswers {
		payload.Answers = cloneMap(c.Answers)
	}
	return payload
}

func (h *CaseHandlers) listCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cases == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	pageSize, err := parsePageSize(r.URL.Query().Get("page_size"), defaultCasePageSize, maxCasePageSize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	includeArchived := false
	if flagRaw := strings.TrimSpace(r.URL.Query().Get("include_archived")); flagRaw != "" {
		value, err := strconv.ParseBool(flagRaw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "include_archived must be a boolean", http.StatusBadRequest))
			return
		}
		includeArchived = value
	}

	var product *string
	if raw := strings.TrimSpace(r.URL.Query().Get("product")); raw != "" {
		product = &raw
	}

	filter := services.CaseListFilter{
		Status:          parseFilterValues(r.URL.Query()["status"]),
		Product:         product,
		IncludeArchived: includeArchived,
		Pagination: services.Pagination{
			PageSize:  pageSize,
			PageToken: strings.TrimSpace(r.URL.Query().Get("page_token")),
		},
	}

	page, err := h.cases.List(ctx, identity.UID, filter)
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	items := make([]casePayload, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, buildCasePayload(c, false))
	}

	writeJSONResponse(w, http.StatusOK, caseListResponse{
		Items:         items,
		NextPageToken: page.NextPageToken,
	})
}

func (h *CaseHandlers) getCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cases == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	caseID := strings.TrimSpace(chi.URLParam(r, "caseID"))
	if caseID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "case id is required", http.StatusBadRequest))
		return
	}

	record, err := h.cases.Get(ctx, identity.UID, caseID)
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCasePayload(record, true))
}

func (h *CaseHandlers) updateFacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cases == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	caseID := strings.TrimSpace(chi.URLParam(r, "caseID"))
	if caseID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "case id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCaseRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req updateFactsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	if len(req.Answers) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "answers are required", http.StatusBadRequest))
		return
	}

	record, err := h.cases.UpdateFacts(ctx, services.UpdateCaseFactsCommand{
		OwnerID: identity.UID,
		CaseID:  caseID,
		Answers: cloneMap(req.Answers),
		Replace: req.Replace,
	})
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCasePayload(record, true))
}

func (h *CaseHandlers) archiveCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cases == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	caseID := strings.TrimSpace(chi.URLParam(r, "caseID"))
	if caseID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "case id is required", http.StatusBadRequest))
		return
	}

	record, err := h.cases.Archive(ctx, identity.UID, caseID)
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCasePayload(record, false))
}
