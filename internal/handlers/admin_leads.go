package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const (
	maxLeadRequestBody  = 8 * 1024
	defaultLeadPageSize = 50
	maxLeadPageSize     = 200
)

// AdminLeadHandlers exposes the lead follow-up surface for staff users.
type AdminLeadHandlers struct {
	authn *auth.Authenticator
	leads services.LeadService
}

// NewAdminLeadHandlers constructs lead handlers restricted to staff and admin roles.
func NewAdminLeadHandlers(authn *auth.Authenticator, leads services.LeadService) *AdminLeadHandlers {
	return &AdminLeadHandlers{
		authn: authn,
		leads: leads,
	}
}

// Routes registers lead endpoints under the /admin group.
func (h *AdminLeadHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	group.Get("/leads", h.listLeads)
	group.Get("/leads/export", h.exportLeads)
	group.Post("/leads/{leadID}/status", h.updateLeadStatus)
}

type leadPayload struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Product          string `json:"product,omitempty"`
	ProductTier      string `json:"product_tier,omitempty"`
	Jurisdiction     string `json:"jurisdiction,omitempty"`
	Source           string `json:"source,omitempty"`
	MarketingConsent bool   `json:"marketing_consent"`
	Status           string `json:"status"`
	CaseID           string `json:"case_id,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type leadListResponse struct {
	Items         []leadPayload `json:"items"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type leadStatusRequest struct {
	Status string `json:"status"`
}

func buildLeadPayload(lead domain.Lead) leadPayload {
	return leadPayload{
		ID:               lead.ID,
		Name:             lead.Name,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Product:          lead.Product,
		ProductTier:      lead.ProductTier,
		Jurisdiction:     lead.Jurisdiction,
		Source:           lead.Source,
		MarketingConsent: lead.MarketingConsent,
		Status:           string(lead.Status),
		CaseID:           lead.CaseID,
		CreatedAt:        formatTime(lead.CreatedAt),
		UpdatedAt:        formatTime(lead.UpdatedAt),
	}
}

func (h *AdminLeadHandlers) leadFilterFromQuery(r *http.Request) (services.LeadListFilter, error) {
	query := r.URL.Query()

	filter := services.LeadListFilter{
		Status: parseFilterValues(query["status"]),
	}
	if raw := strings.TrimSpace(query.Get("product")); raw != "" {
		filter.Product = &raw
	}
	if raw := strings.TrimSpace(query.Get("jurisdiction")); raw != "" {
		filter.Jurisdiction = &raw
	}
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := parseTimeParam(raw)
		if err != nil {
			return services.LeadListFilter{}, fmt.Errorf("invalid from: %w", err)
		}
		filter.DateRange.From = &from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := parseTimeParam(raw)
		if err != nil {
			return services.LeadListFilter{}, fmt.Errorf("invalid to: %w", err)
		}
		filter.DateRange.To = &to
	}

	pageSize, err := parsePageSize(query.Get("page_size"), defaultLeadPageSize, maxLeadPageSize)
	if err != nil {
		return services.LeadListFilter{}, err
	}
	filter.Pagination = services.Pagination{
		PageSize:  pageSize,
		PageToken: strings.TrimSpace(query.Get("page_token")),
	}
	return filter, nil
}

func (h *AdminLeadHandlers) listLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.leads == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "lead service unavailable", http.StatusServiceUnavailable))
		return
	}

	filter, err := h.leadFilterFromQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.leads.List(ctx, filter)
	if err != nil {
		writeLeadError(ctx, w, err)
		return
	}

	items := make([]leadPayload, 0, len(page.Items))
	for _, lead := range page.Items {
		items = append(items, buildLeadPayload(lead))
	}

	writeJSONResponse(w, http.StatusOK, leadListResponse{
		Items:         items,
		NextPageToken: page.NextPageToken,
	})
}

func (h *AdminLeadHandlers) exportLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.leads == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "lead service unavailable", http.StatusServiceUnavailable))
		return
	}

	filter, err := h.leadFilterFromQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	// Export walks every page itself.
	filter.Pagination = services.Pagination{}

	data, err := h.leads.ExportCSV(ctx, filter)
	if err != nil {
		writeLeadError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AdminLeadHandlers) updateLeadStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.leads == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "lead service unavailable", http.StatusServiceUnavailable))
		return
	}

	leadID := strings.TrimSpace(chi.URLParam(r, "leadID"))
	if leadID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "lead id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxLeadRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req leadStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	status := strings.TrimSpace(strings.ToLower(req.Status))
	if status == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status is required", http.StatusBadRequest))
		return
	}

	lead, err := h.leads.UpdateStatus(ctx, leadID, domain.LeadStatus(status))
	if err != nil {
		writeLeadError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildLeadPayload(lead))
}

func writeLeadError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrLeadInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrLeadNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("lead_not_found", "lead not found", http.StatusNotFound))
	case errors.Is(err, services.ErrLeadUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "lead service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process lead request", http.StatusInternalServerError))
	}
}
