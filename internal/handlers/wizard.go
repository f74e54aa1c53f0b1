package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const maxWizardRequestBody = 256 * 1024

// WizardHandlers exposes the onboarding wizard intake endpoints.
type WizardHandlers struct {
	authn          *auth.Authenticator
	cases          services.CaseService
	previewLimiter RateLimiter
}

// WizardHandlersDeps wires wizard handler dependencies.
type WizardHandlersDeps struct {
	Authenticator *auth.Authenticator
	Cases         services.CaseService
	// PreviewLimiter throttles anonymous preview calls per client IP. Nil disables limiting.
	PreviewLimiter RateLimiter
}

// NewWizardHandlers constructs wizard handlers.
func NewWizardHandlers(deps WizardHandlersDeps) *WizardHandlers {
	return &WizardHandlers{
		authn:          deps.Authenticator,
		cases:          deps.Cases,
		previewLimiter: deps.PreviewLimiter,
	}
}

// Routes registers wizard endpoints under the provided router. Preview is
// anonymous; case submission requires a signed-in landlord.
func (h *WizardHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/preview", h.preview)

	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Post("/cases", h.submitCase)
}

type wizardContactPayload struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type wizardSubmitRequest struct {
	Answers map[string]any        `json:"answers"`
	Contact *wizardContactPayload `json:"contact"`
	Source  string                `json:"source"`
}

type wizardSubmitResponse struct {
	Case casePayload  `json:"case"`
	Lead *leadPayload `json:"lead,omitempty"`
}

type wizardPreviewRequest struct {
	Answers map[string]any `json:"answers"`
}

type wizardPreviewResponse struct {
	Facts caseFactsPayload `json:"facts"`
}

func (h *WizardHandlers) submitCase(w http.ResponseWriter, r *http.Request) {
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

	body, err := readLimitedBody(r, maxWizardRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req wizardSubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	if len(req.Answers) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "answers are required", http.StatusBadRequest))
		return
	}

	cmd := services.CreateCaseCommand{
		OwnerID: identity.UID,
		Answers: cloneMap(req.Answers),
		Source:  strings.TrimSpace(req.Source),
	}
	if req.Contact != nil {
		cmd.Contact = services.LeadContact{
			Name:             strings.TrimSpace(req.Contact.Name),
			Email:            strings.TrimSpace(req.Contact.Email),
			Phone:            strings.TrimSpace(req.Contact.Phone),
			MarketingConsent: req.Contact.MarketingConsent,
		}
	}

	result, err := h.cases.CreateFromWizard(ctx, cmd)
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	response := wizardSubmitResponse{
		Case: buildCasePayload(result.Case, true),
	}
	if result.Lead != nil {
		payload := buildLeadPayload(*result.Lead)
		response.Lead = &payload
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/cases/%s", result.Case.ID))
	writeJSONResponse(w, http.StatusCreated, response)
}

func (h *WizardHandlers) preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cases == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
		return
	}

	if h.previewLimiter != nil {
		if ok, retryAfter := h.previewLimiter.Allow(clientIP(r)); !ok {
			if retryAfter > 0 {
				seconds := (retryAfter + time.Second - 1) / time.Second
				w.Header().Set("Retry-After", strconv.FormatInt(int64(seconds), 10))
			}
			httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many preview requests", http.StatusTooManyRequests))
			return
		}
	}

	body, err := readLimitedBody(r, maxWizardRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req wizardPreviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	facts, err := h.cases.PreviewFacts(ctx, req.Answers)
	if err != nil {
		writeCaseError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, wizardPreviewResponse{
		Facts: buildCaseFactsPayload(facts),
	})
}

func writeCaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCaseInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCaseNotFound), errors.Is(err, services.ErrCaseUnauthorized):
		httpx.WriteError(ctx, w, httpx.NewError("case_not_found", "case not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCaseConflict):
		httpx.WriteError(ctx, w, httpx.NewError("case_conflict", "case state does not allow this operation", http.StatusConflict))
	case errors.Is(err, services.ErrCaseUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "case service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process case request", http.StatusInternalServerError))
	}
}
