package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/landlorddesk/api/internal/platform/auth"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const maxCheckoutRequestBody = 8 * 1024

// CheckoutHandlers exposes checkout related endpoints for authenticated users.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs checkout handlers guarded by Firebase authentication.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
}

// Routes registers checkout endpoints under the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Post("/sessions", h.startSession)
	group.Post("/sessions/{sessionID}/confirm", h.confirmSession)
}

type checkoutSessionRequest struct {
	CaseID     string `json:"caseId"`
	LeadID     string `json:"leadId"`
	Product    string `json:"product"`
	Tier       string `json:"tier"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type checkoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
	URL       string `json:"url"`
	Product   string `json:"product"`
	Tier      string `json:"tier"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (h *CheckoutHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req checkoutSessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	caseID := strings.TrimSpace(req.CaseID)
	successURL := strings.TrimSpace(req.SuccessURL)
	cancelURL := strings.TrimSpace(req.CancelURL)
	if caseID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "caseId is required", http.StatusBadRequest))
		return
	}
	if successURL == "" || cancelURL == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "successUrl and cancelUrl are required", http.StatusBadRequest))
		return
	}

	session, err := h.checkout.Start(ctx, services.StartCheckoutCommand{
		UserID:     identity.UID,
		CaseID:     caseID,
		LeadID:     strings.TrimSpace(req.LeadID),
		Product:    strings.TrimSpace(req.Product),
		Tier:       strings.TrimSpace(req.Tier),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCheckoutSessionResponse(session))
}

func (h *CheckoutHandlers) confirmSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session id is required", http.StatusBadRequest))
		return
	}

	session, err := h.checkout.Confirm(ctx, services.ConfirmCheckoutCommand{
		UserID:    identity.UID,
		SessionID: sessionID,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCheckoutSessionResponse(session))
}

func buildCheckoutSessionResponse(session services.CheckoutSession) checkoutSessionResponse {
	payload := checkoutSessionResponse{
		SessionID: session.SessionID,
		Provider:  session.PSP,
		URL:       session.RedirectURL,
		Product:   session.Product,
		Tier:      session.Tier,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Status:    session.Status,
	}
	if !session.ExpiresAt.IsZero() {
		payload.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	return payload
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutUnknownProduct):
		httpx.WriteError(ctx, w, httpx.NewError("unknown_product", "no price is configured for the requested pack", http.StatusBadRequest))
	case errors.Is(err, services.ErrCaseNotFound), errors.Is(err, services.ErrCaseUnauthorized):
		httpx.WriteError(ctx, w, httpx.NewError("case_not_found", "case not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "checkout session not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutPaymentFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_failed", "payment could not be completed", http.StatusBadGateway))
	case errors.Is(err, services.ErrCheckoutUnavailable), errors.Is(err, services.ErrCaseUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to process checkout request", http.StatusInternalServerError))
	}
}
