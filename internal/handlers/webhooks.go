package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/platform/httpx"
	"github.com/landlorddesk/api/internal/services"
)

const maxWebhookBody = 128 * 1024

const (
	stripeCheckoutCompleted = "checkout.session.completed"
	stripePaymentStatusPaid = "paid"
)

// WebhookHandlers processes PSP event deliveries. Authenticity is enforced by
// the signature middleware installed on the /webhooks group.
type WebhookHandlers struct {
	leads  services.LeadService
	logger func(ctx context.Context, event string, fields map[string]any)
}

// NewWebhookHandlers constructs webhook handlers.
func NewWebhookHandlers(leads services.LeadService, logger func(ctx context.Context, event string, fields map[string]any)) *WebhookHandlers {
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &WebhookHandlers{
		leads:  leads,
		logger: logger,
	}
}

// Routes registers webhook endpoints under the /webhooks group.
func (h *WebhookHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/stripe", h.handleStripe)
}

type stripeEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeSessionObject `json:"object"`
	} `json:"data"`
}

type stripeSessionObject struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type webhookAckResponse struct {
	Received bool `json:"received"`
}

func (h *WebhookHandlers) handleStripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxWebhookBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var event stripeEventEnvelope
	if err := json.Unmarshal(body, &event); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "event payload must be valid JSON", http.StatusBadRequest))
		return
	}

	if event.Type != stripeCheckoutCompleted {
		// Unhandled event types are acknowledged so the PSP stops retrying.
		writeJSONResponse(w, http.StatusOK, webhookAckResponse{Received: true})
		return
	}

	h.logger(ctx, "webhook.checkout_completed", map[string]any{
		"event_id":       event.ID,
		"session_id":     event.Data.Object.ID,
		"payment_status": event.Data.Object.PaymentStatus,
	})

	if event.Data.Object.PaymentStatus != stripePaymentStatusPaid {
		// Delayed payment methods complete the session before funds clear.
		// The lead converts only once Stripe reports the session as paid.
		writeJSONResponse(w, http.StatusOK, webhookAckResponse{Received: true})
		return
	}

	leadID := strings.TrimSpace(event.Data.Object.Metadata["lead_id"])
	if leadID != "" && h.leads != nil {
		if _, err := h.leads.UpdateStatus(ctx, leadID, domain.LeadStatusConverted); err != nil {
			// Missing leads are logged, not retried. Backend failures return 503
			// so the PSP redelivers.
			if errors.Is(err, services.ErrLeadUnavailable) {
				httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "lead service unavailable", http.StatusServiceUnavailable))
				return
			}
			h.logger(ctx, "webhook.lead_update_failed", map[string]any{
				"event_id": event.ID,
				"lead_id":  leadID,
				"error":    err.Error(),
			})
		}
	}

	writeJSONResponse(w, http.StatusOK, webhookAckResponse{Received: true})
}
