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
	maxDocumentRequestBody  = 16 * 1024
	defaultDocumentPageSize = 20
	maxDocumentPageSize     = 100
)

// DocumentHandlers exposes document generation and download endpoints.
type DocumentHandlers struct {
	authn     *auth.Authenticator
	documents services.DocumentService
}

// NewDocumentHandlers constructs document handlers guarded by Firebase authentication.
func NewDocumentHandlers(authn *auth.Authenticator, documents services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{
		authn:     authn,
		documents: documents,
	}
}

// CaseRoutes registers the case-scoped document endpoints on the /cases group.
func (h *DocumentHandlers) CaseRoutes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Post("/{caseID}/documents", h.requestDocument)
	group.Get("/{caseID}/documents", h.listDocuments)
}

// Routes registers document endpoints under the /documents group.
func (h *DocumentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Get("/{documentID}", h.getDocument)
	group.Get("/{documentID}/download", h.downloadDocument)
}

// InternalRoutes registers the render worker callback. Callers are trusted:
// the /internal group carries its own authentication middleware.
func (h *DocumentHandlers) InternalRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/documents/{documentID}/render-status", h.completeRender)
}

type documentPayload struct {
	ID          string `json:"id"`
	CaseID      string `json:"case_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Error       string `json:"error,omitempty"`
	RequestedAt string `json:"requested_at"`
	RenderedAt  string `json:"rendered_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type documentListResponse struct {
	Items         []documentPayload `json:"items"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type requestDocumentRequest struct {
	Kind string `json:"kind"`
}

type renderStatusRequest struct {
	Status    string `json:"status"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
	Error     string `json:"error"`
}

type signedDocumentPayload struct {
	DocumentID string            `json:"document_id"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	ExpiresAt  string            `json:"expires_at"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func buildDocumentPayload(doc domain.Document) documentPayload {
	return documentPayload{
		ID:          doc.ID,
		CaseID:      doc.CaseID,
		Kind:        string(doc.Kind),
		Status:      string(doc.Status),
		ContentType: doc.ContentType,
		Checksum:    doc.Checksum,
		SizeBytes:   doc.SizeBytes,
		Error:       doc.Error,
		RequestedAt: formatTime(doc.RequestedAt),
		RenderedAt:  formatTimePointer(doc.RenderedAt),
		CreatedAt:   formatTime(doc.CreatedAt),
		UpdatedAt:   formatTime(doc.UpdatedAt),
	}
}

func (h *DocumentHandlers) requestDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.documents == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
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

	body, err := readLimitedBody(r, maxDocumentRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req requestDocumentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "kind is required", http.StatusBadRequest))
		return
	}

	doc, err := h.documents.Request(ctx, services.RequestDocumentCommand{
		OwnerID: identity.UID,
		CaseID:  caseID,
		Kind:    domain.DocumentKind(kind),
	})
	if err != nil {
		writeDocumentError(ctx, w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/documents/%s", doc.ID))
	writeJSONResponse(w, http.StatusAccepted, buildDocumentPayload(doc))
}

func (h *DocumentHandlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.documents == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
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

	pageSize, err := parsePageSize(r.URL.Query().Get("page_size"), defaultDocumentPageSize, maxDocumentPageSize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.documents.ListByCase(ctx, identity.UID, caseID, services.Pagination{
		PageSize:  pageSize,
		PageToken: strings.TrimSpace(r.URL.Query().Get("page_token")),
	})
	if err != nil {
		writeDocumentError(ctx, w, err)
		return
	}

	items := make([]documentPayload, 0, len(page.Items))
	for _, doc := range page.Items {
		items = append(items, buildDocumentPayload(doc))
	}

	writeJSONResponse(w, http.StatusOK, documentListResponse{
		Items:         items,
		NextPageToken: page.NextPageToken,
	})
}

func (h *DocumentHandlers) getDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.documents == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	documentID := strings.TrimSpace(chi.URLParam(r, "documentID"))
	if documentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "document id is required", http.StatusBadRequest))
		return
	}

	doc, err := h.documents.Get(ctx, identity.UID, documentID)
	if err != nil {
		writeDocumentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildDocumentPayload(doc))
}

func (h *DocumentHandlers) downloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.documents == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	documentID := strings.TrimSpace(chi.URLParam(r, "documentID"))
	if documentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "document id is required", http.StatusBadRequest))
		return
	}

	signed, err := h.documents.Download(ctx, identity.UID, documentID)
	if err != nil {
		writeDocumentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, signedDocumentPayload{
		DocumentID: signed.DocumentID,
		URL:        signed.URL,
		Method:     signed.Method,
		ExpiresAt:  formatTime(signed.ExpiresAt),
		Headers:    signed.Headers,
	})
}

func (h *DocumentHandlers) completeRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.documents == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
		return
	}

	documentID := strings.TrimSpace(chi.URLParam(r, "documentID"))
	if documentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "document id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxDocumentRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}

	var req renderStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	var succeeded bool
	switch strings.TrimSpace(strings.ToLower(req.Status)) {
	case string(domain.DocumentStatusReady):
		succeeded = true
	case string(domain.DocumentStatusFailed):
		succeeded = false
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be ready or failed", http.StatusBadRequest))
		return
	}

	doc, err := h.documents.CompleteRender(ctx, services.CompleteRenderCommand{
		DocumentID: documentID,
		Succeeded:  succeeded,
		Checksum:   strings.TrimSpace(req.Checksum),
		SizeBytes:  req.SizeBytes,
		Error:      strings.TrimSpace(req.Error),
	})
	if err != nil {
		writeDocumentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildDocumentPayload(doc))
}

func writeDocumentError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDocumentInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrDocumentNotFound), errors.Is(err, services.ErrDocumentUnauthorized):
		httpx.WriteError(ctx, w, httpx.NewError("document_not_found", "document not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCaseNotFound), errors.Is(err, services.ErrCaseUnauthorized):
		httpx.WriteError(ctx, w, httpx.NewError("case_not_found", "case not found", http.StatusNotFound))
	case errors.Is(err, services.ErrDocumentNotReady):
		httpx.WriteError(ctx, w, httpx.NewError("document_not_ready", "document has not finished rendering", http.StatusConflict))
	case errors.Is(err, services.ErrDocumentConflict):
		httpx.WriteError(ctx, w, httpx.NewError("document_conflict", "render outcome contradicts document state", http.StatusConflict))
	case errors.Is(err, services.ErrDocumentUnavailable), errors.Is(err, services.ErrCaseUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "document service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process document request", http.StatusInternalServerError))
	}
}
