package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/repositories"
)

// ErrDocumentInvalidInput indicates the caller provided invalid data.
var ErrDocumentInvalidInput = errors.New("document: invalid input")

// ErrDocumentNotFound indicates the requested document does not exist.
var ErrDocumentNotFound = errors.New("document: not found")

// ErrDocumentUnauthorized indicates the document does not belong to the caller.
var ErrDocumentUnauthorized = errors.New("document: unauthorized")

// ErrDocumentNotReady indicates the document has not finished rendering.
var ErrDocumentNotReady = errors.New("document: not ready")

// ErrDocumentConflict indicates a render outcome contradicts the stored status.
var ErrDocumentConflict = errors.New("document: conflict")

// ErrDocumentUnavailable indicates the service cannot complete the request due to dependency failures.
var ErrDocumentUnavailable = errors.New("document: service unavailable")

var (
	errDocumentRepositoryRequired = errors.New("document: repository is required")
	errDocumentCasesRequired      = errors.New("document: case repository is required")
	errDocumentPublisherRequired  = errors.New("document: render job publisher is required")
)

const (
	documentIDPrefix           = "doc_"
	documentContentType        = "application/pdf"
	defaultDocumentDownloadTTL = 15 * time.Minute
	renderUploadTTL            = time.Hour
)

var documentKinds = map[domain.DocumentKind]struct{}{
	domain.DocumentKindSection8:   {},
	domain.DocumentKindSection21:  {},
	domain.DocumentKindMoneyClaim: {},
}

// DocumentServiceDeps wires the repositories and async pipeline for document operations.
type DocumentServiceDeps struct {
	Repository  repositories.DocumentRepository
	Cases       repositories.CaseRepository
	Publisher   RenderJobPublisher
	Signer      DocumentURLSigner
	PathBuilder func(caseID, documentID string) (string, error)
	DownloadTTL time.Duration
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type documentService struct {
	repo        repositories.DocumentRepository
	cases       repositories.CaseRepository
	publisher   RenderJobPublisher
	signer      DocumentURLSigner
	buildPath   func(caseID, documentID string) (string, error)
	downloadTTL time.Duration
	now         func() time.Time
	newID       func() string
	logger      func(context.Context, string, map[string]any)
}

// NewDocumentService constructs a DocumentService with the provided dependencies.
func NewDocumentService(deps DocumentServiceDeps) (DocumentService, error) {
	if deps.Repository == nil {
		return nil, errDocumentRepositoryRequired
	}
	if deps.Cases == nil {
		return nil, errDocumentCasesRequired
	}
	if deps.Publisher == nil {
		return nil, errDocumentPublisherRequired
	}
	downloadTTL := deps.DownloadTTL
	if downloadTTL <= 0 {
		downloadTTL = defaultDocumentDownloadTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	buildPath := deps.PathBuilder
	if buildPath == nil {
		buildPath = func(caseID, documentID string) (string, error) {
			return fmt.Sprintf("cases/%s/documents/%s.pdf", caseID, documentID), nil
		}
	}
	return &documentService{
		repo:        deps.Repository,
		cases:       deps.Cases,
		publisher:   deps.Publisher,
		signer:      deps.Signer,
		buildPath:   buildPath,
		downloadTTL: downloadTTL,
		now:         func() time.Time { return clock().UTC() },
		newID:       func() string { return documentIDPrefix + strings.ToLower(idGen()) },
		logger:      logger,
	}, nil
}

func (s *documentService) Request(ctx context.Context, cmd RequestDocumentCommand) (Document, error) {
	ownerID := strings.TrimSpace(cmd.OwnerID)
	caseID := strings.TrimSpace(cmd.CaseID)
	if ownerID == "" || caseID == "" {
		return Document{}, ErrDocumentInvalidInput
	}
	if _, ok := documentKinds[cmd.Kind]; !ok {
		return Document{}, ErrDocumentInvalidInput
	}

	owned, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return Document{}, translateCaseRepositoryError(err)
	}
	if owned.OwnerID != ownerID {
		return Document{}, ErrCaseUnauthorized
	}

	now := s.now()
	doc := domain.Document{
		ID:          s.newID(),
		CaseID:      owned.ID,
		OwnerID:     ownerID,
		Kind:        cmd.Kind,
		Status:      domain.DocumentStatusPending,
		ContentType: documentContentType,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	storagePath, err := s.buildPath(owned.ID, doc.ID)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentInvalidInput, err)
	}
	doc.StoragePath = storagePath

	if err := s.repo.Insert(ctx, doc); err != nil {
		return Document{}, translateDocumentRepositoryError(err)
	}

	job := RenderJob{
		DocumentID:  doc.ID,
		CaseID:      owned.ID,
		Kind:        cmd.Kind,
		StoragePath: doc.StoragePath,
		Notice:      buildNoticePayload(cmd.Kind, owned.Facts),
		Facts:       owned.Facts,
		RequestedAt: now,
	}
	if s.signer != nil {
		uploadURL, uploadExpiry, signErr := s.signer.SignUpload(ctx, doc.StoragePath, renderUploadTTL)
		if signErr != nil {
			// Workers with direct bucket access render without a signed URL.
			s.logger(ctx, "document.upload_sign_failed", map[string]any{
				"document_id": doc.ID,
				"error":       signErr.Error(),
			})
		} else {
			job.UploadURL = uploadURL
			job.UploadExpiresAt = uploadExpiry
		}
	}
	if err := s.publisher.PublishRender(ctx, job); err != nil {
		doc.Status = domain.DocumentStatusFailed
		doc.Error = "render job publish failed"
		doc.UpdatedAt = s.now()
		if updateErr := s.repo.Update(ctx, doc); updateErr != nil {
			s.logger(ctx, "document.mark_failed_error", map[string]any{
				"document_id": doc.ID,
				"error":       updateErr.Error(),
			})
		}
		s.logger(ctx, "document.publish_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		return Document{}, ErrDocumentUnavailable
	}

	s.logger(ctx, "document.requested", map[string]any{
		"document_id": doc.ID,
		"case_id":     owned.ID,
		"kind":        string(cmd.Kind),
	})
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, ownerID string, documentID string) (Document, error) {
	return s.load(ctx, ownerID, documentID)
}

func (s *documentService) ListByCase(ctx context.Context, ownerID string, caseID string, pager Pagination) (domain.CursorPage[Document], error) {
	ownerID = strings.TrimSpace(ownerID)
	caseID = strings.TrimSpace(caseID)
	if ownerID == "" || caseID == "" {
		return domain.CursorPage[Document]{}, ErrDocumentInvalidInput
	}
	owned, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return domain.CursorPage[Document]{}, translateCaseRepositoryError(err)
	}
	if owned.OwnerID != ownerID {
		return domain.CursorPage[Document]{}, ErrCaseUnauthorized
	}
	page, err := s.repo.ListByCase(ctx, caseID, pager)
	if err != nil {
		return domain.CursorPage[Document]{}, translateDocumentRepositoryError(err)
	}
	return page, nil
}

func (s *documentService) Download(ctx context.Context, ownerID string, documentID string) (SignedDocumentResponse, error) {
	if s.signer == nil {
		return SignedDocumentResponse{}, ErrDocumentUnavailable
	}
	doc, err := s.load(ctx, ownerID, documentID)
	if err != nil {
		return SignedDocumentResponse{}, err
	}
	if doc.Status != domain.DocumentStatusReady {
		return SignedDocumentResponse{}, ErrDocumentNotReady
	}
	url, expiresAt, err := s.signer.SignDownload(ctx, doc.StoragePath, s.downloadTTL)
	if err != nil {
		s.logger(ctx, "document.sign_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		return SignedDocumentResponse{}, ErrDocumentUnavailable
	}
	return SignedDocumentResponse{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  expiresAt,
		Method:     "GET",
	}, nil
}

func (s *documentService) CompleteRender(ctx context.Context, cmd CompleteRenderCommand) (Document, error) {
	documentID := strings.TrimSpace(cmd.DocumentID)
	if documentID == "" {
		return Document{}, ErrDocumentInvalidInput
	}
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		return Document{}, translateDocumentRepositoryError(err)
	}

	switch doc.Status {
	case domain.DocumentStatusPending, domain.DocumentStatusRendering:
	case domain.DocumentStatusReady:
		// Repeat deliveries of a successful outcome are idempotent.
		if cmd.Succeeded {
			return doc, nil
		}
		return Document{}, ErrDocumentConflict
	case domain.DocumentStatusFailed:
		if !cmd.Succeeded {
			return doc, nil
		}
		return Document{}, ErrDocumentConflict
	default:
		return Document{}, ErrDocumentConflict
	}

	now := s.now()
	if cmd.Succeeded {
		doc.Status = domain.DocumentStatusReady
		doc.Checksum = strings.TrimSpace(cmd.Checksum)
		if cmd.SizeBytes > 0 {
			doc.SizeBytes = cmd.SizeBytes
		}
		doc.Error = ""
		doc.RenderedAt = &now
	} else {
		doc.Status = domain.DocumentStatusFailed
		doc.Error = strings.TrimSpace(cmd.Error)
		if doc.Error == "" {
			doc.Error = "render failed"
		}
	}
	doc.UpdatedAt = now

	if err := s.repo.Update(ctx, doc); err != nil {
		return Document{}, translateDocumentRepositoryError(err)
	}

	s.logger(ctx, "document.render_completed", map[string]any{
		"document_id": doc.ID,
		"status":      string(doc.Status),
	})
	return doc, nil
}

func (s *documentService) load(ctx context.Context, ownerID string, documentID string) (domain.Document, error) {
	ownerID = strings.TrimSpace(ownerID)
	documentID = strings.TrimSpace(documentID)
	if ownerID == "" || documentID == "" {
		return domain.Document{}, ErrDocumentInvalidInput
	}
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		return domain.Document{}, translateDocumentRepositoryError(err)
	}
	if doc.OwnerID != ownerID {
		return domain.Document{}, ErrDocumentUnauthorized
	}
	return doc, nil
}

func translateDocumentRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrDocumentNotFound
		case repoErr.IsConflict():
			return ErrDocumentInvalidInput
		case repoErr.IsUnavailable():
			return ErrDocumentUnavailable
		}
	}
	return err
}
