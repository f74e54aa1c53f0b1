package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/landlorddesk/api/internal/domain"
)

type fakeDocumentRepository struct {
	documents map[string]domain.Document
	insertErr error
	updated   []domain.Document
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{documents: map[string]domain.Document{}}
}

func (f *fakeDocumentRepository) Insert(_ context.Context, doc domain.Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.documents[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepository) Update(_ context.Context, doc domain.Document) error {
	f.documents[doc.ID] = doc
	f.updated = append(f.updated, doc)
	return nil
}

func (f *fakeDocumentRepository) FindByID(_ context.Context, documentID string) (domain.Document, error) {
	doc, ok := f.documents[documentID]
	if !ok {
		return domain.Document{}, &caseRepoError{notFound: true}
	}
	return doc, nil
}

func (f *fakeDocumentRepository) ListByCase(_ context.Context, caseID string, _ domain.Pagination) (domain.CursorPage[domain.Document], error) {
	page := domain.CursorPage[domain.Document]{Items: []domain.Document{}}
	for _, doc := range f.documents {
		if doc.CaseID == caseID {
			page.Items = append(page.Items, doc)
		}
	}
	return page, nil
}

type fakeRenderPublisher struct {
	jobs []RenderJob
	err  error
}

func (f *fakeRenderPublisher) PublishRender(_ context.Context, job RenderJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeDocumentSigner struct {
	url string
	err error
}

func (f *fakeDocumentSigner) SignDownload(_ context.Context, storagePath string, expiry time.Duration) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.url + storagePath, time.Date(2026, 3, 14, 10, 15, 0, 0, time.UTC), nil
}

func (f *fakeDocumentSigner) SignUpload(_ context.Context, storagePath string, _ time.Duration) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.url + "upload/" + storagePath, time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC), nil
}

func newTestDocumentService(t *testing.T, repo *fakeDocumentRepository, cases *fakeCaseRepository, publisher RenderJobPublisher, signer DocumentURLSigner) DocumentService {
	t.Helper()
	svc, err := NewDocumentService(DocumentServiceDeps{
		Repository:  repo,
		Cases:       cases,
		Publisher:   publisher,
		Signer:      signer,
		Clock:       func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01TESTDOCID" },
	})
	if err != nil {
		t.Fatalf("NewDocumentService: %v", err)
	}
	return svc
}

func arrearsCase() domain.Case {
	facts := arrearsCaseFacts()
	return domain.Case{ID: "case_a", OwnerID: "user_1", Status: domain.CaseStatusDraft, Facts: facts}
}

func TestDocumentServiceRequestPublishesRenderJob(t *testing.T) {
	cases := newFakeCaseRepository()
	cases.cases["case_a"] = arrearsCase()
	repo := newFakeDocumentRepository()
	publisher := &fakeRenderPublisher{}
	svc := newTestDocumentService(t, repo, cases, publisher, &fakeDocumentSigner{url: "https://signed.example/"})

	doc, err := svc.Request(context.Background(), RequestDocumentCommand{
		OwnerID: "user_1",
		CaseID:  "case_a",
		Kind:    domain.DocumentKindSection8,
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if doc.ID != "doc_01testdocid" {
		t.Fatalf("document id = %q", doc.ID)
	}
	if doc.Status != domain.DocumentStatusPending {
		t.Fatalf("status = %q, want pending", doc.Status)
	}
	if doc.StoragePath != "cases/case_a/documents/doc_01testdocid.pdf" {
		t.Fatalf("storage path = %q", doc.StoragePath)
	}
	if len(publisher.jobs) != 1 {
		t.Fatalf("expected one render job, got %d", len(publisher.jobs))
	}
	job := publisher.jobs[0]
	if job.DocumentID != doc.ID || job.Kind != domain.DocumentKindSection8 {
		t.Fatalf("job = %+v", job)
	}
	if job.Notice == nil || job.Notice.Form != "form_3" {
		t.Fatalf("job notice = %+v", job.Notice)
	}
	if job.UploadURL != "https://signed.example/upload/cases/case_a/documents/doc_01testdocid.pdf" {
		t.Fatalf("job upload url = %q", job.UploadURL)
	}
	if job.UploadExpiresAt.IsZero() {
		t.Fatal("expected upload expiry on render job")
	}
}

func TestDocumentServiceRequestRejectsUnknownKind(t *testing.T) {
	svc := newTestDocumentService(t, newFakeDocumentRepository(), newFakeCaseRepository(), &fakeRenderPublisher{}, nil)

	if _, err := svc.Request(context.Background(), RequestDocumentCommand{
		OwnerID: "user_1",
		CaseID:  "case_a",
		Kind:    domain.DocumentKind("deed_poll"),
	}); !errors.Is(err, ErrDocumentInvalidInput) {
		t.Fatalf("err = %v, want ErrDocumentInvalidInput", err)
	}
}

func TestDocumentServiceRequestEnforcesCaseOwnership(t *testing.T) {
	cases := newFakeCaseRepository()
	cases.cases["case_a"] = arrearsCase()
	svc := newTestDocumentService(t, newFakeDocumentRepository(), cases, &fakeRenderPublisher{}, nil)

	if _, err := svc.Request(context.Background(), RequestDocumentCommand{
		OwnerID: "user_2",
		CaseID:  "case_a",
		Kind:    domain.DocumentKindSection21,
	}); !errors.Is(err, ErrCaseUnauthorized) {
		t.Fatalf("err = %v, want ErrCaseUnauthorized", err)
	}
}

func TestDocumentServiceRequestMarksFailedOnPublishError(t *testing.T) {
	cases := newFakeCaseRepository()
	cases.cases["case_a"] = arrearsCase()
	repo := newFakeDocumentRepository()
	publisher := &fakeRenderPublisher{err: errors.New("topic gone")}
	svc := newTestDocumentService(t, repo, cases, publisher, nil)

	if _, err := svc.Request(context.Background(), RequestDocumentCommand{
		OwnerID: "user_1",
		CaseID:  "case_a",
		Kind:    domain.DocumentKindSection21,
	}); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("err = %v, want ErrDocumentUnavailable", err)
	}
	stored, ok := repo.documents["doc_01testdocid"]
	if !ok {
		t.Fatalf("document was not stored")
	}
	if stored.Status != domain.DocumentStatusFailed {
		t.Fatalf("status = %q, want failed", stored.Status)
	}
}

func TestDocumentServiceDownload(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.documents["doc_a"] = domain.Document{
		ID:          "doc_a",
		OwnerID:     "user_1",
		Status:      domain.DocumentStatusReady,
		StoragePath: "cases/case_a/documents/doc_a.pdf",
	}
	signer := &fakeDocumentSigner{url: "https://storage.example/"}
	svc := newTestDocumentService(t, repo, newFakeCaseRepository(), &fakeRenderPublisher{}, signer)

	signed, err := svc.Download(context.Background(), "user_1", "doc_a")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if signed.URL != "https://storage.example/cases/case_a/documents/doc_a.pdf" {
		t.Fatalf("url = %q", signed.URL)
	}
	if signed.Method != "GET" {
		t.Fatalf("method = %q", signed.Method)
	}
}

func TestDocumentServiceDownloadRequiresReadyStatus(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.documents["doc_a"] = domain.Document{ID: "doc_a", OwnerID: "user_1", Status: domain.DocumentStatusPending}
	svc := newTestDocumentService(t, repo, newFakeCaseRepository(), &fakeRenderPublisher{}, &fakeDocumentSigner{})

	if _, err := svc.Download(context.Background(), "user_1", "doc_a"); !errors.Is(err, ErrDocumentNotReady) {
		t.Fatalf("err = %v, want ErrDocumentNotReady", err)
	}
}

func TestDocumentServiceGetEnforcesOwnership(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.documents["doc_a"] = domain.Document{ID: "doc_a", OwnerID: "user_1"}
	svc := newTestDocumentService(t, repo, newFakeCaseRepository(), &fakeRenderPublisher{}, nil)

	if _, err := svc.Get(context.Background(), "user_2", "doc_a"); !errors.Is(err, ErrDocumentUnauthorized) {
		t.Fatalf("err = %v, want ErrDocumentUnauthorized", err)
	}
	if _, err := svc.Get(context.Background(), "user_1", "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestDocumentServiceCompleteRenderMarksReady(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.documents["doc_a"] = domain.Document{ID: "doc_a", OwnerID: "user_1", Status: domain.DocumentStatusPending}
	svc := newTestDocumentService(t, repo, newFakeCaseRepository(), &fakeRenderPublisher{}, nil)

	doc, err := svc.CompleteRender(context.Background(), CompleteRenderCommand{
		DocumentID: "doc_a",
		Succeeded:  true,
		Checksum:   "sha256:abc",
		SizeBytes:  2048,
	})
	if err != nil {
		t.Fatalf("CompleteRender: %v", err)
	}
	if doc.Status != domain.DocumentStatusReady {
		t.Fatalf("status = %q", doc.Status)
	}
	if doc.Checksum != "sha256:abc" || doc.SizeBytes != 2048 {
		t.Fatalf("checksum/size = %q/%d", doc.Checksum, doc.SizeBytes)
	}
	if doc.RenderedAt == nil || !doc.RenderedAt.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("renderedAt = %v", doc.RenderedAt)
	}

	// A repeat success delivery is a no-op.
	again, err := svc.CompleteRender(context.Background(), CompleteRenderCommand{DocumentID: "doc_a", Succeeded: true})
	if err != nil {
		t.Fatalf("repeat CompleteRender: %v", err)
	}
	if again.Checksum != "sha256:abc" {
		t.Fatalf("repeat checksum = %q", again.Checksum)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("updates = %d, want 1", len(repo.updated))
	}
}

func TestDocumentServiceCompleteRenderMarksFailed(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.documents["doc_a"] = domain.Document{ID: "doc_a", OwnerID: "user_1", Status: domain.DocumentStatusRendering}
	svc := newTestDocumentService(t, repo, newFakeCaseRepository(), &fakeRenderPublisher{}, nil)

	doc, err := svc.CompleteRender(context.Background(), CompleteRenderCommand{
		DocumentID: "doc_a",
		Succeeded:  false,
		Error:      "template missing",
	})
	if err != nil {
		t.Fatalf("CompleteRender: %v", err)
	}
	if doc.Status != domain.DocumentStatusFailed {
		t.Fatalf("status = %q", doc.Status)
	}
	if doc.Error != "template missing" {
		t.Fatalf("error = %q", doc.Error)
	}

	// A success arriving after a recorded failure contradicts stored state.
	if _, err := svc.CompleteRender(context.Background(), CompleteRenderCommand{DocumentID: "doc_a", Succeeded: true}); !errors.Is(err, ErrDocumentConflict) {
		t.Fatalf("err = %v, want ErrDocumentConflict", err)
	}
}
