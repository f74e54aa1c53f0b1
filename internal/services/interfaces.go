package services

import (
	"context"
	"time"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination             = domain.Pagination
	SortOrder              = domain.SortOrder
	WizardFacts            = domain.WizardFacts
	CaseFacts              = domain.CaseFacts
	Case                   = domain.Case
	CaseStatus             = domain.CaseStatus
	Lead                   = domain.Lead
	LeadStatus             = domain.LeadStatus
	Document               = domain.Document
	DocumentKind           = domain.DocumentKind
	NoticePayload          = domain.NoticePayload
	CheckoutSession        = domain.CheckoutSession
	Guide                  = domain.Guide
	LandingPage            = domain.LandingPage
	SystemHealthReport     = domain.SystemHealthReport
	SignedDocumentResponse = domain.SignedDocumentResponse
)

// CaseService owns landlord case lifecycle: wizard intake, facts updates, and listings.
type CaseService interface {
	CreateFromWizard(ctx context.Context, cmd CreateCaseCommand) (CaseIntakeResult, error)
	PreviewFacts(ctx context.Context, answers WizardFacts) (CaseFacts, error)
	Get(ctx context.Context, ownerID string, caseID string) (Case, error)
	List(ctx context.Context, ownerID string, filter CaseListFilter) (domain.CursorPage[Case], error)
	UpdateFacts(ctx context.Context, cmd UpdateCaseFactsCommand) (Case, error)
	Archive(ctx context.Context, ownerID string, caseID string) (Case, error)
}

// LeadService records wizard contact captures and serves the admin leads view.
type LeadService interface {
	Capture(ctx context.Context, cmd CaptureLeadCommand) (Lead, error)
	List(ctx context.Context, filter LeadListFilter) (domain.CursorPage[Lead], error)
	UpdateStatus(ctx context.Context, leadID string, status LeadStatus) (Lead, error)
	ExportCSV(ctx context.Context, filter LeadListFilter) ([]byte, error)
}

// DocumentService coordinates document generation requests and downloads.
type DocumentService interface {
	Request(ctx context.Context, cmd RequestDocumentCommand) (Document, error)
	Get(ctx context.Context, ownerID string, documentID string) (Document, error)
	ListByCase(ctx context.Context, ownerID string, caseID string, pager Pagination) (domain.CursorPage[Document], error)
	Download(ctx context.Context, ownerID string, documentID string) (SignedDocumentResponse, error)
	// CompleteRender records a render worker outcome. It is called by trusted
	// internal endpoints and performs no ownership check.
	CompleteRender(ctx context.Context, cmd CompleteRenderCommand) (Document, error)
}

// CheckoutService coordinates PSP session creation and client confirmations.
type CheckoutService interface {
	Start(ctx context.Context, cmd StartCheckoutCommand) (CheckoutSession, error)
	Confirm(ctx context.Context, cmd ConfirmCheckoutCommand) (CheckoutSession, error)
}

// ContentService serves CMS guides and landing pages and carries the staff
// editing surface.
type ContentService interface {
	ListGuides(ctx context.Context, filter GuideFilter) (domain.CursorPage[Guide], error)
	GetGuideBySlug(ctx context.Context, slug string, locale string) (Guide, error)
	GetPage(ctx context.Context, slug string, locale string) (LandingPage, error)
	SaveGuide(ctx context.Context, guide Guide) (Guide, error)
	DeleteGuide(ctx context.Context, slug string, locale string) error
	SavePage(ctx context.Context, page LandingPage) (LandingPage, error)
	DeletePage(ctx context.Context, slug string, locale string) error
}

// SystemService aggregates utility endpoints (health checks, build metadata).
type SystemService interface {
	Health(ctx context.Context) (SystemHealthReport, error)
	BuildInfo() BuildInfo
}

// RenderJobPublisher hands document render jobs to the async pipeline.
type RenderJobPublisher interface {
	PublishRender(ctx context.Context, job RenderJob) error
}

// RenderJob is the message a render worker consumes to produce a document file.
// UploadURL, when set, is a signed PUT URL the worker uses to store the
// rendered PDF; workers with direct bucket access may ignore it.
type RenderJob struct {
	DocumentID      string         `json:"document_id"`
	CaseID          string         `json:"case_id"`
	Kind            DocumentKind   `json:"kind"`
	StoragePath     string         `json:"storage_path"`
	UploadURL       string         `json:"upload_url,omitempty"`
	UploadExpiresAt time.Time      `json:"upload_expires_at"`
	Notice          *NoticePayload `json:"notice,omitempty"`
	Facts           CaseFacts      `json:"facts"`
	RequestedAt     time.Time      `json:"requested_at"`
}

// DocumentURLSigner issues signed URLs for document objects.
type DocumentURLSigner interface {
	SignDownload(ctx context.Context, storagePath string, expiry time.Duration) (string, time.Time, error)
	SignUpload(ctx context.Context, storagePath string, expiry time.Duration) (string, time.Time, error)
}

// TextSanitizer strips markup from free-text wizard answers before persistence.
type TextSanitizer interface {
	Sanitize(value string) string
}

// Command and DTO definitions ------------------------------------------------

type CreateCaseCommand struct {
	OwnerID string
	Answers WizardFacts
	Contact LeadContact
	Source  string
}

// LeadContact carries the optional lead capture fields a wizard run submits.
type LeadContact struct {
	Name             string
	Email            string
	Phone            string
	MarketingConsent bool
}

// CaseIntakeResult bundles the stored case with the lead the intake produced, if any.
type CaseIntakeResult struct {
	Case Case
	Lead *Lead
}

type UpdateCaseFactsCommand struct {
	OwnerID string
	CaseID  string
	Answers WizardFacts
	// Replace discards previously stored answers instead of overlaying them.
	Replace bool
}

type CaseListFilter struct {
	Status          []string
	Product         *string
	IncludeArchived bool
	Pagination      Pagination
}

type CaptureLeadCommand struct {
	Contact      LeadContact
	Product      string
	ProductTier  string
	Jurisdiction string
	Source       string
	CaseID       string
}

type LeadListFilter struct {
	Status       []string
	Product      *string
	Jurisdiction *string
	DateRange    domain.RangeQuery[time.Time]
	Pagination   Pagination
}

type RequestDocumentCommand struct {
	OwnerID string
	CaseID  string
	Kind    DocumentKind
}

// CompleteRenderCommand reports the terminal outcome of one render job.
type CompleteRenderCommand struct {
	DocumentID string
	Succeeded  bool
	Checksum   string
	SizeBytes  int64
	Error      string
}

type StartCheckoutCommand struct {
	UserID     string
	CaseID     string
	Product    string
	Tier       string
	SuccessURL string
	CancelURL  string
	// LeadID, when set, is carried in PSP metadata so webhook deliveries can
	// mark the lead converted.
	LeadID string
}

type ConfirmCheckoutCommand struct {
	UserID    string
	SessionID string
}

type GuideFilter struct {
	Category     *string
	Jurisdiction *string
	Locale       *string
	Pagination   Pagination
}

// BuildInfo carries version metadata stamped at build time.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// leadRepositoryFilter converts the service filter into its repository shape.
func leadRepositoryFilter(filter LeadListFilter) repositories.LeadListFilter {
	return repositories.LeadListFilter{
		Status:       filter.Status,
		Product:      filter.Product,
		Jurisdiction: filter.Jurisdiction,
		DateRange:    filter.DateRange,
		Pagination:   filter.Pagination,
	}
}
