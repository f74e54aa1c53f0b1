package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// RangeQuery represents inclusive range filters for numeric or timestamp fields.
type RangeQuery[T comparable] struct {
	From *T
	To   *T
}

// Jurisdiction values recognized across the product catalog and content surfaces.
const (
	JurisdictionEngland         = "england"
	JurisdictionWales           = "wales"
	JurisdictionScotland        = "scotland"
	JurisdictionNorthernIreland = "northern-ireland"
)

// LeadStatus enumerates lifecycle states for captured leads.
type LeadStatus string

const (
	// LeadStatusNew indicates a lead captured from the wizard but not yet worked.
	LeadStatusNew LeadStatus = "new"
	// LeadStatusContacted indicates the team has reached out.
	LeadStatusContacted LeadStatus = "contacted"
	// LeadStatusConverted indicates the lead purchased a document pack.
	LeadStatusConverted LeadStatus = "converted"
	// LeadStatusClosed indicates the lead was disqualified or went cold.
	LeadStatusClosed LeadStatus = "closed"
)

// Lead captures the contact details a wizard run leaves behind for follow-up.
type Lead struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Product          string
	ProductTier      string
	Jurisdiction     string
	Source           string
	MarketingConsent bool
	Status           LeadStatus
	CaseID           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CaseStatus enumerates lifecycle states for landlord cases.
type CaseStatus string

const (
	// CaseStatusDraft indicates wizard answers exist but no document was requested yet.
	CaseStatusDraft CaseStatus = "draft"
	// CaseStatusReady indicates facts are complete enough for document generation.
	CaseStatusReady CaseStatus = "ready"
	// CaseStatusArchived indicates the case is closed and hidden from default listings.
	CaseStatusArchived CaseStatus = "archived"
)

// Case is a landlord's matter: the normalized facts plus the answers they came from.
type Case struct {
	ID         string
	OwnerID    string
	Product    string
	Status     CaseStatus
	Answers    WizardFacts
	Facts      CaseFacts
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// DocumentKind enumerates the document packs the platform can generate.
type DocumentKind string

const (
	// DocumentKindSection8 is the Form 3 notice under Section 8 of the Housing Act 1988.
	DocumentKindSection8 DocumentKind = "notice_section8"
	// DocumentKindSection21 is the Form 6A notice under Section 21 of the Housing Act 1988.
	DocumentKindSection21 DocumentKind = "notice_section21"
	// DocumentKindMoneyClaim is the N1 money claim form.
	DocumentKindMoneyClaim DocumentKind = "money_claim_n1"
)

// DocumentStatus enumerates render lifecycle states for generated documents.
type DocumentStatus string

const (
	// DocumentStatusPending indicates the render job is queued.
	DocumentStatusPending DocumentStatus = "pending"
	// DocumentStatusRendering indicates a worker picked the job up.
	DocumentStatusRendering DocumentStatus = "rendering"
	// DocumentStatusReady indicates the rendered file is in storage.
	DocumentStatusReady DocumentStatus = "ready"
	// DocumentStatusFailed indicates rendering failed terminally.
	DocumentStatusFailed DocumentStatus = "failed"
)

// Document tracks one generated legal document for a case.
type Document struct {
	ID          string
	CaseID      string
	OwnerID     string
	Kind        DocumentKind
	Status      DocumentStatus
	StoragePath string
	ContentType string
	Checksum    string
	SizeBytes   int64
	Error       string
	RequestedAt time.Time
	RenderedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NoticeGround is one statutory ground cited on a Section 8 notice.
type NoticeGround struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NoticePayload is the flattened field set a render worker needs to fill an
// official notice form. Values are stringified best-effort from case facts;
// unknown or missing facts come through as empty strings.
type NoticePayload struct {
	Form            string         `json:"form"`
	TenantNames     []string       `json:"tenant_names"`
	PropertyAddress []string       `json:"property_address"`
	LandlordName    string         `json:"landlord_name"`
	LandlordAddress []string       `json:"landlord_address"`
	LandlordPhone   string         `json:"landlord_phone"`
	Grounds         []NoticeGround `json:"grounds"`
	ArrearsTotal    string         `json:"arrears_total"`
	NoticeDate      string         `json:"notice_date"`
	ExpiryDate      string         `json:"expiry_date"`
	ServiceMethod   string         `json:"service_method"`
	ServedBy        string         `json:"served_by"`
}

// CheckoutSession represents PSP checkout session metadata stored by services.
type CheckoutSession struct {
	SessionID   string
	PSP         string
	CaseID      string
	Product     string
	Tier        string
	Amount      int64
	Currency    string
	Status      string
	RedirectURL string
	ExpiresAt   time.Time
}

// LandingPage stores localized marketing/SEO page metadata.
type LandingPage struct {
	ID           string
	Slug         string
	Locale       string
	Jurisdiction string
	Title        string
	BodyRef      string
	Status       string
	UpdatedAt    time.Time
}

// Guide captures localized legal-guide metadata for CMS flows.
type Guide struct {
	ID           string
	Slug         string
	Locale       string
	Jurisdiction string
	Category     string
	Title        string
	Summary      string
	BodyRef      string
	Status       string
	UpdatedAt    time.Time
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// SignedDocumentResponse returns a signed URL payload for document downloads.
type SignedDocumentResponse struct {
	DocumentID string
	URL        string
	ExpiresAt  time.Time
	Method     string
	Headers    map[string]string
}

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}
