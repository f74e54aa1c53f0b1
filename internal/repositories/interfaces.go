package repositories

import (
	"context"
	"time"

	domain "github.com/landlorddesk/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CaseRepository persists landlord cases and their normalized facts.
type CaseRepository interface {
	Insert(ctx context.Context, c domain.Case) error
	Update(ctx context.Context, c domain.Case) error
	FindByID(ctx context.Context, caseID string) (domain.Case, error)
	ListByOwner(ctx context.Context, ownerID string, filter CaseListFilter) (domain.CursorPage[domain.Case], error)
}

// LeadRepository stores wizard lead captures for the admin team.
type LeadRepository interface {
	Insert(ctx context.Context, lead domain.Lead) error
	Update(ctx context.Context, lead domain.Lead) error
	FindByID(ctx context.Context, leadID string) (domain.Lead, error)
	List(ctx context.Context, filter LeadListFilter) (domain.CursorPage[domain.Lead], error)
}

// DocumentRepository tracks generated document records per case.
type DocumentRepository interface {
	Insert(ctx context.Context, doc domain.Document) error
	Update(ctx context.Context, doc domain.Document) error
	FindByID(ctx context.Context, documentID string) (domain.Document, error)
	ListByCase(ctx context.Context, caseID string, pager domain.Pagination) (domain.CursorPage[domain.Document], error)
}

// ContentRepository stores CMS-managed guides and landing pages.
type ContentRepository interface {
	ListGuides(ctx context.Context, filter GuideFilter) (domain.CursorPage[domain.Guide], error)
	GetGuideBySlug(ctx context.Context, slug string, locale string) (domain.Guide, error)
	UpsertGuide(ctx context.Context, guide domain.Guide) error
	DeleteGuide(ctx context.Context, slug string, locale string) error

	GetPage(ctx context.Context, slug string, locale string) (domain.LandingPage, error)
	UpsertPage(ctx context.Context, page domain.LandingPage) error
	DeletePage(ctx context.Context, slug string, locale string) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// Filter DTOs shared across repositories ------------------------------------

type CaseListFilter struct {
	Status          []string
	Product         *string
	IncludeArchived bool
	Pagination      domain.Pagination
}

type LeadListFilter struct {
	Status       []string
	Product      *string
	Jurisdiction *string
	DateRange    domain.RangeQuery[time.Time]
	Pagination   domain.Pagination
}

type GuideFilter struct {
	Category       *string
	Jurisdiction   *string
	Locale         *string
	FallbackLocale string
	OnlyPublished  bool
	Pagination     domain.Pagination
}
