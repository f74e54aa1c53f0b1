package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/repositories"
)

// ErrLeadInvalidInput indicates the caller provided invalid data.
var ErrLeadInvalidInput = errors.New("lead: invalid input")

// ErrLeadNotFound indicates the requested lead does not exist.
var ErrLeadNotFound = errors.New("lead: not found")

// ErrLeadUnavailable indicates the service cannot complete the request due to dependency failures.
var ErrLeadUnavailable = errors.New("lead: service unavailable")

var errLeadRepositoryRequired = errors.New("lead: repository is required")

const (
	leadIDPrefix      = "lead_"
	leadExportPageCap = 500
)

var leadStatuses = map[domain.LeadStatus]struct{}{
	domain.LeadStatusNew:       {},
	domain.LeadStatusContacted: {},
	domain.LeadStatusConverted: {},
	domain.LeadStatusClosed:    {},
}

// LeadServiceDeps wires the repository and helpers lead operations rely on.
type LeadServiceDeps struct {
	Repository  repositories.LeadRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type leadService struct {
	repo   repositories.LeadRepository
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewLeadService constructs a LeadService with the provided dependencies.
func NewLeadService(deps LeadServiceDeps) (LeadService, error) {
	if deps.Repository == nil {
		return nil, errLeadRepositoryRequired
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
	return &leadService{
		repo:   deps.Repository,
		now:    func() time.Time { return clock().UTC() },
		newID:  func() string { return leadIDPrefix + strings.ToLower(idGen()) },
		logger: logger,
	}, nil
}

func (s *leadService) Capture(ctx context.Context, cmd CaptureLeadCommand) (Lead, error) {
	email := strings.TrimSpace(cmd.Contact.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Lead{}, ErrLeadInvalidInput
	}

	now := s.now()
	lead := domain.Lead{
		ID:               s.newID(),
		Name:             strings.TrimSpace(cmd.Contact.Name),
		Email:            email,
		Phone:            strings.TrimSpace(cmd.Contact.Phone),
		Product:          strings.TrimSpace(cmd.Product),
		ProductTier:      strings.TrimSpace(cmd.ProductTier),
		Jurisdiction:     strings.TrimSpace(cmd.Jurisdiction),
		Source:           strings.TrimSpace(cmd.Source),
		MarketingConsent: cmd.Contact.MarketingConsent,
		Status:           domain.LeadStatusNew,
		CaseID:           strings.TrimSpace(cmd.CaseID),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, lead); err != nil {
		return Lead{}, translateLeadRepositoryError(err)
	}
	s.logger(ctx, "lead.captured", map[string]any{
		"lead_id": lead.ID,
		"product": lead.Product,
		"source":  lead.Source,
	})
	return lead, nil
}

func (s *leadService) List(ctx context.Context, filter LeadListFilter) (domain.CursorPage[Lead], error) {
	page, err := s.repo.List(ctx, leadRepositoryFilter(filter))
	if err != nil {
		return domain.CursorPage[Lead]{}, translateLeadRepositoryError(err)
	}
	return page, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, leadID string, status LeadStatus) (Lead, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return Lead{}, ErrLeadInvalidInput
	}
	if _, ok := leadStatuses[status]; !ok {
		return Lead{}, ErrLeadInvalidInput
	}
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		return Lead{}, translateLeadRepositoryError(err)
	}
	lead.Status = status
	lead.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, lead); err != nil {
		return Lead{}, translateLeadRepositoryError(err)
	}
	s.logger(ctx, "lead.status_updated", map[string]any{
		"lead_id": lead.ID,
		"status":  string(status),
	})
	return lead, nil
}

// ExportCSV streams every lead matching the filter into a CSV blob for the admin
// download. Pagination is walked internally so callers get a single document.
func (s *leadService) ExportCSV(ctx context.Context, filter LeadListFilter) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{
		"id", "name", "email", "phone", "product", "product_tier", "jurisdiction",
		"source", "status", "case_id", "marketing_consent", "created_at",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	filter.Pagination.PageSize = leadExportPageCap
	filter.Pagination.PageToken = ""
	for {
		page, err := s.repo.List(ctx, leadRepositoryFilter(filter))
		if err != nil {
			return nil, translateLeadRepositoryError(err)
		}
		for _, lead := range page.Items {
			record := []string{
				lead.ID,
				lead.Name,
				lead.Email,
				lead.Phone,
				lead.Product,
				lead.ProductTier,
				lead.Jurisdiction,
				lead.Source,
				string(lead.Status),
				lead.CaseID,
				formatBool(lead.MarketingConsent),
				lead.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return nil, err
			}
		}
		if page.NextPageToken == "" {
			break
		}
		filter.Pagination.PageToken = page.NextPageToken
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func translateLeadRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrLeadNotFound
		case repoErr.IsConflict():
			return ErrLeadInvalidInput
		case repoErr.IsUnavailable():
			return ErrLeadUnavailable
		}
	}
	return err
}
