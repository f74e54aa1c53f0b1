package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/facts"
	"github.com/landlorddesk/api/internal/repositories"
)

// ErrCaseInvalidInput indicates the caller provided invalid data.
var ErrCaseInvalidInput = errors.New("case: invalid input")

// ErrCaseNotFound indicates the requested case does not exist.
var ErrCaseNotFound = errors.New("case: not found")

// ErrCaseUnauthorized indicates the case does not belong to the caller.
var ErrCaseUnauthorized = errors.New("case: unauthorized")

// ErrCaseConflict indicates the requested operation conflicts with the case state.
var ErrCaseConflict = errors.New("case: conflict")

// ErrCaseUnavailable indicates the service cannot complete the request due to dependency failures.
var ErrCaseUnavailable = errors.New("case: service unavailable")

var errCaseRepositoryRequired = errors.New("case: repository is required")

const caseIDPrefix = "case_"

// CaseServiceDeps wires the repositories and helpers case operations rely on.
type CaseServiceDeps struct {
	Repository  repositories.CaseRepository
	Leads       LeadService
	Sanitizer   TextSanitizer
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type caseService struct {
	repo      repositories.CaseRepository
	leads     LeadService
	sanitizer TextSanitizer
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewCaseService constructs a CaseService with the provided dependencies.
func NewCaseService(deps CaseServiceDeps) (CaseService, error) {
	if deps.Repository == nil {
		return nil, errCaseRepositoryRequired
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
	return &caseService{
		repo:      deps.Repository,
		leads:     deps.Leads,
		sanitizer: deps.Sanitizer,
		now:       func() time.Time { return clock().UTC() },
		newID:     func() string { return caseIDPrefix + strings.ToLower(idGen()) },
		logger:    logger,
	}, nil
}

func (s *caseService) CreateFromWizard(ctx context.Context, cmd CreateCaseCommand) (CaseIntakeResult, error) {
	ownerID := strings.TrimSpace(cmd.OwnerID)
	if ownerID == "" {
		return CaseIntakeResult{}, ErrCaseInvalidInput
	}

	answers := s.sanitizeAnswers(cmd.Answers)
	normalized := facts.Normalize(answers)
	now := s.now()

	stored := domain.Case{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Product:   factString(normalized.Meta.Product),
		Status:    domain.CaseStatusDraft,
		Answers:   answers,
		Facts:     normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, stored); err != nil {
		return CaseIntakeResult{}, translateCaseRepositoryError(err)
	}

	result := CaseIntakeResult{Case: cloneCase(stored)}
	if s.leads != nil && strings.TrimSpace(cmd.Contact.Email) != "" {
		lead, err := s.leads.Capture(ctx, CaptureLeadCommand{
			Contact:      cmd.Contact,
			Product:      stored.Product,
			ProductTier:  factString(normalized.Meta.ProductTier),
			Jurisdiction: factString(normalized.Property.Country),
			Source:       cmd.Source,
			CaseID:       stored.ID,
		})
		if err != nil {
			// A failed lead capture must not lose the case itself.
			s.logger(ctx, "case.lead_capture_failed", map[string]any{
				"case_id": stored.ID,
				"error":   err.Error(),
			})
		} else {
			result.Lead = &lead
		}
	}

	s.logger(ctx, "case.created", map[string]any{
		"case_id": stored.ID,
		"owner":   ownerID,
		"product": stored.Product,
	})
	return result, nil
}

func (s *caseService) PreviewFacts(_ context.Context, answers WizardFacts) (CaseFacts, error) {
	return facts.Normalize(s.sanitizeAnswers(answers)), nil
}

func (s *caseService) Get(ctx context.Context, ownerID string, caseID string) (Case, error) {
	loaded, err := s.load(ctx, ownerID, caseID)
	if err != nil {
		return Case{}, err
	}
	return cloneCase(loaded), nil
}

func (s *caseService) List(ctx context.Context, ownerID string, filter CaseListFilter) (domain.CursorPage[Case], error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CursorPage[Case]{}, ErrCaseInvalidInput
	}
	page, err := s.repo.ListByOwner(ctx, ownerID, repositories.CaseListFilter{
		Status:          filter.Status,
		Product:         filter.Product,
		IncludeArchived: filter.IncludeArchived,
		Pagination:      filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[Case]{}, translateCaseRepositoryError(err)
	}
	result := domain.CursorPage[Case]{
		Items:         make([]Case, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, item := range page.Items {
		result.Items = append(result.Items, cloneCase(item))
	}
	return result, nil
}

func (s *caseService) UpdateFacts(ctx context.Context, cmd UpdateCaseFactsCommand) (Case, error) {
	loaded, err := s.load(ctx, cmd.OwnerID, cmd.CaseID)
	if err != nil {
		return Case{}, err
	}
	if loaded.Status == domain.CaseStatusArchived {
		return Case{}, ErrCaseConflict
	}

	incoming := s.sanitizeAnswers(cmd.Answers)
	answers := incoming
	if !cmd.Replace {
		answers = make(domain.WizardFacts, len(loaded.Answers)+len(incoming))
		for key, value := range loaded.Answers {
			answers[key] = value
		}
		for key, value := range incoming {
			answers[key] = value
		}
	}

	loaded.Answers = answers
	loaded.Facts = facts.Normalize(answers)
	loaded.Product = factString(loaded.Facts.Meta.Product)
	loaded.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, loaded); err != nil {
		return Case{}, translateCaseRepositoryError(err)
	}

	s.logger(ctx, "case.facts_updated", map[string]any{
		"case_id": loaded.ID,
		"replace": cmd.Replace,
	})
	return cloneCase(loaded), nil
}

func (s *caseService) Archive(ctx context.Context, ownerID string, caseID string) (Case, error) {
	loaded, err := s.load(ctx, ownerID, caseID)
	if err != nil {
		return Case{}, err
	}
	if loaded.Status == domain.CaseStatusArchived {
		return cloneCase(loaded), nil
	}
	now := s.now()
	loaded.Status = domain.CaseStatusArchived
	loaded.ArchivedAt = &now
	loaded.UpdatedAt = now
	if err := s.repo.Update(ctx, loaded); err != nil {
		return Case{}, translateCaseRepositoryError(err)
	}
	s.logger(ctx, "case.archived", map[string]any{"case_id": loaded.ID})
	return cloneCase(loaded), nil
}

func (s *caseService) load(ctx context.Context, ownerID string, caseID string) (domain.Case, error) {
	ownerID = strings.TrimSpace(ownerID)
	caseID = strings.TrimSpace(caseID)
	if ownerID == "" || caseID == "" {
		return domain.Case{}, ErrCaseInvalidInput
	}
	loaded, err := s.repo.FindByID(ctx, caseID)
	if err != nil {
		return domain.Case{}, translateCaseRepositoryError(err)
	}
	if loaded.OwnerID != ownerID {
		return domain.Case{}, ErrCaseUnauthorized
	}
	return loaded, nil
}

// sanitizeAnswers strips markup from every string answer, including the strings
// nested inside the reserved __meta object. All other values pass through.
func (s *caseService) sanitizeAnswers(answers WizardFacts) domain.WizardFacts {
	cleaned := make(domain.WizardFacts, len(answers))
	for key, value := range answers {
		switch typed := value.(type) {
		case string:
			cleaned[key] = s.sanitize(typed)
		case map[string]any:
			if key != domain.WizardMetaKey {
				cleaned[key] = typed
				continue
			}
			meta := make(map[string]any, len(typed))
			for metaKey, metaValue := range typed {
				if str, ok := metaValue.(string); ok {
					meta[metaKey] = s.sanitize(str)
					continue
				}
				meta[metaKey] = metaValue
			}
			cleaned[key] = meta
		default:
			cleaned[key] = value
		}
	}
	return cleaned
}

func (s *caseService) sanitize(value string) string {
	if s.sanitizer == nil {
		return value
	}
	return s.sanitizer.Sanitize(value)
}

// cloneCase copies the mutable parts of a case so callers cannot alias repository state.
func cloneCase(c domain.Case) domain.Case {
	if c.Answers != nil {
		answers := make(domain.WizardFacts, len(c.Answers))
		for key, value := range c.Answers {
			answers[key] = value
		}
		c.Answers = answers
	}
	if c.Facts.Parties.Tenants != nil {
		tenants := make([]domain.TenantFacts, len(c.Facts.Parties.Tenants))
		copy(tenants, c.Facts.Parties.Tenants)
		c.Facts.Parties.Tenants = tenants
	}
	if c.ArchivedAt != nil {
		archived := *c.ArchivedAt
		c.ArchivedAt = &archived
	}
	return c
}

// factString reads a loosely typed fact as a string, returning "" for anything else.
func factString(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func translateCaseRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCaseNotFound
		case repoErr.IsConflict():
			return ErrCaseConflict
		case repoErr.IsUnavailable():
			return ErrCaseUnavailable
		}
	}
	return err
}
