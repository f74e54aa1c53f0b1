package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/landlorddesk/api/internal/domain"
	pfirestore "github.com/landlorddesk/api/internal/platform/firestore"
	"github.com/landlorddesk/api/internal/platform/pagination"
	"github.com/landlorddesk/api/internal/repositories"
)

const leadsCollection = "leads"

// LeadRepository persists marketing leads captured by the wizard.
type LeadRepository struct {
	base *pfirestore.BaseRepository[leadDocument]
}

// NewLeadRepository constructs a Firestore-backed lead repository.
func NewLeadRepository(provider *pfirestore.Provider) (*LeadRepository, error) {
	if provider == nil {
		return nil, errors.New("lead repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[leadDocument](provider, leadsCollection, nil, nil)
	return &LeadRepository{base: base}, nil
}

// Insert stores a new lead document.
func (r *LeadRepository) Insert(ctx context.Context, lead domain.Lead) error {
	if r == nil || r.base == nil {
		return errors.New("lead repository not initialised")
	}
	leadID := strings.TrimSpace(lead.ID)
	if leadID == "" {
		return errors.New("lead repository: lead id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, leadID)
	if err != nil {
		return err
	}
	doc := encodeLeadDocument(lead)
	if _, err := docRef.Create(ctx, doc); err != nil {
		return pfirestore.WrapError("leads.insert", err)
	}
	return nil
}

// Update replaces the persisted lead state.
func (r *LeadRepository) Update(ctx context.Context, lead domain.Lead) error {
	if r == nil || r.base == nil {
		return errors.New("lead repository not initialised")
	}
	leadID := strings.TrimSpace(lead.ID)
	if leadID == "" {
		return errors.New("lead repository: lead id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, leadID)
	if err != nil {
		return err
	}
	doc := encodeLeadDocument(lead)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return pfirestore.WrapError("leads.update", err)
	}
	return nil
}

// FindByID fetches a single lead.
func (r *LeadRepository) FindByID(ctx context.Context, leadID string) (domain.Lead, error) {
	if r == nil || r.base == nil {
		return domain.Lead{}, errors.New("lead repository not initialised")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return domain.Lead{}, errors.New("lead repository: lead id is required")
	}
	doc, err := r.base.Get(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}
	return decodeLeadDocument(leadID, doc.Data, doc.CreateTime, doc.UpdateTime), nil
}

// List returns leads matching the admin filter ordered by most recent capture.
func (r *LeadRepository) List(ctx context.Context, filter repositories.LeadListFilter) (domain.CursorPage[domain.Lead], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Lead]{}, errors.New("lead repository not initialised")
	}

	limit := filter.Pagination.PageSize
	if limit < 0 {
		limit = 0
	}
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	var startAfter []any
	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeToken(token)
		if err != nil {
			return domain.CursorPage[domain.Lead]{}, fmt.Errorf("lead repository: %w", err)
		}
		startAfter = []any{cursor.UpdatedAt, cursor.DocID}
	}

	statusFilters := normaliseFilterValues(filter.Status)
	product := trimFilterPointer(filter.Product)
	jurisdiction := trimFilterPointer(filter.Jurisdiction)

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if len(statusFilters) == 1 {
			q = q.Where("status", "==", statusFilters[0])
		} else if len(statusFilters) > 1 {
			if len(statusFilters) > 10 {
				statusFilters = statusFilters[:10]
			}
			q = q.Where("status", "in", statusFilters)
		}
		if product != "" {
			q = q.Where("product", "==", product)
		}
		if jurisdiction != "" {
			q = q.Where("jurisdiction", "==", jurisdiction)
		}
		if filter.DateRange.From != nil {
			q = q.Where("createdAt", ">=", filter.DateRange.From.UTC())
		}
		if filter.DateRange.To != nil {
			q = q.Where("createdAt", "<=", filter.DateRange.To.UTC())
		}
		q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if len(startAfter) == 2 {
			q = q.StartAfter(startAfter...)
		}
		if fetchLimit > 0 {
			q = q.Limit(fetchLimit)
		}
		return q
	})
	if err != nil {
		return domain.CursorPage[domain.Lead]{}, err
	}

	valueDocs := docs
	nextToken := ""
	if limit > 0 && len(valueDocs) == fetchLimit {
		last := valueDocs[len(valueDocs)-1]
		tokenTime := last.Data.CreatedAt
		if tokenTime.IsZero() {
			tokenTime = last.CreateTime
		}
		nextToken = pagination.EncodeToken(pagination.Cursor{UpdatedAt: tokenTime, DocID: last.ID})
		valueDocs = valueDocs[:len(valueDocs)-1]
	}

	items := make([]domain.Lead, 0, len(valueDocs))
	for _, doc := range valueDocs {
		items = append(items, decodeLeadDocument(doc.ID, doc.Data, doc.CreateTime, doc.UpdateTime))
	}

	return domain.CursorPage[domain.Lead]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

type leadDocument struct {
	Name             string    `firestore:"name"`
	Email            string    `firestore:"email"`
	Phone            string    `firestore:"phone,omitempty"`
	Product          string    `firestore:"product,omitempty"`
	ProductTier      string    `firestore:"productTier,omitempty"`
	Jurisdiction     string    `firestore:"jurisdiction,omitempty"`
	Source           string    `firestore:"source,omitempty"`
	MarketingConsent bool      `firestore:"marketingConsent"`
	Status           string    `firestore:"status"`
	CaseRef          string    `firestore:"caseRef,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

func encodeLeadDocument(lead domain.Lead) leadDocument {
	return leadDocument{
		Name:             strings.TrimSpace(lead.Name),
		Email:            strings.TrimSpace(lead.Email),
		Phone:            strings.TrimSpace(lead.Phone),
		Product:          strings.TrimSpace(lead.Product),
		ProductTier:      strings.TrimSpace(lead.ProductTier),
		Jurisdiction:     strings.TrimSpace(lead.Jurisdiction),
		Source:           strings.TrimSpace(lead.Source),
		MarketingConsent: lead.MarketingConsent,
		Status:           strings.TrimSpace(string(lead.Status)),
		CaseRef:          strings.TrimSpace(lead.CaseID),
		CreatedAt:        lead.CreatedAt.UTC(),
		UpdatedAt:        lead.UpdatedAt.UTC(),
	}
}

func decodeLeadDocument(id string, doc leadDocument, createdAt, updatedAt time.Time) domain.Lead {
	return domain.Lead{
		ID:               strings.TrimSpace(id),
		Name:             strings.TrimSpace(doc.Name),
		Email:            strings.TrimSpace(doc.Email),
		Phone:            strings.TrimSpace(doc.Phone),
		Product:          strings.TrimSpace(doc.Product),
		ProductTier:      strings.TrimSpace(doc.ProductTier),
		Jurisdiction:     strings.TrimSpace(doc.Jurisdiction),
		Source:           strings.TrimSpace(doc.Source),
		MarketingConsent: doc.MarketingConsent,
		Status:           domain.LeadStatus(strings.TrimSpace(doc.Status)),
		CaseID:           strings.TrimSpace(doc.CaseRef),
		CreatedAt:        pickTime(doc.CreatedAt, createdAt),
		UpdatedAt:        pickTime(doc.UpdatedAt, updatedAt),
	}
}

func trimFilterPointer(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

var _ repositories.LeadRepository = (*LeadRepository)(nil)
